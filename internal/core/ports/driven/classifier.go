package driven

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// ClassificationRequest is the input handed to the external classifier
type ClassificationRequest struct {
	ChunkText    string              `json:"chunk_text"`
	DocumentType domain.DocumentType `json:"document_type"`
	Candidates   []domain.Candidate  `json:"candidates"`
}

// ClassificationResponse is the classifier's structured answer.
// Pointer fields distinguish "missing" from zero values.
type ClassificationResponse struct {
	Action               string   `json:"action"`
	Confidence           *float64 `json:"confidence"`
	RiskLevel            string   `json:"risk_level"`
	Category             string   `json:"category"`
	ExtractedTitle       string   `json:"extracted_title"`
	ExtractedDescription string   `json:"extracted_description"`
	TargetRecordID       string   `json:"target_record_id,omitempty"`
	Reasoning            string   `json:"reasoning"`
}

// Classifier decides how a chunk relates to existing records (LLM-backed)
type Classifier interface {
	// Classify returns the structured classification for one chunk
	Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResponse, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the classifier is available
	Ping(ctx context.Context) error

	// Close releases resources held by the classifier
	Close() error
}
