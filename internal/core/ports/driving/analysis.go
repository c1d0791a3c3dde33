package driving

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// AnalyzeRequest is the analysis trigger exposed to the UI layer
type AnalyzeRequest struct {
	ProjectID            string `json:"project_id"`
	Content              string `json:"content"`
	ExistingArtifactID   string `json:"existing_artifact_id,omitempty"`
	DocumentTypeOverride string `json:"document_type,omitempty"`
}

// AnalysisService turns free-form text into mapped chunks and draft suggestions
type AnalysisService interface {
	// AnalyzeDocument splits, retrieves, classifies and drafts suggestions.
	// It returns a complete result or a single failure, never a partial result.
	AnalyzeDocument(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error)
}
