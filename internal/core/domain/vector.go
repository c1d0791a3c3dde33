package domain

import "time"

// SourceType identifies what kind of content a vector entry indexes
type SourceType string

const (
	SourceTypeArtifact SourceType = "artifact"
	SourceTypeRecord   SourceType = "record"
)

// VectorEntry is one embedded piece of content keyed by (SourceID, SourceType, ProjectID)
type VectorEntry struct {
	ID         string            `json:"id"`
	SourceID   string            `json:"source_id"`
	SourceType SourceType        `json:"source_type"`
	ProjectID  string            `json:"project_id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Embedding  []float32         `json:"embedding,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// VectorFilter scopes a similarity search. ProjectID is mandatory.
type VectorFilter struct {
	ProjectID  string
	SourceType SourceType
}

// VectorMatch is a ranked similarity search hit
type VectorMatch struct {
	ID         string            `json:"id"`
	SourceID   string            `json:"source_id"`
	SourceType SourceType        `json:"source_type"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity"`
	CreatedAt  time.Time         `json:"created_at"`
}
