package driven

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// VectorStore persists embeddings and answers project-scoped similarity queries
type VectorStore interface {
	// Upsert stores or replaces the entry keyed by (SourceID, SourceType, ProjectID)
	Upsert(ctx context.Context, entry *domain.VectorEntry) error

	// Search returns at most topK matches with similarity >= threshold,
	// ordered by similarity descending. Results never cross filter.ProjectID.
	Search(ctx context.Context, embedding []float32, filter domain.VectorFilter, threshold float64, topK int) ([]*domain.VectorMatch, error)

	// DeleteBySource removes all entries for a source
	DeleteBySource(ctx context.Context, projectID, sourceID string, sourceType domain.SourceType) error

	// HealthCheck verifies the vector backend is available
	HealthCheck(ctx context.Context) error
}
