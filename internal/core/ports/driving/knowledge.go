package driving

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// KnowledgeService searches the project knowledge base
type KnowledgeService interface {
	// Search returns the top matches for query. Falls back to keyword
	// scoring when no vector backend is available.
	Search(ctx context.Context, projectID, query string, topK int) ([]*domain.VectorMatch, error)
}
