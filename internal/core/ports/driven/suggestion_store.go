package driven

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// SuggestionStore persists work items (drafts and confirmed records), scoped by project
type SuggestionStore interface {
	// Create inserts a new item. Stamps CreatedAt/UpdatedAt.
	Create(ctx context.Context, item *domain.SuggestionItem) error

	// Get retrieves an item by ID within a project
	Get(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error)

	// Update persists changes to an existing item. Always refreshes UpdatedAt.
	Update(ctx context.Context, item *domain.SuggestionItem) error

	// Delete hard-deletes an item
	Delete(ctx context.Context, projectID, id string) error

	// List returns a project's items matching the status filter, newest first
	List(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error)

	// ListRecent returns up to limit confirmed records, newest first
	ListRecent(ctx context.Context, projectID string, limit int) ([]*domain.SuggestionItem, error)
}
