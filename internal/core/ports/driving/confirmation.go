package driving

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// ConfirmationService commits or discards draft suggestions
type ConfirmationService interface {
	// ConfirmItem confirms a single suggestion and returns the confirmed record
	ConfirmItem(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error)

	// ConfirmSelected confirms a batch, parents before children.
	// Individual failures are counted, never abort the batch.
	ConfirmSelected(ctx context.Context, projectID string, ids []string) (*domain.BatchResult, error)

	// RejectSelected deletes every selected suggestion
	RejectSelected(ctx context.Context, projectID string, ids []string) error
}
