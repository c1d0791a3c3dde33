package driving

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// CreateSuggestionRequest creates a draft by hand
type CreateSuggestionRequest struct {
	Type            domain.ItemType         `json:"type"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	ParentID        string                  `json:"parent_id,omitempty"`
	Meta            domain.ItemMeta         `json:"meta"`
	PendingArtifact *domain.PendingArtifact `json:"pending_artifact,omitempty"`
}

// UpdateSuggestionRequest edits a draft before confirmation. Nil fields are left unchanged.
type UpdateSuggestionRequest struct {
	Type        *domain.ItemType `json:"type,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	ParentID    *string          `json:"parent_id,omitempty"`
}

// SuggestionService is CRUD over work items
type SuggestionService interface {
	Create(ctx context.Context, projectID string, req CreateSuggestionRequest) (*domain.SuggestionItem, error)
	Get(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error)
	Update(ctx context.Context, projectID, id string, req UpdateSuggestionRequest) (*domain.SuggestionItem, error)
	Delete(ctx context.Context, projectID, id string) error
	List(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error)
}
