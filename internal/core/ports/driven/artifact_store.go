package driven

import (
	"context"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// ArtifactStore persists durable source artifacts
type ArtifactStore interface {
	// Create inserts a new artifact
	Create(ctx context.Context, artifact *domain.Artifact) error

	// Get retrieves an artifact by ID within a project
	Get(ctx context.Context, projectID, id string) (*domain.Artifact, error)

	// Update persists changes to an artifact
	Update(ctx context.Context, artifact *domain.Artifact) error

	// Delete removes an artifact
	Delete(ctx context.Context, projectID, id string) error

	// ListByProject returns a project's artifacts, newest first
	ListByProject(ctx context.Context, projectID string) ([]*domain.Artifact, error)
}
