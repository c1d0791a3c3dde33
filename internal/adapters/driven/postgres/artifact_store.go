package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements driven.ArtifactStore using PostgreSQL
type ArtifactStore struct {
	db *DB
}

// NewArtifactStore creates a new ArtifactStore
func NewArtifactStore(db *DB) *ArtifactStore {
	return &ArtifactStore{db: db}
}

// Create inserts a new artifact
func (s *ArtifactStore) Create(ctx context.Context, artifact *domain.Artifact) error {
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}
	if artifact.UpdatedAt.IsZero() {
		artifact.UpdatedAt = artifact.CreatedAt
	}

	metaJSON, err := json.Marshal(artifact.Meta)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO artifacts (id, project_id, content_type, original_content, title, meta, enrollment_state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		artifact.ID,
		artifact.ProjectID,
		artifact.ContentType,
		artifact.OriginalContent,
		artifact.Title,
		metaJSON,
		string(artifact.EnrollmentState),
		artifact.CreatedAt,
		artifact.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get retrieves an artifact by ID within a project
func (s *ArtifactStore) Get(ctx context.Context, projectID, id string) (*domain.Artifact, error) {
	query := `
		SELECT id, project_id, content_type, original_content, title, meta, enrollment_state, created_at, updated_at
		FROM artifacts
		WHERE project_id = $1 AND id = $2
	`

	artifact, err := scanArtifact(s.db.QueryRowContext(ctx, query, projectID, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// Update persists changes to an artifact
func (s *ArtifactStore) Update(ctx context.Context, artifact *domain.Artifact) error {
	metaJSON, err := json.Marshal(artifact.Meta)
	if err != nil {
		return err
	}

	query := `
		UPDATE artifacts SET
			content_type = $3,
			original_content = $4,
			title = $5,
			meta = $6,
			enrollment_state = $7,
			updated_at = $8
		WHERE project_id = $1 AND id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		artifact.ProjectID,
		artifact.ID,
		artifact.ContentType,
		artifact.OriginalContent,
		artifact.Title,
		metaJSON,
		string(artifact.EnrollmentState),
		artifact.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes an artifact
func (s *ArtifactStore) Delete(ctx context.Context, projectID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE project_id = $1 AND id = $2`, projectID, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ListByProject returns a project's artifacts, newest first
func (s *ArtifactStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Artifact, error) {
	query := `
		SELECT id, project_id, content_type, original_content, title, meta, enrollment_state, created_at, updated_at
		FROM artifacts
		WHERE project_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*domain.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return artifacts, nil
}

func scanArtifact(row rowScanner) (*domain.Artifact, error) {
	var artifact domain.Artifact
	var metaJSON []byte

	err := row.Scan(
		&artifact.ID,
		&artifact.ProjectID,
		&artifact.ContentType,
		&artifact.OriginalContent,
		&artifact.Title,
		&metaJSON,
		&artifact.EnrollmentState,
		&artifact.CreatedAt,
		&artifact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &artifact.Meta); err != nil {
			return nil, err
		}
	}
	return &artifact, nil
}
