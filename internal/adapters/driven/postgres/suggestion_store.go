package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SuggestionStore = (*SuggestionStore)(nil)

// uniqueViolation is the PostgreSQL error code for duplicate keys
const uniqueViolation = "23505"

const suggestionColumns = `id, project_id, type, status, title, description, parent_id,
	source_artifact_id, meta, pending_artifact, created_at, updated_at, confirmed_at`

// SuggestionStore implements driven.SuggestionStore using PostgreSQL
type SuggestionStore struct {
	db *DB
}

// NewSuggestionStore creates a new SuggestionStore
func NewSuggestionStore(db *DB) *SuggestionStore {
	return &SuggestionStore{db: db}
}

// Create inserts a new item
func (s *SuggestionStore) Create(ctx context.Context, item *domain.SuggestionItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = item.CreatedAt

	metaJSON, pendingJSON, err := encodeItem(item)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO suggestion_items (` + suggestionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.ProjectID,
		string(item.Type),
		string(item.Status),
		item.Title,
		item.Description,
		nullString(item.ParentID),
		nullString(item.SourceArtifactID),
		metaJSON,
		pendingJSON,
		item.CreatedAt,
		item.UpdatedAt,
		nullTime(item.ConfirmedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Get retrieves an item by ID within a project
func (s *SuggestionStore) Get(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestion_items WHERE project_id = $1 AND id = $2`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, projectID, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update persists changes to an existing item
func (s *SuggestionStore) Update(ctx context.Context, item *domain.SuggestionItem) error {
	item.UpdatedAt = time.Now()

	metaJSON, pendingJSON, err := encodeItem(item)
	if err != nil {
		return err
	}

	query := `
		UPDATE suggestion_items SET
			type = $3,
			status = $4,
			title = $5,
			description = $6,
			parent_id = $7,
			source_artifact_id = $8,
			meta = $9,
			pending_artifact = $10,
			updated_at = $11,
			confirmed_at = $12
		WHERE project_id = $1 AND id = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		item.ProjectID,
		item.ID,
		string(item.Type),
		string(item.Status),
		item.Title,
		item.Description,
		nullString(item.ParentID),
		nullString(item.SourceArtifactID),
		metaJSON,
		pendingJSON,
		item.UpdatedAt,
		nullTime(item.ConfirmedAt),
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes an item and detaches any children pointing at it
func (s *SuggestionStore) Delete(ctx context.Context, projectID, id string) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM suggestion_items WHERE project_id = $1 AND id = $2`, projectID, id)
		if err != nil {
			return err
		}
		if err := requireRow(result); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE suggestion_items SET parent_id = NULL WHERE project_id = $1 AND parent_id = $2`, projectID, id)
		return err
	})
}

// List returns a project's items matching the status filter, newest first
func (s *SuggestionStore) List(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestion_items WHERE project_id = $1`
	args := []any{projectID}

	switch filter {
	case domain.FilterSuggestions:
		query += ` AND status = $2`
		args = append(args, string(domain.StatusSuggestion))
	case domain.FilterConfirmed:
		query += ` AND status <> $2`
		args = append(args, string(domain.StatusSuggestion))
	}
	query += ` ORDER BY created_at DESC, id`

	return s.queryItems(ctx, query, args...)
}

// ListRecent returns up to limit confirmed records, newest first
func (s *SuggestionStore) ListRecent(ctx context.Context, projectID string, limit int) ([]*domain.SuggestionItem, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM suggestion_items
		WHERE project_id = $1 AND status <> $2
		ORDER BY created_at DESC, id
		LIMIT $3
	`
	return s.queryItems(ctx, query, projectID, string(domain.StatusSuggestion), limit)
}

func (s *SuggestionStore) queryItems(ctx context.Context, query string, args ...any) ([]*domain.SuggestionItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.SuggestionItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.SuggestionItem, error) {
	var item domain.SuggestionItem
	var parentID, sourceArtifactID sql.NullString
	var metaJSON, pendingJSON []byte
	var confirmedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.ProjectID,
		&item.Type,
		&item.Status,
		&item.Title,
		&item.Description,
		&parentID,
		&sourceArtifactID,
		&metaJSON,
		&pendingJSON,
		&item.CreatedAt,
		&item.UpdatedAt,
		&confirmedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &item.Meta); err != nil {
			return nil, fmt.Errorf("decode meta for %s: %w", item.ID, err)
		}
	}
	if len(pendingJSON) > 0 {
		var pending domain.PendingArtifact
		if err := json.Unmarshal(pendingJSON, &pending); err != nil {
			return nil, fmt.Errorf("decode pending artifact for %s: %w", item.ID, err)
		}
		item.PendingArtifact = &pending
	}
	item.ParentID = parentID.String
	item.SourceArtifactID = sourceArtifactID.String
	item.ConfirmedAt = timePtr(confirmedAt)

	return &item, nil
}

// encodeItem marshals the JSONB columns. A nil pending artifact is stored as NULL.
func encodeItem(item *domain.SuggestionItem) ([]byte, sql.NullString, error) {
	metaJSON, err := json.Marshal(item.Meta)
	if err != nil {
		return nil, sql.NullString{}, err
	}
	if item.PendingArtifact == nil {
		return metaJSON, sql.NullString{}, nil
	}
	pendingJSON, err := json.Marshal(item.PendingArtifact)
	if err != nil {
		return nil, sql.NullString{}, err
	}
	return metaJSON, sql.NullString{String: string(pendingJSON), Valid: true}, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
