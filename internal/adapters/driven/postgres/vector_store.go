package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore implements driven.VectorStore on the pgvector extension.
// Similarity is cosine similarity, 1 - cosine distance.
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new VectorStore
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// Upsert stores or replaces the entry for (SourceID, SourceType, ProjectID)
func (s *VectorStore) Upsert(ctx context.Context, entry *domain.VectorEntry) error {
	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO embeddings (id, project_id, source_id, source_type, content, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector, $8)
		ON CONFLICT (source_id, source_type, project_id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.ProjectID,
		entry.SourceID,
		string(entry.SourceType),
		entry.Content,
		metadataJSON,
		vectorLiteral(entry.Embedding),
		entry.CreatedAt,
	)
	return err
}

// Search returns at most topK project-scoped matches at or above threshold
func (s *VectorStore) Search(ctx context.Context, embedding []float32, filter domain.VectorFilter, threshold float64, topK int) ([]*domain.VectorMatch, error) {
	if filter.ProjectID == "" {
		return nil, fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	if len(embedding) == 0 || topK <= 0 {
		return nil, nil
	}

	sourceTypes := []string{string(domain.SourceTypeArtifact), string(domain.SourceTypeRecord)}
	if filter.SourceType != "" {
		sourceTypes = []string{string(filter.SourceType)}
	}

	query := `
		SELECT id, source_id, source_type, content, metadata, created_at,
		       1 - (embedding <=> $1::vector) AS similarity
		FROM embeddings
		WHERE project_id = $2
		  AND source_type = ANY($3)
		  AND 1 - (embedding <=> $1::vector) >= $4
		ORDER BY embedding <=> $1::vector
		LIMIT $5
	`

	rows, err := s.db.QueryContext(ctx, query,
		vectorLiteral(embedding),
		filter.ProjectID,
		pq.Array(sourceTypes),
		threshold,
		topK,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}
	defer rows.Close()

	var matches []*domain.VectorMatch
	for rows.Next() {
		var m domain.VectorMatch
		var metadataJSON []byte
		if err := rows.Scan(&m.ID, &m.SourceID, &m.SourceType, &m.Content, &metadataJSON, &m.CreatedAt, &m.Similarity); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
				return nil, err
			}
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// DeleteBySource removes the entries for a source within a project
func (s *VectorStore) DeleteBySource(ctx context.Context, projectID, sourceID string, sourceType domain.SourceType) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM embeddings WHERE project_id = $1 AND source_id = $2 AND source_type = $3`,
		projectID, sourceID, string(sourceType))
	return err
}

// HealthCheck verifies the database is reachable and pgvector is installed
func (s *VectorStore) HealthCheck(ctx context.Context) error {
	var installed bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`).Scan(&installed)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%w: pgvector extension not installed", domain.ErrServiceUnavailable)
	}
	return nil
}

// vectorLiteral renders a pgvector input literal such as [0.1,0.2]
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
