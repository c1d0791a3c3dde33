package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/runtime"
)

// heuristicCorpusLimit caps how many records the keyword scorer reads
const heuristicCorpusLimit = 500

// EmbeddingIndex is the searchable knowledge base. It embeds content through
// the runtime embedding service and stores vectors in the VectorStore. When
// no vector backend can answer, queries fall back to keyword scoring over the
// stores of record.
type EmbeddingIndex struct {
	vectorStore     driven.VectorStore // nil when VECTOR_BACKEND=none
	artifactStore   driven.ArtifactStore
	suggestionStore driven.SuggestionStore
	services        *runtime.Services
	timeout         time.Duration
	logger          *slog.Logger
}

// EmbeddingIndexConfig holds dependencies for EmbeddingIndex.
type EmbeddingIndexConfig struct {
	VectorStore     driven.VectorStore
	ArtifactStore   driven.ArtifactStore
	SuggestionStore driven.SuggestionStore
	Services        *runtime.Services
	EmbedTimeout    time.Duration
	Logger          *slog.Logger
}

// NewEmbeddingIndex creates a new embedding index.
func NewEmbeddingIndex(cfg EmbeddingIndexConfig) *EmbeddingIndex {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.EmbedTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &EmbeddingIndex{
		vectorStore:     cfg.VectorStore,
		artifactStore:   cfg.ArtifactStore,
		suggestionStore: cfg.SuggestionStore,
		services:        cfg.Services,
		timeout:         timeout,
		logger:          logger,
	}
}

// HasVectorBackend reports whether similarity search is possible at all
func (x *EmbeddingIndex) HasVectorBackend() bool {
	return x.vectorStore != nil && x.embeddingService() != nil
}

func (x *EmbeddingIndex) embeddingService() driven.EmbeddingService {
	if x.services == nil {
		return nil
	}
	return x.services.EmbeddingService()
}

// Embed normalizes content, embeds it and stores the vector keyed by
// (sourceID, sourceType, projectID). Without a vector store it is a no-op:
// the keyword fallback reads the stores of record directly.
func (x *EmbeddingIndex) Embed(ctx context.Context, content, sourceID string, sourceType domain.SourceType, projectID string, metadata map[string]string) error {
	content = normalizeContent(content)
	if content == "" || sourceID == "" || projectID == "" {
		return fmt.Errorf("%w: %w: content, source and project are required", domain.ErrEnrollment, domain.ErrInvalidInput)
	}
	if x.vectorStore == nil {
		return nil
	}

	embedder := x.embeddingService()
	if embedder == nil {
		return fmt.Errorf("%w: %w: no embedding service", domain.ErrEnrollment, domain.ErrServiceUnavailable)
	}

	embedCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	vectors, err := embedder.Embed(embedCtx, []string{content})
	if err != nil {
		return fmt.Errorf("%w: embed: %w", domain.ErrEnrollment, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return fmt.Errorf("%w: embedding service returned no vector", domain.ErrEnrollment)
	}

	entry := &domain.VectorEntry{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		SourceType: sourceType,
		ProjectID:  projectID,
		Content:    content,
		Metadata:   metadata,
		Embedding:  vectors[0],
		CreatedAt:  time.Now(),
	}
	if err := x.vectorStore.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("%w: store vector: %w", domain.ErrEnrollment, err)
	}

	x.logger.Debug("enrolled content",
		"project_id", projectID,
		"source_id", sourceID,
		"source_type", sourceType,
	)
	return nil
}

// Query returns at most topK matches for queryText within the filter's
// project, ordered by descending similarity. Vector matches below threshold
// are dropped. If the vector path is unavailable or fails, the keyword
// scorer answers instead.
func (x *EmbeddingIndex) Query(ctx context.Context, queryText string, filter domain.VectorFilter, threshold float64, topK int) ([]*domain.VectorMatch, error) {
	if filter.ProjectID == "" {
		return nil, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, nil
	}

	if x.HasVectorBackend() {
		matches, err := x.vectorQuery(ctx, queryText, filter, threshold, topK)
		if err == nil {
			return matches, nil
		}
		x.logger.Warn("vector retrieval unavailable, using keyword fallback",
			"project_id", filter.ProjectID,
			"error", err,
		)
	}

	return x.heuristicQuery(ctx, queryText, filter, topK)
}

func (x *EmbeddingIndex) vectorQuery(ctx context.Context, queryText string, filter domain.VectorFilter, threshold float64, topK int) ([]*domain.VectorMatch, error) {
	embedCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	vector, err := x.embeddingService().EmbedQuery(embedCtx, normalizeContent(queryText))
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrievalUnavailable, err)
	}
	matches, err := x.vectorStore.Search(ctx, vector, filter, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}
	return matches, nil
}

func (x *EmbeddingIndex) heuristicQuery(ctx context.Context, queryText string, filter domain.VectorFilter, topK int) ([]*domain.VectorMatch, error) {
	var docs []heuristicDoc

	if filter.SourceType == "" || filter.SourceType == domain.SourceTypeArtifact {
		if x.artifactStore != nil {
			artifacts, err := x.artifactStore.ListByProject(ctx, filter.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("list artifacts: %w", err)
			}
			docs = append(docs, artifactDocs(artifacts)...)
		}
	}
	if filter.SourceType == "" || filter.SourceType == domain.SourceTypeRecord {
		if x.suggestionStore != nil {
			records, err := x.suggestionStore.ListRecent(ctx, filter.ProjectID, heuristicCorpusLimit)
			if err != nil {
				return nil, fmt.Errorf("list records: %w", err)
			}
			docs = append(docs, recordDocs(records)...)
		}
	}

	return rankHeuristic(queryText, docs, topK, time.Now()), nil
}

// Remove drops the stored vector for a source, if any
func (x *EmbeddingIndex) Remove(ctx context.Context, projectID, sourceID string, sourceType domain.SourceType) error {
	if x.vectorStore == nil {
		return nil
	}
	if err := x.vectorStore.DeleteBySource(ctx, projectID, sourceID, sourceType); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// normalizeContent collapses line breaks into single spaces
func normalizeContent(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
