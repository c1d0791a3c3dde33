package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "line one line two", normalizeContent("line one\n\n  line two\n"))
	assert.Equal(t, "", normalizeContent("\n \n"))
}

func TestEmbeddingIndex_Embed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.index.Embed(ctx, "first line\nsecond line", "art-1", domain.SourceTypeArtifact, testProject, map[string]string{"title": "T"})
	require.NoError(t, err)

	entry, ok := f.vectors.Get(testProject, domain.SourceTypeArtifact, "art-1")
	require.True(t, ok)
	assert.Equal(t, "first line second line", entry.Content)
	assert.Equal(t, "T", entry.Metadata["title"])
	assert.Len(t, entry.Embedding, f.embedder.Dimensions())
	assert.Equal(t, 1, f.embedder.EmbedCount("first line second line"))
}

func TestEmbeddingIndex_EmbedErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		f := newFixture(t)
		err := f.index.Embed(ctx, "\n\n", "art-1", domain.SourceTypeArtifact, testProject, nil)
		assert.ErrorIs(t, err, domain.ErrEnrollment)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("embedding service fails", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.SetError(errors.New("rate limited"))
		err := f.index.Embed(ctx, "content", "art-1", domain.SourceTypeArtifact, testProject, nil)
		assert.ErrorIs(t, err, domain.ErrEnrollment)
		assert.Zero(t, f.vectors.UpsertCount())
	})

	t.Run("no embedding service", func(t *testing.T) {
		f := newFixture(t)
		f.services.SetEmbeddingService(nil)
		err := f.index.Embed(ctx, "content", "art-1", domain.SourceTypeArtifact, testProject, nil)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})

	t.Run("vector store fails", func(t *testing.T) {
		f := newFixture(t)
		f.vectors.SetError(errors.New("connection reset"))
		err := f.index.Embed(ctx, "content", "art-1", domain.SourceTypeArtifact, testProject, nil)
		assert.ErrorIs(t, err, domain.ErrEnrollment)
	})
}

func TestEmbeddingIndex_QueryIsProjectScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.index.Embed(ctx, "postgres storage decision", "mine", domain.SourceTypeArtifact, testProject, nil))
	require.NoError(t, f.index.Embed(ctx, "postgres storage decision", "theirs", domain.SourceTypeArtifact, "other-project", nil))
	require.NoError(t, f.index.Embed(ctx, "quarterly hiring plan", "unrelated", domain.SourceTypeArtifact, testProject, nil))

	matches, err := f.index.Query(ctx, "postgres storage", domain.VectorFilter{ProjectID: testProject}, 0.3, 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.NotEqual(t, "theirs", m.SourceID)
		assert.GreaterOrEqual(t, m.Similarity, 0.3)
	}
	assert.Equal(t, "mine", matches[0].SourceID)
}

func TestEmbeddingIndex_QueryFallsBackWhenVectorStoreFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.artifacts.Put(&domain.Artifact{
		ID: "art-1", ProjectID: testProject, Title: "Storage",
		OriginalContent: "we picked postgres", CreatedAt: time.Now(),
	})
	f.vectors.SetError(errors.New("backend down"))

	matches, err := f.index.Query(ctx, "postgres", domain.VectorFilter{ProjectID: testProject, SourceType: domain.SourceTypeArtifact}, 0.3, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "art-1", matches[0].SourceID)
}

func TestEmbeddingIndex_WithoutVectorBackend(t *testing.T) {
	f := newFixture(t)
	index := NewEmbeddingIndex(EmbeddingIndexConfig{
		ArtifactStore:   f.artifacts,
		SuggestionStore: f.suggestions,
		Services:        f.services,
		Logger:          discardLogger(),
	})
	ctx := context.Background()

	assert.False(t, index.HasVectorBackend())
	require.NoError(t, index.Embed(ctx, "content", "art-1", domain.SourceTypeArtifact, testProject, nil))
	assert.Empty(t, f.embedder.EmbeddedTexts())

	f.suggestions.Put(record("r1", "Login flow", "users sign in with SSO"))
	matches, err := index.Query(ctx, "nothing in common", domain.VectorFilter{ProjectID: testProject, SourceType: domain.SourceTypeRecord}, 0.3, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1, "keyword fallback returns recent records rather than nothing")
	assert.Equal(t, "r1", matches[0].SourceID)
}

func TestEmbeddingIndex_QueryRequiresProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.index.Query(context.Background(), "q", domain.VectorFilter{}, 0.3, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
