package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

func TestKnowledgeService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewKnowledgeService(f.index, 0.2)

	require.NoError(t, f.index.Embed(ctx, "release checklist for mobile", "art-1", domain.SourceTypeArtifact, testProject, map[string]string{"title": "Checklist"}))
	require.NoError(t, f.index.Embed(ctx, "release checklist for mobile", "rec-1", domain.SourceTypeRecord, testProject, nil))

	matches, err := svc.Search(ctx, testProject, "mobile release checklist", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1, "only artifacts are searched")
	assert.Equal(t, "art-1", matches[0].SourceID)
	assert.Equal(t, domain.SourceTypeArtifact, matches[0].SourceType)

	_, err = svc.Search(ctx, testProject, "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKnowledgeService_SearchFallsBackToArtifacts(t *testing.T) {
	f := newFixture(t)
	f.services.SetEmbeddingService(nil)
	f.artifacts.Put(&domain.Artifact{ID: "a1", ProjectID: testProject, Title: "Old", OriginalContent: "old notes", CreatedAt: time.Now().Add(-time.Hour)})
	f.artifacts.Put(&domain.Artifact{ID: "a2", ProjectID: testProject, Title: "Retro", OriginalContent: "sprint retro notes", CreatedAt: time.Now()})

	matches, err := NewKnowledgeService(f.index, 0.2).Search(context.Background(), testProject, "retro", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a2", matches[0].SourceID)
}
