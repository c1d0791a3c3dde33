package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

var fiveParagraphs = strings.Join([]string{
	"Paragraph one covers the login.",
	"Paragraph two covers billing.",
	"Paragraph three covers search.",
	"Paragraph four covers exports.",
	"Paragraph five covers alerts.",
}, "\n\n")

func TestAnalysisPipeline_OneTimeoutAmongFive(t *testing.T) {
	f := newFixture(t)
	f.classifier.ClassifyFn = func(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
		if strings.Contains(req.ChunkText, "three") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &driven.ClassificationResponse{
			Action:         "create_new",
			Confidence:     mocks.FloatPtr(0.9),
			Category:       "action",
			ExtractedTitle: req.ChunkText,
		}, nil
	}

	result, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{
		ProjectID: testProject,
		Content:   fiveParagraphs,
	})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 5)

	for i, want := range []string{"one", "two", "three", "four", "five"} {
		assert.Contains(t, result.Chunks[i].OriginalText, want, "chunk order must match input order")
		assert.Equal(t, i, result.Chunks[i].SourceLocation.Index)
	}

	failed := result.Chunks[2].Mapping
	assert.Equal(t, domain.ActionCreateNew, failed.Action)
	assert.Equal(t, 0.0, failed.Confidence)
	assert.Equal(t, domain.RiskLow, failed.RiskLevel)
	assert.Equal(t, domain.ReasonClassificationUnavailable, failed.Reasoning)

	assert.Equal(t, 5, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Degraded)
	assert.Equal(t, 5, result.Summary.CreateNew)
}

func TestAnalysisPipeline_PersistsDrafts(t *testing.T) {
	f := newFixture(t)
	f.classifier.ClassifyFn = func(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
		action := "create_new"
		if strings.Contains(req.ChunkText, "two") {
			action = "ignore"
		}
		return &driven.ClassificationResponse{
			Action:         action,
			Confidence:     mocks.FloatPtr(0.9),
			Category:       "decision",
			ExtractedTitle: req.ChunkText,
		}, nil
	}

	result, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{
		ProjectID: testProject,
		Content:   fiveParagraphs,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Ignore)

	drafts, err := f.suggestions.List(context.Background(), testProject, domain.FilterSuggestions)
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	for _, d := range drafts {
		assert.Equal(t, domain.ItemTypeDecision, d.Type)
		require.NotNil(t, d.PendingArtifact, "draft content stays pending until confirmation")
		assert.Equal(t, d.ID, d.PendingArtifact.ChunkID)
		assert.Equal(t, result.ID, d.Meta.Extra["analysis_id"])
	}
	assert.Zero(t, f.artifacts.CreateCount(), "analysis must not materialize artifacts")
	assert.Empty(t, f.embedder.EmbeddedTexts(), "analysis must not enroll content")
}

func TestAnalysisPipeline_ExistingArtifact(t *testing.T) {
	f := newFixture(t)
	f.artifacts.Put(&domain.Artifact{ID: "art-1", ProjectID: testProject, OriginalContent: fiveParagraphs})

	_, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{
		ProjectID:          testProject,
		Content:            fiveParagraphs,
		ExistingArtifactID: "art-1",
	})
	require.NoError(t, err)

	drafts, _ := f.suggestions.List(context.Background(), testProject, domain.FilterSuggestions)
	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		assert.Equal(t, "art-1", d.SourceArtifactID)
		assert.Nil(t, d.PendingArtifact)
	}

	_, err = f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{
		ProjectID:          testProject,
		Content:            fiveParagraphs,
		ExistingArtifactID: "missing",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalysisPipeline_InputErrors(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, 40, 0)
	ctx := context.Background()

	_, err := p.AnalyzeDocument(ctx, driving.AnalyzeRequest{ProjectID: testProject, Content: "  \n "})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = p.AnalyzeDocument(ctx, driving.AnalyzeRequest{Content: "text"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = p.AnalyzeDocument(ctx, driving.AnalyzeRequest{ProjectID: testProject, Content: "text", DocumentTypeOverride: "poem"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.classifier.Calls())
}

func TestAnalysisPipeline_DocumentTypes(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, 200, 20)
	ctx := context.Background()

	result, err := p.AnalyzeDocument(ctx, driving.AnalyzeRequest{
		ProjectID: testProject,
		Content:   "Attendees: Ana, Bo\nAgenda: roadmap\nAction items: ship beta",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeMeetingNotes, result.DocumentType)

	result, err = p.AnalyzeDocument(ctx, driving.AnalyzeRequest{
		ProjectID:            testProject,
		Content:              "Attendees: Ana, Bo\nAgenda: roadmap",
		DocumentTypeOverride: "requirements",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeRequirements, result.DocumentType)

	calls := f.classifier.Calls()
	assert.Equal(t, domain.DocumentTypeRequirements, calls[len(calls)-1].DocumentType)
}

func TestAnalysisPipeline_ClassifierUnreachable(t *testing.T) {
	t.Run("no classifier configured", func(t *testing.T) {
		f := newFixture(t)
		f.services.SetClassifier(nil)
		_, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{ProjectID: testProject, Content: fiveParagraphs})
		assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})

	t.Run("every call fails", func(t *testing.T) {
		f := newFixture(t)
		f.classifier.ClassifyFn = func(context.Context, driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
			return nil, errors.New("connection refused")
		}
		result, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{ProjectID: testProject, Content: fiveParagraphs})
		assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
		assert.Nil(t, result)
		assert.Zero(t, f.suggestions.Count())
	})
}

func TestAnalysisPipeline_RollsBackDraftsOnPersistFailure(t *testing.T) {
	f := newFixture(t)
	var creates atomic.Int32
	f.suggestions.CreateErr = func(*domain.SuggestionItem) error {
		if creates.Add(1) == 3 {
			return errors.New("disk full")
		}
		return nil
	}

	result, err := f.pipeline(t, 40, 0).AnalyzeDocument(context.Background(), driving.AnalyzeRequest{ProjectID: testProject, Content: fiveParagraphs})
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Nil(t, result)
	assert.Zero(t, f.suggestions.Count(), "drafts written before the failure are removed")
}

func TestAnalysisPipeline_CancelledDiscardsResult(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.classifier.ClassifyFn = func(c context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
		cancel()
		<-c.Done()
		return nil, c.Err()
	}

	result, err := f.pipeline(t, 40, 0).AnalyzeDocument(ctx, driving.AnalyzeRequest{ProjectID: testProject, Content: fiveParagraphs})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Zero(t, f.suggestions.Count())
}

func TestAnalysisPipeline_CandidatesFromConfirmedRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := record("rec-1", "Login", "Paragraph one covers the login.")
	f.suggestions.Put(rec)
	require.NoError(t, f.index.Embed(ctx, rec.EmbeddingText(), rec.ID, domain.SourceTypeRecord, testProject, recordMetadata(rec)))

	f.classifier.ClassifyFn = func(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
		resp := &driven.ClassificationResponse{Action: "create_new", Confidence: mocks.FloatPtr(0.9)}
		for _, c := range req.Candidates {
			if c.ID == "rec-1" {
				resp.Action = "map_existing"
				resp.TargetRecordID = c.ID
			}
		}
		return resp, nil
	}

	result, err := f.pipeline(t, 40, 0).AnalyzeDocument(ctx, driving.AnalyzeRequest{ProjectID: testProject, Content: fiveParagraphs})
	require.NoError(t, err)

	first := result.Chunks[0]
	assert.True(t, first.HasCandidate("rec-1"))
	assert.Equal(t, domain.ActionMapExisting, first.Mapping.Action)
	assert.Equal(t, "rec-1", first.Mapping.TargetRecordID)
	assert.Equal(t, domain.RiskMedium, first.Mapping.RiskLevel)

	stored, err := f.suggestions.Get(ctx, testProject, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", stored.Meta.TargetRecordID)
}

func TestNewAnalysisPipeline_RequiresDependencies(t *testing.T) {
	_, err := NewAnalysisPipeline(AnalysisPipelineConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
