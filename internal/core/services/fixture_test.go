package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/ingest-core/internal/postprocessors"
	"github.com/custodia-labs/ingest-core/internal/runtime"
)

const testProject = "proj-1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires every service against in-memory fakes
type fixture struct {
	suggestions *mocks.MockSuggestionStore
	artifacts   *mocks.MockArtifactStore
	vectors     *mocks.MockVectorStore
	embedder    *mocks.MockEmbeddingService
	classifier  *mocks.MockClassifier
	lock        *mocks.MockDistributedLock
	services    *runtime.Services
	index       *EmbeddingIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		suggestions: mocks.NewMockSuggestionStore(),
		artifacts:   mocks.NewMockArtifactStore(),
		vectors:     mocks.NewMockVectorStore(),
		embedder:    mocks.NewMockEmbeddingService(),
		classifier:  mocks.NewMockClassifier(),
		lock:        mocks.NewMockDistributedLock(),
	}
	f.services = runtime.NewServices(domain.NewRuntimeConfig(domain.VectorBackendPGVector, "memory"))
	f.services.SetEmbeddingService(f.embedder)
	f.services.SetClassifier(f.classifier)
	f.index = NewEmbeddingIndex(EmbeddingIndexConfig{
		VectorStore:     f.vectors,
		ArtifactStore:   f.artifacts,
		SuggestionStore: f.suggestions,
		Services:        f.services,
		EmbedTimeout:    time.Second,
		Logger:          discardLogger(),
	})
	return f
}

func (f *fixture) engine(timeout time.Duration) *MappingEngine {
	return NewMappingEngine(MappingEngineConfig{
		Services: f.services,
		Timeout:  timeout,
		Logger:   discardLogger(),
	})
}

func (f *fixture) pipeline(t *testing.T, size, overlap int) *AnalysisPipeline {
	t.Helper()
	chunker, err := postprocessors.NewChunker(postprocessors.ChunkConfig{
		ChunkSize:    size,
		ChunkOverlap: overlap,
		Separators:   postprocessors.DefaultSeparators,
	})
	require.NoError(t, err)

	p, err := NewAnalysisPipeline(AnalysisPipelineConfig{
		Chunker: chunker,
		Retriever: NewRetriever(RetrieverConfig{
			Index:           f.index,
			SuggestionStore: f.suggestions,
			Runtime:         f.services.Config(),
			Logger:          discardLogger(),
		}),
		Engine:          f.engine(200 * time.Millisecond),
		SuggestionStore: f.suggestions,
		ArtifactStore:   f.artifacts,
		Concurrency:     3,
		Logger:          discardLogger(),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) orchestrator() *ConfirmationOrchestrator {
	return NewConfirmationOrchestrator(ConfirmationOrchestratorConfig{
		SuggestionStore: f.suggestions,
		ArtifactStore:   f.artifacts,
		Index:           f.index,
		Lock:            f.lock,
		LockTTL:         time.Second,
		Logger:          discardLogger(),
	})
}

// draft builds a suggestion carrying a pending artifact
func draft(id, title string, itemType domain.ItemType) *domain.SuggestionItem {
	return &domain.SuggestionItem{
		ID:          id,
		ProjectID:   testProject,
		Type:        itemType,
		Status:      domain.StatusSuggestion,
		Title:       title,
		Description: title + " details",
		Meta:        domain.ItemMeta{Action: domain.ActionCreateNew, RiskLevel: domain.RiskLow},
		PendingArtifact: &domain.PendingArtifact{
			Content:      "source text for " + title,
			ContentType:  "text/plain",
			DocumentType: domain.DocumentTypeGeneral,
			ChunkID:      id,
		},
	}
}

// record builds an already confirmed work item
func record(id, title, description string) *domain.SuggestionItem {
	return &domain.SuggestionItem{
		ID:          id,
		ProjectID:   testProject,
		Type:        domain.ItemTypeAction,
		Status:      domain.StatusNotStarted,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	}
}
