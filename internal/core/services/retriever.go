package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

const (
	// DefaultCandidateTopK is how many existing records are offered per chunk
	DefaultCandidateTopK = 5
	// DefaultSimilarityThreshold drops weak vector matches
	DefaultSimilarityThreshold = 0.3

	candidateDescriptionLimit = 280
)

// Retriever finds existing work items that plausibly match a chunk
type Retriever interface {
	// Retrieve returns up to K candidates for text within the project
	Retrieve(ctx context.Context, projectID, text string) ([]domain.Candidate, error)

	// Mode reports which strategy the retriever implements
	Mode() domain.RetrievalMode
}

// RetrieverConfig holds dependencies for both retriever implementations.
type RetrieverConfig struct {
	Index           *EmbeddingIndex
	SuggestionStore driven.SuggestionStore
	Runtime         *domain.RuntimeConfig
	TopK            int
	Threshold       float64
	Logger          *slog.Logger
}

// NewRetriever selects the retriever for the configured runtime capabilities.
// The choice is made once here rather than per call.
func NewRetriever(cfg RetrieverConfig) Retriever {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Runtime != nil && cfg.Runtime.EffectiveRetrievalMode() == domain.RetrievalModeVector && cfg.Index != nil {
		cfg.Logger.Info("candidate retrieval mode", "mode", domain.RetrievalModeVector)
		return NewVectorRetriever(cfg.Index, cfg.TopK, cfg.Threshold)
	}

	cfg.Logger.Info("candidate retrieval mode", "mode", domain.RetrievalModeHeuristic)
	return NewHeuristicRetriever(cfg.SuggestionStore, cfg.TopK)
}

// VectorRetriever ranks confirmed records by embedding similarity
type VectorRetriever struct {
	index     *EmbeddingIndex
	topK      int
	threshold float64
}

// NewVectorRetriever creates a retriever over the record vectors of index
func NewVectorRetriever(index *EmbeddingIndex, topK int, threshold float64) *VectorRetriever {
	if topK <= 0 {
		topK = DefaultCandidateTopK
	}
	return &VectorRetriever{index: index, topK: topK, threshold: threshold}
}

func (r *VectorRetriever) Mode() domain.RetrievalMode {
	return domain.RetrievalModeVector
}

func (r *VectorRetriever) Retrieve(ctx context.Context, projectID, text string) ([]domain.Candidate, error) {
	filter := domain.VectorFilter{ProjectID: projectID, SourceType: domain.SourceTypeRecord}
	matches, err := r.index.Query(ctx, text, filter, r.threshold, r.topK)
	if err != nil {
		return nil, err
	}
	return matchesToCandidates(matches), nil
}

// HeuristicRetriever ranks recent confirmed records by keyword overlap
type HeuristicRetriever struct {
	store driven.SuggestionStore
	topK  int
}

// NewHeuristicRetriever creates a keyword-scoring retriever over store
func NewHeuristicRetriever(store driven.SuggestionStore, topK int) *HeuristicRetriever {
	if topK <= 0 {
		topK = DefaultCandidateTopK
	}
	return &HeuristicRetriever{store: store, topK: topK}
}

func (r *HeuristicRetriever) Mode() domain.RetrievalMode {
	return domain.RetrievalModeHeuristic
}

func (r *HeuristicRetriever) Retrieve(ctx context.Context, projectID, text string) ([]domain.Candidate, error) {
	records, err := r.store.ListRecent(ctx, projectID, heuristicCorpusLimit)
	if err != nil {
		return nil, err
	}
	return matchesToCandidates(rankHeuristic(text, recordDocs(records), r.topK, time.Now())), nil
}

func matchesToCandidates(matches []*domain.VectorMatch) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if seen[m.SourceID] {
			continue
		}
		seen[m.SourceID] = true

		title := m.Metadata["title"]
		desc := m.Metadata["description"]
		if desc == "" {
			desc = truncateRunes(m.Content, candidateDescriptionLimit)
		}
		candidates = append(candidates, domain.Candidate{
			ID:          m.SourceID,
			Title:       title,
			Description: desc,
			Similarity:  m.Similarity,
		})
	}
	return candidates
}
