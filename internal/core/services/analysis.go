package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
	"github.com/custodia-labs/ingest-core/internal/postprocessors"
)

// Ensure AnalysisPipeline implements AnalysisService
var _ driving.AnalysisService = (*AnalysisPipeline)(nil)

// DefaultAnalysisConcurrency bounds in-flight chunk classifications
const DefaultAnalysisConcurrency = 4

// AnalysisPipeline runs a document through the ingestion flow:
//  1. Validate input and resolve the document type
//  2. Split into chunks
//  3. Retrieve candidates and classify each chunk concurrently
//  4. Publish the result only once every chunk is mapped
//  5. Persist draft suggestions for the actionable chunks
type AnalysisPipeline struct {
	chunker         *postprocessors.Chunker
	retriever       Retriever
	engine          *MappingEngine
	suggestionStore driven.SuggestionStore
	artifactStore   driven.ArtifactStore
	concurrency     int
	logger          *slog.Logger
}

// AnalysisPipelineConfig holds dependencies for AnalysisPipeline.
type AnalysisPipelineConfig struct {
	Chunker         *postprocessors.Chunker
	Retriever       Retriever
	Engine          *MappingEngine
	SuggestionStore driven.SuggestionStore
	ArtifactStore   driven.ArtifactStore
	Concurrency     int
	Logger          *slog.Logger
}

// NewAnalysisPipeline creates a new analysis pipeline.
func NewAnalysisPipeline(cfg AnalysisPipelineConfig) (*AnalysisPipeline, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == nil || cfg.Retriever == nil || cfg.SuggestionStore == nil {
		return nil, fmt.Errorf("%w: engine, retriever and suggestion store are required", domain.ErrInvalidInput)
	}

	chunker := cfg.Chunker
	if chunker == nil {
		var err error
		if chunker, err = postprocessors.NewChunker(postprocessors.DefaultChunkConfig()); err != nil {
			return nil, err
		}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultAnalysisConcurrency
	}

	return &AnalysisPipeline{
		chunker:         chunker,
		retriever:       cfg.Retriever,
		engine:          cfg.Engine,
		suggestionStore: cfg.SuggestionStore,
		artifactStore:   cfg.ArtifactStore,
		concurrency:     concurrency,
		logger:          logger,
	}, nil
}

// AnalyzeDocument returns a complete AnalysisResult or an error, never a
// partial result.
func (p *AnalysisPipeline) AnalyzeDocument(ctx context.Context, req driving.AnalyzeRequest) (*domain.AnalysisResult, error) {
	startTime := time.Now()

	// Step 1: Validate
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is empty", domain.ErrInvalidDocument)
	}
	docType, err := domain.ParseDocumentType(req.DocumentTypeOverride)
	if err != nil {
		return nil, err
	}
	if docType == "" {
		docType = domain.DetectDocumentType(req.Content)
	}

	if req.ExistingArtifactID != "" {
		if p.artifactStore == nil {
			return nil, fmt.Errorf("%w: artifact store not configured", domain.ErrInvalidInput)
		}
		if _, err := p.artifactStore.Get(ctx, req.ProjectID, req.ExistingArtifactID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: artifact %s not found", domain.ErrInvalidInput, req.ExistingArtifactID)
			}
			return nil, fmt.Errorf("%w: load artifact: %w", domain.ErrAnalysisFailed, err)
		}
	}

	if !p.engine.Available() {
		return nil, fmt.Errorf("%w: %w: no classifier configured", domain.ErrAnalysisFailed, domain.ErrServiceUnavailable)
	}

	p.logger.Info("starting analysis",
		"project_id", req.ProjectID,
		"document_type", docType,
		"retrieval_mode", p.retriever.Mode(),
	)

	// Step 2: Split
	texts, locations := p.chunker.SplitWithLocations(req.Content)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:             uuid.NewString(),
			OriginalText:   text,
			SourceLocation: locations[i],
		}
	}

	// Step 3: Retrieve and classify concurrently. Each goroutine writes only
	// its own slot, so output order equals input order.
	degraded := make([]bool, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunk := &chunks[i]

			candidates, err := p.retriever.Retrieve(gctx, req.ProjectID, chunk.OriginalText)
			if err != nil {
				p.logger.Warn("candidate retrieval failed", "chunk_id", chunk.ID, "error", err)
				candidates = nil
			}
			chunk.CandidateRecords = candidates

			mapping, err := p.engine.Classify(gctx, chunk, docType)
			chunk.Mapping = mapping
			if err != nil {
				degraded[i] = true
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn("analysis cancelled", "project_id", req.ProjectID, "error", err)
		return nil, err
	}

	// Step 4: Document-level failure if no chunk could be classified
	if len(chunks) > 0 && countTrue(degraded) == len(chunks) {
		return nil, fmt.Errorf("%w: classifier unavailable for every chunk", domain.ErrAnalysisFailed)
	}

	result := domain.NewAnalysisResult(uuid.NewString(), req.ProjectID, docType, req.ExistingArtifactID, chunks, time.Now())

	// Step 5: Persist drafts
	if err := p.persistDrafts(ctx, result); err != nil {
		return nil, err
	}

	p.logger.Info("analysis completed",
		"project_id", req.ProjectID,
		"analysis_id", result.ID,
		"chunks", result.Summary.Total,
		"degraded", result.Summary.Degraded,
		"duration", time.Since(startTime),
	)
	return result, nil
}

// persistDrafts stores a suggestion per non-ignored chunk. On any failure the
// drafts already written for this analysis are removed.
func (p *AnalysisPipeline) persistDrafts(ctx context.Context, result *domain.AnalysisResult) error {
	var written []string
	for i := range result.Chunks {
		chunk := &result.Chunks[i]
		if chunk.Mapping == nil || chunk.Mapping.Action == domain.ActionIgnore {
			continue
		}

		item := draftFromChunk(result, chunk)
		if err := p.suggestionStore.Create(ctx, item); err != nil {
			for _, id := range written {
				if delErr := p.suggestionStore.Delete(ctx, result.ProjectID, id); delErr != nil {
					p.logger.Error("failed to roll back draft", "item_id", id, "error", delErr)
				}
			}
			return fmt.Errorf("%w: persist draft: %w", domain.ErrAnalysisFailed, err)
		}
		written = append(written, item.ID)
	}
	return nil
}

func draftFromChunk(result *domain.AnalysisResult, chunk *domain.Chunk) *domain.SuggestionItem {
	m := chunk.Mapping
	item := &domain.SuggestionItem{
		ID:          chunk.ID,
		ProjectID:   result.ProjectID,
		Type:        domain.ItemTypeFromCategory(m.Category),
		Status:      domain.StatusSuggestion,
		Title:       m.ExtractedTitle,
		Description: m.ExtractedDescription,
		Meta: domain.ItemMeta{
			Action:         m.Action,
			Confidence:     m.Confidence,
			RiskLevel:      m.RiskLevel,
			Category:       m.Category,
			TargetRecordID: m.TargetRecordID,
			Reasoning:      m.Reasoning,
			Extra:          map[string]string{"analysis_id": result.ID},
		},
		CreatedAt: result.ProcessedAt,
	}

	if result.ArtifactID != "" {
		item.SourceArtifactID = result.ArtifactID
	} else {
		item.PendingArtifact = &domain.PendingArtifact{
			Content:        chunk.OriginalText,
			ContentType:    "text/plain",
			DocumentType:   result.DocumentType,
			ChunkID:        chunk.ID,
			SourceLocation: chunk.SourceLocation,
			CapturedAt:     result.ProcessedAt,
		}
	}
	return item
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
