package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

// Ensure knowledgeService implements KnowledgeService
var _ driving.KnowledgeService = (*knowledgeService)(nil)

const maxKnowledgeTopK = 50

// knowledgeService implements the KnowledgeService interface
type knowledgeService struct {
	index     *EmbeddingIndex
	threshold float64
}

// NewKnowledgeService creates a KnowledgeService over the enrolled artifacts
func NewKnowledgeService(index *EmbeddingIndex, threshold float64) driving.KnowledgeService {
	return &knowledgeService{
		index:     index,
		threshold: threshold,
	}
}

// Search queries the project's artifacts
func (s *knowledgeService) Search(ctx context.Context, projectID, query string, topK int) ([]*domain.VectorMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultCandidateTopK
	}
	if topK > maxKnowledgeTopK {
		topK = maxKnowledgeTopK
	}

	filter := domain.VectorFilter{ProjectID: projectID, SourceType: domain.SourceTypeArtifact}
	return s.index.Query(ctx, query, filter, s.threshold, topK)
}
