package driven

import (
	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	// Returns nil, nil if settings are not configured
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateClassifier creates a classifier from settings
	// Returns nil, nil if settings are not configured
	CreateClassifier(settings *domain.ClassifierSettings) (Classifier, error)
}
