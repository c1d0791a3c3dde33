package ai

import (
	"fmt"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc *OpenAIEmbedding
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOpenAI:
		svc, err = NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		svc, err = NewOllamaEmbedding(settings.BaseURL, settings.Model)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateClassifier creates a chunk classifier from settings
func (f *Factory) CreateClassifier(settings *domain.ClassifierSettings) (driven.Classifier, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		c   *OpenAIClassifier
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOpenAI:
		c, err = NewOpenAIClassifier(settings.APIKey, settings.Model, settings.BaseURL, settings.Temperature)
	case domain.AIProviderOllama:
		c, err = NewOllamaClassifier(settings.BaseURL, settings.Model, settings.Temperature)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
