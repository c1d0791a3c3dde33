package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Services holds references to the pipeline's AI collaborators.
// Either may be nil; the capability flags in RuntimeConfig follow them.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	config *domain.RuntimeConfig

	embeddingService driven.EmbeddingService
	classifier       driven.Classifier
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// Classifier returns the current classifier (may be nil)
func (s *Services) Classifier() driven.Classifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifier
}

// SetEmbeddingService replaces the embedding service, closing the old one
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}
	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetClassifier replaces the classifier, closing the old one
func (s *Services) SetClassifier(c driven.Classifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classifier != nil {
		_ = s.classifier.Close()
	}
	s.classifier = c
	s.config.SetClassifierAvailable(c != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.classifier != nil {
		_ = s.classifier.Close()
		s.classifier = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetClassifierAvailable(false)
	return nil
}

// ValidateAndSetEmbedding health-checks svc before installing it
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}
	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}
	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetClassifier pings c before installing it
func (s *Services) ValidateAndSetClassifier(ctx context.Context, c driven.Classifier) error {
	if c == nil {
		s.SetClassifier(nil)
		return nil
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return err
	}
	s.SetClassifier(c)
	return nil
}
