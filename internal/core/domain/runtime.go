package domain

import "sync"

// VectorBackend names the similarity-search backend chosen at startup
type VectorBackend string

const (
	VectorBackendPGVector VectorBackend = "pgvector"
	VectorBackendNone     VectorBackend = "none"
)

// RetrievalMode is the retrieval strategy in effect
type RetrievalMode string

const (
	RetrievalModeVector    RetrievalMode = "vector"
	RetrievalModeHeuristic RetrievalMode = "heuristic"
)

// RuntimeConfig tracks which services are available at runtime.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	VectorBackend VectorBackend
	LockBackend   string // "redis", "postgres" or "none"

	embeddingAvailable  bool
	classifierAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(vectorBackend VectorBackend, lockBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		VectorBackend: vectorBackend,
		LockBackend:   lockBackend,
	}
}

// EmbeddingAvailable returns whether embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// ClassifierAvailable returns whether the classifier is available
func (c *RuntimeConfig) ClassifierAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.classifierAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetClassifierAvailable updates the classifier availability flag
func (c *RuntimeConfig) SetClassifierAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classifierAvailable = available
}

// EffectiveRetrievalMode returns vector retrieval only when both a vector
// backend and an embedding service are present
func (c *RuntimeConfig) EffectiveRetrievalMode() RetrievalMode {
	if c.VectorBackend == VectorBackendPGVector && c.EmbeddingAvailable() {
		return RetrievalModeVector
	}
	return RetrievalModeHeuristic
}
