package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// MockVectorStore is an in-memory VectorStore using cosine similarity
type MockVectorStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.VectorEntry // key: project:type:source
	upserts int
	err     error
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		entries: make(map[string]*domain.VectorEntry),
	}
}

func vectorKey(projectID string, sourceType domain.SourceType, sourceID string) string {
	return projectID + ":" + string(sourceType) + ":" + sourceID
}

func (m *MockVectorStore) Upsert(ctx context.Context, entry *domain.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	e := *entry
	m.entries[vectorKey(entry.ProjectID, entry.SourceType, entry.SourceID)] = &e
	m.upserts++
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, embedding []float32, filter domain.VectorFilter, threshold float64, topK int) ([]*domain.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	var matches []*domain.VectorMatch
	for _, e := range m.entries {
		if e.ProjectID != filter.ProjectID {
			continue
		}
		if filter.SourceType != "" && e.SourceType != filter.SourceType {
			continue
		}
		sim := cosine(embedding, e.Embedding)
		if sim < threshold {
			continue
		}
		matches = append(matches, &domain.VectorMatch{
			ID:         e.ID,
			SourceID:   e.SourceID,
			SourceType: e.SourceType,
			Content:    e.Content,
			Metadata:   e.Metadata,
			Similarity: sim,
			CreatedAt:  e.CreatedAt,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].SourceID < matches[j].SourceID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MockVectorStore) DeleteBySource(ctx context.Context, projectID, sourceID string, sourceType domain.SourceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, vectorKey(projectID, sourceType, sourceID))
	return nil
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Helper methods for testing

// SetError makes every call fail with err until cleared with nil
func (m *MockVectorStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Get returns the stored entry for a source
func (m *MockVectorStore) Get(projectID string, sourceType domain.SourceType, sourceID string) (*domain.VectorEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[vectorKey(projectID, sourceType, sourceID)]
	return e, ok
}

// UpsertCount returns how many successful upserts were made
func (m *MockVectorStore) UpsertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.upserts
}
