package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// MockArtifactStore is a mock implementation of ArtifactStore for testing
type MockArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]*domain.Artifact
	creates   int

	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewMockArtifactStore creates a new MockArtifactStore
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{
		artifacts: make(map[string]*domain.Artifact),
	}
}

func cloneArtifact(a *domain.Artifact) *domain.Artifact {
	c := *a
	if a.Meta != nil {
		c.Meta = make(map[string]string, len(a.Meta))
		for k, v := range a.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

func (m *MockArtifactStore) Create(ctx context.Context, artifact *domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, exists := m.artifacts[artifact.ID]; exists {
		return domain.ErrAlreadyExists
	}
	m.artifacts[artifact.ID] = cloneArtifact(artifact)
	m.creates++
	return nil
}

func (m *MockArtifactStore) Get(ctx context.Context, projectID, id string) (*domain.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[id]
	if !ok || a.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	return cloneArtifact(a), nil
}

func (m *MockArtifactStore) Update(ctx context.Context, artifact *domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.artifacts[artifact.ID]; !ok {
		return domain.ErrNotFound
	}
	m.artifacts[artifact.ID] = cloneArtifact(artifact)
	return nil
}

func (m *MockArtifactStore) Delete(ctx context.Context, projectID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	a, ok := m.artifacts[id]
	if !ok || a.ProjectID != projectID {
		return domain.ErrNotFound
	}
	delete(m.artifacts, id)
	return nil
}

func (m *MockArtifactStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Artifact
	for _, a := range m.artifacts {
		if a.ProjectID == projectID {
			result = append(result, cloneArtifact(a))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Helper methods for testing

// Put stores an artifact directly
func (m *MockArtifactStore) Put(artifact *domain.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[artifact.ID] = cloneArtifact(artifact)
}

// CreateCount returns how many artifacts were created through Create
func (m *MockArtifactStore) CreateCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creates
}
