package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

// MockSuggestionStore is a mock implementation of SuggestionStore for testing
type MockSuggestionStore struct {
	mu    sync.RWMutex
	items map[string]*domain.SuggestionItem

	// Error injection hooks (optional). Returning nil lets the call proceed.
	CreateErr func(item *domain.SuggestionItem) error
	UpdateErr func(item *domain.SuggestionItem) error
	DeleteErr func(id string) error

	updates map[string]int
}

// NewMockSuggestionStore creates a new MockSuggestionStore
func NewMockSuggestionStore() *MockSuggestionStore {
	return &MockSuggestionStore{
		items:   make(map[string]*domain.SuggestionItem),
		updates: make(map[string]int),
	}
}

func (m *MockSuggestionStore) Create(ctx context.Context, item *domain.SuggestionItem) error {
	if m.CreateErr != nil {
		if err := m.CreateErr(item); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[item.ID]; exists {
		return domain.ErrAlreadyExists
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = item.CreatedAt
	m.items[item.ID] = item.Clone()
	return nil
}

func (m *MockSuggestionStore) Get(ctx context.Context, projectID, id string) (*domain.SuggestionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok || item.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	return item.Clone(), nil
}

func (m *MockSuggestionStore) Update(ctx context.Context, item *domain.SuggestionItem) error {
	if m.UpdateErr != nil {
		if err := m.UpdateErr(item); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[item.ID]
	if !ok || existing.ProjectID != item.ProjectID {
		return domain.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	m.items[item.ID] = item.Clone()
	m.updates[item.ID]++
	return nil
}

func (m *MockSuggestionStore) Delete(ctx context.Context, projectID, id string) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.ProjectID != projectID {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockSuggestionStore) List(ctx context.Context, projectID string, filter domain.StatusFilter) ([]*domain.SuggestionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.SuggestionItem
	for _, item := range m.items {
		if item.ProjectID == projectID && filter.Matches(item.Status) {
			result = append(result, item.Clone())
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *MockSuggestionStore) ListRecent(ctx context.Context, projectID string, limit int) ([]*domain.SuggestionItem, error) {
	items, _ := m.List(ctx, projectID, domain.FilterConfirmed)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func sortNewestFirst(items []*domain.SuggestionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

// Helper methods for testing

// Put stores an item directly, bypassing hooks
func (m *MockSuggestionStore) Put(item *domain.SuggestionItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item.Clone()
}

// Count returns how many items are stored
func (m *MockSuggestionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// UpdateCount returns how many times an item was updated
func (m *MockSuggestionStore) UpdateCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updates[id]
}
