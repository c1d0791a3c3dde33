package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// MockClassifier is a mock implementation of Classifier for testing.
// ClassifyFn decides the answer; the default creates a new action item.
type MockClassifier struct {
	mu    sync.Mutex
	calls []driven.ClassificationRequest

	ClassifyFn func(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error)
	PingFn     func() error
}

// NewMockClassifier creates a new MockClassifier
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

func (m *MockClassifier) Classify(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.ClassifyFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	confidence := 0.9
	return &driven.ClassificationResponse{
		Action:               "create_new",
		Confidence:           &confidence,
		Category:             "action",
		ExtractedTitle:       req.ChunkText,
		ExtractedDescription: req.ChunkText,
		Reasoning:            "mock",
	}, nil
}

func (m *MockClassifier) Model() string {
	return "mock-classifier"
}

func (m *MockClassifier) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn()
	}
	return nil
}

func (m *MockClassifier) Close() error {
	return nil
}

// Calls returns every request received, in arrival order
func (m *MockClassifier) Calls() []driven.ClassificationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.ClassificationRequest(nil), m.calls...)
}

// FloatPtr is a helper for building classifier responses
func FloatPtr(f float64) *float64 {
	return &f
}
