package mock

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, texts []string, images [][]byte) (string, error)

	callCount atomic.Int32
}

// NewMockSummarizer creates a mock summarizer with default deterministic
// behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a deterministic summary naming the input sizes.
func (m *MockSummarizer) Summarize(ctx context.Context, texts []string, images [][]byte) (string, error) {
	m.callCount.Add(1)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, texts, images)
	}

	return fmt.Sprintf("summary of %d texts and %d images", len(texts), len(images)), nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockSummarizer) Reset() {
	m.callCount.Store(0)
	m.SummarizeFunc = nil
}
