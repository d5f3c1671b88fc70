package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/core"
)

// MockImageDescriber is a test double for ai.ImageDescriber.
// It allows custom behavior injection via function fields.
type MockImageDescriber struct {
	// DescribeFunc is called by Describe if set.
	// If nil, uses default deterministic behavior.
	DescribeFunc func(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error)

	callCount atomic.Int32
}

// NewMockImageDescriber creates a mock describer with default deterministic
// behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockImageDescriber() *MockImageDescriber {
	return &MockImageDescriber{}
}

// Describe classifies every image as a picture with a size-derived
// description.
func (m *MockImageDescriber) Describe(ctx context.Context, image []byte, summaryContext string) (ai.ImageDescription, error) {
	m.callCount.Add(1)

	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, image, summaryContext)
	}

	return ai.ImageDescription{
		Class:       core.ImageClassPicture,
		Description: fmt.Sprintf("mock description of %d image bytes", len(image)),
	}, nil
}

// CallCount returns the number of times Describe was called.
func (m *MockImageDescriber) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockImageDescriber) Reset() {
	m.callCount.Store(0)
	m.DescribeFunc = nil
}
