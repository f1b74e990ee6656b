package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/sudokuduo/internal/dependencies/ids"
)

// MockIDs is a deterministic Generator producing prefix-1, prefix-2, ...
type MockIDs struct {
	mu      sync.Mutex
	counter int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next sequential id
func (g *MockIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%d", prefix, g.counter)
}
