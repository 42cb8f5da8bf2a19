package stock

import (
	"context"
	"sync/atomic"
)

// MemoryCounter is an in-process Counter backed by sync/atomic.  It exists
// for tests and for single-node deployments that run without Redis; it
// provides the same atomicity guarantees as the Redis counter but is not
// shared across processes.
type MemoryCounter struct {
	v atomic.Int64
}

// NewMemoryCounter returns a MemoryCounter starting at zero.
func NewMemoryCounter() *MemoryCounter { return &MemoryCounter{} }

// Get returns the current value.
func (c *MemoryCounter) Get(_ context.Context) (int64, error) {
	return c.v.Load(), nil
}

// Add atomically applies delta and returns the post-delta value.
func (c *MemoryCounter) Add(_ context.Context, delta int64) (int64, error) {
	return c.v.Add(delta), nil
}

// Set overwrites the value.
func (c *MemoryCounter) Set(_ context.Context, value int64) error {
	c.v.Store(value)
	return nil
}
