package cache

import (
	"context"
	"time"
)

// Null is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type Null struct{}

// NewNull creates a null cache.
func NewNull() Cache {
	return &Null{}
}

// Get always returns a cache miss.
func (c *Null) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *Null) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *Null) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *Null) Close() error {
	return nil
}

// Ensure Null implements Cache.
var _ Cache = (*Null)(nil)
