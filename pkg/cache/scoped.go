package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache with a key prefix and a resource-class default TTL.
//
// Each resource class (rate-limit snapshots, repository metadata, file
// content) gets its own Scoped view over one backing store. Rate-limit
// windows roll every hour while raw file content rarely changes within a
// session, so the classes carry different TTLs:
//
//	ratelimit := cache.NewScoped(store, "ratelimit:", 30*time.Second)
//	metadata  := cache.NewScoped(store, "repo:", 10*time.Minute)
//	content   := cache.NewScoped(store, "contents:", 30*time.Minute)
type Scoped struct {
	inner  Cache
	prefix string
	ttl    time.Duration
}

// NewScoped creates a scoped view of inner. All keys are prefixed, and Set
// calls with ttl 0 use the class TTL.
func NewScoped(inner Cache, prefix string, ttl time.Duration) *Scoped {
	if inner == nil {
		inner = NewNull()
	}
	return &Scoped{inner: inner, prefix: prefix, ttl: ttl}
}

// TTL returns the class default TTL.
func (s *Scoped) TTL() time.Duration { return s.ttl }

// Get retrieves a value under the scoped key.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a value under the scoped key. A ttl of 0 uses the class TTL.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes the scoped key.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the underlying cache.
func (s *Scoped) Close() error {
	return s.inner.Close()
}

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
