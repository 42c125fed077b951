package cache

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/mkessler/repolens/pkg/observability"
)

// evictFraction is the share of entries removed when an insert finds the
// cache still at capacity after expired entries have been dropped.
const evictFraction = 0.2

// Memory is a capacity-bounded in-memory cache with per-entry expiry.
//
// Expiry is lazy: there is no background sweep, entries are dropped when a
// read finds them past their deadline, or during the cleanup that runs before
// an insert at capacity. Cleanup removes expired entries first; if the cache
// is still at capacity it evicts the oldest entries by insertion time,
// ceil(maxSize * 0.2) at a time.
//
// Memory is safe for concurrent use. Operations never fail; the error returns
// exist only to satisfy [Cache].
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	maxSize    int

	// now is replaceable in tests to drive expiry deterministically.
	now func() time.Time
}

type memoryEntry struct {
	data      []byte
	storedAt  time.Time
	expiresAt time.Time
}

// NewMemory creates an in-memory cache holding at most maxSize entries.
// Entries stored with ttl 0 use defaultTTL. maxSize values below 1 fall back
// to a single-entry cache.
func NewMemory(defaultTTL time.Duration, maxSize int) *Memory {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// Get retrieves a value from the cache. An entry read past its deadline is
// evicted and reported as a miss.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.entries[key]
	if !ok {
		observability.Cache().OnMiss(ctx, key)
		return nil, false, nil
	}
	if m.now().After(ent.expiresAt) {
		delete(m.entries, key)
		observability.Cache().OnMiss(ctx, key)
		return nil, false, nil
	}
	observability.Cache().OnHit(ctx, key)
	return ent.data, true, nil
}

// Set stores a value in the cache. When the cache is at capacity the cleanup
// runs synchronously before the insert, so the size bound holds at all times.
func (m *Memory) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.cleanup(ctx)
	}

	now := m.now()
	m.entries[key] = memoryEntry{
		data:      data,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	observability.Cache().OnSet(ctx, key, len(data))
	return nil
}

// Has reports whether a fresh entry exists for key without touching it.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.entries[key]
	return ok && !m.now().After(ent.expiresAt)
}

// Delete removes a value from the cache.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}

// Len returns the current number of entries, including any not yet lazily
// expired.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close does nothing for the in-memory cache.
func (m *Memory) Close() error {
	return nil
}

// cleanup drops expired entries, then evicts the oldest entries by insertion
// time until the cache is under capacity. Caller must hold m.mu.
func (m *Memory) cleanup(ctx context.Context) {
	now := m.now()
	for key, ent := range m.entries {
		if now.After(ent.expiresAt) {
			delete(m.entries, key)
			observability.Cache().OnEvict(ctx, key, "expired")
		}
	}

	if len(m.entries) < m.maxSize {
		return
	}

	type aged struct {
		key      string
		storedAt time.Time
	}
	oldest := make([]aged, 0, len(m.entries))
	for key, ent := range m.entries {
		oldest = append(oldest, aged{key: key, storedAt: ent.storedAt})
	}
	sort.Slice(oldest, func(i, j int) bool {
		return oldest[i].storedAt.Before(oldest[j].storedAt)
	})

	evict := int(math.Ceil(float64(m.maxSize) * evictFraction))
	if evict < 1 {
		evict = 1
	}
	if evict > len(oldest) {
		evict = len(oldest)
	}
	for _, a := range oldest[:evict] {
		delete(m.entries, a.key)
		observability.Cache().OnEvict(ctx, a.key, "capacity")
	}
}

// Ensure Memory implements Cache.
var _ Cache = (*Memory)(nil)
