// Package cache provides the caching layer for repolens.
//
// The fetch layer keeps the application usable against GitHub's shared hourly
// quota by caching aggressively. Three independent cache views (rate-limit
// snapshots, repository metadata, file content) share one backing store but
// carry different default TTLs, reflecting how quickly each resource class
// goes stale.
//
// Backends:
//   - [Memory]: capacity-bounded in-memory store, the default for the library
//     and the dashboard server
//   - [File]: file-based store for CLI invocations, where an in-process cache
//     would not survive between runs
//   - [Redis]: Redis-backed store for multi-instance server deployments
//   - [Null]: no-op store for tests and --no-cache runs
package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that require a cached value.
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned when operating on a closed cache.
	ErrClosed = errors.New("cache closed")
)

// Cache is the interface shared by all cache backends.
//
// Values are raw bytes; callers JSON-marshal their domain types. Get reports
// (data, found, error): an expired or missing entry is a miss, never an error.
// A ttl of 0 on Set means the backend's default TTL.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
