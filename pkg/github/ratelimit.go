package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mkessler/repolens/pkg/cache"
)

// approachingFraction marks the quota as nearly exhausted once the
// remaining budget drops under this share of the hourly limit.
const approachingFraction = 0.1

// RateLimitTracker keeps the most recently observed quota state. Every
// API response carries rate-limit headers, so the tracker is usually
// current without a dedicated call; explicit snapshots go through a
// short-lived cache so status polling stays free.
type RateLimitTracker struct {
	mu   sync.RWMutex
	last *RateLimitSnapshot

	view *cache.Scoped
}

// NewRateLimitTracker creates a tracker backed by the given cache view.
func NewRateLimitTracker(view *cache.Scoped) *RateLimitTracker {
	return &RateLimitTracker{view: view}
}

// Observe records quota headers from an API response. Responses without
// rate-limit headers are ignored.
func (t *RateLimitTracker) Observe(h http.Header, authenticated bool) {
	limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if err != nil {
		return
	}
	remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}

	t.mu.Lock()
	t.last = &RateLimitSnapshot{
		Limit:         limit,
		Remaining:     remaining,
		ResetAt:       reset,
		Authenticated: authenticated,
	}
	t.mu.Unlock()
}

// Last returns the most recently observed snapshot, or nil when no
// response has been seen yet.
func (t *RateLimitTracker) Last() *RateLimitSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return nil
	}
	s := *t.last
	return &s
}

// UntilReset returns the remaining wait until the quota window resets,
// or -1 when no reset time has been observed.
func (t *RateLimitTracker) UntilReset(now time.Time) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return -1
	}
	d := time.Unix(t.last.ResetAt, 0).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ApproachingLimit reports whether s has under 10% of its budget left.
func (s *RateLimitSnapshot) ApproachingLimit() bool {
	if s == nil || s.Limit <= 0 {
		return false
	}
	return float64(s.Remaining) < float64(s.Limit)*approachingFraction
}

// SecondsToReset returns the whole seconds until the window resets,
// clamped at zero.
func (s *RateLimitSnapshot) SecondsToReset(now time.Time) int {
	if s == nil {
		return 0
	}
	d := time.Unix(s.ResetAt, 0).Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// RateLimit returns the current core quota snapshot, serving from cache
// for a short window to keep status polling off the budget. The query
// endpoint itself does not count against the quota.
func (c *Client) RateLimit(ctx context.Context) (*RateLimitSnapshot, error) {
	var snap RateLimitSnapshot
	err := c.cached(ctx, c.limits.view, "rate-limit", "rate-limit", &snap, func(ctx context.Context) (any, error) {
		var raw apiRateLimitResponse
		if err := c.getJSON(ctx, "/rate_limit", &raw); err != nil {
			return nil, err
		}
		s := RateLimitSnapshot{
			Limit:         raw.Resources.Core.Limit,
			Remaining:     raw.Resources.Core.Remaining,
			ResetAt:       raw.Resources.Core.Reset,
			Authenticated: c.creds.IsAuthenticated(),
		}
		c.limits.mu.Lock()
		c.limits.last = &s
		c.limits.mu.Unlock()
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// LastRateLimit returns the quota snapshot most recently observed on any
// response, without a network call. Nil before the first request.
func (c *Client) LastRateLimit() *RateLimitSnapshot {
	return c.limits.Last()
}

// InvalidateRateLimit drops the cached quota snapshot so the next query
// hits the API. Used after a credential change, since the quota is per
// credential.
func (c *Client) InvalidateRateLimit(ctx context.Context) {
	_ = c.limits.view.Delete(ctx, "rate-limit")
	c.limits.mu.Lock()
	c.limits.last = nil
	c.limits.mu.Unlock()
}
