package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnHit(ctx, "repo-details:octo/demo")
	c.OnMiss(ctx, "repo-contents:octo/demo:src")
	c.OnSet(ctx, "rate-limit", 128)
	c.OnEvict(ctx, "repo-details:octo/demo", "capacity")

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.github.com", "/repos/octo/demo")
	h.OnResponse(ctx, "GET", "api.github.com", "/repos/octo/demo", 200, time.Second)
	h.OnRateLimited(ctx, "api.github.com", "/repos/octo/demo", 30*time.Second)
	h.OnError(ctx, "GET", "api.github.com", "/repos/octo/demo", nil)

	// Fetch hooks
	f := NoopFetchHooks{}
	f.OnFetchStart(ctx, "repo-details", "repo-details:octo/demo")
	f.OnFetchComplete(ctx, "repo-details", "repo-details:octo/demo", true, time.Second, nil)
	f.OnRetry(ctx, "commit-activity", 1, 3*time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Fetch() should return NoopFetchHooks by default")
	}

	// Set custom hooks
	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	customFetch := &testFetchHooks{}
	SetFetchHooks(customFetch)
	if Fetch() != customFetch {
		t.Error("SetFetchHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)

	// Setting nil should be ignored
	SetCacheHooks(nil)

	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testFetchHooks struct{ NoopFetchHooks }
