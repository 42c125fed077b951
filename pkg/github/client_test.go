package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkessler/repolens/pkg/cache"
	apperr "github.com/mkessler/repolens/pkg/errors"
)

// newTestClient wires a client against a local test server with retry
// delays collapsed so failure paths run in microseconds.
func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	opts.HTTPClient = srv.Client()
	if opts.Store == nil {
		opts.Store = cache.NewMemory(time.Minute, 100)
	}
	c := New(opts)
	c.retryBase = time.Millisecond
	c.statsDelay = time.Millisecond
	return c
}

func repoJSON() string {
	return `{
		"name": "go",
		"full_name": "golang/go",
		"description": "The Go programming language",
		"owner": {"login": "golang"},
		"stargazers_count": 120000,
		"forks_count": 17000,
		"watchers_count": 120000,
		"license": {"spdx_id": "BSD-3-Clause"},
		"language": "Go",
		"html_url": "https://github.com/golang/go",
		"default_branch": "master",
		"size": 350000,
		"open_issues_count": 9000
	}`
}

func TestRepoDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/golang/go" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, repoJSON())
	}), Options{})

	details, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}
	if details.FullName != "golang/go" {
		t.Errorf("FullName = %q, want golang/go", details.FullName)
	}
	if details.Stars != 120000 {
		t.Errorf("Stars = %d, want 120000", details.Stars)
	}
	if details.License != "BSD-3-Clause" {
		t.Errorf("License = %q, want BSD-3-Clause", details.License)
	}
	if details.PrimaryLanguage != "Go" {
		t.Errorf("PrimaryLanguage = %q, want Go", details.PrimaryLanguage)
	}
}

func TestRepoDetails_InvalidRef(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for an invalid ref")
	}), Options{})

	_, err := c.RepoDetails(context.Background(), RepoRef{Owner: "-bad", Name: "go"})
	if !apperr.Is(err, apperr.ErrCodeInvalidRepoRef) {
		t.Fatalf("error = %v, want INVALID_REPO_REF", err)
	}
}

func TestRepoDetails_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}), Options{})

	_, err := c.RepoDetails(context.Background(), RepoRef{Owner: "nobody", Name: "nothing"})
	if !apperr.Is(err, apperr.ErrCodeRepoNotFound) {
		t.Fatalf("error = %v, want REPO_NOT_FOUND", err)
	}
}

func TestRepoDetails_ServedFromCacheWithinTTL(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, repoJSON())
	}), Options{})

	ctx := context.Background()
	ref := RepoRef{Owner: "golang", Name: "go"}
	for i := 0; i < 3; i++ {
		if _, err := c.RepoDetails(ctx, ref); err != nil {
			t.Fatalf("RepoDetails call %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestRepoDetails_ConcurrentCallsShareOneFetch(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		fmt.Fprint(w, repoJSON())
	}), Options{})

	ctx := context.Background()
	ref := RepoRef{Owner: "golang", Name: "go"}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.RepoDetails(ctx, ref); err != nil {
				t.Errorf("RepoDetails: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestRateLimitedRetriesTwiceThenSurfaces(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Unix()))
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}), Options{})

	_, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if !apperr.Is(err, apperr.ErrCodeRateLimited) {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d requests, want 3 (initial call plus two retries)", got)
	}
}

func TestRateLimitedDistantResetFailsImmediately(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}), Options{})

	_, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if !apperr.Is(err, apperr.ErrCodeRateLimited) {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d requests, want 1 (reset too far to wait for)", got)
	}
}

func TestRateLimitedUnauthenticatedSuggestsToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}), Options{})

	_, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if err == nil {
		t.Fatal("expected rate limited error")
	}
	if msg := apperr.UserMessage(err); !strings.Contains(msg, "token") {
		t.Errorf("unauthenticated rate-limit message should suggest a token, got %q", msg)
	}
}

func TestServerErrorRetriedWithBackoff(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "oops", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, repoJSON())
	}), Options{})

	details, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}
	if details.Name != "go" {
		t.Errorf("Name = %q, want go", details.Name)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestTokenSentAndSwappable(t *testing.T) {
	var lastAuth atomic.Value
	lastAuth.Store("")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		fmt.Fprint(w, repoJSON())
	}), Options{})

	ctx := context.Background()
	if _, err := c.RepoDetails(ctx, RepoRef{Owner: "golang", Name: "go"}); err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}
	if got := lastAuth.Load().(string); got != "" {
		t.Errorf("unauthenticated request carried Authorization %q", got)
	}

	if _, err := c.Credentials().SetToken("ghp_testtoken"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if _, err := c.RepoDetails(ctx, RepoRef{Owner: "golang", Name: "other"}); err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}
	if got := lastAuth.Load().(string); got != "Bearer ghp_testtoken" {
		t.Errorf("Authorization = %q, want Bearer ghp_testtoken", got)
	}
}

func TestContributors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"login": "alice", "id": 1, "avatar_url": "https://a", "html_url": "https://gh/alice", "contributions": 50, "type": "User"},
			{"login": "ci-bot", "id": 2, "contributions": 900, "type": "Bot"},
			{"login": "bob", "id": 3, "avatar_url": "https://b", "html_url": "https://gh/bob", "contributions": 20, "type": "User"}
		]`)
	}), Options{})

	contributors, err := c.Contributors(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if len(contributors) != 2 {
		t.Fatalf("got %d contributors, want 2 (bot filtered)", len(contributors))
	}
	if contributors[0].Login != "alice" || contributors[1].Login != "bob" {
		t.Errorf("unexpected contributors %v", contributors)
	}
}

func TestContributors_DegradesToEmptyOnFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}), Options{})

	contributors, err := c.Contributors(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if err != nil {
		t.Fatalf("Contributors should degrade, got %v", err)
	}
	if contributors == nil || len(contributors) != 0 {
		t.Errorf("got %v, want empty non-nil slice", contributors)
	}
}

func TestContributors_RateLimitStillPropagates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}), Options{})

	_, err := c.Contributors(context.Background(), RepoRef{Owner: "golang", Name: "go"})
	if !apperr.Is(err, apperr.ErrCodeRateLimited) {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
}

func TestRateLimitSnapshot(t *testing.T) {
	reset := time.Now().Add(20 * time.Minute).Unix()
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rate_limit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"resources": {"core": {"limit": 5000, "remaining": 4990, "reset": %d}}}`, reset)
	}), Options{})

	ctx := context.Background()
	snap, err := c.RateLimit(ctx)
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	if snap.Limit != 5000 || snap.Remaining != 4990 || snap.ResetAt != reset {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.ApproachingLimit() {
		t.Error("4990/5000 should not be approaching the limit")
	}

	// Second query within the snapshot TTL must not hit the API.
	if _, err := c.RateLimit(ctx); err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestApproachingLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		remaining int
		want      bool
	}{
		{"well under", 5000, 4000, false},
		{"exactly 10 percent", 5000, 500, false},
		{"just under 10 percent", 5000, 499, true},
		{"exhausted", 60, 0, true},
		{"zero limit", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &RateLimitSnapshot{Limit: tt.limit, Remaining: tt.remaining}
			if got := s.ApproachingLimit(); got != tt.want {
				t.Errorf("ApproachingLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerObservesHeaders(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "123")
		w.Header().Set("X-RateLimit-Reset", "1900000000")
		fmt.Fprint(w, repoJSON())
	}), Options{})

	if _, err := c.RepoDetails(context.Background(), RepoRef{Owner: "golang", Name: "go"}); err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}

	last := c.limits.Last()
	if last == nil {
		t.Fatal("tracker should have observed the response headers")
	}
	if last.Limit != 5000 || last.Remaining != 123 || last.ResetAt != 1900000000 {
		t.Errorf("observed snapshot = %+v", last)
	}
}
