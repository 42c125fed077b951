package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mkessler/repolens/pkg/cache"
	apperr "github.com/mkessler/repolens/pkg/errors"
	"github.com/mkessler/repolens/pkg/httputil"
	"github.com/mkessler/repolens/pkg/observability"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptJSON     = "application/vnd.github.v3+json"

	// Default TTLs per resource class. Rate-limit windows roll hourly,
	// repository metadata drifts within minutes, file content rarely
	// changes within a session.
	defaultMetadataTTL  = 10 * time.Minute
	defaultContentTTL   = 30 * time.Minute
	defaultRateLimitTTL = 30 * time.Second

	// rateLimitAttempts bounds a fetch at the initial call plus two
	// retries when the provider rejects with a near reset.
	rateLimitAttempts = 3

	// defaultMaxRetryWait is the longest reset delay worth sleeping
	// through; beyond it the RateLimited error surfaces immediately.
	defaultMaxRetryWait = 30 * time.Second

	defaultTreeDirLimit = 25
	httpTimeout         = 30 * time.Second
)

// Options configures a Client. The zero value of every field has a usable
// default.
type Options struct {
	// BaseURL overrides the GitHub API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client

	// Store is the backing cache shared by all resource classes.
	// Defaults to an in-memory store.
	Store cache.Cache

	// Credentials supplies the active token. Defaults to a fresh
	// unauthenticated manager.
	Credentials *CredentialManager

	// Per-class TTL overrides.
	MetadataTTL  time.Duration
	ContentTTL   time.Duration
	RateLimitTTL time.Duration

	// MaxRetryWait bounds how long a rate-limited call will sleep for the
	// quota window to reset before giving up.
	MaxRetryWait time.Duration

	// StatsRetryDelay is the wait between retries while GitHub computes
	// the commit-activity statistic.
	StatsRetryDelay time.Duration

	// TreeDirLimit caps how many sibling directories a tree build expands
	// per level.
	TreeDirLimit int
}

// Client is a cache-aware GitHub API client. All fetchers share one backing
// store, one credential manager, and one rate-limit tracker; concurrent
// fetches for the same cache key share a single network call.
type Client struct {
	http    *http.Client
	baseURL string
	creds   *CredentialManager
	limits  *RateLimitTracker

	meta    *cache.Scoped
	content *cache.Scoped

	group singleflight.Group

	maxRetryWait time.Duration
	retryBase    time.Duration
	statsDelay   time.Duration
	treeDirLimit int
}

// New creates a Client from opts.
func New(opts Options) *Client {
	store := opts.Store
	if store == nil {
		store = cache.NewMemory(defaultMetadataTTL, 1000)
	}
	creds := opts.Credentials
	if creds == nil {
		creds = NewCredentialManager("")
	}

	metaTTL := opts.MetadataTTL
	if metaTTL <= 0 {
		metaTTL = defaultMetadataTTL
	}
	contentTTL := opts.ContentTTL
	if contentTTL <= 0 {
		contentTTL = defaultContentTTL
	}
	rateTTL := opts.RateLimitTTL
	if rateTTL <= 0 {
		rateTTL = defaultRateLimitTTL
	}
	maxWait := opts.MaxRetryWait
	if maxWait <= 0 {
		maxWait = defaultMaxRetryWait
	}
	statsDelay := opts.StatsRetryDelay
	if statsDelay <= 0 {
		statsDelay = 3 * time.Second
	}
	dirLimit := opts.TreeDirLimit
	if dirLimit <= 0 {
		dirLimit = defaultTreeDirLimit
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}

	return &Client{
		http:         httpClient,
		baseURL:      baseURL,
		creds:        creds,
		limits:       NewRateLimitTracker(cache.NewScoped(store, "ratelimit:", rateTTL)),
		meta:         cache.NewScoped(store, "meta:", metaTTL),
		content:      cache.NewScoped(store, "content:", contentTTL),
		maxRetryWait: maxWait,
		retryBase:    time.Second,
		statsDelay:   statsDelay,
		treeDirLimit: dirLimit,
	}
}

// Credentials returns the credential manager all calls consult.
func (c *Client) Credentials() *CredentialManager { return c.creds }

// doRequest issues one GET and returns the raw body. The active credential
// is read per attempt, so a runtime token swap affects the next call, never
// one already in flight. Rate-limit headers are observed on every response.
func (c *Client) doRequest(ctx context.Context, path, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.ErrCodeInternal, err, "create request")
	}
	req.Header.Set("Accept", accept)
	authenticated := false
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
		authenticated = true
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &httputil.RetryableError{Err: apperr.Wrap(apperr.ErrCodeFetchFailed, err, "request GitHub API")}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	c.limits.Observe(resp.Header, authenticated)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &httputil.RetryableError{Err: apperr.Wrap(apperr.ErrCodeFetchFailed, err, "read response")}
	}

	if err := c.checkStatus(ctx, resp, path); err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// checkStatus maps provider status codes onto the domain error taxonomy.
func (c *Client) checkStatus(ctx context.Context, resp *http.Response, path string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusAccepted:
		// GitHub computes some statistics asynchronously; the caller
		// decides whether 202 is worth waiting for.
		return apperr.Wrap(apperr.ErrCodeStillComputing,
			&apperr.StillComputingError{Resource: path},
			"GitHub is still computing this statistic; try again in a few seconds")
	case code == http.StatusNotFound:
		return apperr.New(apperr.ErrCodeNotFound, "resource not found: %s", path)
	case code == http.StatusUnauthorized:
		return apperr.New(apperr.ErrCodeFetchFailed, "authentication failed; the configured token was rejected")
	case code == http.StatusForbidden || code == http.StatusTooManyRequests:
		if isRateLimitResponse(resp) {
			return c.rateLimitError(ctx, resp, path)
		}
		// Forbidden without quota involvement reads as inaccessible.
		return apperr.New(apperr.ErrCodeNotFound, "resource not accessible with the current credential: %s", path)
	case code >= 500:
		return &httputil.RetryableError{Err: apperr.New(apperr.ErrCodeFetchFailed, "GitHub API error: status %d", code)}
	default:
		return apperr.New(apperr.ErrCodeFetchFailed, "GitHub API error: status %d", code)
	}
}

// rateLimitError builds the RateLimited error for a quota rejection. When
// the window resets soon enough to be worth sleeping through, the error is
// wrapped so the retry layer waits exactly until the reset.
func (c *Client) rateLimitError(ctx context.Context, resp *http.Response, path string) error {
	resetAfter := c.limits.UntilReset(time.Now())
	observability.HTTP().OnRateLimited(ctx, resp.Request.URL.Host, path, resetAfter)

	detail := &apperr.RateLimitedError{
		RetryAfter:    int(resetAfter / time.Second),
		Authenticated: c.creds.IsAuthenticated(),
	}
	err := apperr.Wrap(apperr.ErrCodeRateLimited, detail, "%s", detail.UserMessage())

	if resetAfter >= 0 && resetAfter <= c.maxRetryWait {
		return &httputil.RetryAfterError{Err: err, After: resetAfter}
	}
	return err
}

// getJSON issues one GET and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, _, err := c.doRequest(ctx, path, acceptJSON)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.ErrCodeFetchFailed, err, "decode response")
	}
	return nil
}

// withRetry runs fn with the standard fetch retry budget: rate-limit
// rejections with a near reset and transient failures are retried, at most
// twice, before the error surfaces.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, rateLimitAttempts, c.retryBase, fn)
}

// cached runs a fetch through the cache and the single-flight group: a hit
// short-circuits without touching the network, and concurrent misses on the
// same key share one underlying fetch. On success the normalized result is
// stored with the view's class TTL.
func (c *Client) cached(ctx context.Context, view *cache.Scoped, resource, key string, v any, fetch func(ctx context.Context) (any, error)) error {
	start := time.Now()
	observability.Fetch().OnFetchStart(ctx, resource, key)

	if data, ok, _ := view.Get(ctx, key); ok {
		err := json.Unmarshal(data, v)
		observability.Fetch().OnFetchComplete(ctx, resource, key, true, time.Since(start), err)
		return err
	}

	shared, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the cache while this one
		// queued behind the flight.
		if data, ok, _ := view.Get(ctx, key); ok {
			return data, nil
		}
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "encode %s", resource)
		}
		_ = view.Set(ctx, key, data, 0)
		return data, nil
	})
	if err != nil {
		observability.Fetch().OnFetchComplete(ctx, resource, key, false, time.Since(start), err)
		return err
	}

	err = json.Unmarshal(shared.([]byte), v)
	observability.Fetch().OnFetchComplete(ctx, resource, key, false, time.Since(start), err)
	return err
}

// isRateLimitResponse reports whether a 403/429 is a quota rejection rather
// than a permission problem.
func isRateLimitResponse(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func repoPath(owner, repo string, parts ...string) string {
	p := fmt.Sprintf("/repos/%s/%s", owner, repo)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}
