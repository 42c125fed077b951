// Package github provides a cache-aware, rate-limit-aware client for the
// GitHub REST API.
//
// # Overview
//
// GitHub enforces a strict shared hourly quota: 60 requests unauthenticated,
// 5,000 with a token. This package keeps repolens usable despite that quota
// by caching aggressively, retrying safely, and degrading gracefully when
// the quota is exhausted.
//
// Every resource fetcher follows the same shape:
//
//  1. Compute a cache key from the resource kind and identity.
//  2. Cache hit: return immediately, no network call.
//  3. Cache miss: classify the path (where applicable) and short-circuit
//     content that would be discarded anyway.
//  4. Issue the call with the currently active credential.
//  5. On success: normalize into the domain shape, store with the resource
//     class TTL, return.
//  6. On a rate-limit rejection: retry after the reset when it is near
//     (max 2 retries), otherwise surface a RateLimited error whose message
//     depends on the authentication state.
//  7. Listing operations degrade to empty collections on not-found and
//     transport failures; single-resource operations propagate.
//
// Concurrent identical fetches are de-duplicated: callers racing on the same
// cache key share one in-flight request instead of both spending quota.
//
// # Usage
//
//	creds := github.NewCredentialManager("")
//	client := github.New(github.Options{
//	    Store:       cache.NewMemory(10*time.Minute, 500),
//	    Credentials: creds,
//	})
//
//	details, err := client.RepoDetails(ctx, "octocat", "hello-world")
//
// Swapping the credential takes effect for all subsequent calls:
//
//	creds.SetToken("ghp_...")
package github
