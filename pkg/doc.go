// Package pkg provides the core libraries for the Repolens repository
// dashboard.
//
// # Overview
//
// Repolens fetches repository metadata, contributor statistics, commit
// activity, and file contents from the GitHub REST API, with aggressive
// caching and rate-limit awareness so that browsing a repository stays
// within the API quota. The pkg directory is organized as:
//
//  1. [github] - GitHub API client (fetching, caching, rate limiting)
//  2. [cache] - Cache backends (memory, file, Redis) and scoped TTL views
//  3. [stats] - Derived metrics over activity and contributor data
//  4. [errors] - Error taxonomy shared across layers
//  5. [httputil] - Retry helpers for transient and rate-limited requests
//  6. [observability] - Hook points for cache, HTTP, and fetch events
//
// # Architecture
//
// The typical data flow:
//
//	GitHub REST API
//	         ↓
//	github.Client (retry, rate-limit tracking, request coalescing)
//	         ↓
//	cache.Scoped views (metadata / content / rate-limit TTL classes)
//	         ↓
//	stats.Calculate, CLI rendering, HTTP API handlers
//
// Consumers construct a [github.Client] with a [cache.Cache] backend and
// call its typed fetch methods; everything below that line is handled
// internally.
package pkg
