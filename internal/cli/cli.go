// Package cli implements the repolens command-line interface.
//
// This package provides commands for inspecting GitHub repositories through
// the cached fetch layer: metadata, contributors, commit activity, file
// trees, and file contents, plus token management and a local API server
// for the dashboard frontend. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - repo: Show repository details and derived activity metrics
//   - contributors: List top contributors
//   - activity: Show weekly commit activity
//   - tree: Print the repository file tree
//   - file: Print a file's contents
//   - browse: Interactively explore the repository tree
//   - ratelimit: Show the current API quota
//   - auth: Manage the stored access token
//   - serve: Run the dashboard API server
//   - cache: Manage the on-disk response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/buildinfo"
	"github.com/mkessler/repolens/pkg/cache"
	"github.com/mkessler/repolens/pkg/github"
	"github.com/mkessler/repolens/pkg/observability"
)

// appName is the application name used for directories and display.
const appName = "repolens"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Repolens inspects GitHub repositories from the terminal",
		Long:         `Repolens is a CLI and dashboard backend for exploring GitHub repositories: metadata, contributors, commit activity, and file trees, fetched through a rate-limit-aware cache so repeated lookups stay fast and cheap.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.repoCommand())
	root.AddCommand(c.contributorsCommand())
	root.AddCommand(c.activityCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.fileCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.rateLimitCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newClient assembles the fetch client from config, stored token, and
// environment. Token precedence: GITHUB_TOKEN env var, then the token file
// written by `auth login`, then the config file.
func (c *CLI) newClient(ctx context.Context, noCache bool) (*github.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	observability.SetFetchHooks(logFetchHooks{logger: c.Logger})

	token := resolveToken(cfg)
	creds := github.NewCredentialManager("")
	if token != "" {
		if _, err := creds.SetToken(token); err != nil {
			c.Logger.Warn("ignoring malformed token", "err", err)
		}
	}

	return github.New(github.Options{
		Store:        store,
		Credentials:  creds,
		MetadataTTL:  cfg.metadataTTL(),
		ContentTTL:   cfg.contentTTL(),
		TreeDirLimit: cfg.TreeDirLimit,
	}), nil
}

func resolveToken(cfg Config) string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	if store, err := newTokenStore(); err == nil {
		if token, _, err := store.Load(); err == nil && token != "" {
			return token
		}
	}
	return cfg.Token
}

func newTokenStore() (*github.TokenStore, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return github.NewTokenStore(dir)
}

// newStore picks the cache backend: Redis when configured, the file cache
// otherwise, and the null cache with --no-cache or when no directory is
// writable.
func newStore(ctx context.Context, cfg Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNull(), nil
	}
	if cfg.RedisAddr != "" {
		return cache.NewRedis(ctx, cache.RedisConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			DefaultTTL: cfg.metadataTTL(),
		})
	}

	dir := cfg.CacheDir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNull(), nil
		}
	}
	return cache.NewFile(dir)
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/repolens/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// logFetchHooks surfaces fetch lifecycle events at debug level, so --verbose
// shows cache misses, retry waits, and the commit-stats fallback kicking in.
type logFetchHooks struct {
	observability.NoopFetchHooks
	logger *log.Logger
}

func (h logFetchHooks) OnFetchComplete(_ context.Context, resource, key string, fromCache bool, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "resource", resource, "key", key, "err", err)
		return
	}
	h.logger.Debug("fetch complete", "resource", resource, "cached", fromCache, "duration", duration)
}

func (h logFetchHooks) OnRetry(_ context.Context, resource string, attempt int, delay time.Duration) {
	h.logger.Debug("retrying fetch", "resource", resource, "attempt", attempt, "delay", delay)
}

// parseRef accepts either "owner/repo" or a full GitHub URL.
func parseRef(arg string) (github.RepoRef, error) {
	if ref, err := github.ParseRepoURL(arg); err == nil {
		return ref, nil
	}
	return github.ParseRepoRef(arg)
}

// warnIfNearLimit prints a quota warning after a command when the tracker
// has seen the remaining budget drop under 10%.
func warnIfNearLimit(client *github.Client) {
	snap := client.LastRateLimit()
	if snap == nil || !snap.ApproachingLimit() {
		return
	}
	printWarning("API quota low: %d of %d requests remaining (resets in %ds)",
		snap.Remaining, snap.Limit, snap.SecondsToReset(time.Now()))
	if !snap.Authenticated {
		printDetail("run `%s auth login` to raise the limit to 5,000 requests/hour", appName)
	}
}
