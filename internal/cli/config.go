package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user-tunable settings, loaded from
// ~/.config/repolens/config.toml when present. Every field has a working
// default so the file is optional.
type Config struct {
	// Token is a GitHub access token. The token file written by
	// `repolens auth login` takes precedence; this field exists for users
	// who prefer a single config file.
	Token string `toml:"token"`

	// CacheDir overrides the on-disk cache location.
	CacheDir string `toml:"cache_dir"`

	// Cache TTLs, in minutes.
	MetadataTTLMinutes int `toml:"metadata_ttl_minutes"`
	ContentTTLMinutes  int `toml:"content_ttl_minutes"`

	// RedisAddr switches the cache backend from local files to Redis,
	// for running several dashboard instances against one cache.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// ServerAddr is the default listen address for `repolens serve`.
	ServerAddr string `toml:"server_addr"`

	// TreeDirLimit caps expanded directories per tree level.
	TreeDirLimit int `toml:"tree_dir_limit"`
}

func defaultConfig() Config {
	return Config{
		MetadataTTLMinutes: 10,
		ContentTTLMinutes:  30,
		ServerAddr:         "localhost:8080",
	}
}

// loadConfig reads the config file, falling back to defaults when the file
// is absent. A malformed file is an error.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	dir, err := configDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) metadataTTL() time.Duration {
	return time.Duration(c.MetadataTTLMinutes) * time.Minute
}

func (c Config) contentTTL() time.Duration {
	return time.Duration(c.ContentTTLMinutes) * time.Minute
}

// configDir returns the config directory using the XDG convention
// (~/.config/repolens/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
