package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.metadataTTL() != 10*time.Minute {
		t.Errorf("metadataTTL = %v, want 10m", cfg.metadataTTL())
	}
	if cfg.contentTTL() != 30*time.Minute {
		t.Errorf("contentTTL = %v, want 30m", cfg.contentTTL())
	}
	if cfg.ServerAddr != "localhost:8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := `
token = "ghp_fromconfig"
metadata_ttl_minutes = 5
server_addr = "0.0.0.0:9090"
redis_addr = "localhost:6379"
tree_dir_limit = 10
`
	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Token != "ghp_fromconfig" {
		t.Errorf("Token = %q", cfg.Token)
	}
	if cfg.metadataTTL() != 5*time.Minute {
		t.Errorf("metadataTTL = %v, want 5m", cfg.metadataTTL())
	}
	if cfg.contentTTL() != 30*time.Minute {
		t.Errorf("contentTTL should keep its default, got %v", cfg.contentTTL())
	}
	if cfg.ServerAddr != "0.0.0.0:9090" || cfg.RedisAddr != "localhost:6379" || cfg.TreeDirLimit != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte("token = [broken"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Fatal("malformed config should be an error, not silently ignored")
	}
}

func TestCacheDirUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if got != filepath.Join(dir, appName) {
		t.Errorf("cacheDir = %q", got)
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	got, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, appName) {
		t.Errorf("cacheDir = %q, want ~/.cache/%s", got, appName)
	}
}

func TestConfigDirUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := configDir()
	if err != nil {
		t.Fatalf("configDir: %v", err)
	}
	if got != filepath.Join(dir, appName) {
		t.Errorf("configDir = %q", got)
	}
}
