package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFile_GetSet(t *testing.T) {
	c, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() failed: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"simple", "repo:octo/demo", `{"stars":42}`},
		{"path key", "contents:octo/demo:src/main.go", "package main"},
		{"slashes and colons", "file:octo/demo:a/b/c.txt", "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.key, []byte(tt.value), time.Hour); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}

			data, ok, err := c.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if !ok {
				t.Fatal("Get() returned false for existing key")
			}
			if string(data) != tt.value {
				t.Errorf("Get() = %q, want %q", data, tt.value)
			}
		})
	}
}

func TestFile_Miss(t *testing.T) {
	c, _ := NewFile(t.TempDir())

	_, ok, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("Get() returned true for missing key")
	}
}

func TestFile_Expiration(t *testing.T) {
	c, _ := NewFile(t.TempDir())
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Fatal("Get() = miss before expiry, want hit")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get() = hit after expiry, want miss")
	}
}

func TestFile_ZeroTTLNeverExpires(t *testing.T) {
	c, _ := NewFile(t.TempDir())
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Error("zero-TTL entry reported as miss")
	}
}

func TestFile_Delete(t *testing.T) {
	c, _ := NewFile(t.TempDir())
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), time.Hour)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get() = hit after Delete")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestFile_CorruptEntryTreatedAsMiss(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFile(dir)
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"), time.Hour)

	// Corrupt the entry on disk.
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		return os.WriteFile(path, []byte("not json"), 0o644)
	})
	if err != nil {
		t.Fatalf("corrupting cache dir: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get() = hit for corrupt entry, want miss")
	}
}
