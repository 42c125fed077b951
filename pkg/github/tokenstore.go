package github

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenStore persists a single access token to disk for CLI use. The core
// client never touches it; the CLI loads the token at startup and hands it
// to the CredentialManager.
//
// The token file lives in a 0700 directory and is written 0600, since it
// grants API access on the holder's behalf.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// storedToken is the on-disk shape. SavedAt is informational, shown by
// status commands.
type storedToken struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// NewTokenStore creates a token store rooted at baseDir. An empty baseDir
// defaults to ~/.config/repolens.
func NewTokenStore(baseDir string) (*TokenStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "repolens")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &TokenStore{path: filepath.Join(baseDir, "token.json")}, nil
}

// Save validates and writes the token.
func (s *TokenStore) Save(token string) error {
	if err := ValidateToken(token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(storedToken{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Load returns the stored token and when it was saved. A missing or
// unreadable file returns an empty token without error; a corrupt file is
// removed.
func (s *TokenStore) Load() (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, fmt.Errorf("read token file: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		os.Remove(s.path)
		return "", time.Time{}, nil
	}
	return stored.Token, stored.SavedAt, nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Path returns the token file location.
func (s *TokenStore) Path() string { return s.path }
