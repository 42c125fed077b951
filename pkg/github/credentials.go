package github

import "sync"

// CredentialManager holds the process-wide access token.
//
// At most one credential is active at a time; absence is a valid state
// (unauthenticated, 60 requests/hour). The credential is swappable at
// runtime and every swap affects all subsequent calls immediately — a call
// already in flight completes with whichever token was active when it was
// issued. The manager never persists the token itself.
type CredentialManager struct {
	mu    sync.RWMutex
	token string
}

// NewCredentialManager creates a credential manager. An empty token starts
// the process unauthenticated.
func NewCredentialManager(token string) *CredentialManager {
	return &CredentialManager{token: token}
}

// SetToken validates and installs a new credential, replacing any active
// one. Returns whether the process is now authenticated.
func (m *CredentialManager) SetToken(token string) (bool, error) {
	if err := ValidateToken(token); err != nil {
		return m.IsAuthenticated(), err
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return true, nil
}

// ClearToken removes the active credential, returning to the unauthenticated
// quota.
func (m *CredentialManager) ClearToken() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// Token returns the active credential, if any.
func (m *CredentialManager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// IsAuthenticated reports whether a credential is currently set. It says
// nothing about validity; that is only known after a call succeeds or fails.
func (m *CredentialManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}
