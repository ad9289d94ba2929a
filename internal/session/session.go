// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jeranaias/docquery-tui/internal/storage"
)

// =============================================================================
// TYPES
// =============================================================================

// User is the persisted authenticated identity. Shape matches the
// storage.KeyUser record; the token is the bearer credential for all
// authenticated calls.
type User struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Authenticator is the slice of the service client the session needs.
// Satisfied by *api.Client.
type Authenticator interface {
	Signin(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, password string) error
}

// Manager owns the authentication state: the current user, its bearer
// token, and persistence under storage.KeyUser. It is the sole writer of
// that key.
type Manager struct {
	mu   sync.RWMutex
	user *User
	kv   storage.Store
	auth Authenticator
}

// NewManager creates a signed-out manager. Call Restore to pick up a
// persisted session.
func NewManager(kv storage.Store, auth Authenticator) *Manager {
	return &Manager{kv: kv, auth: auth}
}

// =============================================================================
// STATE
// =============================================================================

// Restore loads a previously persisted user record. A missing or
// unreadable record leaves the session signed out; restore never fails.
func (m *Manager) Restore() {
	data, err := m.kv.Get(storage.KeyUser)
	if err != nil {
		return
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil || u.Token == "" {
		// Corrupted record: treat as signed out and clear it so the next
		// restore does not retry the same bad bytes.
		m.kv.Delete(storage.KeyUser)
		return
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
}

// Authenticated reports whether a user with a token is present.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.Token != ""
}

// Username returns the signed-in username, or "" when signed out.
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.Username
}

// Token returns the current bearer token, or "" when signed out. Pass
// this method as the api.TokenSource so the client always sees the live
// session.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.Token
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Login exchanges credentials for a token and persists the session.
// On failure the current state is untouched.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.auth.Signin(ctx, username, password)
	if err != nil {
		return err
	}

	u := &User{Username: username, Token: token}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = u
	m.mu.Unlock()

	return m.kv.Set(storage.KeyUser, data)
}

// Signup registers a new account. It does not sign in: registration and
// authentication are separate steps, and the caller prompts for login
// afterwards.
func (m *Manager) Signup(ctx context.Context, username, password string) error {
	return m.auth.Signup(ctx, username, password)
}

// Logout clears the in-memory session and removes the persisted record.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	return m.kv.Delete(storage.KeyUser)
}
