// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/docquery-tui/internal/storage"
)

// fakeAuth is a canned Authenticator.
type fakeAuth struct {
	token     string
	signinErr error
	signupErr error

	signinCalls int
	signupCalls int
}

func (f *fakeAuth) Signin(_ context.Context, _, _ string) (string, error) {
	f.signinCalls++
	return f.token, f.signinErr
}

func (f *fakeAuth) Signup(_ context.Context, _, _ string) error {
	f.signupCalls++
	return f.signupErr
}

func newTestManager(t *testing.T, auth *fakeAuth) (*Manager, storage.Store) {
	t.Helper()
	kv, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return NewManager(kv, auth), kv
}

func TestLogin(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{token: "tok-1"})

	if m.Authenticated() {
		t.Error("new manager should be signed out")
	}

	if err := m.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !m.Authenticated() {
		t.Error("manager should be authenticated after login")
	}
	if m.Username() != "alice" {
		t.Errorf("Username = %q, want alice", m.Username())
	}
	if m.Token() != "tok-1" {
		t.Errorf("Token = %q, want tok-1", m.Token())
	}

	// Session is persisted
	if _, err := kv.Get(storage.KeyUser); err != nil {
		t.Errorf("login should persist the user record: %v", err)
	}
}

func TestLogin_FailureLeavesStateUntouched(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{signinErr: errors.New("bad credentials")})

	if err := m.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("Login should propagate the auth error")
	}
	if m.Authenticated() {
		t.Error("failed login must not authenticate")
	}
	if _, err := kv.Get(storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Error("failed login must not persist anything")
	}
}

func TestSignup_DoesNotAuthenticate(t *testing.T) {
	auth := &fakeAuth{}
	m, _ := newTestManager(t, auth)

	if err := m.Signup(context.Background(), "bob", "pw"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if auth.signupCalls != 1 {
		t.Errorf("signup calls = %d, want 1", auth.signupCalls)
	}
	if m.Authenticated() {
		t.Error("signup must not sign the user in")
	}
}

func TestLogout(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{token: "tok-1"})

	m.Login(context.Background(), "alice", "pw")
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if m.Authenticated() {
		t.Error("manager should be signed out after logout")
	}
	if m.Token() != "" {
		t.Error("token should be cleared")
	}
	if _, err := kv.Get(storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Error("logout should remove the persisted record")
	}
}

func TestRestore(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{token: "tok-1"})
	m.Login(context.Background(), "alice", "pw")

	// A fresh manager over the same kv picks the session up.
	m2 := NewManager(kv, &fakeAuth{})
	m2.Restore()
	if !m2.Authenticated() {
		t.Fatal("restore should recover the persisted session")
	}
	if m2.Username() != "alice" || m2.Token() != "tok-1" {
		t.Errorf("restored user = %q/%q", m2.Username(), m2.Token())
	}
}

func TestRestore_CorruptRecord(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{})

	kv.Set(storage.KeyUser, []byte("not json"))
	m.Restore()
	if m.Authenticated() {
		t.Error("corrupt record should leave the session signed out")
	}
	if _, err := kv.Get(storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Error("corrupt record should be cleared")
	}
}

func TestRestore_MissingTokenIsSignedOut(t *testing.T) {
	m, kv := newTestManager(t, &fakeAuth{})

	kv.Set(storage.KeyUser, []byte(`{"username":"alice"}`))
	m.Restore()
	if m.Authenticated() {
		t.Error("a record without a token is not an authenticated session")
	}
}
