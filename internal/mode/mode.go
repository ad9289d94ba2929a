// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mode

import (
	"errors"
	"sync"
)

// =============================================================================
// MODES
// =============================================================================

// Mode is the operation mode. Exactly one is active at a time.
type Mode string

const (
	// ModeOnline talks to the configured service for every action
	ModeOnline Mode = "online"

	// ModeOffline never touches the network; local cache only
	ModeOffline Mode = "offline"

	// ModeManual simulates processing locally under user control
	ModeManual Mode = "manual"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeOnline, ModeOffline, ModeManual:
		return true
	}
	return false
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrQueryBlocked is returned when a query is attempted in online mode
	// without authentication.
	ErrQueryBlocked = errors.New("sign in to query documents in online mode")

	// ErrUploadBlockedOffline is returned when an upload is attempted in
	// offline mode.
	ErrUploadBlockedOffline = errors.New("document upload is disabled in offline mode")

	// ErrUploadBlockedUnauthenticated is returned when an online upload is
	// attempted without authentication.
	ErrUploadBlockedUnauthenticated = errors.New("sign in to upload documents in online mode")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the current mode behind an RWMutex and notifies
// subscribers on change. The TUI event loop is single-threaded, but
// background upload and query tasks read the mode from their goroutines.
type Controller struct {
	mu          sync.RWMutex
	current     Mode
	subscribers []func(Mode)
}

// NewController creates a controller starting in online mode.
func NewController() *Controller {
	return &Controller{current: ModeOnline}
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set replaces the active mode and notifies subscribers. Setting the same
// mode again still notifies, matching the reset-on-select behavior of the
// mode picker. Invalid modes are ignored.
func (c *Controller) Set(m Mode) {
	if !m.Valid() {
		return
	}

	c.mu.Lock()
	c.current = m
	subs := make([]func(Mode), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	// Callbacks run outside the lock; they typically reset the
	// conversation and recompute document visibility.
	for _, fn := range subs {
		fn(m)
	}
}

// Subscribe registers a callback invoked after every Set.
func (c *Controller) Subscribe(fn func(Mode)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// =============================================================================
// GATING RULES
// =============================================================================

// CheckQueryAllowed returns an error when query submission is blocked.
// Queries are blocked only in online mode without authentication; offline
// and manual modes answer locally.
func (c *Controller) CheckQueryAllowed(authenticated bool) error {
	if c.Current() == ModeOnline && !authenticated {
		return ErrQueryBlocked
	}
	return nil
}

// CheckUploadAllowed returns an error when upload is blocked. Uploads are
// blocked in offline mode always, and in online mode without
// authentication.
func (c *Controller) CheckUploadAllowed(authenticated bool) error {
	switch c.Current() {
	case ModeOffline:
		return ErrUploadBlockedOffline
	case ModeOnline:
		if !authenticated {
			return ErrUploadBlockedUnauthenticated
		}
	}
	return nil
}

// RemoteDeleteAllowed reports whether a delete should also be attempted
// against the service. Local removal always happens regardless.
func (c *Controller) RemoteDeleteAllowed(authenticated bool) bool {
	return c.Current() == ModeOnline && authenticated
}

// ShowPipeline reports whether the processing-pipeline status strip is
// visible. Only manual mode exposes the pipeline stages.
func (c *Controller) ShowPipeline() bool {
	return c.Current() == ModeManual
}
