// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jeranaias/docquery-tui/internal/storage"
)

// =============================================================================
// RUNTIME STORE
// =============================================================================

// Store is the runtime endpoint-configuration store. It starts with
// defaults (layered with the file config) and loads persisted overrides
// asynchronously from the kv store under storage.KeyAPIConfig.
//
// RELIABILITY: Loaded() stays false until the persisted state has actually
// been read. Online network actions must wait for it; firing a request
// while defaults are still provisional would race the load and target the
// wrong endpoint.
type Store struct {
	mu     sync.RWMutex
	cfg    *Config
	loaded bool
	kv     storage.Store
}

// NewStore creates a runtime store seeded with base (file config layered
// over defaults). Call Load to pull persisted overrides.
func NewStore(kv storage.Store, base *Config) *Store {
	if base == nil {
		base = Default()
	}
	base.fillDefaults()
	return &Store{cfg: base, kv: kv}
}

// Load reads the persisted runtime config and merges it over the seed.
// Unparsable or missing persisted state degrades to the seed; either way
// the store is marked loaded afterwards. Never fatal.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(storage.KeyAPIConfig)
	if err == nil {
		var persisted Config
		if jsonErr := json.Unmarshal(data, &persisted); jsonErr == nil {
			persisted.Storage = s.cfg.Storage
			persisted.fillDefaults()
			if persisted.Validate() == nil {
				s.cfg = &persisted
			}
		}
		// Corrupt state falls through to the seed config.
	}
	s.loaded = true
}

// Loaded reports whether the persisted config has been read.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// FullURL returns the full URL for the named endpoint.
func (s *Store) FullURL(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.FullURL(name)
}

// Update replaces the configuration and persists it.
func (s *Store) Update(cfg Config) error {
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	s.mu.Lock()
	s.cfg = &cfg
	s.loaded = true
	s.mu.Unlock()

	if err := s.kv.Set(storage.KeyAPIConfig, data); err != nil {
		return fmt.Errorf("failed to persist config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalStore *Store
	globalMu    sync.RWMutex
	globalOnce  sync.Once
)

// Global returns the process-wide store, creating a default-backed one on
// first use when SetGlobal was never called (tests, one-off tools).
func Global() *Store {
	globalMu.RLock()
	if globalStore != nil {
		defer globalMu.RUnlock()
		return globalStore
	}
	globalMu.RUnlock()

	globalOnce.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		if globalStore == nil {
			dir, err := ConfigDir()
			if err != nil {
				dir = "."
			}
			kv, err := storage.NewFileStore(dir)
			if err != nil {
				// Degrade to an in-memory life: a store whose kv writes
				// fail still serves defaults.
				globalStore = NewStore(nullStore{}, Default())
				return
			}
			globalStore = NewStore(kv, Default())
		}
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalStore
}

// SetGlobal installs the process-wide store.
func SetGlobal(s *Store) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalStore = s
}

// ResetGlobalForTesting clears the global store so tests start clean.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalStore = nil
	globalOnce = sync.Once{}
}

// nullStore is a kv store that remembers nothing.
type nullStore struct{}

func (nullStore) Get(string) ([]byte, error) { return nil, storage.ErrNotFound }
func (nullStore) Set(string, []byte) error   { return nil }
func (nullStore) Delete(string) error        { return nil }
