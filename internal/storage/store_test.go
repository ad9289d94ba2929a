// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// storeFactories lets every backend run the same contract tests.
var storeFactories = map[string]func(t *testing.T) Store{
	"file": func(t *testing.T) Store {
		s, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		return s
	},
	"sqlite": func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore failed: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	},
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			// Missing key
			_, err := s.Get(KeyDocuments)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get on missing key = %v, want ErrNotFound", err)
			}

			// Round trip
			if err := s.Set(KeyDocuments, []byte(`[{"id":"f1"}]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := s.Get(KeyDocuments)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `[{"id":"f1"}]` {
				t.Errorf("Get = %q, want %q", got, `[{"id":"f1"}]`)
			}

			// Replace
			if err := s.Set(KeyDocuments, []byte(`[]`)); err != nil {
				t.Fatalf("Set replace failed: %v", err)
			}
			got, _ = s.Get(KeyDocuments)
			if string(got) != `[]` {
				t.Errorf("Get after replace = %q, want %q", got, `[]`)
			}

			// Delete, then delete again (idempotent)
			if err := s.Delete(KeyDocuments); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Delete(KeyDocuments); err != nil {
				t.Errorf("Delete on missing key = %v, want nil", err)
			}
			_, err = s.Get(KeyDocuments)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			s.Set(KeyAPIConfig, []byte("config"))
			s.Set(KeyUser, []byte("user"))

			if err := s.Delete(KeyUser); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}

			got, err := s.Get(KeyAPIConfig)
			if err != nil || string(got) != "config" {
				t.Errorf("KeyAPIConfig affected by KeyUser delete: %q, %v", got, err)
			}
		})
	}
}

func TestFileStore_CorruptedValueIsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	// A directory where the value file should be makes the read fail.
	if err := os.Mkdir(s.Path(KeyUser), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	_, err = s.Get(KeyUser)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on unreadable value = %v, want ErrNotFound", err)
	}
}

func TestFileStore_KeySanitization(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := s.Set("../escape", []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The written file must stay inside BaseDir.
	rel, err := filepath.Rel(s.BaseDir, s.Path("../escape"))
	if err != nil || filepath.IsAbs(rel) || rel[0] == '.' {
		t.Errorf("sanitized path %q escapes base dir", s.Path("../escape"))
	}
}
