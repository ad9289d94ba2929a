// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
)

// =============================================================================
// KEY-VALUE PORT
// =============================================================================

// Well-known keys. Each owning component is the sole writer for its key;
// keys are updated independently with no cross-key atomicity.
const (
	KeyAPIConfig = "rag-api-config"
	KeyUser      = "rag-user"
	KeyDocuments = "rag-documents"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the key-value persistence port. Values are opaque bytes
// (components marshal their own JSON). Implementations must treat a
// corrupted or unreadable value as absent rather than failing.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set writes the value for key, replacing any prior value.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}
