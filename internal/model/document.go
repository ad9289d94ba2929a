// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentStatus is the processing state of a document as reported by the
// service (or assumed for locally registered documents).
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// DocumentLocation says where the document's content lives.
type DocumentLocation string

const (
	// LocationCloud means the service holds the document
	LocationCloud DocumentLocation = "cloud"

	// LocationLocal means only this machine knows the document
	LocationLocal DocumentLocation = "local"
)

// Document is one entry in the document registry. Identity is ID; the
// collection keeps insertion order from fetch or append, never sorted.
type Document struct {
	// ID is the unique identifier (server-issued or locally generated)
	ID string `json:"id"`

	// Name is the display name shown in the document list
	Name string `json:"name"`

	// Status is the processing state
	Status DocumentStatus `json:"status"`

	// Pages is the page count when the service reports one
	Pages int `json:"pages,omitempty"`

	// Location is cloud or local
	Location DocumentLocation `json:"location"`

	// UploadedAt is when the document was registered, when known
	UploadedAt time.Time `json:"uploadedAt,omitempty"`
}
