// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jeranaias/docquery-tui/internal/api"
	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
	"github.com/jeranaias/docquery-tui/internal/storage"
)

// =============================================================================
// TYPES
// =============================================================================

// Remote is the slice of the service client the registry needs. Satisfied
// by *api.Client.
type Remote interface {
	ListDocuments(ctx context.Context) ([]api.RemoteDocument, error)
	DeleteDocument(ctx context.Context, displayName string) error
}

// Registry owns the document collection: the in-memory list, its
// persistence under storage.KeyDocuments, and the refresh/add/remove
// operations. It is the sole writer of that key.
//
// Ordering invariant: documents keep insertion order from fetch or
// append. The registry never sorts.
type Registry struct {
	mu     sync.RWMutex
	docs   []model.Document
	kv     storage.Store
	remote Remote

	// canFetch gates network refresh: online mode, config loaded,
	// authenticated. Injected so the registry stays free of mode and
	// session plumbing.
	canFetch func() bool
}

// New creates a registry over kv and remote. canFetch reports whether a
// network refresh is currently permitted; nil means never.
func New(kv storage.Store, remote Remote, canFetch func() bool) *Registry {
	if canFetch == nil {
		canFetch = func() bool { return false }
	}
	return &Registry{kv: kv, remote: remote, canFetch: canFetch}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// loadCache reads the persisted document list. Missing or corrupt state
// yields an empty list.
func (r *Registry) loadCache() []model.Document {
	data, err := r.kv.Get(storage.KeyDocuments)
	if err != nil {
		return nil
	}
	var docs []model.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil
	}
	return docs
}

// persist writes the current list. Persistence failures are swallowed:
// the in-memory list is authoritative for the session, and the next
// successful write repairs the cache.
func (r *Registry) persist(docs []model.Document) {
	data, err := json.Marshal(docs)
	if err != nil {
		return
	}
	r.kv.Set(storage.KeyDocuments, data)
}

// Restore replaces the in-memory list with the persisted cache. Called
// once on startup before the first Refresh.
func (r *Registry) Restore() {
	docs := r.loadCache()
	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Refresh reconciles the list with the service when fetching is
// permitted, and falls back to the cached list otherwise. It never
// returns an error: a failed fetch silently keeps the cache, so a flaky
// network can not blank the document pane.
func (r *Registry) Refresh(ctx context.Context) {
	if !r.canFetch() {
		r.Restore()
		return
	}

	remote, err := r.remote.ListDocuments(ctx)
	if err != nil {
		r.Restore()
		return
	}

	docs := make([]model.Document, 0, len(remote))
	for i := range remote {
		docs = append(docs, fromRemote(&remote[i]))
	}

	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()
	r.persist(docs)
}

// fromRemote maps a service record to a registry document, defaulting the
// fields older service versions omit.
func fromRemote(d *api.RemoteDocument) model.Document {
	doc := model.Document{
		ID:       d.Key(),
		Name:     d.Display(),
		Status:   model.DocumentStatus(d.Status),
		Pages:    d.Pages,
		Location: model.DocumentLocation(d.Location),
	}
	if doc.Status == "" {
		doc.Status = model.StatusProcessed
	}
	if doc.Location == "" {
		doc.Location = model.LocationCloud
	}
	if d.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, d.Timestamp); err == nil {
			doc.UploadedAt = ts
		}
	}
	return doc
}

// Add appends a document and persists. Used by the upload coordinator
// after a successful upload or simulation.
func (r *Registry) Add(doc model.Document) {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	docs := snapshot(r.docs)
	r.mu.Unlock()
	r.persist(docs)
}

// Remove deletes the document with the given id. Local removal and
// persistence always happen; the remote delete is attempted only when
// remoteAllowed and the document lives in the cloud, and its error is
// returned for surfacing without undoing the local removal.
func (r *Registry) Remove(ctx context.Context, id string, remoteAllowed bool) error {
	r.mu.Lock()
	var removed *model.Document
	kept := r.docs[:0]
	for i := range r.docs {
		if r.docs[i].ID == id && removed == nil {
			d := r.docs[i]
			removed = &d
			continue
		}
		kept = append(kept, r.docs[i])
	}
	r.docs = kept
	docs := snapshot(r.docs)
	r.mu.Unlock()

	r.persist(docs)

	if removed == nil {
		return nil
	}
	if remoteAllowed && removed.Location == model.LocationCloud && r.remote != nil {
		return r.remote.DeleteDocument(ctx, removed.Name)
	}
	return nil
}

// =============================================================================
// VIEWS
// =============================================================================

// All returns a copy of the full list in insertion order.
func (r *Registry) All() []model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.docs)
}

// Visible returns the documents shown in mode m: offline mode sees only
// local documents, every other mode sees everything.
func (r *Registry) Visible(m mode.Mode) []model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m != mode.ModeOffline {
		return snapshot(r.docs)
	}
	var out []model.Document
	for i := range r.docs {
		if r.docs[i].Location == model.LocationLocal {
			out = append(out, r.docs[i])
		}
	}
	return out
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func snapshot(docs []model.Document) []model.Document {
	out := make([]model.Document, len(docs))
	copy(out, docs)
	return out
}
