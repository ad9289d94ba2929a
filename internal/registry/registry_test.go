// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/docquery-tui/internal/api"
	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
	"github.com/jeranaias/docquery-tui/internal/storage"
)

// fakeRemote is a canned Remote.
type fakeRemote struct {
	docs    []api.RemoteDocument
	listErr error

	deleted   []string
	deleteErr error
}

func (f *fakeRemote) ListDocuments(_ context.Context) ([]api.RemoteDocument, error) {
	return f.docs, f.listErr
}

func (f *fakeRemote) DeleteDocument(_ context.Context, displayName string) error {
	f.deleted = append(f.deleted, displayName)
	return f.deleteErr
}

func newTestRegistry(t *testing.T, remote *fakeRemote, canFetch bool) (*Registry, storage.Store) {
	t.Helper()
	kv, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return New(kv, remote, func() bool { return canFetch }), kv
}

func TestRefresh_FetchReplacesAndPersists(t *testing.T) {
	remote := &fakeRemote{docs: []api.RemoteDocument{
		{Name: "f1", DisplayName: "report.pdf", Status: "processed", Pages: 4, Location: "cloud"},
		{ID: "f2", Name: "notes.txt"},
	}}
	r, kv := newTestRegistry(t, remote, true)

	r.Refresh(context.Background())

	docs := r.All()
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].ID != "f1" || docs[0].Name != "report.pdf" {
		t.Errorf("doc[0] = %+v", docs[0])
	}
	// Missing status and location get defaults.
	if docs[1].Status != model.StatusProcessed {
		t.Errorf("default status = %q, want processed", docs[1].Status)
	}
	if docs[1].Location != model.LocationCloud {
		t.Errorf("default location = %q, want cloud", docs[1].Location)
	}

	// Persisted: a fresh registry restores the same list.
	r2 := New(kv, nil, nil)
	r2.Restore()
	if r2.Len() != 2 {
		t.Errorf("restored len = %d, want 2", r2.Len())
	}
}

func TestRefresh_FailureKeepsCache(t *testing.T) {
	remote := &fakeRemote{docs: []api.RemoteDocument{{ID: "f1", Name: "a.txt"}}}
	r, kv := newTestRegistry(t, remote, true)
	r.Refresh(context.Background())

	// Next fetch fails; the cached list survives.
	remote.listErr = errors.New("network down")
	r.Refresh(context.Background())
	if r.Len() != 1 {
		t.Errorf("failed refresh should keep the cache, len = %d", r.Len())
	}

	// Even a brand-new registry over the same kv sees the cache.
	r2 := New(kv, remote, func() bool { return true })
	r2.Refresh(context.Background())
	if r2.Len() != 1 {
		t.Errorf("fresh registry should fall back to cache, len = %d", r2.Len())
	}
}

func TestRefresh_GatedFallsBackToCache(t *testing.T) {
	r, kv := newTestRegistry(t, &fakeRemote{}, false)
	kv.Set(storage.KeyDocuments, []byte(`[{"id":"l1","name":"local.txt","status":"processed","location":"local"}]`))

	r.Refresh(context.Background())
	if r.Len() != 1 {
		t.Fatalf("gated refresh should load the cache, len = %d", r.Len())
	}
	if r.All()[0].Location != model.LocationLocal {
		t.Errorf("location = %q", r.All()[0].Location)
	}
}

func TestAdd(t *testing.T) {
	r, kv := newTestRegistry(t, &fakeRemote{}, false)

	r.Add(model.Document{ID: "d1", Name: "new.pdf", Status: model.StatusProcessed, Location: model.LocationCloud})
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
	if _, err := kv.Get(storage.KeyDocuments); err != nil {
		t.Errorf("Add should persist: %v", err)
	}
}

func TestRemove_LocalAlwaysRemoteWhenAllowed(t *testing.T) {
	tests := []struct {
		name          string
		remoteAllowed bool
		location      model.DocumentLocation
		wantDeletes   int
	}{
		{"online authed cloud doc", true, model.LocationCloud, 1},
		{"remote not allowed", false, model.LocationCloud, 0},
		{"local doc never deleted remotely", true, model.LocationLocal, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remote := &fakeRemote{}
			r, _ := newTestRegistry(t, remote, false)
			r.Add(model.Document{ID: "d1", Name: "a.txt", Location: tc.location})

			if err := r.Remove(context.Background(), "d1", tc.remoteAllowed); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if r.Len() != 0 {
				t.Error("document should be removed locally")
			}
			if len(remote.deleted) != tc.wantDeletes {
				t.Errorf("remote deletes = %d, want %d", len(remote.deleted), tc.wantDeletes)
			}
		})
	}
}

func TestRemove_RemoteFailureStillRemovesLocally(t *testing.T) {
	remote := &fakeRemote{deleteErr: errors.New("server error")}
	r, _ := newTestRegistry(t, remote, false)
	r.Add(model.Document{ID: "d1", Name: "a.txt", Location: model.LocationCloud})

	err := r.Remove(context.Background(), "d1", true)
	if err == nil {
		t.Error("remote failure should be surfaced")
	}
	if r.Len() != 0 {
		t.Error("local removal must happen despite remote failure")
	}
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeRemote{}, false)
	r.Add(model.Document{ID: "d1", Name: "a.txt"})

	if err := r.Remove(context.Background(), "nope", true); err != nil {
		t.Fatalf("Remove unknown id errored: %v", err)
	}
	if r.Len() != 1 {
		t.Error("unknown id must not remove anything")
	}
}

func TestVisible(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeRemote{}, false)
	r.Add(model.Document{ID: "c1", Name: "cloud.pdf", Location: model.LocationCloud})
	r.Add(model.Document{ID: "l1", Name: "local.txt", Location: model.LocationLocal})

	if got := len(r.Visible(mode.ModeOnline)); got != 2 {
		t.Errorf("online visible = %d, want 2", got)
	}
	if got := len(r.Visible(mode.ModeManual)); got != 2 {
		t.Errorf("manual visible = %d, want 2", got)
	}

	offline := r.Visible(mode.ModeOffline)
	if len(offline) != 1 || offline[0].ID != "l1" {
		t.Errorf("offline visible = %+v, want just the local doc", offline)
	}
}
