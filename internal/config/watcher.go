// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the runtime store when its persisted file changes on
// disk, so an edit from another process (or a sync tool dropping in a new
// file) takes effect without a restart.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchFile watches path and calls store.Load plus onReload on every write
// or create event. onReload may be nil.
func WatchFile(store *Store, path string, onReload func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the file itself; atomic renames deliver Create events for it.
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}

	go func() {
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					store.Load()
					if onReload != nil {
						onReload()
					}
					// Atomic writes replace the inode; re-add so the next
					// write is still observed.
					fw.Add(path)
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
				// Watch errors are non-fatal; the next manual reload
				// still works.
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
