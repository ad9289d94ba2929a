// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/docquery-tui/internal/api"
	"github.com/jeranaias/docquery-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultSimStep is the simulated-upload tick interval: each tick
	// advances the bar by SimIncrement percent.
	DefaultSimStep = 300 * time.Millisecond

	// SimIncrement is the simulated per-tick progress gain.
	SimIncrement = 10

	// DefaultSettleDelay holds the completed bar at 100% briefly before
	// resetting, so the user sees the finish.
	DefaultSettleDelay = 500 * time.Millisecond
)

// =============================================================================
// TYPES
// =============================================================================

// Uploader is the slice of the service client the coordinator needs.
// Satisfied by *api.Client.
type Uploader interface {
	UploadFile(ctx context.Context, filename string, content io.Reader, progress api.ProgressFunc) (string, error)
}

// Registrar receives successfully processed documents. Satisfied by
// *registry.Registry.
type Registrar interface {
	Add(doc model.Document)
}

// EventKind distinguishes coordinator notifications.
type EventKind int

const (
	// EventProgress carries a new overall percentage
	EventProgress EventKind = iota

	// EventFileDone fires after each file in an online batch succeeds
	EventFileDone

	// EventBatchDone fires once when the whole batch has finished
	EventBatchDone

	// EventFailed fires when the batch aborts on an error
	EventFailed

	// EventSettled fires after the settle delay; the progress bar resets
	EventSettled
)

// Event is a coordinator notification delivered on the notify callback.
type Event struct {
	TaskID   string
	Kind     EventKind
	Percent  int
	FileName string
	Err      error
}

// Task is one upload batch in flight. Cancel aborts it; the coordinator
// reports the cancellation through an EventFailed with ctx.Err.
type Task struct {
	ID     string
	cancel context.CancelFunc
}

// Cancel aborts the task's remaining work.
func (t *Task) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Coordinator runs upload batches: real sequential multipart uploads in
// online mode, tick-based simulations in manual mode. One batch runs at a
// time; starting a new one while another is active is rejected.
type Coordinator struct {
	client Uploader
	reg    Registrar
	notify func(Event)

	// SimStep and SettleDelay are overridable for tests.
	SimStep     time.Duration
	SettleDelay time.Duration

	mu     sync.Mutex
	active *Task
}

// New creates a coordinator. notify receives every event; it must be
// safe to call from a background goroutine (the TUI forwards through the
// program's message queue).
func New(client Uploader, reg Registrar, notify func(Event)) *Coordinator {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Coordinator{
		client:      client,
		reg:         reg,
		notify:      notify,
		SimStep:     DefaultSimStep,
		SettleDelay: DefaultSettleDelay,
	}
}

// Active reports whether a batch is currently running.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Coordinator) begin(parent context.Context) (*Task, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, nil, fmt.Errorf("an upload is already in progress")
	}

	ctx, cancel := context.WithCancel(parent)
	t := &Task{ID: uuid.NewString(), cancel: cancel}
	c.active = t
	return t, ctx, nil
}

func (c *Coordinator) finish(t *Task) {
	c.mu.Lock()
	if c.active == t {
		c.active = nil
	}
	c.mu.Unlock()
}

// =============================================================================
// ONLINE UPLOAD
// =============================================================================

// StartOnline uploads the files at paths sequentially, reporting one
// overall percentage across the batch. The first failure aborts the rest.
// Runs in its own goroutine; returns the task handle immediately.
func (c *Coordinator) StartOnline(parent context.Context, paths []string) (*Task, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files selected")
	}
	t, ctx, err := c.begin(parent)
	if err != nil {
		return nil, err
	}

	go func() {
		defer c.finish(t)
		defer t.cancel()

		total := len(paths)
		last := 0
		emit := func(pct int) {
			// Overall progress never moves backwards, even if a retry or
			// buffered write re-reports earlier bytes.
			if pct < last {
				pct = last
			}
			last = pct
			c.notify(Event{TaskID: t.ID, Kind: EventProgress, Percent: pct})
		}

		for i, path := range paths {
			if ctx.Err() != nil {
				c.notify(Event{TaskID: t.ID, Kind: EventFailed, Err: ctx.Err()})
				return
			}

			name := filepath.Base(path)
			f, err := os.Open(path)
			if err != nil {
				c.notify(Event{TaskID: t.ID, Kind: EventFailed, FileName: name,
					Err: fmt.Errorf("failed to open %s: %w", name, err)})
				return
			}

			idx := i
			id, err := c.client.UploadFile(ctx, name, f, func(frac float64) {
				emit(overallPercent(idx, total, frac))
			})
			f.Close()
			if err != nil {
				c.notify(Event{TaskID: t.ID, Kind: EventFailed, FileName: name, Err: err})
				return
			}

			if id == "" {
				id = model.GenerateDocumentID()
			}
			c.reg.Add(model.Document{
				ID:         id,
				Name:       name,
				Status:     model.StatusProcessed,
				Location:   model.LocationCloud,
				UploadedAt: time.Now(),
			})
			emit(overallPercent(idx, total, 1))
			c.notify(Event{TaskID: t.ID, Kind: EventFileDone, FileName: name})
		}

		emit(100)
		c.notify(Event{TaskID: t.ID, Kind: EventBatchDone, Percent: 100})
		c.settle(t)
	}()

	return t, nil
}

// overallPercent maps per-file fraction to batch percentage.
func overallPercent(index, total int, frac float64) int {
	return int(math.Round((float64(index) + frac) / float64(total) * 100))
}

// =============================================================================
// SIMULATED UPLOAD
// =============================================================================

// StartSimulated fakes processing for manual mode: the bar advances by
// SimIncrement every SimStep until 100, then each file is registered as a
// local document and a single completion event fires.
func (c *Coordinator) StartSimulated(parent context.Context, names []string) (*Task, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no files selected")
	}
	t, ctx, err := c.begin(parent)
	if err != nil {
		return nil, err
	}

	go func() {
		defer c.finish(t)
		defer t.cancel()

		ticker := time.NewTicker(c.SimStep)
		defer ticker.Stop()

		pct := 0
		for pct < 100 {
			select {
			case <-ctx.Done():
				c.notify(Event{TaskID: t.ID, Kind: EventFailed, Err: ctx.Err()})
				return
			case <-ticker.C:
				pct += SimIncrement
				if pct > 100 {
					pct = 100
				}
				c.notify(Event{TaskID: t.ID, Kind: EventProgress, Percent: pct})
			}
		}

		for _, name := range names {
			c.reg.Add(model.Document{
				ID:         model.GenerateDocumentID(),
				Name:       name,
				Status:     model.StatusProcessed,
				Location:   model.LocationLocal,
				UploadedAt: time.Now(),
			})
		}
		c.notify(Event{TaskID: t.ID, Kind: EventBatchDone, Percent: 100})
		c.settle(t)
	}()

	return t, nil
}

// settle holds the finished bar briefly, then signals the reset.
func (c *Coordinator) settle(t *Task) {
	time.Sleep(c.SettleDelay)
	c.notify(Event{TaskID: t.ID, Kind: EventSettled})
}
