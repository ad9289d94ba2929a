// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultSimDelay is how long the simulated answer paths "think" before
// replying, so the canned reply does not appear instantaneous.
const DefaultSimDelay = 2 * time.Second

// ErrBusy is returned when Send is called while a reply is pending.
var ErrBusy = errors.New("a reply is already pending")

// =============================================================================
// TYPES
// =============================================================================

// Querier is the slice of the service client the driver needs. Satisfied
// by *api.Client.
type Querier interface {
	Query(ctx context.Context, text string) (string, error)
}

// EventKind distinguishes driver notifications.
type EventKind int

const (
	// EventReply carries a new assistant message appended to the log
	EventReply EventKind = iota

	// EventError carries a failed query; nothing was appended
	EventError
)

// Event is a driver notification delivered on the notify callback.
type Event struct {
	Kind    EventKind
	Message *model.Message
	Err     error
}

// Driver owns the conversation log and the send flow: gating, the real
// query path, and the delayed canned replies for the non-networked modes.
//
// A mode switch resets the log to a single welcome message and bumps the
// generation counter; replies belonging to an older generation are
// dropped rather than appended into the wrong conversation.
type Driver struct {
	mu   sync.Mutex
	conv *model.Conversation
	gen  int
	busy bool

	modes        *mode.Controller
	client       Querier
	configLoaded func() bool
	authed       func() bool
	notify       func(Event)

	// SimDelay is overridable for tests.
	SimDelay time.Duration
}

// New creates a driver whose log opens with the welcome message for the
// controller's current mode. The driver subscribes to mode changes and
// resets the log on every switch.
func New(modes *mode.Controller, client Querier, configLoaded, authed func() bool, notify func(Event)) *Driver {
	if configLoaded == nil {
		configLoaded = func() bool { return false }
	}
	if authed == nil {
		authed = func() bool { return false }
	}
	if notify == nil {
		notify = func(Event) {}
	}

	d := &Driver{
		conv:         model.NewConversation(),
		modes:        modes,
		client:       client,
		configLoaded: configLoaded,
		authed:       authed,
		notify:       notify,
		SimDelay:     DefaultSimDelay,
	}
	d.reset(modes.Current())
	modes.Subscribe(d.reset)
	return d
}

// reset replaces the log with the welcome message for m and invalidates
// any in-flight reply.
func (d *Driver) reset(m mode.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conv.Reset(mode.WelcomeMessage(m))
	d.gen++
	d.busy = false
}

// =============================================================================
// STATE
// =============================================================================

// Busy reports whether a reply is pending.
func (d *Driver) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Len returns the number of messages in the log.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conv.Len()
}

// Messages returns a snapshot of the conversation log.
func (d *Driver) Messages() []*model.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*model.Message, len(d.conv.Messages))
	copy(out, d.conv.Messages)
	return out
}

// =============================================================================
// SEND
// =============================================================================

// Send submits the user's question. Blank input is a silent no-op. The
// reply arrives asynchronously through the notify callback; gating and
// busy rejections are returned synchronously so the UI can toast them
// without waiting.
func (d *Driver) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := d.modes.CheckQueryAllowed(d.authed()); err != nil {
		return err
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy = true
	d.conv.AddUserMessage(text)
	gen := d.gen
	d.mu.Unlock()

	m := d.modes.Current()
	go d.answer(ctx, m, gen, text)
	return nil
}

// answer produces the assistant reply for one question.
func (d *Driver) answer(ctx context.Context, m mode.Mode, gen int, text string) {
	var reply string
	var err error

	if m == mode.ModeOnline && d.configLoaded() {
		reply, err = d.client.Query(ctx, text)
	} else {
		// Non-networked paths pause briefly so the reply feels produced,
		// not prerecorded.
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(d.SimDelay):
			reply = mode.CannedReply(m)
		}
	}

	d.mu.Lock()
	if gen != d.gen {
		// The conversation was reset while we were answering; the reply
		// belongs to a log that no longer exists.
		d.mu.Unlock()
		return
	}
	d.busy = false

	if err != nil {
		d.mu.Unlock()
		d.notify(Event{Kind: EventError, Err: err})
		return
	}

	msg := d.conv.AddAssistantMessage(reply)
	d.mu.Unlock()
	d.notify(Event{Kind: EventReply, Message: msg})
}
