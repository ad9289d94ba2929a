// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
)

// fakeQuerier is a canned Querier.
type fakeQuerier struct {
	answer string
	err    error

	mu    sync.Mutex
	calls []string
	block chan struct{} // when non-nil, Query waits on it
}

func (f *fakeQuerier) Query(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

func (f *fakeQuerier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// eventSink collects driver events.
type eventSink struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newEventSink() *eventSink {
	return &eventSink{ch: make(chan Event, 16)}
}

func (s *eventSink) notify(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	s.ch <- e
}

func (s *eventSink) next(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-s.ch:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a driver event")
		return Event{}
	}
}

func newTestDriver(client Querier, loaded, authed bool, notify func(Event)) (*Driver, *mode.Controller) {
	modes := mode.NewController()
	d := New(modes, client,
		func() bool { return loaded },
		func() bool { return authed },
		notify)
	d.SimDelay = time.Millisecond
	return d, modes
}

func TestNew_OpensWithWelcome(t *testing.T) {
	d, _ := newTestDriver(&fakeQuerier{}, true, true, nil)

	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want the single welcome message", len(msgs))
	}
	if msgs[0].Role != model.RoleAssistant {
		t.Errorf("welcome role = %q", msgs[0].Role)
	}
	if msgs[0].Content != mode.WelcomeMessage(mode.ModeOnline) {
		t.Errorf("welcome = %q", msgs[0].Content)
	}
}

func TestSend_BlankIsNoop(t *testing.T) {
	client := &fakeQuerier{}
	d, _ := newTestDriver(client, true, true, nil)

	if err := d.Send(context.Background(), "   \n\t "); err != nil {
		t.Fatalf("blank send errored: %v", err)
	}
	if d.Len() != 1 {
		t.Error("blank send must not append a message")
	}
	if client.callCount() != 0 {
		t.Error("blank send must not hit the service")
	}
}

func TestSend_OnlineUnauthenticatedBlocked(t *testing.T) {
	d, _ := newTestDriver(&fakeQuerier{}, true, false, nil)

	err := d.Send(context.Background(), "hello")
	if !errors.Is(err, mode.ErrQueryBlocked) {
		t.Errorf("err = %v, want ErrQueryBlocked", err)
	}
	if d.Len() != 1 {
		t.Error("blocked send must not append the user message")
	}
}

func TestSend_OnlineQueriesService(t *testing.T) {
	client := &fakeQuerier{answer: "The answer is 42."}
	sink := newEventSink()
	d, _ := newTestDriver(client, true, true, sink.notify)

	if err := d.Send(context.Background(), "What is the answer?"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	e := sink.next(t)

	if e.Kind != EventReply {
		t.Fatalf("event = %+v, want a reply", e)
	}
	if e.Message.Content != "The answer is 42." {
		t.Errorf("reply = %q", e.Message.Content)
	}

	msgs := d.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want welcome+user+reply", len(msgs))
	}
	if msgs[1].Role != model.RoleUser || msgs[2].Role != model.RoleAssistant {
		t.Errorf("roles = %q %q", msgs[1].Role, msgs[2].Role)
	}
	if d.Busy() {
		t.Error("busy must clear after the reply")
	}
}

func TestSend_QueryErrorAppendsNothing(t *testing.T) {
	client := &fakeQuerier{err: errors.New("service unreachable")}
	sink := newEventSink()
	d, _ := newTestDriver(client, true, true, sink.notify)

	d.Send(context.Background(), "hello")
	e := sink.next(t)

	if e.Kind != EventError || e.Err == nil {
		t.Fatalf("event = %+v, want an error", e)
	}
	if d.Len() != 2 {
		t.Errorf("len = %d, want welcome+user only", d.Len())
	}
	if d.Busy() {
		t.Error("busy must clear after a failure")
	}
}

func TestSend_OfflineUsesCannedReply(t *testing.T) {
	client := &fakeQuerier{answer: "should not be used"}
	sink := newEventSink()
	d, modes := newTestDriver(client, true, true, sink.notify)

	modes.Set(mode.ModeOffline)
	d.Send(context.Background(), "hello")
	e := sink.next(t)

	if e.Message.Content != mode.CannedReply(mode.ModeOffline) {
		t.Errorf("reply = %q, want the offline canned reply", e.Message.Content)
	}
	if client.callCount() != 0 {
		t.Error("offline mode must not hit the service")
	}
}

func TestSend_ConfigNotLoadedFallsBackToCanned(t *testing.T) {
	client := &fakeQuerier{answer: "should not be used"}
	sink := newEventSink()
	d, _ := newTestDriver(client, false, true, sink.notify)

	d.Send(context.Background(), "hello")
	e := sink.next(t)

	if e.Message.Content != mode.CannedReply(mode.ModeOnline) {
		t.Errorf("reply = %q, want the online canned reply", e.Message.Content)
	}
	if client.callCount() != 0 {
		t.Error("queries must wait for the config load")
	}
}

func TestSend_BusyRejectsSecondSend(t *testing.T) {
	client := &fakeQuerier{answer: "ok", block: make(chan struct{})}
	sink := newEventSink()
	d, _ := newTestDriver(client, true, true, sink.notify)

	if err := d.Send(context.Background(), "first"); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	if err := d.Send(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("second send err = %v, want ErrBusy", err)
	}

	close(client.block)
	sink.next(t)
}

func TestModeSwitch_ResetsConversation(t *testing.T) {
	sink := newEventSink()
	d, modes := newTestDriver(&fakeQuerier{answer: "ok"}, true, true, sink.notify)

	d.Send(context.Background(), "hello")
	sink.next(t)
	if d.Len() != 3 {
		t.Fatalf("len before switch = %d", d.Len())
	}

	modes.Set(mode.ModeManual)
	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len after switch = %d, want 1", len(msgs))
	}
	if msgs[0].Content != mode.WelcomeMessage(mode.ModeManual) {
		t.Errorf("welcome = %q", msgs[0].Content)
	}

	// Re-selecting the same mode resets again.
	d.Send(context.Background(), "again")
	sink.next(t)
	modes.Set(mode.ModeManual)
	if d.Len() != 1 {
		t.Error("re-selecting the active mode should still reset")
	}
}

func TestModeSwitch_DropsStaleReply(t *testing.T) {
	client := &fakeQuerier{answer: "stale", block: make(chan struct{})}
	sink := newEventSink()
	d, modes := newTestDriver(client, true, true, sink.notify)

	d.Send(context.Background(), "hello")
	modes.Set(mode.ModeOffline)
	close(client.block)

	// The stale reply must neither appear in the new log nor emit an event.
	select {
	case e := <-sink.ch:
		t.Errorf("unexpected event after reset: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
	if d.Len() != 1 {
		t.Errorf("len = %d, want just the new welcome", d.Len())
	}
	if d.Busy() {
		t.Error("reset must clear the busy flag")
	}
}
