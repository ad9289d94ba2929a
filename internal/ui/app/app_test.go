// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docquery-tui/internal/chat"
	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
	"github.com/jeranaias/docquery-tui/internal/registry"
	"github.com/jeranaias/docquery-tui/internal/session"
	"github.com/jeranaias/docquery-tui/internal/storage"
	"github.com/jeranaias/docquery-tui/internal/upload"
)

// newTestApp wires an app over local-only components: no network client,
// config never loaded, so every path stays offline-safe.
func newTestApp(t *testing.T) (*App, *mode.Controller) {
	t.Helper()
	kv, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	modes := mode.NewController()
	sess := session.NewManager(kv, nil)
	reg := registry.New(kv, nil, nil)
	driver := chat.New(modes, nil, nil, func() bool { return sess.Authenticated() }, nil)
	uploads := upload.New(nil, reg, nil)

	a := New(Deps{
		Modes:    modes,
		Driver:   driver,
		Registry: reg,
		Session:  sess,
		Uploads:  uploads,
	})
	a.resize(100, 30)
	return a, modes
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_ShowsWelcomeAndStatusBar(t *testing.T) {
	a, _ := newTestApp(t)

	view := a.View()
	if !strings.Contains(view, "[ONLINE]") {
		t.Error("view missing the mode badge")
	}
	if !strings.Contains(view, "Documents") {
		t.Error("view missing the document pane")
	}
	if !strings.Contains(view, "Ask questions about your documents.") {
		t.Error("view missing the welcome tagline")
	}
}

func TestModePicker_SwitchToManual(t *testing.T) {
	a, modes := newTestApp(t)

	a.Update(key("ctrl+o"))
	if a.overlay != overlayModePicker {
		t.Fatal("ctrl+o should open the mode picker")
	}

	a.Update(key("down"))
	a.Update(key("down"))
	a.Update(key("enter"))

	if modes.Current() != mode.ModeManual {
		t.Fatalf("mode = %q, want manual", modes.Current())
	}
	if a.overlay != overlayNone {
		t.Error("picker should close on select")
	}

	// The conversation reset to the manual welcome message.
	msgs := a.deps.Driver.Messages()
	if len(msgs) != 1 || msgs[0].Content != mode.WelcomeMessage(mode.ModeManual) {
		t.Error("mode switch should reset the conversation")
	}

	// Manual mode shows the pipeline strip.
	if !strings.Contains(a.View(), "Embedding") {
		t.Error("manual view missing pipeline stages")
	}
}

func TestUpload_BlockedOffline(t *testing.T) {
	a, modes := newTestApp(t)
	modes.Set(mode.ModeOffline)

	a.Update(key("ctrl+u"))
	if a.overlay == overlayFilePicker {
		t.Fatal("offline upload must not open the picker")
	}

	toasts := a.toasts.Toasts()
	if len(toasts) == 0 || toasts[0].Message != "Document upload is disabled in offline mode." {
		t.Errorf("toasts = %+v, want the offline upload notice", toasts)
	}
}

func TestUpload_BlockedOnlineUnauthenticated(t *testing.T) {
	a, _ := newTestApp(t)

	a.Update(key("ctrl+u"))
	if a.overlay == overlayFilePicker {
		t.Fatal("unauthenticated online upload must not open the picker")
	}
	if !a.toasts.HasToasts() {
		t.Error("gated upload should surface a toast")
	}
}

func TestUpload_ManualOpensPicker(t *testing.T) {
	a, modes := newTestApp(t)
	modes.Set(mode.ModeManual)

	a.Update(key("ctrl+u"))
	if a.overlay != overlayFilePicker {
		t.Fatal("manual upload should open the file picker")
	}

	a.Update(key("esc"))
	if a.overlay != overlayNone {
		t.Error("esc should close the picker")
	}
}

func TestChatEventError_Toasts(t *testing.T) {
	a, _ := newTestApp(t)

	a.Update(tea.Msg(chatEventMsg{event: chat.Event{
		Kind: chat.EventError,
		Err:  errors.New("service unreachable"),
	}}))

	if !a.toasts.HasToasts() {
		t.Error("a chat error should surface a toast")
	}
	if a.deps.Driver.Len() != 1 {
		t.Error("a chat error must not append messages")
	}
}

func TestUploadEvents_DriveBarAndReset(t *testing.T) {
	a, modes := newTestApp(t)
	modes.Set(mode.ModeManual)
	a.bar.Start("Processing scan.pdf")

	a.Update(tea.Msg(uploadEventMsg{event: upload.Event{Kind: upload.EventProgress, Percent: 40}}))
	if a.bar.Percent() != 40 {
		t.Errorf("percent = %d, want 40", a.bar.Percent())
	}
	if a.pipelineStage < 0 {
		t.Error("manual progress should advance the pipeline strip")
	}

	a.Update(tea.Msg(uploadEventMsg{event: upload.Event{Kind: upload.EventBatchDone, Percent: 100}}))
	if a.bar.Percent() != 100 {
		t.Errorf("percent = %d, want 100", a.bar.Percent())
	}

	a.Update(tea.Msg(uploadEventMsg{event: upload.Event{Kind: upload.EventSettled}}))
	if a.bar.Active() {
		t.Error("settle should reset the bar")
	}
	if a.pipelineStage != -1 {
		t.Error("settle should reset the pipeline strip")
	}
}

func TestDocPane_FocusAndDelete(t *testing.T) {
	a, _ := newTestApp(t)
	a.deps.Registry.Add(model.Document{ID: "d1", Name: "a.pdf", Location: model.LocationLocal})
	a.syncDocs()

	a.Update(key("tab"))
	if a.focus != focusDocs {
		t.Fatal("tab should focus the document pane")
	}

	_, cmd := a.handleKey(key("d"))
	if cmd == nil {
		t.Fatal("delete should produce a command")
	}
	msg := cmd()
	res, ok := msg.(deleteResultMsg)
	if !ok || res.err != nil {
		t.Fatalf("delete result = %#v", msg)
	}
	if a.deps.Registry.Len() != 0 {
		t.Error("document should be removed")
	}
}

func TestLoginOverlay_Validation(t *testing.T) {
	a, _ := newTestApp(t)

	a.Update(key("ctrl+l"))
	if a.overlay != overlayLogin {
		t.Fatal("ctrl+l should open the login form")
	}

	// Empty credentials are rejected locally.
	a.Update(key("enter"))
	if a.overlay != overlayLogin {
		t.Error("empty submit should keep the form open")
	}
	if !a.toasts.HasToasts() {
		t.Error("empty submit should warn")
	}

	a.Update(key("esc"))
	if a.overlay != overlayNone {
		t.Error("esc should close the form")
	}
}
