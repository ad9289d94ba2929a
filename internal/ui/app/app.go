// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docquery-tui/internal/api"
	"github.com/jeranaias/docquery-tui/internal/chat"
	"github.com/jeranaias/docquery-tui/internal/mode"
	"github.com/jeranaias/docquery-tui/internal/model"
	"github.com/jeranaias/docquery-tui/internal/registry"
	"github.com/jeranaias/docquery-tui/internal/session"
	"github.com/jeranaias/docquery-tui/internal/ui/components"
	"github.com/jeranaias/docquery-tui/internal/ui/styles"
	"github.com/jeranaias/docquery-tui/internal/upload"
	"github.com/jeranaias/docquery-tui/internal/util"
)

// =============================================================================
// FOCUS AND OVERLAYS
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusDocs
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayLogin
	overlayModePicker
	overlayFilePicker
)

// =============================================================================
// MESSAGES
// =============================================================================

// chatEventMsg forwards a conversation driver event into the update loop.
type chatEventMsg struct {
	event chat.Event
}

// uploadEventMsg forwards an upload coordinator event.
type uploadEventMsg struct {
	event upload.Event
}

// authResultMsg reports a finished login or signup attempt.
type authResultMsg struct {
	signup bool
	err    error
}

// refreshDoneMsg reports a finished registry refresh.
type refreshDoneMsg struct{}

// deleteResultMsg reports a finished document removal.
type deleteResultMsg struct {
	name string
	err  error
}

// ConfigReloadedMsg is sent by the config file watcher.
type ConfigReloadedMsg struct{}

// =============================================================================
// APP MODEL
// =============================================================================

// Deps are the wired domain components the app drives.
type Deps struct {
	Modes    *mode.Controller
	Driver   *chat.Driver
	Registry *registry.Registry
	Session  *session.Manager
	Uploads  *upload.Coordinator
}

// App is the bubbletea model for the whole TUI.
type App struct {
	deps Deps

	input    textinput.Model
	chatView viewport.Model
	spin     spinner.Model
	picker   filepicker.Model
	toasts   *components.ToastManager
	bar      components.UploadBar
	docList  components.DocList
	renderer *glamour.TermRenderer

	loginUser  textinput.Model
	loginPass  textinput.Model
	loginField int

	width, height int
	focus         focusArea
	overlay       overlayKind
	modeCursor    int
	pipelineStage int
	interacted    bool

	programMu sync.Mutex
	program   *tea.Program
}

// New creates the app model over the wired domain components.
func New(deps Deps) *App {
	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Prompt = "> "
	input.Focus()

	user := textinput.New()
	user.Placeholder = "username"
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	picker := filepicker.New()
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	a := &App{
		deps:          deps,
		input:         input,
		spin:          spinner.New(spinner.WithSpinner(spinner.Dot)),
		picker:        picker,
		toasts:        components.NewToastManager(),
		loginUser:     user,
		loginPass:     pass,
		pipelineStage: -1,
	}
	a.docList.SetDocuments(deps.Registry.Visible(deps.Modes.Current()))
	return a
}

// AttachProgram wires the running program so background goroutines can
// post messages into the update loop.
func (a *App) AttachProgram(p *tea.Program) {
	a.programMu.Lock()
	a.program = p
	a.programMu.Unlock()
}

// Send posts a message into the update loop. Safe from any goroutine; a
// no-op before AttachProgram.
func (a *App) Send(msg tea.Msg) {
	a.programMu.Lock()
	p := a.program
	a.programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// OnChatEvent adapts the driver's callback to the message queue.
func (a *App) OnChatEvent(e chat.Event) {
	a.Send(chatEventMsg{event: e})
}

// OnUploadEvent adapts the coordinator's callback to the message queue.
func (a *App) OnUploadEvent(e upload.Event) {
	a.Send(uploadEventMsg{event: e})
}

// =============================================================================
// INIT
// =============================================================================

// Init starts the background ticks and the first document refresh.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spin.Tick,
		components.ToastTickCmd(),
		textinput.Blink,
		a.refreshCmd(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (a *App) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		a.deps.Registry.Refresh(context.Background())
		return refreshDoneMsg{}
	}
}

func (a *App) loginCmd(username, password string, signup bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if signup {
			err = a.deps.Session.Signup(context.Background(), username, password)
		} else {
			err = a.deps.Session.Login(context.Background(), username, password)
		}
		return authResultMsg{signup: signup, err: err}
	}
}

func (a *App) deleteCmd(doc model.Document) tea.Cmd {
	remoteAllowed := a.deps.Modes.RemoteDeleteAllowed(a.deps.Session.Authenticated())
	return func() tea.Msg {
		err := a.deps.Registry.Remove(context.Background(), doc.ID, remoteAllowed)
		return deleteResultMsg{name: doc.Name, err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case components.ToastTickMsg:
		a.toasts.Tick()
		return a, components.ToastTickCmd()

	case chatEventMsg:
		return a.handleChatEvent(msg.event)

	case uploadEventMsg:
		return a.handleUploadEvent(msg.event)

	case authResultMsg:
		return a.handleAuthResult(msg)

	case refreshDoneMsg:
		a.syncDocs()
		return a, nil

	case deleteResultMsg:
		a.syncDocs()
		if msg.err != nil {
			a.toasts.AddError(api.UserMessage(msg.err))
		} else {
			a.toasts.AddSuccess("Removed " + msg.name)
		}
		return a, nil

	case ConfigReloadedMsg:
		a.toasts.AddStatus("Configuration reloaded")
		return a, a.refreshCmd()
	}

	// Remaining messages belong to the file picker when it is open.
	if a.overlay == overlayFilePicker {
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h

	chatWidth := a.chatWidth()
	a.chatView = viewport.New(chatWidth, a.chatHeight())
	a.input.Width = chatWidth - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-8),
	)
	if err == nil {
		a.renderer = r
	}
	a.rebuildChat()
}

func (a *App) chatWidth() int {
	return a.width - a.docPaneWidth()
}

func (a *App) docPaneWidth() int {
	w := a.width / 4
	if w < 24 {
		w = 24
	}
	return w
}

func (a *App) chatHeight() int {
	h := a.height - 6 // header, input, status bar
	if a.deps.Modes.ShowPipeline() {
		h -= 2
	}
	if a.bar.Active() {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// syncDocs refreshes the document pane from the registry for the current
// mode.
func (a *App) syncDocs() {
	a.docList.SetDocuments(a.deps.Registry.Visible(a.deps.Modes.Current()))
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.overlay {
	case overlayLogin:
		return a.handleLoginKey(msg)
	case overlayModePicker:
		return a.handleModePickerKey(msg)
	case overlayFilePicker:
		return a.handleFilePickerKey(msg)
	}

	switch msg.String() {
	case "tab":
		if a.focus == focusInput {
			a.focus = focusDocs
			a.input.Blur()
		} else {
			a.focus = focusInput
			a.input.Focus()
		}
		return a, nil

	case "ctrl+o":
		a.overlay = overlayModePicker
		a.modeCursor = modeIndex(a.deps.Modes.Current())
		return a, nil

	case "ctrl+l":
		a.overlay = overlayLogin
		a.loginUser.SetValue("")
		a.loginPass.SetValue("")
		a.loginField = 0
		a.loginUser.Focus()
		a.loginPass.Blur()
		return a, nil

	case "ctrl+u":
		return a.startUploadFlow()

	case "x":
		if a.focus == focusDocs {
			a.toasts.DismissNewest()
			return a, nil
		}
	}

	if a.focus == focusDocs {
		switch msg.String() {
		case "up", "k":
			a.docList.CursorUp()
		case "down", "j":
			a.docList.CursorDown()
		case "d", "delete":
			if doc := a.docList.Selected(); doc != nil {
				return a, a.deleteCmd(*doc)
			}
		}
		return a, nil
	}

	if msg.Type == tea.KeyEnter {
		return a.submitQuestion()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) submitQuestion() (tea.Model, tea.Cmd) {
	text := a.input.Value()
	if strings.TrimSpace(text) == "" {
		return a, nil
	}

	err := a.deps.Driver.Send(context.Background(), text)
	switch {
	case err == nil:
		a.input.SetValue("")
		a.interacted = true
		a.rebuildChat()
	case err == chat.ErrBusy:
		a.toasts.AddWarning("Still thinking about the previous question.")
	default:
		a.toasts.AddWarning(err.Error())
	}
	return a, nil
}

// startUploadFlow opens the file picker when the current mode permits
// uploads.
func (a *App) startUploadFlow() (tea.Model, tea.Cmd) {
	if err := a.deps.Modes.CheckUploadAllowed(a.deps.Session.Authenticated()); err != nil {
		if err == mode.ErrUploadBlockedOffline {
			a.toasts.AddWarning("Document upload is disabled in offline mode.")
		} else {
			a.toasts.AddWarning(err.Error())
		}
		return a, nil
	}
	if a.deps.Uploads.Active() {
		a.toasts.AddWarning("An upload is already in progress.")
		return a, nil
	}

	a.overlay = overlayFilePicker
	return a, a.picker.Init()
}

func (a *App) handleFilePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.overlay = overlayNone
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)

	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.overlay = overlayNone
		return a, tea.Batch(cmd, a.beginUpload(path))
	}
	return a, cmd
}

// beginUpload starts the real or simulated upload for the selected file.
func (a *App) beginUpload(path string) tea.Cmd {
	name := baseName(path)

	var err error
	if a.deps.Modes.Current() == mode.ModeOnline {
		_, err = a.deps.Uploads.StartOnline(context.Background(), []string{path})
		a.bar.Start("Uploading " + util.TruncateDisplay(name, 30))
	} else {
		_, err = a.deps.Uploads.StartSimulated(context.Background(), []string{name})
		a.bar.Start("Processing " + util.TruncateDisplay(name, 30))
	}
	if err != nil {
		a.bar.Reset()
		a.toasts.AddError(err.Error())
	}
	return nil
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, os.PathSeparator); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// =============================================================================
// LOGIN OVERLAY
// =============================================================================

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.overlay = overlayNone
		return a, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if a.loginField == 0 {
			a.loginField = 1
			a.loginUser.Blur()
			a.loginPass.Focus()
		} else {
			a.loginField = 0
			a.loginPass.Blur()
			a.loginUser.Focus()
		}
		return a, nil

	case tea.KeyEnter:
		return a.submitAuth(false)

	case tea.KeyCtrlS:
		return a.submitAuth(true)
	}

	var cmd tea.Cmd
	if a.loginField == 0 {
		a.loginUser, cmd = a.loginUser.Update(msg)
	} else {
		a.loginPass, cmd = a.loginPass.Update(msg)
	}
	return a, cmd
}

func (a *App) submitAuth(signup bool) (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(a.loginUser.Value())
	password := a.loginPass.Value()
	if username == "" || password == "" {
		a.toasts.AddWarning("Username and password are required.")
		return a, nil
	}
	a.overlay = overlayNone
	return a, a.loginCmd(username, password, signup)
}

func (a *App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.toasts.AddError(api.UserMessage(msg.err))
		return a, nil
	}
	if msg.signup {
		// Registration does not authenticate; prompt for the sign-in.
		a.toasts.AddSuccess("Account created. Sign in to continue.")
		a.overlay = overlayLogin
		return a, nil
	}
	a.toasts.AddSuccess("Signed in as " + a.deps.Session.Username())
	return a, a.refreshCmd()
}

// =============================================================================
// MODE PICKER OVERLAY
// =============================================================================

var pickerModes = []mode.Mode{mode.ModeOnline, mode.ModeOffline, mode.ModeManual}

func modeIndex(m mode.Mode) int {
	for i, candidate := range pickerModes {
		if candidate == m {
			return i
		}
	}
	return 0
}

func (a *App) handleModePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.overlay = overlayNone
		return a, nil
	case "up", "k":
		if a.modeCursor > 0 {
			a.modeCursor--
		}
		return a, nil
	case "down", "j":
		if a.modeCursor < len(pickerModes)-1 {
			a.modeCursor++
		}
		return a, nil
	case "enter":
		selected := pickerModes[a.modeCursor]
		a.overlay = overlayNone
		a.applyMode(selected)
		return a, nil
	}
	return a, nil
}

// applyMode switches modes: the driver resets the conversation through
// its subscription, then the app recomputes visibility and surfaces the
// mode notice.
func (a *App) applyMode(m mode.Mode) {
	a.deps.Modes.Set(m)
	a.interacted = false
	a.pipelineStage = -1
	a.bar.Reset()
	a.syncDocs()
	a.rebuildChat()

	if alert := mode.Alert(m); alert != "" {
		a.toasts.AddStatus(alert)
	}
}

// =============================================================================
// DRIVER AND UPLOAD EVENTS
// =============================================================================

func (a *App) handleChatEvent(e chat.Event) (tea.Model, tea.Cmd) {
	if e.Kind == chat.EventError {
		a.toasts.AddError(api.UserMessage(e.Err))
		return a, nil
	}
	a.rebuildChat()
	return a, nil
}

func (a *App) handleUploadEvent(e upload.Event) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case upload.EventProgress:
		a.bar.SetPercent(e.Percent)
		if a.deps.Modes.ShowPipeline() {
			a.pipelineStage = components.StageForPercent(e.Percent)
		}

	case upload.EventFileDone:
		a.toasts.AddSuccess("Uploaded " + e.FileName)
		a.syncDocs()

	case upload.EventBatchDone:
		a.bar.SetPercent(100)
		a.syncDocs()
		if a.deps.Modes.Current() == mode.ModeManual {
			a.toasts.AddSuccess("Document processed.")
		}

	case upload.EventFailed:
		a.bar.Reset()
		a.pipelineStage = -1
		if e.Err != nil {
			a.toasts.AddError(api.UserMessage(e.Err))
		}

	case upload.EventSettled:
		a.bar.Reset()
		a.pipelineStage = -1
	}
	return a, nil
}

// =============================================================================
// VIEW
// =============================================================================

// rebuildChat re-renders the conversation into the viewport and scrolls
// to the latest message.
func (a *App) rebuildChat() {
	if a.width == 0 {
		return
	}

	userStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 1)
	assistantStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 1)

	var b strings.Builder
	for _, m := range a.deps.Driver.Messages() {
		if m.Role == model.RoleUser {
			b.WriteString(userStyle.Render("You: " + m.Content))
		} else {
			content := m.Content
			if a.renderer != nil {
				if out, err := a.renderer.Render(m.Content); err == nil {
					content = strings.TrimRight(out, "\n")
				}
			}
			b.WriteString(assistantStyle.Render(content))
		}
		b.WriteString("\n")
	}

	a.chatView.Height = a.chatHeight()
	a.chatView.Width = a.chatWidth()
	a.chatView.SetContent(b.String())
	a.chatView.GotoBottom()
}

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	switch a.overlay {
	case overlayLogin:
		return a.loginView()
	case overlayModePicker:
		return a.modePickerView()
	case overlayFilePicker:
		return a.filePickerView()
	}

	var center string
	if !a.interacted && a.deps.Driver.Len() <= 1 {
		center = components.RenderWelcome(a.chatWidth(), a.chatHeight())
	} else {
		center = a.chatView.View()
	}

	docs := a.docList.Render(a.docPaneWidth(), a.chatHeight(), a.focus == focusDocs)
	body := lipgloss.JoinHorizontal(lipgloss.Top, center, docs)

	sections := []string{body}

	if a.deps.Modes.ShowPipeline() {
		sections = append(sections, components.RenderPipeline(a.pipelineStage, a.width))
	}
	if a.bar.Active() {
		sections = append(sections, a.bar.Render(a.width))
	}

	inputLine := a.input.View()
	if a.deps.Driver.Busy() {
		inputLine = a.spin.View() + " " + inputLine
	}
	sections = append(sections, inputLine)

	sections = append(sections, components.RenderStatusBar(components.StatusBarState{
		Mode:     a.deps.Modes.Current(),
		Username: a.deps.Session.Username(),
		DocCount: a.docList.Len(),
		Busy:     a.deps.Driver.Busy(),
	}, a.width))

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if a.toasts.HasToasts() {
		// The toast stack overlays the bottom-right corner.
		view = lipgloss.JoinVertical(lipgloss.Left, view,
			components.RenderToastStack(a.toasts.Toasts(), a.width, 0))
	}
	return view
}

func (a *App) loginView() string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	form := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Sign in"),
		"",
		a.loginUser.View(),
		a.loginPass.View(),
		"",
		hintStyle.Render("enter: sign in  ctrl+s: create account  esc: cancel"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Cyan).
		Padding(1, 3).
		Render(form)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) modePickerView() string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	lines := []string{titleStyle.Render("Select mode"), ""}
	for i, m := range pickerModes {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		if i == a.modeCursor {
			marker = "> "
			style = style.Foreground(styles.TextPrimary).Bold(true)
		}
		lines = append(lines, marker+style.Render(string(m)))
	}
	lines = append(lines, "", hintStyle.Render("enter: select  esc: cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) filePickerView() string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Select a document to upload"),
		"",
		a.picker.View(),
		"",
		hintStyle.Render("enter: select  esc: cancel"),
	)
}
