// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/export"
	"github.com/medibot/medibot-tui/internal/format"
)

// =============================================================================
// RESIZE
// =============================================================================

// Layout heights. They must match renderHeader, renderInput and
// renderStatusBar in view.go.
const (
	headerHeight    = 1
	inputAreaHeight = 2
	statusBarHeight = 1
)

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	vpHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = max(m.conversationWidth(), 1)
	m.viewport.Height = vpHeight

	m.input.Width = max(m.width-6, 10)

	m.updateViewport()
	return m, nil
}

// sidebarWidth is zero when the sidebar is hidden or does not fit.
func (m Model) sidebarWidth() int {
	if !m.showSidebar {
		return 0
	}
	return m.theme.SidebarWidth()
}

func (m Model) conversationWidth() int {
	return m.width - m.sidebarWidth()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.Close()
		return m, tea.Quit
	}

	if m.overlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil

	case key.Matches(msg, m.keys.Emergency):
		return m.openEmergency()

	case key.Matches(msg, m.keys.Tools):
		m.overlay = overlayTools
		return m, nil

	case key.Matches(msg, m.keys.Profile):
		return m.openProfile()

	case key.Matches(msg, m.keys.NewChat):
		return m.newChat()

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		if !m.showSidebar {
			m.focusInput()
		}
		return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})

	case key.Matches(msg, m.keys.Copy):
		return m.copyLastReply()

	case key.Matches(msg, m.keys.Speak):
		return m.toggleSpeech()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.FocusSidebar):
		if m.completing() {
			return m.handleTabCompletion()
		}
		if m.sidebarWidth() > 0 && len(m.store.Sessions()) > 0 {
			m.focus = focusSidebar
			m.input.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.waiting {
			return m, nil
		}
		m.input.Reset()
		if strings.HasPrefix(text, "/") {
			return m.handleCommand(text)
		}
		return m.send(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.store.Sessions()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(sessions)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.LoadSession):
		if m.selected < len(sessions) {
			return m.loadSession(sessions[m.selected].ID)
		}
	case key.Matches(msg, m.keys.DeleteSession):
		if m.selected < len(sessions) {
			return m.deleteSession(sessions[m.selected].ID)
		}
	case key.Matches(msg, m.keys.FocusSidebar), key.Matches(msg, m.keys.Close):
		m.focusInput()
		return m, textinput.Blink
	}
	return m, nil
}

// =============================================================================
// CONVERSATION ACTIONS
// =============================================================================

func (m Model) send(text string) (tea.Model, tea.Cmd) {
	m.waiting = true
	m.waitLabel = assistant.ChatPlaceholder
	svc, ctx := m.deps.Assistant, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := svc.Send(ctx, text)
		return ReplyMsg{Reply: reply, Err: err}
	})
}

func (m Model) analyzeImage(path string) (tea.Model, tea.Cmd) {
	m.waiting = true
	m.waitLabel = assistant.ImagePlaceholder
	svc, ctx := m.deps.Assistant, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := svc.AnalyzeImageFile(ctx, path)
		return ReplyMsg{Reply: reply, Err: err}
	})
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.updateViewport()
	m.viewport.GotoBottom()

	switch {
	case msg.Err != nil:
		return m.setStatus(msg.Err.Error(), true), nil
	case msg.Reply.Failed:
		return m.setStatus("The MediBot service did not answer", true), nil
	}
	return m.setStatus("", false), nil
}

func (m Model) newChat() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m.setStatus("Wait for the current answer before starting a new chat", true), nil
	}
	cs, err := m.store.ClearChat()
	m.selected = 0
	m.updateViewport()
	if err != nil {
		return m.setStatus("Chat archived but not saved: "+err.Error(), true), nil
	}
	return m.setStatus(fmt.Sprintf("Archived %q", cs.Title), false), nil
}

func (m Model) loadSession(id int64) (tea.Model, tea.Cmd) {
	if m.waiting {
		return m.setStatus("Wait for the current answer before switching chats", true), nil
	}
	found, err := m.store.LoadSession(id)
	switch {
	case !found:
		return m.setStatus(fmt.Sprintf("No session %d", id), true), nil
	case err != nil:
		m = m.setStatus("Session loaded but not saved: "+err.Error(), true)
	default:
		m = m.setStatus("Session loaded", false)
	}
	m.focusInput()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, textinput.Blink
}

func (m Model) deleteSession(id int64) (tea.Model, tea.Cmd) {
	removed, err := m.store.DeleteSession(id)
	m.clampSelection()
	if len(m.store.Sessions()) == 0 {
		m.focusInput()
	}
	switch {
	case !removed:
		return m.setStatus(fmt.Sprintf("No session %d", id), true), nil
	case err != nil:
		return m.setStatus("Session deleted but not saved: "+err.Error(), true), nil
	}
	return m.setStatus("Session deleted", false), nil
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	msg, ok := m.store.LastBotMessage()
	if !ok {
		return m.setStatus("Nothing to copy", true), nil
	}
	if err := m.deps.Clipboard(msg.Text); err != nil {
		log.Printf("CLIPBOARD_ERROR | err=%v", err)
		return m.setStatus("Clipboard unavailable: "+err.Error(), true), nil
	}
	return m.setStatus(fmt.Sprintf("Copied reply (%d chars)", len([]rune(msg.Text))), false), nil
}

func (m Model) exportChat(args []string) (tea.Model, tea.Cmd) {
	f := export.FormatMarkdown
	if len(args) > 0 {
		parsed, err := export.ParseFormat(args[0])
		if err != nil {
			return m.setStatus(err.Error(), true), nil
		}
		f = parsed
	}
	cs := export.ActiveSession(m.store.Messages(), m.deps.Now())
	path, err := export.ToFile(cs, f, m.exportOpt)
	if err != nil {
		return m.setStatus("Export failed: "+err.Error(), true), nil
	}
	return m.setStatus("Exported to "+path, false), nil
}

// =============================================================================
// SPEECH
// =============================================================================

const speechPoll = 300 * time.Millisecond

func (m Model) toggleSpeech() (tea.Model, tea.Cmd) {
	if !m.deps.Config.UI.Speech || m.deps.Speech == nil || !m.deps.Speech.Supported() {
		return m.setStatus("Speech output is not available", true), nil
	}
	msg, ok := m.store.LastBotMessage()
	if !ok {
		return m, nil
	}
	playing, err := m.deps.Speech.Toggle(m.ctx, msg.ID, format.SpeechText(msg.Text))
	if err != nil {
		return m.setStatus("Speech failed: "+err.Error(), true), nil
	}
	m.speaking, m.isSpeaking = msg.ID, playing
	m.updateViewport()
	if !playing {
		return m, nil
	}
	return m, speechTick(msg.ID)
}

func speechTick(id int64) tea.Cmd {
	return tea.Tick(speechPoll, func(time.Time) tea.Msg { return speechTickMsg{ID: id} })
}

func (m Model) handleSpeechTick(msg speechTickMsg) (tea.Model, tea.Cmd) {
	if !m.isSpeaking || m.speaking != msg.ID {
		return m, nil
	}
	if id, active := m.deps.Speech.Playing(); active && id == msg.ID {
		return m, speechTick(msg.ID)
	}
	m.isSpeaking = false
	m.updateViewport()
	return m, nil
}

// =============================================================================
// OVERLAYS
// =============================================================================

// toolEntries is the health tools menu, selected by number.
var toolEntries = []struct {
	key  string
	kind FormKind
}{
	{"1", FormBMI},
	{"2", FormMood},
	{"3", FormCBT},
	{"4", FormSymptom},
	{"5", FormConsult},
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		return m.closeOverlay()
	}

	switch m.overlay {
	case overlayHelp:
		return m.closeOverlay()

	case overlayTools:
		for _, e := range toolEntries {
			if msg.String() == e.key {
				return m.openForm(e.kind, nil)
			}
		}
		return m, nil

	case overlayEmergency:
		switch msg.String() {
		case "l":
			if m.location != nil || m.locating {
				return m, nil
			}
			if !m.screen.CanLocate() {
				loc := m.screen.ShareLocation(m.ctx)
				m.location = &loc
				return m, nil
			}
			m.locating = true
			screen, ctx := m.screen, m.ctx
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				return LocationMsg{Location: screen.ShareLocation(ctx)}
			})
		case "c", "enter":
			if err := m.screen.Call(); err != nil {
				if errors.Is(err, capability.ErrUnsupported) {
					return m.setStatus("Dial "+m.screen.Number()+" from your phone", true), nil
				}
				return m.setStatus(err.Error(), true), nil
			}
			return m.setStatus("Calling "+m.screen.Number(), false), nil
		}
		return m, nil

	case overlayForm:
		submit, cmd := m.form.update(msg, m.keys)
		if !submit {
			return m, cmd
		}
		return m.submitForm()
	}
	return m, nil
}

func (m Model) closeOverlay() (tea.Model, tea.Cmd) {
	m.overlay = overlayNone
	m.form = nil
	m.location = nil
	m.locating = false
	m.focusInput()
	return m, textinput.Blink
}

func (m Model) openEmergency() (tea.Model, tea.Cmd) {
	m.overlay = overlayEmergency
	m.location = nil
	m.input.Blur()
	log.Printf("EMERGENCY_OPENED | number=%s", m.screen.Number())
	return m, nil
}

func (m Model) openProfile() (tea.Model, tea.Cmd) {
	if m.deps.Auth == nil || auth.Gate(m.deps.Auth) == auth.GateSettings {
		return m.openForm(FormSettings, nil)
	}
	return m.openForm(FormSignIn, nil)
}

func (m Model) openForm(kind FormKind, defaults map[string]string) (tea.Model, tea.Cmd) {
	if defaults == nil {
		defaults = map[string]string{}
	}
	switch kind {
	case FormSymptom:
		if _, ok := defaults["date"]; !ok {
			defaults["date"] = newSymptomDate(m.deps.Now())
		}
	case FormSettings:
		if m.deps.Settings != nil {
			if name := m.deps.Settings.Load().Username; name != "" {
				defaults["username"] = name
			}
		}
	}
	m.form = NewForm(kind, defaults)
	m.overlay = overlayForm
	m.input.Blur()
	return m, textinput.Blink
}

func (m Model) handleFormResult(msg FormResultMsg) (tea.Model, tea.Cmd) {
	if m.form == nil || m.form.Kind != msg.Kind {
		return m, nil
	}
	if msg.Close {
		text := msg.Text
		model, cmd := m.closeOverlay()
		mm := model.(Model).setStatus(text, msg.Failed)
		mm.updateViewport()
		return mm, cmd
	}
	m.form.apply(msg)
	return m, nil
}

// overlayWidth is the inner width of overlay boxes.
func (m Model) overlayWidth() int {
	return max(min(m.width-8, 72), 20)
}

// renderMarkdown renders md for an overlay or bubble of the given width.
func (m Model) renderMarkdown(md string, width int) string {
	return strings.TrimRight(m.renderers.Get(max(width, 20)).Render(md), "\n")
}

// place centers an overlay over the body area.
func (m Model) place(box string, bodyHeight int) string {
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, box)
}
