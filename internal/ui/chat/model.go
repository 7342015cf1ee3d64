// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/emergency"
	"github.com/medibot/medibot-tui/internal/export"
	"github.com/medibot/medibot-tui/internal/render"
	"github.com/medibot/medibot-tui/internal/session"
	"github.com/medibot/medibot-tui/internal/settings"
	"github.com/medibot/medibot-tui/internal/tracker"
	"github.com/medibot/medibot-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps are the services the chat view drives.
type Deps struct {
	Assistant *assistant.Service
	Tracker   *tracker.Service
	Settings  *settings.Manager
	Auth      auth.Provider
	Speech    *capability.SpeechToggle
	Opener    capability.Opener
	Config    *config.Config

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error

	// Now defaults to time.Now.
	Now func() time.Time
}

// =============================================================================
// CHAT STATE
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayTools
	overlayForm
	overlayEmergency
)

// changeBuffer bounds queued store notifications. Dropped ones are harmless;
// every notification re-reads the whole store.
const changeBuffer = 16

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the MediBot chat view.
type Model struct {
	deps  Deps
	store *session.Store
	theme *styles.Theme
	keys  KeyMap

	// Rendering
	renderers *render.Cache
	screen    *emergency.Screen
	exportOpt *export.Options

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Layout
	focus       focusArea
	showSidebar bool
	selected    int

	// Backend turn in flight
	waiting   bool
	waitLabel string

	// Overlays
	overlay  overlayKind
	form     *Form
	location *emergency.Location
	locating bool

	// Speech
	speaking   int64
	isSpeaking bool

	// Status line
	status    string
	statusErr bool

	changes chan session.Change
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates the chat model. deps.Assistant is required.
func New(theme *styles.Theme, deps Deps) Model {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe your symptoms or ask a question... (/help for commands)"
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		deps:      deps,
		store:     deps.Assistant.Store(),
		theme:     theme,
		keys:      DefaultKeyMap(),
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		changes:   make(chan session.Change, changeBuffer),
		ctx:       ctx,
		cancel:    cancel,
		exportOpt: export.DefaultOptions(),
	}
	m.exportOpt.Opener = deps.Opener
	m.applyConfig(deps.Config)

	changes := m.changes
	m.store.Subscribe(func(c session.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	return m
}

// applyConfig takes the settings that can change while running.
func (m *Model) applyConfig(cfg *config.Config) {
	m.deps.Config = cfg
	m.renderers = render.NewCache(render.ParseStyle(cfg.UI.Theme))
	m.showSidebar = cfg.UI.ShowSidebar
	m.screen = emergency.NewScreen(cfg.Emergency.Number, cfg.Locator(), m.deps.Opener)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the store listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

// waitForChange blocks until the store reports a mutation.
func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		return StoreChangedMsg{Change: <-ch}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case StoreChangedMsg:
		m.clampSelection()
		m.updateViewport()
		return m, m.waitForChange()

	case FormResultMsg:
		return m.handleFormResult(msg)

	case LocationMsg:
		m.locating = false
		loc := msg.Location
		m.location = &loc
		return m, nil

	case speechTickMsg:
		return m.handleSpeechTick(msg)

	case ConfigReloadedMsg:
		if msg.Err != nil {
			return m.setStatus("Config not reloaded: "+msg.Err.Error(), true), nil
		}
		m.applyConfig(msg.Config)
		m.updateViewport()
		return m.setStatus("Configuration reloaded", false), nil

	case StatusMsg:
		return m.setStatus(msg.Text, msg.Error), nil

	case spinner.TickMsg:
		if m.waiting || m.locating || (m.form != nil && m.form.busy) {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if m.overlay == overlayNone && m.focus == focusInput {
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// Close cancels in-flight backend calls and stops speech.
func (m Model) Close() {
	m.cancel()
	if m.deps.Speech != nil && m.isSpeaking {
		_, _ = m.deps.Speech.Toggle(context.Background(), m.speaking, "")
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Waiting reports whether a backend turn is in flight.
func (m Model) Waiting() bool { return m.waiting }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// ActiveForm returns the open form, if any.
func (m Model) ActiveForm() *Form {
	if m.overlay != overlayForm {
		return nil
	}
	return m.form
}

// SidebarFocused reports whether keys go to the session list.
func (m Model) SidebarFocused() bool { return m.focus == focusSidebar }

// Selected returns the highlighted session index.
func (m Model) Selected() int { return m.selected }

func (m Model) setStatus(text string, isErr bool) Model {
	m.status, m.statusErr = text, isErr
	return m
}

func (m *Model) clampSelection() {
	n := len(m.store.Sessions())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
