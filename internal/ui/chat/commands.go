// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. args excludes the command name.
type CommandHandler func(m *Model, args []string) (tea.Model, tea.Cmd)

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	// Help & Meta
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	// Conversation
	"new":      handleNewCommand,
	"clear":    handleNewCommand,
	"sessions": handleSessionsCommand,
	"load":     handleLoadCommand,
	"delete":   handleDeleteCommand,
	"image":    handleImageCommand,
	"img":      handleImageCommand,
	"export":   handleExportCommand,
	"copy":     handleCopyCommand,
	"speak":    handleSpeakCommand,

	// Health tools
	"tools":   handleToolsCommand,
	"bmi":     handleBMICommand,
	"mood":    formCommand(FormMood),
	"cbt":     formCommand(FormCBT),
	"symptom": formCommand(FormSymptom),
	"consult": formCommand(FormConsult),

	// Emergency
	"emergency": handleEmergencyCommand,
	"sos":       handleEmergencyCommand,

	// Account
	"profile":  handleProfileCommand,
	"settings": handleProfileCommand,
	"signin":   formCommand(FormSignIn),
	"signup":   formCommand(FormSignUp),
	"signout":  handleSignOutCommand,
	"logout":   handleSignOutCommand,
}

// handleCommand parses a "/name args..." line and dispatches it.
func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return m, nil
	}
	name := strings.ToLower(fields[0])
	handler, ok := commandHandlers[name]
	if !ok {
		return m.setStatus(fmt.Sprintf("Unknown command /%s (try /help)", name), true), nil
	}
	return handler(&m, fields[1:])
}

// commandNames returns the registered names, sorted.
func commandNames() []string {
	names := make([]string, 0, len(commandHandlers))
	for name := range commandHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelpCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.overlay = overlayHelp
	return *m, nil
}

func handleQuitCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.Close()
	return *m, tea.Quit
}

func handleNewCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.newChat()
}

func handleSessionsCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	if len(m.store.Sessions()) == 0 {
		return m.setStatus("No saved chats yet", false), nil
	}
	m.showSidebar = true
	model, cmd := m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	mm := model.(Model)
	if mm.sidebarWidth() == 0 {
		return mm.setStatus("Window too narrow for the chat list", true), cmd
	}
	mm.focus = focusSidebar
	mm.input.Blur()
	return mm, cmd
}

func parseSessionID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: session ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session id %q", args[0])
	}
	return id, nil
}

func handleLoadCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	id, err := parseSessionID(args)
	if err != nil {
		return m.setStatus(err.Error(), true), nil
	}
	return m.loadSession(id)
}

func handleDeleteCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	id, err := parseSessionID(args)
	if err != nil {
		return m.setStatus(err.Error(), true), nil
	}
	return m.deleteSession(id)
}

func handleImageCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.setStatus("usage: /image PATH", true), nil
	}
	return m.analyzeImage(expandHome(strings.Join(args, " ")))
}

func handleExportCommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	return m.exportChat(args)
}

func handleCopyCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.copyLastReply()
}

func handleSpeakCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.toggleSpeech()
}

func handleToolsCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	m.overlay = overlayTools
	m.input.Blur()
	return *m, nil
}

// handleBMICommand opens the calculator. "/bmi 70 175" prefills and submits.
func handleBMICommand(m *Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.openForm(FormBMI, nil)
	}
	if len(args) != 2 {
		return m.setStatus("usage: /bmi [WEIGHT_KG HEIGHT_CM]", true), nil
	}
	model, _ := m.openForm(FormBMI, map[string]string{"weight": args[0], "height": args[1]})
	return model.(Model).submitForm()
}

func formCommand(kind FormKind) CommandHandler {
	return func(m *Model, _ []string) (tea.Model, tea.Cmd) {
		return m.openForm(kind, nil)
	}
}

func handleEmergencyCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.openEmergency()
}

func handleProfileCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	return m.openProfile()
}

// handleSignOutCommand ends the account session and wipes local data.
func handleSignOutCommand(m *Model, _ []string) (tea.Model, tea.Cmd) {
	if m.waiting {
		return m.setStatus("Wait for the current answer before signing out", true), nil
	}
	if m.deps.Auth != nil {
		if err := m.deps.Auth.SignOut(); err != nil {
			return m.setStatus(err.Error(), true), nil
		}
	}
	if m.deps.Settings != nil {
		if err := m.deps.Settings.Logout(); err != nil {
			log.Printf("LOGOUT_ERROR | err=%v", err)
			return m.setStatus(err.Error(), true), nil
		}
	}
	if err := m.store.Reset(); err != nil {
		return m.setStatus("Signed out but chat not reset: "+err.Error(), true), nil
	}
	m.selected = 0
	m.focusInput()
	m.updateViewport()
	return m.setStatus("Signed out", false), nil
}
