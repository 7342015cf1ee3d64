// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TAB COMPLETION
// =============================================================================

// completeCommand returns the slash commands starting with prefix, which
// excludes the leading slash.
func completeCommand(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, name := range commandNames() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// commonPrefix returns the longest prefix shared by all names.
func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	p := names[0]
	for _, n := range names[1:] {
		for !strings.HasPrefix(n, p) {
			p = p[:len(p)-1]
		}
	}
	return p
}

// handleTabCompletion completes a partly typed "/command". A single match
// is applied with a trailing space; several matches extend the input to
// their shared prefix and are listed in the status line.
func (m Model) handleTabCompletion() (tea.Model, tea.Cmd) {
	typed := strings.TrimPrefix(m.input.Value(), "/")
	matches := completeCommand(typed)

	switch len(matches) {
	case 0:
		return m.setStatus("No command matches /"+typed, true), nil
	case 1:
		m.input.SetValue("/" + matches[0] + " ")
		m.input.CursorEnd()
		return m.setStatus("", false), nil
	}

	m.input.SetValue("/" + commonPrefix(matches))
	m.input.CursorEnd()
	return m.setStatus("/"+strings.Join(matches, " /"), false), nil
}

// completing reports whether Tab should complete rather than move focus.
func (m Model) completing() bool {
	v := m.input.Value()
	return strings.HasPrefix(v, "/") && !strings.Contains(v, " ")
}
