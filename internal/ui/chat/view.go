// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/emergency"
	"github.com/medibot/medibot-tui/internal/format"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header (1 line) + body + input (2 lines) + status (1 line).
// The body is the sidebar and conversation, or an overlay placed over it.
//
// COUPLING WARNING: handleResize sizes the viewport from the height
// constants in update.go. If a component here changes height, update them.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	bodyHeight := max(m.height-headerHeight-inputAreaHeight-statusBarHeight, 1)

	var body string
	switch m.overlay {
	case overlayHelp:
		body = m.place(m.renderHelpOverlay(), bodyHeight)
	case overlayTools:
		body = m.place(m.renderToolsOverlay(), bodyHeight)
	case overlayForm:
		body = m.place(m.renderFormOverlay(bodyHeight), bodyHeight)
	case overlayEmergency:
		body = m.place(m.renderEmergencyOverlay(), bodyHeight)
	default:
		messages := lipgloss.NewStyle().
			Height(bodyHeight).
			MaxHeight(bodyHeight).
			Render(m.viewport.View())
		if sw := m.sidebarWidth(); sw > 0 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sw, bodyHeight), messages)
		} else {
			body = messages
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("🩺 MediBot")
	sos := m.theme.EmergencyButton.Render("SOS C-e")

	user := ""
	if m.deps.Settings != nil {
		user = m.theme.HeaderUser.Render("👤 " + m.deps.Settings.DisplayName())
	}

	inner := m.width - 2
	gap := inner - lipgloss.Width(brand) - lipgloss.Width(user) - lipgloss.Width(sos) - 2
	if gap < 1 {
		user = ""
		gap = max(inner-lipgloss.Width(brand)-lipgloss.Width(sos), 1)
	}

	line := brand + strings.Repeat(" ", gap) + user
	if user != "" {
		line += "  "
	}
	line += sos
	return m.theme.Header.Width(m.width).MaxHeight(headerHeight).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderSidebar lists archived sessions, newest first.
func (m Model) renderSidebar(width, height int) string {
	inner := max(width-3, 4)
	sessions := m.store.Sessions()

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	if len(sessions) == 0 {
		b.WriteString(m.theme.SessionMeta.Render(util.FitWidth("No saved chats", inner)))
	}

	// Two lines per entry; keep the selection in view.
	visible := max((height-2)/2, 1)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	now := m.deps.Now()
	for i := start; i < len(sessions) && i < start+visible; i++ {
		cs := sessions[i]
		title := util.PadRight(util.FitWidth(cs.Title, inner), inner)
		style := m.theme.SessionItem
		if i == m.selected && m.focus == focusSidebar {
			style = m.theme.SessionItemSelected
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		meta := fmt.Sprintf("%s · %d msgs", formatSessionTime(cs.CreatedAt(), now), cs.UserMessageCount())
		b.WriteString(m.theme.SessionMeta.Render(util.FitWidth(meta, inner)))
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.TrimRight(b.String(), "\n"))
}

// =============================================================================
// MESSAGES
// =============================================================================

// updateViewport re-renders the conversation into the viewport, keeping the
// scroll position at the bottom when it was there.
func (m *Model) updateViewport() {
	if m.width == 0 {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// bubbleWidth is the text width inside a message bubble.
func (m Model) bubbleWidth() int {
	w := m.conversationWidth() - 6
	if wrap := m.deps.Config.UI.WordWrap; wrap > 0 && wrap < w {
		w = wrap
	}
	return max(w, 10)
}

func (m Model) renderMessages() string {
	msgs := m.store.Messages()
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg model.Message) string {
	width := m.bubbleWidth()
	convWidth := max(m.conversationWidth(), 1)

	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	if m.isSpeaking && msg.ID == m.speaking {
		label += " " + m.theme.InfoStyle.Render("🔊 speaking")
	}

	if msg.IsUser() {
		bubble := m.theme.UserBubble.Render(wrapText(msg.Text, width))
		return lipgloss.PlaceHorizontal(convWidth, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, label, bubble))
	}

	var bubble string
	switch msg.Text {
	case assistant.ChatPlaceholder, assistant.ImagePlaceholder:
		bubble = m.theme.Placeholder.Render(wrapText(msg.Text, width))
	case assistant.ChatErrorText, assistant.ImageErrorText:
		bubble = m.theme.ErrorBubble.Render(wrapText(msg.Text, width))
	default:
		kind := format.Classify(msg.Text)
		rendered := m.renderMarkdown(format.FormatAs(kind, msg.Text), width)
		if kind == format.KindEmergency {
			bubble = m.theme.EmergencyBubble.Render(rendered)
		} else {
			bubble = m.theme.BotBubble.Render(rendered)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	var line string
	switch {
	case m.waiting:
		line = m.spinner.View() + " " + m.theme.Placeholder.Render(m.waitLabel)
	case m.focus == focusSidebar:
		line = m.theme.Hint.Render("↑/↓ select · Enter open · d delete · Tab back to input")
	default:
		line = m.input.View()
	}
	return m.theme.InputContainer.
		Width(m.width).
		MaxHeight(inputAreaHeight).
		Render(line)
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.status != "" && m.statusErr:
		left = m.theme.ErrorStyle.Render(m.status)
	case m.status != "":
		left = m.theme.SuccessStyle.Render(m.status)
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	inner := m.width - 2
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > inner {
		right = ""
	}
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return m.theme.StatusBar.
		Width(m.width).
		MaxHeight(statusBarHeight).
		Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, kb := range group {
			h := kb.Help()
			fmt.Fprintf(&b, "%s %s\n",
				m.theme.ShortcutKey.Render(util.PadRight(h.Key, 10)),
				m.theme.ShortcutDesc.Render(h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.OverlayTitle.Render("Commands"))
	b.WriteString("\n")
	b.WriteString(wrapText("/"+strings.Join(commandNames(), " /"), m.overlayWidth()))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Hint.Render("Press any key to close"))
	return m.theme.OverlayBox.Width(m.overlayWidth()).Render(b.String())
}

func (m Model) renderToolsOverlay() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Health Tools"))
	b.WriteString("\n")
	for _, e := range toolEntries {
		fmt.Fprintf(&b, "%s %s\n", m.theme.ShortcutKey.Render("["+e.key+"]"), e.kind.Title())
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render("Esc to close"))
	return m.theme.OverlayBox.Width(m.overlayWidth()).Render(b.String())
}

// formWindow is how many fields a long form shows at once.
const formWindow = 6

func (m Model) renderFormOverlay(bodyHeight int) string {
	f := m.form
	width := m.overlayWidth()

	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render(f.Kind.Title()))
	b.WriteString("\n")

	start, end := 0, len(f.fields)
	if end > formWindow {
		start = max(min(f.focus-formWindow/2, end-formWindow), 0)
		end = start + formWindow
		b.WriteString(m.theme.Hint.Render(fmt.Sprintf("Field %d of %d", f.focus+1, len(f.fields))))
		b.WriteString("\n")
	}

	for i := start; i < end; i++ {
		fld := f.fields[i]
		label := m.theme.FieldLabel
		marker := "  "
		if i == f.focus {
			label = m.theme.FieldActive
			marker = "▸ "
		}
		b.WriteString(label.Render(marker + fld.label))
		b.WriteString("\n  ")
		b.WriteString(fld.input.View())
		b.WriteString("\n")
		if len(fld.items) > 0 {
			b.WriteString("  ")
			for _, item := range fld.items {
				b.WriteString(m.theme.Tag.Render(item))
			}
			b.WriteString("\n")
		}
		if msg, ok := f.errs[fld.key]; ok {
			b.WriteString(m.theme.FieldError.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	switch {
	case f.busy:
		b.WriteString("\n" + m.spinner.View() + " Working...\n")
	case f.result != "" && f.markdown:
		b.WriteString("\n" + m.renderMarkdown(f.result, width-2) + "\n")
	case f.result != "" && f.failed:
		b.WriteString("\n" + m.theme.ErrorStyle.Render(wrapText(f.result, width)) + "\n")
	case f.result != "":
		b.WriteString("\n" + m.theme.SuccessStyle.Render(wrapText(f.result, width)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render("Tab/Shift+Tab move · Enter submit · Esc close"))

	box := m.theme.OverlayBox.Width(width)
	return box.MaxHeight(bodyHeight).Render(b.String())
}

func (m Model) renderEmergencyOverlay() string {
	width := m.overlayWidth()

	var b strings.Builder
	b.WriteString(m.theme.EmergencyTitle.Render("🚨 " + emergency.Title))
	b.WriteString("\n")
	b.WriteString(wrapText(emergency.Instruction, width-4))
	b.WriteString("\n\n")

	b.WriteString(m.theme.ShortcutKey.Render("[l]") + " " + emergency.ShareLabel + "\n")
	switch {
	case m.locating:
		b.WriteString("    " + m.spinner.View() + " " + emergency.Locating + "\n")
	case m.location != nil && m.location.OK:
		b.WriteString("    " + m.theme.InfoStyle.Render(m.location.String()) + "\n")
	case m.location != nil:
		b.WriteString("    " + m.theme.WarningStyle.Render(m.location.String()) + "\n")
	}

	b.WriteString(m.theme.ShortcutKey.Render("[c]") + " " +
		m.theme.EmergencyButton.Render(emergency.CallLabel+" ("+m.screen.Number()+")") + "\n")
	if !m.screen.CanCall() {
		b.WriteString("    " + m.theme.Hint.Render("Calling is not supported here; dial "+m.screen.Number()+" from a phone") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render("Esc to close"))
	return m.theme.EmergencyBox.Width(width).Render(b.String())
}
