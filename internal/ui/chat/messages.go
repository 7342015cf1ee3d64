// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/emergency"
	"github.com/medibot/medibot-tui/internal/session"
)

// =============================================================================
// ASSISTANT MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of a chat or image turn.
type ReplyMsg struct {
	Reply assistant.Reply
	Err   error
}

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg reports a session store mutation made on any goroutine.
type StoreChangedMsg struct {
	Change session.Change
}

// =============================================================================
// OVERLAY MESSAGES
// =============================================================================

// FormResultMsg carries the outcome of a form submission.
type FormResultMsg struct {
	Kind FormKind

	// Text is shown in the overlay below the fields.
	Text string

	// Markdown marks Text for rendering through glamour.
	Markdown bool

	// Failed styles Text as an error.
	Failed bool

	// FieldErrors maps field keys to validation messages.
	FieldErrors map[string]string

	// Close dismisses the overlay.
	Close bool
}

// LocationMsg carries the emergency screen's location lookup.
type LocationMsg struct {
	Location emergency.Location
}

// speechTickMsg polls whether message ID is still being read aloud.
type speechTickMsg struct {
	ID int64
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// StatusMsg shows a transient line in the status bar.
type StatusMsg struct {
	Text  string
	Error bool
}
