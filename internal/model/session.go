// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/medibot/medibot-tui/internal/util"
)

// TitleMaxRunes is how many characters of the first user message survive in
// a session title before the ellipsis.
const TitleMaxRunes = 20

// TitleEllipsis is appended to titles that were cut.
const TitleEllipsis = "…"

// DefaultTitle names sessions that never received a user message.
const DefaultTitle = "New Chat"

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession is an archived conversation. ID is the archive time in unix
// milliseconds and doubles as the sort key.
type ChatSession struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// NewChatSession archives msgs under a title derived from them.
func NewChatSession(now time.Time, msgs []Message) ChatSession {
	return ChatSession{
		ID:       now.UnixMilli(),
		Title:    DeriveTitle(msgs),
		Messages: CloneMessages(msgs),
	}
}

// CreatedAt converts the id back to a timestamp.
func (s ChatSession) CreatedAt() time.Time {
	return time.UnixMilli(s.ID)
}

// UserMessageCount counts the messages written by the user.
func (s ChatSession) UserMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.IsUser() {
			n++
		}
	}
	return n
}

// DeriveTitle returns the text of the first user message, cut to
// TitleMaxRunes code points plus an ellipsis, or DefaultTitle.
//
// UNICODE: text is NFC-normalised first so a decomposed "é" counts as one
// character, like the precomposed form users see.
func DeriveTitle(msgs []Message) string {
	for _, m := range msgs {
		if !m.IsUser() {
			continue
		}
		text := norm.NFC.String(m.Text)
		return util.TruncateRunes(text, TitleMaxRunes, TitleEllipsis)
	}
	return DefaultTitle
}

// SortSessions orders sessions newest first, by id descending.
func SortSessions(sessions []ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ID > sessions[j].ID
	})
}

// FindSession returns the session with id, if any.
func FindSession(sessions []ChatSession, id int64) (ChatSession, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return ChatSession{}, false
}

// Preview is a one-line summary for session lists.
func (s ChatSession) Preview(maxRunes int) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(s.Messages[i].Text); text != "" {
			return util.TruncateRunes(util.FirstLine(text), maxRunes, "...")
		}
	}
	return ""
}
