// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// DisplayName returns the label shown next to a message.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "MediBot"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// GreetingID is the id of the greeting every fresh conversation starts with.
const GreetingID int64 = 1

// GreetingText is MediBot's opening line.
const GreetingText = "Hi there, I'm MediBot—your virtual medical assistant. I can provide medical advice, analyze symptoms, and guide you during emergencies. How can I help you today?"

// Message is a single chat entry. Values are never mutated once appended;
// updates replace the whole list.
//
// The JSON shape is shared with the backend's /chat history field and with
// the persisted chatMessages key.
type Message struct {
	ID     int64  `json:"id"`
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// NewMessage creates a message whose id is derived from now.
func NewMessage(now time.Time, sender Sender, text string) Message {
	return Message{ID: now.UnixMilli(), Sender: sender, Text: text}
}

// NewUserMessage creates a user message stamped with now.
func NewUserMessage(now time.Time, text string) Message {
	return NewMessage(now, SenderUser, text)
}

// NewBotMessage creates a bot message stamped with now.
func NewBotMessage(now time.Time, text string) Message {
	return NewMessage(now, SenderBot, text)
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// Greeting returns the default bot greeting.
func Greeting() Message {
	return Message{ID: GreetingID, Sender: SenderBot, Text: GreetingText}
}

// DefaultConversation returns a fresh active conversation: just the greeting.
func DefaultConversation() []Message {
	return []Message{Greeting()}
}

// CloneMessages returns a copy of msgs that shares no backing array.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
