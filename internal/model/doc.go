// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the MediBot data structures shared by the session
// store, the backend client and the UI.
//
// # Key Types
//
//   - Message: one immutable chat entry (id, sender, text)
//   - Sender: who wrote a message (user or bot)
//   - ChatSession: an archived conversation with a derived title
//   - SymptomEntry: a symptom-log record sent to the backend
//
// # Usage
//
//	msgs := model.DefaultConversation()
//	msgs = append(msgs, model.NewUserMessage(time.Now(), "I have a headache"))
//	title := model.DeriveTitle(msgs)
package model
