// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active conversation and the session archive.
//
// The Store is the single source of truth for both lists. Every mutation is
// written through to the key/value store before the call returns, so the
// persisted state always matches some serial history of calls. At startup
// the lists are rehydrated; missing or unreadable data silently falls back
// to the default greeting and an empty archive.
//
// # Key Types
//
//   - Store: the conversation/archive state machine
//   - Change: which list a mutation touched, passed to listeners
//   - Option: construction options (clock injection)
//
// # Usage
//
//	st := session.New(kv)
//	st.AppendMessage(model.NewUserMessage(time.Now(), "I feel dizzy"))
//	archived, _ := st.ClearChat()
//	st.LoadSession(archived.ID)
//	st.DeleteSession(archived.ID)
package session
