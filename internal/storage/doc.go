// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is MediBot's local key/value store, the terminal
// counterpart of browser local storage.
//
// Values are opaque byte strings, in practice JSON documents. Every write is
// durable before Set returns.
//
// # Key Types
//
//   - Store: Get/Set/Remove/Clear over string keys
//   - FileStore: one JSON file per key under a directory (default)
//   - SQLiteStore: a single kv table in a SQLite database
//   - MemoryStore: in-process map, used by tests and --ephemeral runs
//
// # Keys
//
//   - chatMessages: the active conversation
//   - chatSessions: the session archive
//   - userSettings: display name and avatar
//   - userData: account record written at sign-up
//   - accounts: local identity provider credentials
//
// # Usage
//
//	store, err := storage.Open(storage.DriverFile, dir)
//	if err != nil { ... }
//	defer store.Close()
//
//	var msgs []model.Message
//	err = storage.GetJSON(store, storage.KeyChatMessages, &msgs)
//
// # Storage Location
//
// Data lives under ~/.medibot/data/ unless configured otherwise.
package storage
