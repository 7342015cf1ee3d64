// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the storage, session and UI
// layers of MediBot.
//
// # Key Functions
//
// Text:
//   - TruncateRunes: code-point truncation with a caller-chosen suffix
//   - FitWidth: terminal-column truncation using go-runewidth
//   - PadRight: pad to a display width
//
// Files:
//   - AtomicWriteFile: crash-safe write (temp file, fsync, rename)
//   - HomeDir: resolve the user's home with a temp-dir fallback
//
// # Usage
//
//	title := util.TruncateRunes(text, 20, "…")
//	cell := util.FitWidth(title, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
