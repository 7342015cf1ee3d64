// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a MediBot conversation (the active chat or an
// archived session) to Markdown, JSON or HTML.
//
// Bot messages are passed through the response formatter so exported
// Markdown reads like the chat window. JSON keeps the stored shape
// ({id, title, messages}) so it can be read back.
//
// # Key Types
//
//   - Exporter: one output format
//   - Options: output directory, metadata, opening the result
//   - Format: "md", "json" or "html"
//
// # Usage
//
//	path, err := export.ToFile(session, export.FormatMarkdown, export.DefaultOptions())
//
// Print JSON with terminal highlighting:
//
//	data, _ := export.NewJSONExporter(nil).Export(session)
//	fmt.Print(export.HighlightJSON(string(data)))
package export
