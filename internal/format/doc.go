// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns raw backend prose into display-ready markdown.
//
// The backend answers in loosely structured text whose section labels depend
// on the kind of answer. Classify picks the kind; each kind owns a grammar
// (its marker table and section renderers) that rewrites the text into a
// consistent heading/list layout.
//
// Formatting never fails. Text that matches no marker is passed through.
//
// # Key Types
//
//   - Kind: Emergency, MentalHealth or Medical
//   - Line: one classified line of a mood or CBT answer
//
// # Usage
//
//	md := format.Format(reply)          // dispatch on content
//	md = format.FormatAs(format.KindEmergency, reply)
//	lines := format.FormLines(moodAnswer)
package format
