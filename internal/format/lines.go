// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// =============================================================================
// FORM ANSWERS
// =============================================================================

// LineKind classifies a line of a mood or CBT answer.
type LineKind int

const (
	LineParagraph LineKind = iota
	LineHeading
	LineItem
	LineBreak
)

// Line is one classified line. Text has heading asterisks removed.
type Line struct {
	Kind LineKind
	Text string
}

var itemLine = regexp.MustCompile(`^\d+\.`)

// FormLines classifies each line of a mood or CBT answer: "**...**" lines
// are headings, "N." lines are list items, blank lines are breaks.
func FormLines(text string) []Line {
	raw := strings.Split(text, "\n")
	out := make([]Line, 0, len(raw))
	for _, line := range raw {
		switch {
		case len(line) >= 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			out = append(out, Line{Kind: LineHeading, Text: strings.ReplaceAll(line, "**", "")})
		case itemLine.MatchString(line):
			out = append(out, Line{Kind: LineItem, Text: line})
		case strings.TrimSpace(line) == "":
			out = append(out, Line{Kind: LineBreak})
		default:
			out = append(out, Line{Kind: LineParagraph, Text: line})
		}
	}
	return out
}

// FormMarkdown renders FormLines as markdown.
func FormMarkdown(text string) string {
	var b strings.Builder
	for _, l := range FormLines(text) {
		switch l.Kind {
		case LineHeading:
			b.WriteString("#### " + l.Text + "\n\n")
		case LineItem:
			b.WriteString(l.Text + "\n")
		case LineBreak:
			b.WriteString("\n")
		default:
			b.WriteString(l.Text + "\n\n")
		}
	}
	return collapseBlankLines(strings.TrimSpace(b.String()))
}

// =============================================================================
// SPEECH
// =============================================================================

// SpeechText strips markdown emphasis so a speech engine does not read the
// asterisks aloud.
func SpeechText(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	return strings.ReplaceAll(text, "*", "")
}
