// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// =============================================================================
// MARKER GRAMMAR
// =============================================================================

// section is a marker found in the text and the body up to the next marker.
type section struct {
	marker string
	body   string
}

// renderFunc appends the markdown for one section to b. body is trimmed.
type renderFunc func(b *strings.Builder, marker, body string)

// markerGrammar splits text on a fixed, case-sensitive set of marker
// literals and renders each section with the rule for its marker.
type markerGrammar struct {
	// title opens the output, empty for none.
	title string

	// markers in the order they are tried at each position.
	markers []string
	rules   map[string]renderFunc

	// leading renders text before the first marker.
	leading func(b *strings.Builder, text string)

	// finish post-processes the whole output.
	finish func(string) string

	split *regexp.Regexp
}

func newMarkerGrammar(g markerGrammar) *markerGrammar {
	quoted := make([]string, len(g.markers))
	for i, m := range g.markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	g.split = regexp.MustCompile(strings.Join(quoted, "|"))
	return &g
}

// sections returns the text before the first marker and every marker with
// its body.
func (g *markerGrammar) sections(text string) (string, []section) {
	locs := g.split.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	leading := text[:locs[0][0]]
	out := make([]section, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, section{
			marker: text[loc[0]:loc[1]],
			body:   text[loc[1]:end],
		})
	}
	return leading, out
}

func (g *markerGrammar) format(text string) string {
	var b strings.Builder
	if g.title != "" {
		b.WriteString("## " + g.title + "\n\n")
	}

	leading, secs := g.sections(text)
	if lead := strings.TrimSpace(leading); lead != "" && g.leading != nil {
		g.leading(&b, lead)
	}
	for _, s := range secs {
		if render, ok := g.rules[s.marker]; ok {
			render(&b, s.marker, strings.TrimSpace(s.body))
		}
	}

	out := b.String()
	if g.finish != nil {
		out = g.finish(out)
	}
	return strings.TrimSpace(out)
}

// =============================================================================
// NORMALIZERS
// =============================================================================

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// collapseBlankLines squeezes runs of three or more newlines to one blank
// line.
func collapseBlankLines(s string) string {
	return excessNewlines.ReplaceAllString(s, "\n\n")
}

// isItemStart reports whether s[i:] begins with a digit and a dot.
func isItemStart(s string, i int) bool {
	return i+1 < len(s) && s[i] >= '0' && s[i] <= '9' && s[i+1] == '.'
}

// numberedList puts every "N." item on its own paragraph. An item runs from
// its "N." up to the next digit-dot or the end of the text; it is trimmed and
// followed by a blank line. Text before the first item is kept as is.
func numberedList(s string) string {
	var b strings.Builder
	pos := 0
	for pos < len(s) {
		start := -1
		for i := pos; i < len(s); i++ {
			if isItemStart(s, i) {
				start = i
				break
			}
		}
		if start < 0 {
			b.WriteString(s[pos:])
			break
		}

		end := len(s)
		for j := start + 2; j < len(s); j++ {
			if isItemStart(s, j) {
				end = j
				break
			}
		}

		b.WriteString(s[pos:start])
		b.WriteString(strings.TrimSpace(s[start:end]))
		b.WriteString("\n\n")
		pos = end
	}
	return collapseBlankLines(b.String())
}

var bulletStart = regexp.MustCompile(`(?:^|\s)-\s*`)

// bulletList puts every "- item" on its own line. Only dashes at the start
// or after whitespace count, so hyphenated words stay intact.
func bulletList(s string) string {
	parts := bulletStart.Split(s, -1)

	var b strings.Builder
	if lead := strings.TrimSpace(parts[0]); lead != "" {
		b.WriteString(lead + "\n")
	}
	for _, item := range parts[1:] {
		if item = strings.TrimSpace(item); item != "" {
			b.WriteString("- " + item + "\n")
		}
	}
	return b.String()
}

// ensureBreak makes sure the next heading starts a new block.
func ensureBreak(b *strings.Builder) {
	s := b.String()
	switch {
	case s == "", strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		b.WriteString("\n")
	default:
		b.WriteString("\n\n")
	}
}
