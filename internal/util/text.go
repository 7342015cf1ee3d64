// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: all truncation here counts runes or terminal cells, never bytes,
// so multi-byte characters are never split.

// TruncateRunes keeps the first max runes of s and appends suffix when
// anything was cut. The suffix does not count toward max.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + suffix
}

// RuneLen returns the number of code points in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

// FitWidth truncates s to at most width terminal cells, ending in "…" when
// it had to cut. Wide (CJK, emoji) characters count as two cells.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces up to width cells, truncating first if needed.
func PadRight(s string, width int) string {
	s = FitWidth(s, width)
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
