// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/medibot/medibot-tui/internal/util"
)

// =============================================================================
// FORMATTING UTILITIES
// =============================================================================

// formatSessionTime formats a session's creation time for the sidebar:
//   - Today: just time (e.g., "15:04")
//   - This week: day and time (e.g., "Mon 15:04")
//   - Older: date (e.g., "Jan 2")
func formatSessionTime(t, now time.Time) string {
	t, now = t.Local(), now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 2")
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// wrapText wraps text to maxWidth terminal columns. Existing line breaks are
// kept and long lines break at the last space that fits.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		for runewidth.StringWidth(line) > maxWidth {
			cut := runewidth.Truncate(line, maxWidth, "")
			if sp := strings.LastIndex(cut, " "); sp > 0 {
				cut = cut[:sp]
			}
			if cut == "" {
				// A single cell wider than maxWidth.
				_, size := firstRune(line)
				cut = line[:size]
			}
			result.WriteString(cut)
			result.WriteString("\n")
			line = strings.TrimLeft(line[len(cut):], " ")
		}
		result.WriteString(line)
	}
	return result.String()
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i == 0 {
			return r, len(string(r))
		}
	}
	return 0, 0
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path == "~" {
		return util.HomeDir()
	}
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || strings.HasPrefix(path, "~/") {
		return filepath.Join(util.HomeDir(), path[2:])
	}
	return path
}
