// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/medibot/medibot-tui/internal/util"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "short line", 20, "short line"},
		{"breaks at space", "take one tablet daily", 10, "take one\ntablet\ndaily"},
		{"keeps newlines", "a\nb", 10, "a\nb"},
		{"no space", "abcdefghij", 4, "abcd\nefgh\nij"},
		{"zero width", "unchanged", 0, "unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapText_WideRunes(t *testing.T) {
	got := wrapText("頭痛がします頭痛がします", 6)
	for _, line := range strings.Split(got, "\n") {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Errorf("line %q is %d columns wide", line, w)
		}
	}
}

func TestFormatSessionTime(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-time.Hour), "11:00"},
		{now.Add(-48 * time.Hour), "Wed 12:00"},
		{now.Add(-30 * 24 * time.Hour), "Feb 12"},
	}
	for _, tt := range tests {
		if got := formatSessionTime(tt.t, now); got != tt.want {
			t.Errorf("formatSessionTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	if got := expandHome("~/me.png"); got != filepath.Join(util.HomeDir(), "me.png") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/tmp/me.png"); got != "/tmp/me.png" {
		t.Errorf("expandHome = %q", got)
	}
}
