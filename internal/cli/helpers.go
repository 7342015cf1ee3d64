// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file contains shared helper functions used across multiple CLI commands.
package cli

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/medibot/medibot-tui/internal/util"
)

// expandPath resolves a leading ~ to the home directory.
func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" {
		return util.HomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(util.HomeDir(), path[2:])
	}
	return path
}

// WrapText word-wraps text to width columns, leaving a small margin.
func WrapText(text string, width int) string {
	if width > 4 {
		width -= 2
	}
	if width > 100 {
		width = 100
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
