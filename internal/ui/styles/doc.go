// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the MediBot TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Teal - Brand color for headers and selections
  - Emergency - Emergency button, overlay and emergency replies
  - Rose - Failed replies
  - Amber - Validation messages

# Theme System (theme.go)

	theme := styles.NewTheme()
	theme.SetSize(width, height)
	if w := theme.SidebarWidth(); w > 0 {
		// room for the session sidebar
	}
*/
package styles
