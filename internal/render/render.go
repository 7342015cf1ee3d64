// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns formatted MediBot markdown into terminal output with
// glamour, falling back to the plain markdown when styling is unavailable.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 80

// Style selects a glamour theme.
type Style string

const (
	StyleAuto  Style = "auto"
	StyleDark  Style = "dark"
	StyleLight Style = "light"
	StyleNone  Style = "notty"
)

// ParseStyle maps config strings to a Style, defaulting to auto.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleDark:
		return StyleDark
	case StyleLight:
		return StyleLight
	case StyleNone, "plain", "none":
		return StyleNone
	default:
		return StyleAuto
	}
}

// Renderer renders markdown at a fixed width. It is safe for concurrent
// use; glamour renderers are not, so calls are serialised.
type Renderer struct {
	mu    sync.Mutex
	tr    *glamour.TermRenderer
	width int
	style Style
}

// New creates a renderer. A nil glamour renderer (construction failed)
// makes Render return its input unchanged.
func New(style Style, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	r := &Renderer{width: width, style: style}

	var styleOpt glamour.TermRendererOption
	switch style {
	case StyleDark, StyleLight, StyleNone:
		styleOpt = glamour.WithStandardStyle(string(style))
	default:
		styleOpt = glamour.WithAutoStyle()
	}

	tr, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err == nil {
		r.tr = tr
	}
	return r
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render returns md styled for the terminal, or md itself on failure.
func (r *Renderer) Render(md string) string {
	if r == nil || r.tr == nil {
		return md
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Plain reports whether output is unstyled, which is the case when the
// style is notty or the terminal has no colour support.
func (r *Renderer) Plain() bool {
	if r.style == StyleNone {
		return true
	}
	return termenv.EnvColorProfile() == termenv.Ascii
}

// HasDarkBackground reports whether the terminal background is dark.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// =============================================================================
// CACHE
// =============================================================================

// Cache keeps one renderer per width, since glamour bakes the wrap width in
// at construction and the TUI resizes often.
type Cache struct {
	mu    sync.Mutex
	style Style
	byW   map[int]*Renderer
}

// NewCache creates a cache for style.
func NewCache(style Style) *Cache {
	return &Cache{style: style, byW: make(map[int]*Renderer)}
}

// Get returns the renderer for width, creating it once.
func (c *Cache) Get(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byW[width]; ok {
		return r
	}
	r := New(c.style, width)
	c.byW[width] = r
	return r
}
