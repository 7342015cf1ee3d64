// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in   string
		want Style
	}{
		{"", StyleAuto},
		{"DARK", StyleDark},
		{"light", StyleLight},
		{"plain", StyleNone},
		{"notty", StyleNone},
		{"neon", StyleAuto},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.in); got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_PlainStyleKeepsText(t *testing.T) {
	r := New(StyleNone, 60)
	out := r.Render("## MEDICAL ASSESSMENT\n\n1. **Migraine** — common")

	if !strings.Contains(out, "MEDICAL ASSESSMENT") {
		t.Errorf("Render() = %q, want heading text", out)
	}
	if !strings.Contains(out, "Migraine") {
		t.Errorf("Render() = %q, want list text", out)
	}
	if !r.Plain() {
		t.Error("Plain() = false for notty style")
	}
}

func TestRender_NilRenderer(t *testing.T) {
	var r *Renderer
	if got := r.Render("x"); got != "x" {
		t.Errorf("Render() = %q, want %q", got, "x")
	}
}

func TestCache_ReusesPerWidth(t *testing.T) {
	c := NewCache(StyleNone)
	a := c.Get(70)
	b := c.Get(70)
	d := c.Get(0)

	if a != b {
		t.Error("Get(70) returned different renderers")
	}
	if d.Width() != DefaultWidth {
		t.Errorf("Get(0).Width() = %d, want %d", d.Width(), DefaultWidth)
	}
}
