// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

var emergencyEmoji = regexp.MustCompile(`(🚑|🩹|⏱️|🤔|✋|🤜)`)

var emergencyGrammar = newMarkerGrammar(markerGrammar{
	title: "EMERGENCY RESPONSE",
	markers: []string{
		"Critical Actions",
		"Possible Emergency Causes",
		"Danger Signs",
		"Do Not",
		"When to Call",
		"Disclaimer:",
	},
	rules: map[string]renderFunc{
		"Critical Actions":          numberedSection,
		"Possible Emergency Causes": numberedSection,
		"Danger Signs":              bulletSection,
		"Do Not":                    bulletSection,
		"When to Call":              bulletSection,
		"Disclaimer:":               emergencyDisclaimer,
	},
	leading: func(b *strings.Builder, text string) {
		// The prefix already became the title.
		text = strings.TrimSpace(strings.TrimPrefix(text, emergencyPrefix))
		if text != "" {
			b.WriteString(text)
		}
	},
	finish: func(s string) string {
		return emergencyEmoji.ReplaceAllString(s, " **${1}** ")
	},
})

func numberedSection(b *strings.Builder, marker, body string) {
	ensureBreak(b)
	b.WriteString("### " + marker + "\n\n")
	b.WriteString(numberedList(body))
}

func bulletSection(b *strings.Builder, marker, body string) {
	ensureBreak(b)
	b.WriteString("### " + marker + "\n\n")
	b.WriteString(bulletList(body))
}

func emergencyDisclaimer(b *strings.Builder, _, body string) {
	b.WriteString("\n---\n\n> **Disclaimer:** ")
	b.WriteString(body)
}
