// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

const medicalAssessment = "MEDICAL ASSESSMENT:"

var medicalGrammar = newMarkerGrammar(markerGrammar{
	markers: []string{
		"Follow-up Questions",
		"Possible Conditions",
		"Recommended Actions",
		"Medication & Treatment",
		"Disclaimer:",
	},
	rules: map[string]renderFunc{
		"Follow-up Questions":    medicalSection(false, nil),
		"Possible Conditions":    medicalSection(true, boldLabels),
		"Recommended Actions":    medicalSection(false, nil),
		"Medication & Treatment": medicalSection(true, medicationLabels),
		"Disclaimer:": func(b *strings.Builder, _, body string) {
			b.WriteString("\n---\n\n> Disclaimer: ")
			b.WriteString(body)
		},
	},
	leading: func(b *strings.Builder, text string) {
		if strings.Contains(strings.ToUpper(text), medicalAssessment) {
			b.WriteString("## " + text + "\n\n")
			return
		}
		b.WriteString(text)
	},
	finish: collapseBlankLines,
})

// medicalSection renders a numbered section, optionally behind a rule and
// with a post-pass over the list.
func medicalSection(rule bool, post func(string) string) renderFunc {
	return func(b *strings.Builder, marker, body string) {
		if rule {
			b.WriteString("\n---\n\n")
		} else {
			b.WriteString("\n")
		}
		b.WriteString("### " + marker + "\n\n")
		list := numberedList(body)
		if post != nil {
			list = post(list)
		}
		b.WriteString(list)
	}
}

var itemLabel = regexp.MustCompile(`(\d\.)[ \t]*([^\n]*?)[ \t]*(—)`)

// boldLabels rewrites "N. label — text" as "N. **label** — text".
func boldLabels(s string) string {
	return itemLabel.ReplaceAllStringFunc(s, func(m string) string {
		parts := itemLabel.FindStringSubmatch(m)
		if parts[2] == "" {
			return parts[1] + " " + parts[3]
		}
		return parts[1] + " **" + parts[2] + "** " + parts[3]
	})
}

func medicationLabels(s string) string {
	return strings.ReplaceAll(boldLabels(s), " as prescribed", " *as prescribed*")
}
