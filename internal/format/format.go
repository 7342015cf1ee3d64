// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import "strings"

// =============================================================================
// KIND
// =============================================================================

// Kind is the shape of a backend answer.
type Kind int

const (
	KindMedical Kind = iota
	KindEmergency
	KindMentalHealth
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmergency:
		return "emergency"
	case KindMentalHealth:
		return "mental-health"
	default:
		return "medical"
	}
}

const (
	emergencyPrefix   = "EMERGENCY RESPONSE:"
	mentalHealthTitle = "MENTAL HEALTH ASSESSMENT"
	phq2Marker        = "PHQ-2"
)

// Classify picks the grammar for text. The first matching rule wins:
// an "EMERGENCY RESPONSE:" prefix, then a mental-health title or PHQ-2
// mention, else medical.
func Classify(text string) Kind {
	switch {
	case strings.HasPrefix(text, emergencyPrefix):
		return KindEmergency
	case strings.Contains(text, mentalHealthTitle), strings.Contains(text, phq2Marker):
		return KindMentalHealth
	default:
		return KindMedical
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// grammar rewrites one kind of answer.
type grammar interface {
	format(text string) string
}

var grammars = map[Kind]grammar{
	KindEmergency:    emergencyGrammar,
	KindMentalHealth: mentalHealthGrammar{},
	KindMedical:      medicalGrammar,
}

// Format classifies text and rewrites it as markdown.
func Format(text string) string {
	return FormatAs(Classify(text), text)
}

// FormatAs rewrites text with the grammar for k, skipping classification.
func FormatAs(k Kind, text string) string {
	g, ok := grammars[k]
	if !ok {
		g = grammars[KindMedical]
	}
	return g.format(text)
}
