// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// SymptomDateLayout is the minute-precision local timestamp the symptom log
// uses for its date field.
const SymptomDateLayout = "2006-01-02T15:04"

// SymptomEntry is one symptom-log record. Optional fields are omitted from
// the wire form when empty.
type SymptomEntry struct {
	Date        string   `json:"date"`
	Symptom     string   `json:"symptom"`
	Severity    int      `json:"severity"`
	Duration    string   `json:"duration,omitempty"`
	Triggers    []string `json:"triggers,omitempty"`
	Medications string   `json:"medications,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
