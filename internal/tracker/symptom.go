// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/model"
)

// SymptomErrorText is shown when the entry could not be stored.
const SymptomErrorText = "Could not save the symptom entry. Please try again."

// SymptomSavedText confirms a stored entry.
const SymptomSavedText = "✔️ Symptom logged successfully!"

// SymptomForm is the symptom log's field state.
type SymptomForm struct {
	Date        string
	Symptom     string
	Severity    int
	Duration    string
	Triggers    []string
	Medications string
	Notes       string
}

// NewSymptomForm returns a form dated now (UTC, minute precision) with the
// default severity.
func NewSymptomForm(now time.Time) SymptomForm {
	return SymptomForm{
		Date:     now.UTC().Format(model.SymptomDateLayout),
		Severity: DefaultScore,
	}
}

// AddTrigger appends trigger trimmed; blanks are ignored.
func (f *SymptomForm) AddTrigger(trigger string) bool {
	return addTrimmed(&f.Triggers, trigger)
}

// RemoveTrigger drops the trigger at index i.
func (f *SymptomForm) RemoveTrigger(i int) {
	removeAt(&f.Triggers, i)
}

// Validate checks the date, symptom and severity.
func (f SymptomForm) Validate() error {
	var errs ValidationErrors
	if _, err := time.Parse(model.SymptomDateLayout, strings.TrimSpace(f.Date)); err != nil {
		errs.add("date", "must look like 2006-01-02T15:04")
	}
	if strings.TrimSpace(f.Symptom) == "" {
		errs.add("symptom", "is required")
	}
	checkScore(&errs, "severity", f.Severity)
	return errs.err()
}

// Entry converts the form to the wire record.
func (f SymptomForm) Entry() model.SymptomEntry {
	return model.SymptomEntry{
		Date:        strings.TrimSpace(f.Date),
		Symptom:     strings.TrimSpace(f.Symptom),
		Severity:    f.Severity,
		Duration:    strings.TrimSpace(f.Duration),
		Triggers:    f.Triggers,
		Medications: strings.TrimSpace(f.Medications),
		Notes:       strings.TrimSpace(f.Notes),
	}
}

// SymptomResult reports whether the entry was stored.
type SymptomResult struct {
	OK bool
	ID string

	Failed bool
	Err    error
}

// TrackSymptom submits f. OK is set only when the backend answers status "ok".
func (s *Service) TrackSymptom(ctx context.Context, f SymptomForm) (SymptomResult, error) {
	if err := f.Validate(); err != nil {
		return SymptomResult{}, err
	}

	start := time.Now()
	resp, err := s.backend.TrackSymptom(ctx, f.Entry())
	if err != nil {
		logFailure("SYMPTOM_ERROR", start, err)
		return SymptomResult{Failed: true, Err: err}, nil
	}
	return SymptomResult{OK: resp.OK(), ID: string(resp.InsertedID)}, nil
}
