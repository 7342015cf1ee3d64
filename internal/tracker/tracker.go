// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"log"
	"time"

	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/format"
	"github.com/medibot/medibot-tui/internal/model"
)

// Backend is the part of the MediBot service the trackers use.
type Backend interface {
	CalculateBMI(ctx context.Context, weightKg, heightCm float64) (backend.BMIResponse, error)
	TrackMood(ctx context.Context, req backend.MoodRequest) (backend.InsightResponse, error)
	CBTExercises(ctx context.Context, req backend.CBTRequest) (backend.InsightResponse, error)
	TrackSymptom(ctx context.Context, entry model.SymptomEntry) (backend.SymptomResponse, error)
}

// Service submits tracker forms.
type Service struct {
	backend Backend
}

// NewService creates a Service.
func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// Insight is a free-text answer from the mood or CBT endpoint.
type Insight struct {
	Text string
	Type string

	// Failed is set when the backend call failed; Text then holds the
	// form's error message.
	Failed bool
	Err    error
}

// Lines classifies the text for display.
func (i Insight) Lines() []format.Line {
	return format.FormLines(i.Text)
}

// Markdown renders the text as markdown.
func (i Insight) Markdown() string {
	if i.Failed {
		return i.Text
	}
	return format.FormMarkdown(i.Text)
}

func logFailure(event string, start time.Time, err error) {
	log.Printf("%s | duration=%s error=%v", event, time.Since(start).Round(time.Millisecond), err)
}
