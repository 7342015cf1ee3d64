// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/backend"
)

// Score bounds shared by mood and symptom severity.
const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5
)

// MoodErrorText is shown when the mood insight cannot be generated.
const MoodErrorText = "An error occurred while processing your mood. Please try again."

// MoodForm is the mood tracker's field state.
type MoodForm struct {
	Description string
	Score       int
	Tags        []string
}

// NewMoodForm returns a form with the default score.
func NewMoodForm() MoodForm {
	return MoodForm{Score: DefaultScore}
}

// AddTag appends tag trimmed. Blank tags are ignored; it reports whether
// anything was added.
func (f *MoodForm) AddTag(tag string) bool {
	return addTrimmed(&f.Tags, tag)
}

// RemoveTag drops the tag at index i.
func (f *MoodForm) RemoveTag(i int) {
	removeAt(&f.Tags, i)
}

// Validate checks the description and score.
func (f MoodForm) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Description) == "" {
		errs.add("description", "is required")
	}
	checkScore(&errs, "score", f.Score)
	return errs.err()
}

// TrackMood submits f and returns the backend's insight.
func (s *Service) TrackMood(ctx context.Context, f MoodForm) (Insight, error) {
	if err := f.Validate(); err != nil {
		return Insight{}, err
	}

	start := time.Now()
	resp, err := s.backend.TrackMood(ctx, backend.MoodRequest{
		Description: strings.TrimSpace(f.Description),
		Score:       f.Score,
		Tags:        f.Tags,
	})
	if err != nil {
		logFailure("MOOD_ERROR", start, err)
		return Insight{Text: MoodErrorText, Failed: true, Err: err}, nil
	}
	return Insight{Text: resp.Response, Type: resp.Type}, nil
}

func checkScore(errs *ValidationErrors, field string, v int) {
	if v < MinScore || v > MaxScore {
		errs.add(field, "must be between %d and %d", MinScore, MaxScore)
	}
}

func addTrimmed(list *[]string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*list = append(*list, v)
	return true
}

func removeAt(list *[]string, i int) {
	if i < 0 || i >= len(*list) {
		return
	}
	*list = append((*list)[:i:i], (*list)[i+1:]...)
}
