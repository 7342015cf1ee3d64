// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/backend"
)

// CBTErrorText is shown when exercises cannot be generated.
const CBTErrorText = "An error occurred while generating exercises. Please try again."

// CBTForm is the CBT exercise request. Only Concern is required; the
// backend client fills defaults for the rest.
type CBTForm struct {
	Concern         string
	TriedStrategies string
	DesiredOutcome  string
}

// Validate checks the concern.
func (f CBTForm) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Concern) == "" {
		errs.add("concern", "is required")
	}
	return errs.err()
}

// CBTExercises submits f and returns suggested exercises.
func (s *Service) CBTExercises(ctx context.Context, f CBTForm) (Insight, error) {
	if err := f.Validate(); err != nil {
		return Insight{}, err
	}

	start := time.Now()
	resp, err := s.backend.CBTExercises(ctx, backend.CBTRequest{
		Concern:         strings.TrimSpace(f.Concern),
		TriedStrategies: strings.TrimSpace(f.TriedStrategies),
		DesiredOutcome:  strings.TrimSpace(f.DesiredOutcome),
	})
	if err != nil {
		logFailure("CBT_ERROR", start, err)
		return Insight{Text: CBTErrorText, Failed: true, Err: err}, nil
	}
	return Insight{Text: resp.Response, Type: resp.Type}, nil
}
