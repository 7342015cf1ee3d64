// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/model"
)

type fakeBackend struct {
	err error

	bmi     backend.BMIResponse
	insight backend.InsightResponse
	symptom backend.SymptomResponse

	calls  int
	weight float64
	height float64
	mood   backend.MoodRequest
	cbt    backend.CBTRequest
	entry  model.SymptomEntry
}

func (f *fakeBackend) CalculateBMI(_ context.Context, w, h float64) (backend.BMIResponse, error) {
	f.calls++
	f.weight, f.height = w, h
	return f.bmi, f.err
}

func (f *fakeBackend) TrackMood(_ context.Context, req backend.MoodRequest) (backend.InsightResponse, error) {
	f.calls++
	f.mood = req
	return f.insight, f.err
}

func (f *fakeBackend) CBTExercises(_ context.Context, req backend.CBTRequest) (backend.InsightResponse, error) {
	f.calls++
	f.cbt = req
	return f.insight, f.err
}

func (f *fakeBackend) TrackSymptom(_ context.Context, entry model.SymptomEntry) (backend.SymptomResponse, error) {
	f.calls++
	f.entry = entry
	return f.symptom, f.err
}

// =============================================================================
// BMI
// =============================================================================

func TestBMIForm_Validate(t *testing.T) {
	tests := []struct {
		name   string
		form   BMIForm
		fields []string
	}{
		{"valid", BMIForm{Weight: "70", Height: "170"}, nil},
		{"blank", BMIForm{}, []string{"weight", "height"}},
		{"zero weight", BMIForm{Weight: "0", Height: "170"}, []string{"weight"}},
		{"negative height", BMIForm{Weight: "70", Height: "-1"}, []string{"height"}},
		{"not a number", BMIForm{Weight: "seventy", Height: "170"}, []string{"weight"}},
		{"NaN weight", BMIForm{Weight: "NaN", Height: "170"}, []string{"weight"}},
		{"infinite weight", BMIForm{Weight: "Inf", Height: "170"}, []string{"weight"}},
		{"infinite height", BMIForm{Weight: "70", Height: "+Inf"}, []string{"height"}},
		{"overflow", BMIForm{Weight: "1e400", Height: "170"}, []string{"weight"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.form.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, f := range tt.fields {
				_, ok := verrs.Field(f)
				assert.True(t, ok, "expected error for %s", f)
			}
		})
	}
}

func TestCalculateBMI_UsesBackendValueVerbatim(t *testing.T) {
	fb := &fakeBackend{bmi: backend.BMIResponse{BMI: 24.221453, Category: "Normal weight"}}
	svc := NewService(fb)

	res, err := svc.CalculateBMI(context.Background(), BMIForm{Weight: "70", Height: "170"})
	require.NoError(t, err)

	assert.Equal(t, 70.0, fb.weight)
	assert.Equal(t, 170.0, fb.height)
	assert.Equal(t, "24.22", res.Format())
	assert.Equal(t, "Normal weight", res.Category)
	assert.Contains(t, res.Advice(), "Great job!")
}

func TestCalculateBMI_InvalidSkipsBackend(t *testing.T) {
	for _, weight := range []string{"0", "NaN", "-Inf"} {
		fb := &fakeBackend{}
		_, err := NewService(fb).CalculateBMI(context.Background(), BMIForm{Weight: weight, Height: "170"})

		assert.True(t, IsValidation(err), "weight=%s", weight)
		assert.Zero(t, fb.calls, "weight=%s", weight)
	}
}

func TestCalculateBMI_BackendFailure(t *testing.T) {
	fb := &fakeBackend{err: errors.New("down")}
	res, err := NewService(fb).CalculateBMI(context.Background(), BMIForm{Weight: "70", Height: "170"})

	require.NoError(t, err)
	assert.True(t, res.Failed)
}

func TestAdvice(t *testing.T) {
	tests := []struct {
		category string
		prefix   string
	}{
		{"Underweight", "Consider consulting a nutritionist"},
		{"Normal weight", "Great job!"},
		{"Overweight", "Try incorporating more physical activity"},
		{"Obese (Class I)", "It’s advisable to consult"},
		{"Unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := Advice(tt.category)
			if tt.prefix == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.prefix)
		})
	}
}

// =============================================================================
// MOOD AND CBT
// =============================================================================

func TestMoodForm_Tags(t *testing.T) {
	f := NewMoodForm()
	assert.Equal(t, DefaultScore, f.Score)

	assert.True(t, f.AddTag("  work "))
	assert.False(t, f.AddTag("   "))
	assert.True(t, f.AddTag("sleep"))
	assert.Equal(t, []string{"work", "sleep"}, f.Tags)

	f.RemoveTag(0)
	f.RemoveTag(5)
	assert.Equal(t, []string{"sleep"}, f.Tags)
}

func TestMoodForm_Validate(t *testing.T) {
	f := NewMoodForm()
	f.Score = 11

	var verrs ValidationErrors
	require.ErrorAs(t, f.Validate(), &verrs)
	_, ok := verrs.Field("description")
	assert.True(t, ok)
	msg, ok := verrs.Field("score")
	assert.True(t, ok)
	assert.Equal(t, "must be between 1 and 10", msg)
}

func TestTrackMood(t *testing.T) {
	fb := &fakeBackend{insight: backend.InsightResponse{Response: "**Summary**\n1. Rest", Type: backend.InsightMoodTracking}}
	f := NewMoodForm()
	f.Description = "tired"
	f.AddTag("work")

	got, err := NewService(fb).TrackMood(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, backend.MoodRequest{Description: "tired", Score: 5, Tags: []string{"work"}}, fb.mood)
	assert.False(t, got.Failed)
	assert.Equal(t, "#### Summary\n\n1. Rest", got.Markdown())
}

func TestTrackMood_Failure(t *testing.T) {
	fb := &fakeBackend{err: errors.New("boom")}
	f := NewMoodForm()
	f.Description = "tired"

	got, err := NewService(fb).TrackMood(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, got.Failed)
	assert.Equal(t, MoodErrorText, got.Text)
	assert.Equal(t, MoodErrorText, got.Markdown())
}

func TestCBTExercises(t *testing.T) {
	fb := &fakeBackend{insight: backend.InsightResponse{Response: "1. Breathe"}}
	svc := NewService(fb)

	_, err := svc.CBTExercises(context.Background(), CBTForm{})
	assert.True(t, IsValidation(err))
	assert.Zero(t, fb.calls)

	got, err := svc.CBTExercises(context.Background(), CBTForm{Concern: " exams "})
	require.NoError(t, err)
	assert.Equal(t, "exams", fb.cbt.Concern)
	assert.Equal(t, "1. Breathe", got.Text)

	fb.err = errors.New("boom")
	got, err = svc.CBTExercises(context.Background(), CBTForm{Concern: "exams"})
	require.NoError(t, err)
	assert.Equal(t, CBTErrorText, got.Text)
}

// =============================================================================
// SYMPTOMS
// =============================================================================

func TestNewSymptomForm(t *testing.T) {
	now := time.Date(2025, 3, 4, 9, 30, 45, 0, time.UTC)
	f := NewSymptomForm(now)

	assert.Equal(t, "2025-03-04T09:30", f.Date)
	assert.Equal(t, DefaultScore, f.Severity)
}

func TestSymptomForm_Validate(t *testing.T) {
	f := SymptomForm{Date: "yesterday", Severity: 0}

	var verrs ValidationErrors
	require.ErrorAs(t, f.Validate(), &verrs)
	assert.Len(t, verrs, 3)
}

func TestTrackSymptom(t *testing.T) {
	fb := &fakeBackend{symptom: backend.SymptomResponse{Status: "ok", InsertedID: "abc123"}}
	f := NewSymptomForm(time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC))
	f.Symptom = " headache "
	f.AddTrigger("screens")
	f.AddTrigger("coffee")
	f.RemoveTrigger(1)

	res, err := NewService(fb).TrackSymptom(context.Background(), f)
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, "abc123", res.ID)
	assert.Equal(t, "headache", fb.entry.Symptom)
	assert.Equal(t, []string{"screens"}, fb.entry.Triggers)
}

func TestTrackSymptom_NotOK(t *testing.T) {
	fb := &fakeBackend{symptom: backend.SymptomResponse{Status: "error"}}
	f := NewSymptomForm(time.Now())
	f.Symptom = "cough"

	res, err := NewService(fb).TrackSymptom(context.Background(), f)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.False(t, res.Failed)
}
