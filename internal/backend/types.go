// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"

	"github.com/medibot/medibot-tui/internal/model"
)

// Endpoint paths.
const (
	PathChat         = "/chat"
	PathAnalyzeImage = "/analyze-image"
	PathCalculateBMI = "/calculate-bmi"
	PathMood         = "/mood"
	PathCBT          = "/cbt"
	PathSymptoms     = "/symptoms"
)

// Defaults applied to CBT requests with empty optional fields.
const (
	DefaultTriedStrategies = "None"
	DefaultDesiredOutcome  = "Not specified"
)

// =============================================================================
// REQUESTS
// =============================================================================

// ChatRequest is the body of POST /chat. History is the conversation as
// stored, including the message being sent.
type ChatRequest struct {
	Query   string          `json:"query"`
	History []model.Message `json:"history"`
}

// ImageRequest is the body of POST /analyze-image. Image is base64 encoded.
type ImageRequest struct {
	Image string `json:"image"`
}

// BMIRequest is the body of POST /calculate-bmi. Weight in kg, height in cm.
type BMIRequest struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

// MoodRequest is the body of POST /mood.
type MoodRequest struct {
	Description string   `json:"description"`
	Score       int      `json:"score"`
	Tags        []string `json:"tags"`
}

// CBTRequest is the body of POST /cbt.
type CBTRequest struct {
	Concern         string `json:"concern"`
	TriedStrategies string `json:"tried_strategies"`
	DesiredOutcome  string `json:"desired_outcome"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// TextResponse is returned by /chat and /analyze-image.
type TextResponse struct {
	Response string `json:"response"`
}

// BMIResponse is returned by /calculate-bmi.
type BMIResponse struct {
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
}

// InsightResponse is returned by /mood and /cbt.
type InsightResponse struct {
	Response string `json:"response"`
	Type     string `json:"type"`
}

// Insight types reported by the service.
const (
	InsightMoodTracking = "mood_tracking"
	InsightCBTExercises = "cbt_exercises"
)

// SymptomResponse is returned by /symptoms.
type SymptomResponse struct {
	Status     string   `json:"status"`
	InsertedID RecordID `json:"inserted_id"`
}

// RecordID is a database id that the service may send as a string or a
// number.
type RecordID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = RecordID(n.String())
	return nil
}

// OK reports whether the symptom was stored.
func (r SymptomResponse) OK() bool {
	return r.Status == "ok"
}
