// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.
//
// Every command accepts --json and then writes exactly one JSONResponse to
// stdout. Human-readable messages go to stderr in that mode.
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response, indented, to w.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the indented encoding, or "{}" if it cannot be encoded.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// =============================================================================
// RESPONSE DATA TYPES
// =============================================================================

// VersionData is the version command's payload.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// AskData is the ask command's payload.
type AskData struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
	Kind   string `json:"kind"`
	Failed bool   `json:"failed"`
}

// SessionData summarises an archived session.
type SessionData struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	Messages     int    `json:"messages"`
	UserMessages int    `json:"user_messages"`
}

// InsightData is the mood and CBT payload.
type InsightData struct {
	Text   string `json:"text"`
	Type   string `json:"type,omitempty"`
	Failed bool   `json:"failed"`
}

// BMIData is the bmi payload.
type BMIData struct {
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
	Advice   string  `json:"advice,omitempty"`
	Failed   bool    `json:"failed"`
}

// SymptomData is the symptom payload.
type SymptomData struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// UserData is the whoami and sign-in payload.
type UserData struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	CreatedAt   string `json:"created_at,omitempty"`
	TOTPEnabled bool   `json:"totp_enabled"`
}

// EmergencyData is the emergency payload.
type EmergencyData struct {
	Number   string `json:"number"`
	TelURL   string `json:"tel_url"`
	Location string `json:"location,omitempty"`
	Called   bool   `json:"called"`
}
