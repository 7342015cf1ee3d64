// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker implements MediBot's health-tracking forms: BMI, mood,
// CBT exercises and the symptom log.
//
// Each form is a plain struct holding field state. Validate returns
// ValidationErrors before any I/O; Service submits a valid form to the
// backend. Backend failures are logged and reported in the result, never
// returned as errors, so callers only handle validation problems.
//
// # Key Types
//
//   - BMIForm / BMIResult: weight and height in, backend bmi and category out
//   - MoodForm, CBTForm / Insight: free-text insight from the backend
//   - SymptomForm / SymptomResult: a symptom-log record and its stored id
//   - ValidationErrors: field-level problems
package tracker
