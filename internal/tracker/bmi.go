// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tracker

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// BMIErrorText is shown when the backend cannot classify the input.
const BMIErrorText = "Could not calculate BMI. Please try again."

// BMIForm holds the raw text of the BMI fields.
type BMIForm struct {
	Weight string // kg
	Height string // cm
}

// Validate parses both fields; each must be a number greater than zero.
func (f BMIForm) Validate() (weightKg, heightCm float64, err error) {
	var errs ValidationErrors
	weightKg = parsePositive(&errs, "weight", f.Weight)
	heightCm = parsePositive(&errs, "height", f.Height)
	return weightKg, heightCm, errs.err()
}

func parsePositive(errs *ValidationErrors, field, raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.add(field, "must be a number")
		return 0
	}
	if v <= 0 {
		errs.add(field, "must be greater than zero")
		return 0
	}
	return v
}

// BMIResult is the backend's classification, shown verbatim.
type BMIResult struct {
	BMI      float64
	Category string

	Failed bool
	Err    error
}

// Format prints the index to two decimals.
func (r BMIResult) Format() string {
	return fmt.Sprintf("%.2f", r.BMI)
}

// Advice returns the guidance for the category.
func (r BMIResult) Advice() string {
	return Advice(r.Category)
}

// Advice returns guidance for a BMI category, matched by substring so
// labels like "Overweight (pre-obese)" still match. Unknown categories get
// no advice.
func Advice(category string) string {
	switch {
	case strings.Contains(category, "Underweight"):
		return "Consider consulting a nutritionist to help you gain weight safely and ensure you’re getting enough essential nutrients."
	case strings.Contains(category, "Normal"):
		return "Great job! Keep maintaining your current healthy habits and balanced diet."
	case strings.Contains(category, "Overweight"):
		return "Try incorporating more physical activity and monitor your diet. A fitness plan or talking with a dietitian could be helpful."
	case strings.Contains(category, "Obese"):
		return "It’s advisable to consult a medical professional. They can guide you on safe ways to manage your weight and improve your overall health."
	default:
		return ""
	}
}

// CalculateBMI validates f and asks the backend to classify it. The index is
// never computed locally.
func (s *Service) CalculateBMI(ctx context.Context, f BMIForm) (BMIResult, error) {
	w, h, err := f.Validate()
	if err != nil {
		return BMIResult{}, err
	}

	start := time.Now()
	resp, err := s.backend.CalculateBMI(ctx, w, h)
	if err != nil {
		logFailure("BMI_ERROR", start, err)
		return BMIResult{Failed: true, Err: err}, nil
	}
	return BMIResult{BMI: resp.BMI, Category: resp.Category}, nil
}
