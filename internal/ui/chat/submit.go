// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// =============================================================================
// FORM SUBMISSION
// =============================================================================

func newSymptomDate(now time.Time) string {
	return tracker.NewSymptomForm(now).Date
}

// submitForm validates locally parsed fields and runs the form's service call
// as a command. The outcome comes back as a FormResultMsg.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	kind := f.Kind

	var run func(ctx context.Context) FormResultMsg

	switch kind {
	case FormBMI:
		form := tracker.BMIForm{Weight: f.Value("weight"), Height: f.Value("height")}
		svc := m.deps.Tracker
		run = func(ctx context.Context) FormResultMsg {
			res, err := svc.CalculateBMI(ctx, form)
			if err != nil {
				return validationResult(kind, err)
			}
			if res.Failed {
				return FormResultMsg{Kind: kind, Text: tracker.BMIErrorText, Failed: true}
			}
			return FormResultMsg{Kind: kind, Text: bmiMarkdown(res), Markdown: true}
		}

	case FormMood:
		form := tracker.NewMoodForm()
		form.Description = f.Value("description")
		if s := f.Value("score"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return m.localError(kind, "score", "must be a whole number")
			}
			form.Score = n
		}
		for _, tag := range f.Items("tags") {
			form.AddTag(tag)
		}
		svc := m.deps.Tracker
		run = func(ctx context.Context) FormResultMsg {
			in, err := svc.TrackMood(ctx, form)
			if err != nil {
				return validationResult(kind, err)
			}
			return FormResultMsg{Kind: kind, Text: in.Markdown(), Markdown: !in.Failed, Failed: in.Failed}
		}

	case FormCBT:
		form := tracker.CBTForm{
			Concern:         f.Value("concern"),
			TriedStrategies: f.Value("tried"),
			DesiredOutcome:  f.Value("outcome"),
		}
		svc := m.deps.Tracker
		run = func(ctx context.Context) FormResultMsg {
			in, err := svc.CBTExercises(ctx, form)
			if err != nil {
				return validationResult(kind, err)
			}
			return FormResultMsg{Kind: kind, Text: in.Markdown(), Markdown: !in.Failed, Failed: in.Failed}
		}

	case FormSymptom:
		form := tracker.NewSymptomForm(m.deps.Now())
		if d := f.Value("date"); d != "" {
			form.Date = d
		}
		form.Symptom = f.Value("symptom")
		if s := f.Value("severity"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return m.localError(kind, "severity", "must be a whole number")
			}
			form.Severity = n
		}
		form.Duration = f.Value("duration")
		for _, t := range f.Items("triggers") {
			form.AddTrigger(t)
		}
		form.Medications = f.Value("medications")
		form.Notes = f.Value("notes")
		svc := m.deps.Tracker
		run = func(ctx context.Context) FormResultMsg {
			res, err := svc.TrackSymptom(ctx, form)
			if err != nil {
				return validationResult(kind, err)
			}
			if !res.OK {
				return FormResultMsg{Kind: kind, Text: tracker.SymptomErrorText, Failed: true}
			}
			return FormResultMsg{Kind: kind, Text: tracker.SymptomSavedText}
		}

	case FormSettings:
		name, avatar := f.Value("username"), f.Value("avatar")
		mgr := m.deps.Settings
		if mgr == nil {
			return m.localError(kind, "username", "settings are not available")
		}
		run = func(context.Context) FormResultMsg {
			if _, err := mgr.SetUsername(name); err != nil {
				return FormResultMsg{Kind: kind, Text: "Could not save settings: " + err.Error(), Failed: true}
			}
			if avatar != "" {
				if _, err := mgr.ImportAvatar(expandHome(avatar)); err != nil {
					return FormResultMsg{Kind: kind, FieldErrors: map[string]string{"avatar": err.Error()}}
				}
			}
			return FormResultMsg{Kind: kind, Text: "Settings saved", Close: true}
		}

	case FormSignIn:
		email, password, code := f.Value("email"), f.RawValue("password"), f.Value("code")
		provider := m.deps.Auth
		run = func(ctx context.Context) FormResultMsg {
			u, err := provider.SignIn(ctx, email, password, code)
			switch {
			case errors.Is(err, auth.ErrTOTPRequired):
				return FormResultMsg{Kind: kind, FieldErrors: map[string]string{"code": "verification code required"}}
			case errors.Is(err, auth.ErrInvalidTOTP):
				return FormResultMsg{Kind: kind, FieldErrors: map[string]string{"code": "invalid verification code"}}
			case err != nil:
				return FormResultMsg{Kind: kind, Text: authMessage(err), Failed: true}
			}
			return FormResultMsg{Kind: kind, Text: "Signed in as " + u.Username, Close: true}
		}

	case FormSignUp:
		req := auth.SignUpRequest{
			Username:        f.Value("username"),
			Email:           f.Value("email"),
			Password:        f.RawValue("password"),
			ConfirmPassword: f.RawValue("confirm"),
		}
		provider := m.deps.Auth
		run = func(ctx context.Context) FormResultMsg {
			u, err := provider.SignUp(ctx, req)
			if err != nil {
				return FormResultMsg{Kind: kind, Text: authMessage(err), Failed: true}
			}
			return FormResultMsg{Kind: kind, Text: "Welcome, " + u.Username, Close: true}
		}

	case FormConsult:
		req := f.Consult()
		run = func(context.Context) FormResultMsg {
			if req.Empty() {
				return FormResultMsg{Kind: kind, Text: "Fill in at least one field", Failed: true}
			}
			req.Submit()
			return FormResultMsg{Kind: kind, Text: "Consultation request recorded", Close: true}
		}
	}

	if run == nil || ((kind == FormSignIn || kind == FormSignUp) && m.deps.Auth == nil) {
		return m.setStatus("This form is not available", true), nil
	}

	f.begin()
	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return run(ctx) })
}

// localError reports a field error found before any service call.
func (m Model) localError(kind FormKind, field, msg string) (tea.Model, tea.Cmd) {
	m.form.apply(FormResultMsg{Kind: kind, FieldErrors: map[string]string{field: msg}})
	return m, nil
}

// validationResult maps tracker validation errors onto fields.
func validationResult(kind FormKind, err error) FormResultMsg {
	var verrs tracker.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, v := range verrs {
			fields[v.Field] = v.Message
		}
		return FormResultMsg{Kind: kind, FieldErrors: fields}
	}
	return FormResultMsg{Kind: kind, Text: err.Error(), Failed: true}
}

func authMessage(err error) string {
	var verr auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrAccountExists):
		return "An account with this email already exists"
	default:
		return err.Error()
	}
}

func bmiMarkdown(res tracker.BMIResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Your BMI:** %s\n\n**Category:** %s", res.Format(), res.Category)
	if advice := res.Advice(); advice != "" {
		b.WriteString("\n\n" + advice)
	}
	return b.String()
}
