// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medibot/medibot-tui/internal/emergency"
)

// =============================================================================
// FORM KINDS
// =============================================================================

// FormKind selects which overlay form is open.
type FormKind int

const (
	FormBMI FormKind = iota
	FormMood
	FormCBT
	FormSymptom
	FormSettings
	FormSignIn
	FormSignUp
	FormConsult
)

// Title returns the overlay heading.
func (k FormKind) Title() string {
	switch k {
	case FormBMI:
		return "BMI Calculator"
	case FormMood:
		return "Mood Tracker"
	case FormCBT:
		return "CBT Exercises"
	case FormSymptom:
		return "Symptom Tracker"
	case FormSettings:
		return "User Settings"
	case FormSignIn:
		return "Sign In"
	case FormSignUp:
		return "Create Account"
	case FormConsult:
		return "Consult Doctor"
	default:
		return ""
	}
}

// =============================================================================
// FIELDS
// =============================================================================

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldList // Enter adds the typed value; Backspace on empty removes the last
)

type formField struct {
	key   string
	label string
	kind  fieldKind
	input textinput.Model
	items []string
}

func newField(key, label, placeholder string, kind fieldKind) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 2000
	ti.Prompt = ""
	if kind == fieldSecret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return formField{key: key, label: label, kind: kind, input: ti}
}

// =============================================================================
// FORM
// =============================================================================

// Form is an overlay with labelled inputs. Submission is handled by the
// chat model, which knows the services.
type Form struct {
	Kind   FormKind
	fields []formField
	focus  int

	errs     map[string]string
	result   string
	markdown bool
	failed   bool
	busy     bool

	// consult binds FormConsult fields to the request record.
	consult *emergency.ConsultRequest
}

// NewForm builds the fields for kind. defaults prefills values by key.
func NewForm(kind FormKind, defaults map[string]string) *Form {
	f := &Form{Kind: kind, errs: map[string]string{}}

	switch kind {
	case FormBMI:
		f.fields = []formField{
			newField("weight", "Weight (kg)", "70", fieldText),
			newField("height", "Height (cm)", "170", fieldText),
		}
	case FormMood:
		f.fields = []formField{
			newField("description", "How are you feeling?", "Describe your mood", fieldText),
			newField("score", "Mood score (1-10)", "5", fieldText),
			newField("tags", "Tags", "Type a tag and press Enter", fieldList),
		}
	case FormCBT:
		f.fields = []formField{
			newField("concern", "What's on your mind?", "Describe your concern", fieldText),
			newField("tried", "Strategies you've tried", "Optional", fieldText),
			newField("outcome", "Desired outcome", "Optional", fieldText),
		}
	case FormSymptom:
		f.fields = []formField{
			newField("date", "Date", "YYYY-MM-DDTHH:MM", fieldText),
			newField("symptom", "Symptom", "e.g. headache", fieldText),
			newField("severity", "Severity (1-10)", "5", fieldText),
			newField("duration", "Duration", "e.g. 2 hours", fieldText),
			newField("triggers", "Triggers", "Type a trigger and press Enter", fieldList),
			newField("medications", "Medications", "Optional", fieldText),
			newField("notes", "Notes", "Optional", fieldText),
		}
	case FormSettings:
		f.fields = []formField{
			newField("username", "Username", "Guest", fieldText),
			newField("avatar", "Avatar image path", "Optional, e.g. ~/me.png", fieldText),
		}
	case FormSignIn:
		f.fields = []formField{
			newField("email", "Email", "you@example.com", fieldText),
			newField("password", "Password", "", fieldSecret),
			newField("code", "Verification code", "Only if two-factor is on", fieldText),
		}
	case FormSignUp:
		f.fields = []formField{
			newField("username", "Username", "", fieldText),
			newField("email", "Email", "you@example.com", fieldText),
			newField("password", "Password", "At least 6 characters", fieldSecret),
			newField("confirm", "Confirm password", "", fieldSecret),
		}
	case FormConsult:
		f.consult = &emergency.ConsultRequest{}
		for _, cf := range f.consult.Fields() {
			f.fields = append(f.fields, newField(cf.Key, cf.Placeholder, "", fieldText))
		}
	}

	for i := range f.fields {
		if v, ok := defaults[f.fields[i].key]; ok {
			f.fields[i].input.SetValue(v)
		}
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Value returns the trimmed text of field key.
func (f *Form) Value(key string) string {
	for _, fld := range f.fields {
		if fld.key == key {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

// RawValue returns the untrimmed text of field key, for passwords.
func (f *Form) RawValue(key string) string {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld.input.Value()
		}
	}
	return ""
}

// Items returns the entries of list field key.
func (f *Form) Items(key string) []string {
	for _, fld := range f.fields {
		if fld.key == key {
			return append([]string(nil), fld.items...)
		}
	}
	return nil
}

// SetValue replaces the text of field key.
func (f *Form) SetValue(key, v string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(v)
		}
	}
}

// Consult copies the fields into the consult request.
func (f *Form) Consult() *emergency.ConsultRequest {
	if f.consult == nil {
		return nil
	}
	for _, cf := range f.consult.Fields() {
		*cf.Value = f.Value(cf.Key)
	}
	return f.consult
}

// Focused returns the key of the focused field.
func (f *Form) Focused() string {
	if f.focus < len(f.fields) {
		return f.fields[f.focus].key
	}
	return ""
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool { return f.busy }

func (f *Form) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

// addItem moves the focused list field's text into its items. It reports
// whether the field was a list field, which consumes Enter.
func (f *Form) addItem() bool {
	fld := &f.fields[f.focus]
	if fld.kind != fieldList {
		return false
	}
	if v := strings.TrimSpace(fld.input.Value()); v != "" {
		fld.items = append(fld.items, v)
	}
	fld.input.SetValue("")
	return true
}

// removeLastItem drops the last item when the list input is empty.
func (f *Form) removeLastItem() bool {
	fld := &f.fields[f.focus]
	if fld.kind != fieldList || fld.input.Value() != "" || len(fld.items) == 0 {
		return false
	}
	fld.items = fld.items[:len(fld.items)-1]
	return true
}

// begin marks the form as submitting and clears the previous outcome.
func (f *Form) begin() {
	f.busy = true
	f.errs = map[string]string{}
	f.result, f.failed, f.markdown = "", false, false
}

// apply records a submission outcome.
func (f *Form) apply(msg FormResultMsg) {
	f.busy = false
	f.errs = map[string]string{}
	for k, v := range msg.FieldErrors {
		f.errs[k] = v
	}
	f.result, f.markdown, f.failed = msg.Text, msg.Markdown, msg.Failed
}

// update routes a key to the form. submit is set when Enter should submit.
func (f *Form) update(msg tea.KeyMsg, keys KeyMap) (submit bool, cmd tea.Cmd) {
	if f.busy {
		return false, nil
	}
	switch {
	case key.Matches(msg, keys.NextField):
		f.move(1)
		return false, nil
	case key.Matches(msg, keys.PrevField):
		f.move(-1)
		return false, nil
	case key.Matches(msg, keys.Submit):
		if f.addItem() {
			return false, nil
		}
		return true, nil
	case msg.Type == tea.KeyBackspace:
		if f.removeLastItem() {
			return false, nil
		}
	}
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return false, cmd
}
