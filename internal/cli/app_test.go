// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/storage"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeBackend struct {
	answer  string
	err     error
	bmi     backend.BMIResponse
	insight backend.InsightResponse
	status  string

	moods    []backend.MoodRequest
	symptoms []model.SymptomEntry
}

func (f *fakeBackend) Chat(context.Context, string, []model.Message) (string, error) {
	return f.answer, f.err
}

func (f *fakeBackend) AnalyzeImage(context.Context, string) (string, error) {
	return f.answer, f.err
}

func (f *fakeBackend) CalculateBMI(context.Context, float64, float64) (backend.BMIResponse, error) {
	return f.bmi, f.err
}

func (f *fakeBackend) TrackMood(_ context.Context, req backend.MoodRequest) (backend.InsightResponse, error) {
	f.moods = append(f.moods, req)
	return f.insight, f.err
}

func (f *fakeBackend) CBTExercises(context.Context, backend.CBTRequest) (backend.InsightResponse, error) {
	return f.insight, f.err
}

func (f *fakeBackend) TrackSymptom(_ context.Context, e model.SymptomEntry) (backend.SymptomResponse, error) {
	f.symptoms = append(f.symptoms, e)
	return backend.SymptomResponse{Status: f.status, InsertedID: "42"}, f.err
}

func (f *fakeBackend) Health(context.Context) error { return f.err }

type fakeOpener struct {
	supported bool
	opened    []string
}

func (o *fakeOpener) Supported() bool { return o.supported }

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return nil
}

// fakeLines feeds the chat loop scripted input, then io.EOF.
type fakeLines struct {
	lines []string
}

func (f *fakeLines) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeLines) Close() error { return nil }

type harness struct {
	app *App
	fb  *fakeBackend
	out *bytes.Buffer
	err *bytes.Buffer
}

// newTestApp builds an app over an in-memory store with captured output.
// The clock advances a second per call so message and session ids never
// collide.
func newTestApp(t *testing.T) *harness {
	t.Helper()

	fb := &fakeBackend{
		answer:  "Rest and drink plenty of fluids.",
		bmi:     backend.BMIResponse{BMI: 22.857, Category: "Normal weight"},
		insight: backend.InsightResponse{Response: "Try a short walk outside.", Type: backend.InsightMoodTracking},
		status:  "ok",
	}

	var tick atomic.Int64
	kv := storage.NewMemoryStore()
	a := NewApp(config.Default(), kv, fb)
	a.Now = func() time.Time {
		return time.UnixMilli(1_700_000_000_000 + tick.Add(1)*1000)
	}
	a.Auth = auth.NewLocalProvider(kv, a.Settings, auth.WithIterations(1))
	a.Opener = &fakeOpener{}

	h := &harness{app: a, fb: fb, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	a.In = strings.NewReader("")
	a.Out = h.out
	a.Err = h.err
	a.Interactive = false
	a.Plain = true
	t.Cleanup(func() { _ = a.Close() })
	return h
}

// input replaces stdin. It must be called before the first prompt.
func (h *harness) input(s string) {
	h.app.In = strings.NewReader(s)
	h.app.prompter = nil
}

// decode parses a JSON response written to out into data.
func (h *harness) decode(t *testing.T, data any) JSONResponse {
	t.Helper()
	resp := JSONResponse{Data: data}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp), h.out.String())
	return resp
}

// archive records one user turn and archives it, returning the session.
func (h *harness) archive(t *testing.T, text string) model.ChatSession {
	t.Helper()
	require.NoError(t, h.app.Store.AppendMessage(model.NewUserMessage(h.app.Now(), text)))
	cs, err := h.app.Store.ClearChat()
	require.NoError(t, err)
	return cs
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func cmdArgs(raw ...string) *ArgParser {
	return NewArgParser(raw, "yes", "y", "raw", "open", "call", "share-location", "clear-avatar", "enable-2fa", "disable-2fa")
}

// =============================================================================
// ASK
// =============================================================================

func TestRunAsk_PrintsAnswerAndRecordsTurn(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunAsk(context.Background(), cmdArgs("I", "have", "a", "cold")))

	assert.Contains(t, h.out.String(), "Rest and drink plenty of fluids.")
	msgs := h.app.Store.Messages()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "I have a cold", msgs[len(msgs)-2].Text)
	assert.True(t, msgs[len(msgs)-2].IsUser())
	assert.Equal(t, "Rest and drink plenty of fluids.", msgs[len(msgs)-1].Text)
}

func TestRunAsk_ReadsPipedQuestion(t *testing.T) {
	h := newTestApp(t)
	h.input("What helps a migraine?\n")

	require.NoError(t, h.app.RunAsk(context.Background(), cmdArgs()))

	msgs := h.app.Store.Messages()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, "What helps a migraine?", msgs[len(msgs)-2].Text)
}

func TestRunAsk_MissingQuestion(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunAsk(context.Background(), cmdArgs())
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRunAsk_BackendFailure(t *testing.T) {
	h := newTestApp(t)
	h.fb.err = &backend.Error{Type: backend.ErrTypeConnection, Message: "backend unreachable"}

	err := h.app.RunAsk(context.Background(), cmdArgs("hello"))
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, h.err.String(), assistant.ChatErrorText)
	assert.Empty(t, h.out.String())
}

func TestRunAsk_JSON(t *testing.T) {
	h := newTestApp(t)
	h.app.JSON = true

	require.NoError(t, h.app.RunAsk(context.Background(), cmdArgs("Is", "ibuprofen", "safe?")))

	var data AskData
	resp := h.decode(t, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)
	assert.Equal(t, "Is ibuprofen safe?", data.Query)
	assert.Equal(t, "Rest and drink plenty of fluids.", data.Answer)
	assert.False(t, data.Failed)
}

// =============================================================================
// TRACKERS
// =============================================================================

func TestRunBMI(t *testing.T) {
	tests := []struct {
		name string
		args *ArgParser
	}{
		{"flags", cmdArgs("--weight", "70", "--height", "175")},
		{"short flags", cmdArgs("-w", "70", "-H", "175")},
		{"positional", cmdArgs("70", "175")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestApp(t)
			require.NoError(t, h.app.RunBMI(context.Background(), tt.args))
			assert.Contains(t, h.out.String(), "22.86")
			assert.Contains(t, h.out.String(), "Normal weight")
			assert.Contains(t, h.out.String(), "Great job!")
		})
	}
}

func TestRunBMI_InvalidInput(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunBMI(context.Background(), cmdArgs("--weight", "heavy", "--height", "175"))
	require.Error(t, err)
	assert.True(t, tracker.IsValidation(err))
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRunBMI_BackendFailure(t *testing.T) {
	h := newTestApp(t)
	h.fb.err = errors.New("boom")

	err := h.app.RunBMI(context.Background(), cmdArgs("70", "175"))
	require.Error(t, err)
	assert.Contains(t, h.err.String(), tracker.BMIErrorText)
}

func TestRunMood(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunMood(context.Background(),
		cmdArgs("--score", "3", "--tag", "work", "--tag", " ", "--tag", "sleep", "Stressed", "about", "deadlines")))

	require.Len(t, h.fb.moods, 1)
	got := h.fb.moods[0]
	assert.Equal(t, "Stressed about deadlines", got.Description)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, []string{"work", "sleep"}, got.Tags)
	assert.Contains(t, h.out.String(), "Try a short walk outside.")
}

func TestRunMood_Validation(t *testing.T) {
	tests := []struct {
		name string
		args *ArgParser
	}{
		{"missing description", cmdArgs("--score", "4")},
		{"score too high", cmdArgs("--score", "11", "fine")},
		{"score not a number", cmdArgs("--score", "great", "fine")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestApp(t)
			err := h.app.RunMood(context.Background(), tt.args)
			assert.Equal(t, ExitUsageError, GetExitCode(err))
			assert.Empty(t, h.fb.moods)
		})
	}
}

func TestRunCBT_JSON(t *testing.T) {
	h := newTestApp(t)
	h.app.JSON = true
	h.fb.insight = backend.InsightResponse{Response: "Write the worry down.", Type: backend.InsightCBTExercises}

	require.NoError(t, h.app.RunCBT(context.Background(), cmdArgs("--tried", "journaling", "I", "worry")))

	var data InsightData
	h.decode(t, &data)
	assert.Equal(t, "Write the worry down.", data.Text)
	assert.Equal(t, backend.InsightCBTExercises, data.Type)
}

func TestRunSymptom(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunSymptom(context.Background(), cmdArgs(
		"--symptom", "headache",
		"--severity", "6",
		"--date", "2024-05-01T09:30",
		"--trigger", "screen",
		"--trigger", "noise",
		"--notes", "after lunch",
	)))

	require.Len(t, h.fb.symptoms, 1)
	e := h.fb.symptoms[0]
	assert.Equal(t, "headache", e.Symptom)
	assert.Equal(t, 6, e.Severity)
	assert.Equal(t, "2024-05-01T09:30", e.Date)
	assert.Equal(t, []string{"screen", "noise"}, e.Triggers)
	assert.Equal(t, "after lunch", e.Notes)
	assert.Contains(t, h.out.String(), tracker.SymptomSavedText)
}

func TestRunSymptom_NotStored(t *testing.T) {
	h := newTestApp(t)
	h.fb.status = "error"

	err := h.app.RunSymptom(context.Background(), cmdArgs("--symptom", "cough"))
	require.Error(t, err)
	assert.Contains(t, h.err.String(), tracker.SymptomErrorText)
}

func TestRunSymptom_BadDate(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunSymptom(context.Background(), cmdArgs("--symptom", "cough", "--date", "yesterday"))
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, h.fb.symptoms)
}

func TestRunImage_MissingFile(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunImage(context.Background(), cmdArgs(t.TempDir()+"/missing.png"))
	require.Error(t, err)
	assert.Len(t, h.app.Store.Messages(), len(model.DefaultConversation()))
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestRunSession_ListJSON(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "My knee hurts")
	h.app.JSON = true

	require.NoError(t, h.app.RunSession(cmdArgs("list")))

	var data []SessionData
	h.decode(t, &data)
	require.Len(t, data, 1)
	assert.Equal(t, cs.ID, data[0].ID)
	assert.Equal(t, cs.Title, data[0].Title)
	assert.Equal(t, 1, data[0].UserMessages)
}

func TestRunSession_ListEmpty(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunSession(cmdArgs()))
	assert.Contains(t, h.out.String(), "No archived conversations.")
}

func TestRunSession_ShowAndLoad(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "Is a rash contagious?")
	id := formatID(cs.ID)

	require.NoError(t, h.app.RunSession(cmdArgs("show", id)))
	assert.Contains(t, h.out.String(), "Is a rash contagious?")

	require.NoError(t, h.app.RunSession(cmdArgs("load", id)))
	var found bool
	for _, m := range h.app.Store.Messages() {
		if m.Text == "Is a rash contagious?" {
			found = true
		}
	}
	assert.True(t, found, "loaded session should be the active conversation")
}

func TestRunSession_Errors(t *testing.T) {
	tests := []struct {
		name string
		args *ArgParser
		want int
	}{
		{"unknown id", cmdArgs("show", "999"), ExitNotFoundError},
		{"bad id", cmdArgs("load", "abc"), ExitUsageError},
		{"missing id", cmdArgs("delete"), ExitUsageError},
		{"unknown subcommand", cmdArgs("lsit"), ExitUsageError},
		{"bad format", cmdArgs("export", "--format", "pdf"), ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestApp(t)
			err := h.app.RunSession(tt.args)
			assert.Equal(t, tt.want, GetExitCode(err), "err=%v", err)
		})
	}
}

func TestRunSession_UnknownSubcommandSuggests(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunSession(cmdArgs("lsit"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "list"`)
}

func TestRunSession_DeleteNeedsConfirmation(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "Back pain")

	err := h.app.RunSession(cmdArgs("delete", formatID(cs.ID)))
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Len(t, h.app.Store.Sessions(), 1)

	require.NoError(t, h.app.RunSession(cmdArgs("delete", "--yes", formatID(cs.ID))))
	assert.Empty(t, h.app.Store.Sessions())
}

func TestRunSession_DeleteDeclined(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "Back pain")
	h.app.Interactive = true
	h.input("n\n")

	require.NoError(t, h.app.RunSession(cmdArgs("rm", formatID(cs.ID))))
	assert.Len(t, h.app.Store.Sessions(), 1)
	assert.Contains(t, h.err.String(), "Cancelled.")
}

func TestRunSession_Clear(t *testing.T) {
	h := newTestApp(t)
	require.NoError(t, h.app.Store.AppendMessage(model.NewUserMessage(h.app.Now(), "Sore throat")))

	require.NoError(t, h.app.RunSession(cmdArgs("new")))
	require.Len(t, h.app.Store.Sessions(), 1)
	assert.Equal(t, model.DefaultConversation()[0].Text, h.app.Store.Messages()[0].Text)
}

func TestRunSession_ExportToDir(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "Fever for two days")
	dir := t.TempDir()
	h.app.JSON = true

	require.NoError(t, h.app.RunSession(cmdArgs("export", formatID(cs.ID), "--format", "md", "--output", dir)))

	var data map[string]string
	h.decode(t, &data)
	assert.True(t, strings.HasPrefix(data["path"], dir))
	assert.True(t, strings.HasSuffix(data["path"], ".md"))

	content, err := os.ReadFile(data["path"])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Fever for two days")
}

func TestRunSession_ExportToStdout(t *testing.T) {
	h := newTestApp(t)
	require.NoError(t, h.app.Store.AppendMessage(model.NewUserMessage(h.app.Now(), "Dizzy when standing")))

	require.NoError(t, h.app.RunSession(cmdArgs("export", "active", "--format", "json", "--output", "-")))
	assert.Contains(t, h.out.String(), "Dizzy when standing")
}

// =============================================================================
// ACCOUNT
// =============================================================================

func TestAccountLifecycle(t *testing.T) {
	h := newTestApp(t)
	h.input("secret1\nsecret1\n")
	ctx := context.Background()

	require.NoError(t, h.app.RunSignUp(ctx, cmdArgs("--email", "Ana@Example.com", "--username", "ana")))
	assert.Contains(t, h.out.String(), "ana")

	h.out.Reset()
	require.NoError(t, h.app.RunWhoAmI())
	assert.Contains(t, h.out.String(), "ana@example.com")

	require.NoError(t, h.app.Store.AppendMessage(model.NewUserMessage(h.app.Now(), "private")))
	require.NoError(t, h.app.RunSignOut(cmdArgs("--yes")))

	err := h.app.RunWhoAmI()
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	for _, m := range h.app.Store.Messages() {
		assert.NotEqual(t, "private", m.Text)
	}
	assert.Equal(t, "", h.app.Settings.Load().Username)
}

func TestRunSignIn(t *testing.T) {
	h := newTestApp(t)
	h.input("secret1\nsecret1\nwrong-pw\nsecret1\n")
	ctx := context.Background()

	require.NoError(t, h.app.RunSignUp(ctx, cmdArgs("--email", "ana@example.com", "--username", "ana")))
	require.NoError(t, h.app.Auth.SignOut())

	err := h.app.RunSignIn(ctx, cmdArgs("--email", "ana@example.com"))
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, ExitAuthError, GetExitCode(err))

	require.NoError(t, h.app.RunSignIn(ctx, cmdArgs("--email", "ana@example.com")))
	u, ok := h.app.Auth.Current()
	require.True(t, ok)
	assert.Equal(t, "ana", u.Username)
}

func TestRunSignUp_Validation(t *testing.T) {
	h := newTestApp(t)
	h.input("secret1\nsecret2\n")

	err := h.app.RunSignUp(context.Background(), cmdArgs("--email", "ana@example.com", "--username", "ana"))
	require.Error(t, err)
	assert.True(t, auth.IsValidation(err))
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestRunSignUp_JSONNeedsFlags(t *testing.T) {
	h := newTestApp(t)
	h.app.JSON = true

	err := h.app.RunSignUp(context.Background(), cmdArgs())
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRunSettings(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunSettings(cmdArgs("--username", "  Nurse Joy ")))
	assert.Equal(t, "Nurse Joy", h.app.Settings.Load().Username)
	assert.Contains(t, h.out.String(), "Nurse Joy")
	assert.Contains(t, h.out.String(), "not signed in")
}

func TestRunSettings_EnableTwoFactor(t *testing.T) {
	h := newTestApp(t)
	h.input("secret1\nsecret1\n")
	require.NoError(t, h.app.RunSignUp(context.Background(), cmdArgs("--email", "ana@example.com", "--username", "ana")))
	h.out.Reset()
	h.app.JSON = true

	require.NoError(t, h.app.RunSettings(cmdArgs("--enable-2fa")))

	var view settingsView
	h.decode(t, &view)
	assert.NotEmpty(t, view.TOTPKey)
	assert.True(t, strings.HasPrefix(view.TOTPURL, "otpauth://"))
	require.NotNil(t, view.User)
	assert.True(t, view.User.TOTPEnabled)
}

// =============================================================================
// EMERGENCY / CONSULT
// =============================================================================

func TestRunEmergency_Call(t *testing.T) {
	h := newTestApp(t)
	opener := &fakeOpener{supported: true}
	h.app.Opener = opener
	h.app.JSON = true

	require.NoError(t, h.app.RunEmergency(context.Background(), cmdArgs("--call")))

	assert.Equal(t, []string{"tel:911"}, opener.opened)
	var data EmergencyData
	h.decode(t, &data)
	assert.Equal(t, "911", data.Number)
	assert.Equal(t, "tel:911", data.TelURL)
	assert.True(t, data.Called)
}

func TestRunEmergency_CannotCall(t *testing.T) {
	h := newTestApp(t)

	require.NoError(t, h.app.RunEmergency(context.Background(), cmdArgs("--call", "--share-location")))

	assert.Contains(t, h.out.String(), "911")
	assert.Contains(t, h.out.String(), "Location is not available on this device.")
	assert.Contains(t, h.err.String(), "cannot place calls")
}

func TestRunEmergency_ConfiguredNumberAndLocation(t *testing.T) {
	h := newTestApp(t)
	h.app.Config.Emergency.Number = "112"
	h.app.Config.Emergency.ShareLocation = true
	h.app.Config.Emergency.Latitude = 52.52
	h.app.Config.Emergency.Longitude = 13.405
	h.app.JSON = true

	require.NoError(t, h.app.RunEmergency(context.Background(), cmdArgs("--share-location")))

	var data EmergencyData
	h.decode(t, &data)
	assert.Equal(t, "112", data.Number)
	assert.True(t, strings.HasPrefix(data.Location, "Location: "))
	assert.False(t, data.Called)
}

func TestRunConsult_Flags(t *testing.T) {
	h := newTestApp(t)
	h.app.JSON = true

	require.NoError(t, h.app.RunConsult(cmdArgs("--symptoms", "fever", "--consultMode", "video")))

	var data map[string]any
	h.decode(t, &data)
	assert.Equal(t, "fever", data["symptoms"])
	assert.Equal(t, "video", data["consultMode"])
}

func TestRunConsult_Prompts(t *testing.T) {
	h := newTestApp(t)
	h.app.Interactive = true
	// Full name, four skipped fields, symptoms, then skip the rest.
	h.input("Ana\n\n\n\n\nchest pain\n" + strings.Repeat("\n", 14))

	require.NoError(t, h.app.RunConsult(cmdArgs()))
	assert.Contains(t, h.out.String(), "Consultation request recorded.")
}

func TestRunConsult_NeedsInput(t *testing.T) {
	h := newTestApp(t)

	err := h.app.RunConsult(cmdArgs())
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// CHAT REPL
// =============================================================================

func TestChatLoop(t *testing.T) {
	h := newTestApp(t)
	lines := &fakeLines{lines: []string{"I feel dizzy", "", "/sessions", "/bogus", "/new", "/quit", "never read"}}

	require.NoError(t, h.app.chatLoop(context.Background(), lines))

	assert.Contains(t, h.out.String(), "Rest and drink plenty of fluids.")
	assert.Contains(t, h.out.String(), "In an emergency call 911.")
	assert.Contains(t, h.err.String(), "unknown command /bogus")
	assert.Equal(t, []string{"never read"}, lines.lines)

	sessions := h.app.Store.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].UserMessageCount())
}

func TestChatLoop_EOFExits(t *testing.T) {
	h := newTestApp(t)
	require.NoError(t, h.app.chatLoop(context.Background(), &fakeLines{}))
}

func TestHandleSlash(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantQuit bool
		wantCode int
		wantOut  string
	}{
		{name: "quit", input: "/quit", wantQuit: true},
		{name: "quit alias", input: "/q", wantQuit: true},
		{name: "help", input: "/help", wantOut: "/export"},
		{name: "sos", input: "/sos", wantOut: "911"},
		{name: "bmi", input: "/bmi 70 175", wantOut: "22.86"},
		{name: "bmi needs two values", input: "/bmi 70", wantCode: ExitUsageError},
		{name: "load unknown", input: "/load 5", wantCode: ExitNotFoundError},
		{name: "delete bad id", input: "/delete x", wantCode: ExitUsageError},
		{name: "image needs path", input: "/image", wantCode: ExitUsageError},
		{name: "unknown suggests", input: "/sesions", wantCode: ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestApp(t)
			quit, err := h.app.handleSlash(context.Background(), tt.input)
			assert.Equal(t, tt.wantQuit, quit)
			assert.Equal(t, tt.wantCode, GetExitCode(err), "err=%v", err)
			if tt.wantOut != "" {
				assert.Contains(t, h.out.String(), tt.wantOut)
			}
		})
	}
}

func TestHandleSlash_LoadAndDelete(t *testing.T) {
	h := newTestApp(t)
	cs := h.archive(t, "Ankle sprain")
	ctx := context.Background()

	_, err := h.app.handleSlash(ctx, "/load "+formatID(cs.ID))
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Ankle sprain")

	_, err = h.app.handleSlash(ctx, "/delete "+formatID(cs.ID))
	require.NoError(t, err)
	assert.Empty(t, h.app.Store.Sessions())
}

func TestCompleteSlash(t *testing.T) {
	assert.Contains(t, completeSlash("/ex"), "/export")
	assert.Empty(t, completeSlash("hello"))
}

// =============================================================================
// CAPABILITIES
// =============================================================================

func TestNewApp_SpeechFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Speech = false
	a := NewApp(cfg, storage.NewMemoryStore(), &fakeBackend{})
	assert.False(t, a.Speech.Supported())
}

var _ capability.Opener = (*fakeOpener)(nil)
