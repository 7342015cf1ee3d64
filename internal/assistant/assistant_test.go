// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/session"
	"github.com/medibot/medibot-tui/internal/storage"
)

// fakeBackend records what it was asked and what the store held meanwhile.
type fakeBackend struct {
	store *session.Store

	answer string
	err    error

	query      string
	history    []model.Message
	image      string
	duringCall []model.Message
}

func (f *fakeBackend) Chat(_ context.Context, query string, history []model.Message) (string, error) {
	f.query = query
	f.history = history
	f.duringCall = f.store.Messages()
	return f.answer, f.err
}

func (f *fakeBackend) AnalyzeImage(_ context.Context, image string) (string, error) {
	f.image = image
	f.duringCall = f.store.Messages()
	return f.answer, f.err
}

func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func newService(t *testing.T, answer string, err error) (*Service, *fakeBackend) {
	t.Helper()
	store := session.New(storage.NewMemoryStore())
	fb := &fakeBackend{store: store, answer: answer, err: err}
	return New(store, fb, WithClock(fixedClock)), fb
}

func texts(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// =============================================================================
// CHAT TURNS
// =============================================================================

func TestSend_Success(t *testing.T) {
	svc, fb := newService(t, "MEDICAL ASSESSMENT: likely tension headache", nil)

	reply, err := svc.Send(context.Background(), "  I have a headache  ")
	require.NoError(t, err)

	assert.False(t, reply.Failed)
	assert.Equal(t, "I have a headache", fb.query)

	// History includes the new user message but not the placeholder.
	require.Len(t, fb.history, 2)
	assert.Equal(t, model.GreetingText, fb.history[0].Text)
	assert.Equal(t, "I have a headache", fb.history[1].Text)

	// The placeholder was visible while the call ran.
	assert.Contains(t, texts(fb.duringCall), ChatPlaceholder)

	msgs := svc.Store().Messages()
	assert.Equal(t, []string{
		model.GreetingText,
		"I have a headache",
		"MEDICAL ASSESSMENT: likely tension headache",
	}, texts(msgs))
	assert.Equal(t, model.SenderBot, msgs[2].Sender)
	assert.Equal(t, fixedClock().UnixMilli()+2, msgs[2].ID)
}

func TestSend_EmptyAnswerUsesFallback(t *testing.T) {
	svc, _ := newService(t, "", nil)

	reply, err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, ChatFallback, reply.Message.Text)
	assert.False(t, reply.Failed)
}

func TestSend_BackendFailure(t *testing.T) {
	boom := errors.New("connection refused")
	svc, _ := newService(t, "", boom)

	reply, err := svc.Send(context.Background(), "hello")
	require.NoError(t, err)

	assert.True(t, reply.Failed)
	assert.ErrorIs(t, reply.Err, boom)

	got := texts(svc.Store().Messages())
	assert.Equal(t, []string{model.GreetingText, "hello", ChatErrorText}, got)
	assert.NotContains(t, got, ChatPlaceholder)
}

func TestSend_EmptyInputHasNoSideEffects(t *testing.T) {
	svc, fb := newService(t, "x", nil)

	_, err := svc.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, fb.query)
	assert.Len(t, svc.Store().Messages(), 1)
}

// =============================================================================
// IMAGE TURNS
// =============================================================================

func TestAnalyzeImage_NoUserMessage(t *testing.T) {
	svc, fb := newService(t, "Looks like mild eczema.", nil)

	reply, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")
	require.NoError(t, err)

	assert.Equal(t, "aGVsbG8=", fb.image)
	assert.Contains(t, texts(fb.duringCall), ImagePlaceholder)
	assert.Equal(t, "Looks like mild eczema.", reply.Message.Text)
	assert.Equal(t, []string{model.GreetingText, "Looks like mild eczema."}, texts(svc.Store().Messages()))
}

func TestAnalyzeImage_Failure(t *testing.T) {
	svc, _ := newService(t, "", errors.New("500"))

	reply, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")
	require.NoError(t, err)

	assert.True(t, reply.Failed)
	assert.Equal(t, []string{model.GreetingText, ImageErrorText}, texts(svc.Store().Messages()))
}

func TestAnalyzeImage_Fallback(t *testing.T) {
	svc, _ := newService(t, "", nil)

	reply, err := svc.AnalyzeImage(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, ImageFallback, reply.Message.Text)
}

func TestAnalyzeImageFile(t *testing.T) {
	svc, fb := newService(t, "ok", nil)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	path := filepath.Join(t.TempDir(), "skin.png")
	require.NoError(t, os.WriteFile(path, png, 0600))

	_, err := svc.AnalyzeImageFile(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, fb.image)

	_, err = svc.AnalyzeImageFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Len(t, svc.Store().Messages(), 2)
}
