// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package emergency

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/capability"
)

type fakeOpener struct {
	supported bool
	err       error
	opened    []string
}

func (f *fakeOpener) Supported() bool { return f.supported }

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestScreen_DefaultNumber(t *testing.T) {
	s := NewScreen("", nil, nil)
	assert.Equal(t, "911", s.Number())
	assert.Equal(t, "tel:911", s.TelURL())
	assert.False(t, s.CanLocate())
	assert.False(t, s.CanCall())
}

func TestScreen_Call(t *testing.T) {
	captureLog(t)
	op := &fakeOpener{supported: true}
	s := NewScreen("112", nil, op)

	require.NoError(t, s.Call())
	assert.Equal(t, []string{"tel:112"}, op.opened)
}

func TestScreen_CallUnsupported(t *testing.T) {
	s := NewScreen("911", nil, &fakeOpener{})
	assert.ErrorIs(t, s.Call(), capability.ErrUnsupported)
}

func TestScreen_CallFailure(t *testing.T) {
	buf := captureLog(t)
	boom := errors.New("no handler")
	s := NewScreen("911", nil, &fakeOpener{supported: true, err: boom})

	err := s.Call()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "EMERGENCY_CALL_ERROR")
}

func TestScreen_ShareLocation(t *testing.T) {
	coords := capability.Coordinates{Latitude: 40.7128, Longitude: -74.006}
	s := NewScreen("911", capability.NewLocator(&coords), nil)

	require.True(t, s.CanLocate())
	loc := s.ShareLocation(context.Background())
	require.True(t, loc.OK)
	assert.Equal(t, "Location: 40.7128, -74.0060", loc.String())
}

func TestScreen_ShareLocationUnsupported(t *testing.T) {
	s := NewScreen("911", capability.NoLocator{}, nil)
	loc := s.ShareLocation(context.Background())
	assert.False(t, loc.OK)
	assert.Equal(t, NoLocation, loc.String())
}

func TestConsultRequest_Submit(t *testing.T) {
	buf := captureLog(t)
	var r ConsultRequest
	assert.True(t, r.Empty())

	fields := r.Fields()
	require.Len(t, fields, 20)
	*fields[0].Value = "Ada Lovelace"
	*fields[5].Value = "headache"
	assert.False(t, r.Empty())
	assert.Equal(t, "Ada Lovelace", r.FullName)

	r.Submit()
	assert.Contains(t, buf.String(), "CONSULT_REQUEST | ")
	assert.Contains(t, buf.String(), `"fullName":"Ada Lovelace"`)
	assert.Contains(t, buf.String(), `"symptoms":"headache"`)
}
