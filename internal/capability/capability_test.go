// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SPEECH TESTS
// =============================================================================

// fakeSpeaker records calls and finishes playback only when stopped.
type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
	done   chan struct{}
	stops  int
}

func (f *fakeSpeaker) Supported() bool { return true }

func (f *fakeSpeaker) Speak(_ context.Context, text string) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.done = make(chan struct{})
	return f.done, nil
}

func (f *fakeSpeaker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func TestSpeechToggle_SameMessageStops(t *testing.T) {
	sp := &fakeSpeaker{}
	tg := NewSpeechToggle(sp)

	on, err := tg.Toggle(context.Background(), 7, "hello")
	require.NoError(t, err)
	assert.True(t, on)

	id, playing := tg.Playing()
	assert.True(t, playing)
	assert.Equal(t, int64(7), id)

	on, err = tg.Toggle(context.Background(), 7, "hello")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 1, sp.stops)

	_, playing = tg.Playing()
	assert.False(t, playing)
}

func TestSpeechToggle_OtherMessageSwitches(t *testing.T) {
	sp := &fakeSpeaker{}
	tg := NewSpeechToggle(sp)

	_, err := tg.Toggle(context.Background(), 1, "first")
	require.NoError(t, err)
	on, err := tg.Toggle(context.Background(), 2, "second")
	require.NoError(t, err)

	assert.True(t, on)
	id, _ := tg.Playing()
	assert.Equal(t, int64(2), id)
	assert.Equal(t, []string{"first", "second"}, sp.spoken)
}

func TestSpeechToggle_Unsupported(t *testing.T) {
	tg := NewSpeechToggle(&CommandSpeaker{})
	_, err := tg.Toggle(context.Background(), 1, "x")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNewCommandSpeaker_NoEngine(t *testing.T) {
	sp := newCommandSpeaker(func(string) (string, error) { return "", errors.New("missing") })
	assert.False(t, sp.Supported())

	_, err := sp.Speak(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNewCommandSpeaker_PicksEspeak(t *testing.T) {
	sp := newCommandSpeaker(func(name string) (string, error) {
		if name == "espeak" {
			return "/usr/bin/espeak", nil
		}
		return "", errors.New("missing")
	})
	assert.True(t, sp.Supported())
	assert.Equal(t, "espeak", sp.Engine())
}

func TestNoListener(t *testing.T) {
	var l Listener = NoListener{}
	assert.False(t, l.Supported())
	_, err := l.Listen(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

// =============================================================================
// LOCATION TESTS
// =============================================================================

func TestCoordinates_String(t *testing.T) {
	c := Coordinates{Latitude: 40.712776, Longitude: -74.005974}
	assert.Equal(t, "40.7128, -74.0060", c.String())
}

func TestNewLocator(t *testing.T) {
	assert.False(t, NewLocator(nil).Supported())
	assert.False(t, NewLocator(&Coordinates{Latitude: 200}).Supported())

	loc := NewLocator(&Coordinates{Latitude: 51.5, Longitude: -0.12})
	require.True(t, loc.Supported())
	got, err := loc.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 51.5, got.Latitude)

	_, err = NoLocator{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

// =============================================================================
// FILE TESTS
// =============================================================================

// smallPNG is the 8-byte PNG signature plus an IHDR header, enough to sniff.
var smallPNG = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0, 0, 0, 13, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0,
}

func TestOSFileReader_ReadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rash.png")
	require.NoError(t, os.WriteFile(path, smallPNG, 0600))

	f, err := ReadImage(OSFileReader{}, path)
	require.NoError(t, err)

	assert.Equal(t, "rash.png", f.Name)
	assert.Equal(t, "image/png", f.MIME)
	assert.Contains(t, f.DataURL(), "data:image/png;base64,")
}

func TestReadImage_RejectsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0600))

	_, err := ReadImage(OSFileReader{}, path)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestOSFileReader_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0600))

	_, err := OSFileReader{Limit: 16}.Read(path)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestOSFileReader_Missing(t *testing.T) {
	_, err := OSFileReader{}.Read(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTelURL(t *testing.T) {
	assert.Equal(t, "tel:911", TelURL("911"))
}
