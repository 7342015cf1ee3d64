// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capability

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/medibot/medibot-tui/internal/format"
)

// =============================================================================
// SPEECH OUTPUT
// =============================================================================

// Speaker reads text aloud.
type Speaker interface {
	Capability

	// Speak starts reading text and returns once playback has begun.
	// done is closed when playback ends or is stopped.
	Speak(ctx context.Context, text string) (done <-chan struct{}, err error)

	// Stop ends any playback in progress.
	Stop()
}

// speechEngine is a command-line TTS program and how to pass it text.
type speechEngine struct {
	name string
	args func(text string) []string
}

// Engines tried in order. Rate and language mirror a neutral en-US voice.
var speechEngines = []speechEngine{
	{name: "say", args: func(t string) []string { return []string{t} }},
	{name: "espeak-ng", args: func(t string) []string { return []string{"-v", "en-us", t} }},
	{name: "espeak", args: func(t string) []string { return []string{"-v", "en-us", t} }},
	{name: "spd-say", args: func(t string) []string { return []string{"-l", "en-US", "-w", t} }},
}

// CommandSpeaker speaks through the first TTS program found on PATH.
type CommandSpeaker struct {
	path   string
	engine speechEngine

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandSpeaker looks up a TTS program. The result is unsupported when
// none is installed.
func NewCommandSpeaker() *CommandSpeaker {
	return newCommandSpeaker(exec.LookPath)
}

func newCommandSpeaker(lookPath func(string) (string, error)) *CommandSpeaker {
	for _, e := range speechEngines {
		if e.name == "say" && runtime.GOOS != "darwin" {
			continue
		}
		if p, err := lookPath(e.name); err == nil {
			return &CommandSpeaker{path: p, engine: e}
		}
	}
	return &CommandSpeaker{}
}

// Supported implements Capability.
func (s *CommandSpeaker) Supported() bool {
	return s.path != ""
}

// Engine names the TTS program in use.
func (s *CommandSpeaker) Engine() string {
	return s.engine.name
}

// Speak implements Speaker. Markdown emphasis is stripped first.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) (<-chan struct{}, error) {
	if !s.Supported() {
		return nil, ErrUnsupported
	}
	text = strings.TrimSpace(format.SpeechText(text))
	if text == "" {
		return nil, fmt.Errorf("nothing to speak")
	}

	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, s.path, s.engine.args(text)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", s.engine.name, err)
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
			log.Printf("SPEECH_ERROR | engine=%s error=%v", s.engine.name, err)
		}
		cancel()
	}()
	return done, nil
}

// Stop implements Speaker.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// PER-MESSAGE TOGGLE
// =============================================================================

// SpeechToggle plays one message at a time. Toggling the message that is
// playing stops it; toggling another switches to it.
type SpeechToggle struct {
	speaker Speaker

	mu      sync.Mutex
	playing int64
	active  bool
}

// NewSpeechToggle wraps speaker.
func NewSpeechToggle(speaker Speaker) *SpeechToggle {
	return &SpeechToggle{speaker: speaker}
}

// Supported reports whether speech output is available.
func (t *SpeechToggle) Supported() bool {
	return t.speaker != nil && t.speaker.Supported()
}

// Playing returns the id of the message being read, if any.
func (t *SpeechToggle) Playing() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing, t.active
}

// Toggle starts or stops reading message id. It reports whether the message
// is now playing.
func (t *SpeechToggle) Toggle(ctx context.Context, id int64, text string) (bool, error) {
	if !t.Supported() {
		return false, ErrUnsupported
	}

	t.mu.Lock()
	if t.active && t.playing == id {
		t.active = false
		t.mu.Unlock()
		t.speaker.Stop()
		return false, nil
	}
	t.mu.Unlock()

	done, err := t.speaker.Speak(ctx, text)
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	t.playing, t.active = id, true
	t.mu.Unlock()

	go func() {
		<-done
		t.mu.Lock()
		if t.playing == id {
			t.active = false
		}
		t.mu.Unlock()
	}()
	return true, nil
}

// =============================================================================
// SPEECH INPUT
// =============================================================================

// Listener turns speech into text.
type Listener interface {
	Capability
	Listen(ctx context.Context) (string, error)
}

// NoListener is the terminal's speech input: always unsupported.
type NoListener struct{}

// Supported implements Capability.
func (NoListener) Supported() bool { return false }

// Listen implements Listener.
func (NoListener) Listen(context.Context) (string, error) { return "", ErrUnsupported }
