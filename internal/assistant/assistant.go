// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/session"
)

// =============================================================================
// USER-VISIBLE TEXT
// =============================================================================

const (
	ChatPlaceholder = "🔍 Analyzing your symptoms..."
	ChatFallback    = "Sorry, I did not understand that."
	ChatErrorText   = "⚠️ Something went wrong. Please try again later."

	ImagePlaceholder = "🔍 Analyzing medical image..."
	ImageFallback    = "Image analysis not available."
	ImageErrorText   = "⚠️ Image analysis failed. Please try again later."
)

// ErrEmptyInput is returned for blank chat text or empty images. Nothing is
// recorded.
var ErrEmptyInput = errors.New("message is empty")

// =============================================================================
// SERVICE
// =============================================================================

// Backend is the part of the MediBot service a chat turn needs.
type Backend interface {
	Chat(ctx context.Context, query string, history []model.Message) (string, error)
	AnalyzeImage(ctx context.Context, imageBase64 string) (string, error)
}

// Reply is the outcome of a turn.
type Reply struct {
	// Message is the bot message appended to the conversation.
	Message model.Message

	// Failed is set when the backend call failed and Message carries the
	// error text.
	Failed bool

	// Err is the backend error behind Failed, for logging or verbose output.
	Err error
}

// Service runs chat turns against a session store.
type Service struct {
	store   *session.Store
	backend Backend
	files   capability.FileReader
	now     func() time.Time

	// busy serialises turns so placeholders of two turns never interleave.
	busy sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for message ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFileReader replaces the file reader used by AnalyzeImageFile.
func WithFileReader(r capability.FileReader) Option {
	return func(s *Service) { s.files = r }
}

// New creates a Service.
func New(store *session.Store, backend Backend, opts ...Option) *Service {
	s := &Service{
		store:   store,
		backend: backend,
		files:   capability.OSFileReader{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the session store the service writes to.
func (s *Service) Store() *session.Store {
	return s.store
}

// Send submits text as a user message and appends the bot's answer.
//
// The history sent to the backend is the conversation as it stands after
// the user message is appended, without the placeholder.
func (s *Service) Send(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyInput
	}

	s.busy.Lock()
	defer s.busy.Unlock()

	base := s.now()
	if err := s.store.AppendMessage(model.NewUserMessage(base, text)); err != nil {
		return Reply{}, err
	}
	history := s.store.Messages()

	return s.turn(base, ChatPlaceholder, func() (string, error) {
		return s.backend.Chat(ctx, text, history)
	}, ChatFallback, ChatErrorText, "CHAT_ERROR")
}

// AnalyzeImage sends a base64 image for analysis. No user message is
// recorded; the placeholder and answer are bot messages.
func (s *Service) AnalyzeImage(ctx context.Context, imageBase64 string) (Reply, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return Reply{}, ErrEmptyInput
	}

	s.busy.Lock()
	defer s.busy.Unlock()

	return s.turn(s.now(), ImagePlaceholder, func() (string, error) {
		return s.backend.AnalyzeImage(ctx, imageBase64)
	}, ImageFallback, ImageErrorText, "IMAGE_ERROR")
}

// AnalyzeImageFile reads an image from disk and analyzes it. File problems
// are returned before anything is recorded.
func (s *Service) AnalyzeImageFile(ctx context.Context, path string) (Reply, error) {
	f, err := capability.ReadImage(s.files, path)
	if err != nil {
		return Reply{}, err
	}
	return s.AnalyzeImage(ctx, f.Base64())
}

// turn shows placeholder, runs call, removes the placeholder and appends the
// outcome. Ids are base+1 and base+2 so they sort after the user message.
func (s *Service) turn(base time.Time, placeholder string, call func() (string, error), fallback, errorText, event string) (Reply, error) {
	if err := s.store.AppendMessage(model.NewBotMessage(base.Add(time.Millisecond), placeholder)); err != nil {
		return Reply{}, err
	}

	start := time.Now()
	answer, callErr := call()

	// RELIABILITY: the placeholder goes before the outcome is appended, even
	// when the call failed.
	if _, err := s.store.RemoveMessagesWithText(placeholder); err != nil {
		log.Printf("%s | stage=remove_placeholder error=%v", event, err)
	}

	reply := Reply{}
	text := answer
	if callErr != nil {
		log.Printf("%s | duration=%s error=%v", event, time.Since(start).Round(time.Millisecond), callErr)
		text = errorText
		reply.Failed = true
		reply.Err = callErr
	} else if strings.TrimSpace(answer) == "" {
		text = fallback
	}

	reply.Message = model.NewBotMessage(base.Add(2*time.Millisecond), text)
	if err := s.store.AppendMessage(reply.Message); err != nil {
		return reply, err
	}
	return reply, nil
}
