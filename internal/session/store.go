// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/storage"
)

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Change describes which lists a mutation touched.
type Change int

const (
	ChangeMessages Change = 1 << iota
	ChangeSessions
)

// Has reports whether c includes other.
func (c Change) Has(other Change) bool {
	return c&other != 0
}

// Listener is called after a mutation has been applied and persisted.
type Listener func(Change)

// =============================================================================
// STORE
// =============================================================================

// Store holds the active conversation and the archive, persisting both on
// every change.
type Store struct {
	mu sync.Mutex

	kv  storage.Store
	now func() time.Time

	messages []model.Message
	sessions []model.ChatSession

	listeners []Listener
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for deterministic ids in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New rehydrates a Store from kv.
func New(kv storage.Store, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = loadMessages(kv)
	s.sessions = loadSessions(kv)
	return s
}

// RELIABILITY: storage problems at startup never surface to the user; the
// store starts fresh instead.
func loadMessages(kv storage.Store) []model.Message {
	var msgs []model.Message
	err := storage.GetJSON(kv, storage.KeyChatMessages, &msgs)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return model.DefaultConversation()
	case err != nil:
		log.Printf("SESSION_LOAD_ERROR | key=%s error=%v", storage.KeyChatMessages, err)
		return model.DefaultConversation()
	case len(msgs) == 0:
		return model.DefaultConversation()
	}
	return msgs
}

func loadSessions(kv storage.Store) []model.ChatSession {
	var sessions []model.ChatSession
	err := storage.GetJSON(kv, storage.KeyChatSessions, &sessions)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("SESSION_LOAD_ERROR | key=%s error=%v", storage.KeyChatSessions, err)
		}
		return []model.ChatSession{}
	}
	if sessions == nil {
		sessions = []model.ChatSession{}
	}
	model.SortSessions(sessions)
	return sessions
}

// Subscribe registers fn to run after every mutation. Listeners run outside
// the store lock and may read from the store.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// =============================================================================
// READS
// =============================================================================

// Messages returns a copy of the active conversation.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneMessages(s.messages)
}

// Sessions returns a copy of the archive, newest first.
func (s *Store) Sessions() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Session returns the archived session with id.
func (s *Store) Session(id int64) (model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.FindSession(s.sessions, id)
}

// LastBotMessage returns the most recent bot message of the active
// conversation.
func (s *Store) LastBotMessage() (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Sender == model.SenderBot {
			return s.messages[i], true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AppendMessage adds msg to the end of the active conversation.
func (s *Store) AppendMessage(msg model.Message) error {
	return s.mutate(ChangeMessages, func() {
		next := make([]model.Message, len(s.messages), len(s.messages)+1)
		copy(next, s.messages)
		s.messages = append(next, msg)
	})
}

// RemoveMessagesWithText drops every message of the active conversation whose
// text equals text. It reports how many were removed; nothing is written when
// none match.
func (s *Store) RemoveMessagesWithText(text string) (int, error) {
	var removed int
	_, err := s.mutateIf(ChangeMessages, func() bool {
		kept := make([]model.Message, 0, len(s.messages))
		for _, m := range s.messages {
			if m.Text != text {
				kept = append(kept, m)
			}
		}
		removed = len(s.messages) - len(kept)
		if removed == 0 {
			return false
		}
		if len(kept) == 0 {
			kept = model.DefaultConversation()
		}
		s.messages = kept
		return true
	})
	return removed, err
}

// ClearChat archives the active conversation and starts a fresh one.
//
// The archived session's id is the current time in milliseconds, bumped past
// the newest existing id if the clock has not advanced, so ids stay unique.
func (s *Store) ClearChat() (model.ChatSession, error) {
	var archived model.ChatSession
	err := s.mutate(ChangeMessages|ChangeSessions, func() {
		archived = model.NewChatSession(s.now(), s.messages)
		if len(s.sessions) > 0 && archived.ID <= s.sessions[0].ID {
			archived.ID = s.sessions[0].ID + 1
		}

		next := make([]model.ChatSession, 0, len(s.sessions)+1)
		next = append(next, archived)
		s.sessions = append(next, s.sessions...)
		s.messages = model.DefaultConversation()
	})
	return archived, err
}

// LoadSession replaces the active conversation with a copy of the archived
// session id. The archive is untouched. It reports false, changing nothing,
// when id is unknown.
func (s *Store) LoadSession(id int64) (bool, error) {
	return s.mutateIf(ChangeMessages, func() bool {
		found, ok := model.FindSession(s.sessions, id)
		if !ok {
			return false
		}
		msgs := model.CloneMessages(found.Messages)
		if len(msgs) == 0 {
			msgs = model.DefaultConversation()
		}
		s.messages = msgs
		return true
	})
}

// DeleteSession removes the archived session id. It reports false, changing
// nothing, when id is unknown. The active conversation is unaffected even if
// it was loaded from that session.
func (s *Store) DeleteSession(id int64) (bool, error) {
	return s.mutateIf(ChangeSessions, func() bool {
		kept := make([]model.ChatSession, 0, len(s.sessions))
		for _, cs := range s.sessions {
			if cs.ID != id {
				kept = append(kept, cs)
			}
		}
		if len(kept) == len(s.sessions) {
			return false
		}
		s.sessions = kept
		return true
	})
}

// Reset drops the archive and the active conversation back to defaults.
// Used after sign-out, when the underlying store has been wiped.
func (s *Store) Reset() error {
	return s.mutate(ChangeMessages|ChangeSessions, func() {
		s.messages = model.DefaultConversation()
		s.sessions = []model.ChatSession{}
	})
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// mutate applies fn and persists the touched lists under the lock, then
// notifies listeners. In-memory state is updated even if persisting fails.
func (s *Store) mutate(change Change, fn func()) error {
	_, err := s.mutateIf(change, func() bool {
		fn()
		return true
	})
	return err
}

// mutateIf is mutate for changes that may turn out to be no-ops. The lookup
// and the write happen under one lock; when fn reports false nothing is
// persisted and no listener runs.
func (s *Store) mutateIf(change Change, fn func() bool) (bool, error) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false, nil
	}
	err := s.persist(change)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, change)
	return true, err
}

// persist must be called with s.mu held.
func (s *Store) persist(change Change) error {
	var errs []error
	if change.Has(ChangeMessages) {
		if err := storage.SetJSON(s.kv, storage.KeyChatMessages, s.messages); err != nil {
			errs = append(errs, err)
		}
	}
	if change.Has(ChangeSessions) {
		if err := storage.SetJSON(s.kv, storage.KeyChatSessions, s.sessions); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	log.Printf("SESSION_PERSIST_ERROR | change=%d error=%v", change, err)
	return fmt.Errorf("persist session state: %w", err)
}

func notify(listeners []Listener, change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
