// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/storage"
)

// fakeClock hands out strictly increasing millisecond timestamps.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Millisecond)
	return c.cur
}

func newTestStore(t *testing.T, kv storage.Store) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(kv, WithClock(clock.Now)), clock
}

// =============================================================================
// STARTUP TESTS
// =============================================================================

func TestNew_EmptyStorageUsesDefaults(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())

	assert.Equal(t, model.DefaultConversation(), st.Messages())
	assert.Empty(t, st.Sessions())
}

func TestNew_CorruptStorageUsesDefaults(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyChatMessages, []byte("{oops")))
	require.NoError(t, kv.Set(storage.KeyChatSessions, []byte("not json")))

	st, _ := newTestStore(t, kv)

	assert.Equal(t, model.DefaultConversation(), st.Messages())
	assert.Empty(t, st.Sessions())
}

func TestNew_SortsArchiveNewestFirst(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, storage.SetJSON(kv, storage.KeyChatSessions, []model.ChatSession{
		{ID: 100, Title: "old"},
		{ID: 300, Title: "newest"},
		{ID: 200, Title: "middle"},
	}))

	st, _ := newTestStore(t, kv)

	got := st.Sessions()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{300, 200, 100}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

// =============================================================================
// CLEAR CHAT TESTS
// =============================================================================

func TestClearChat_ArchivesWithTruncatedTitle(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "I have a terrible headache"}))

	archived, err := st.ClearChat()
	require.NoError(t, err)

	assert.Equal(t, "I have a terrible he…", archived.Title)
	assert.Len(t, archived.Messages, 2)

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, archived.ID, sessions[0].ID)
	assert.Equal(t, model.DefaultConversation(), st.Messages())
}

func TestClearChat_GreetingOnlyIsNewChat(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())

	archived, err := st.ClearChat()
	require.NoError(t, err)

	assert.Equal(t, "New Chat", archived.Title)
	assert.Equal(t, model.DefaultConversation(), archived.Messages)
	assert.Equal(t, model.DefaultConversation(), st.Messages())
}

func TestClearChat_PrependsNewest(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())

	first, err := st.ClearChat()
	require.NoError(t, err)
	second, err := st.ClearChat()
	require.NoError(t, err)

	sessions := st.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestClearChat_IDsUniqueWhenClockStalls(t *testing.T) {
	frozen := time.UnixMilli(5000)
	st := New(storage.NewMemoryStore(), WithClock(func() time.Time { return frozen }))

	a, err := st.ClearChat()
	require.NoError(t, err)
	b, err := st.ClearChat()
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

// =============================================================================
// LOAD / DELETE TESTS
// =============================================================================

func TestLoadSession_RestoresMessagesArchiveUnchanged(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "Hi"}))
	archived, err := st.ClearChat()
	require.NoError(t, err)

	ok, err := st.LoadSession(archived.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, archived.Messages, st.Messages())
	assert.Len(t, st.Sessions(), 1)
}

func TestLoadThenDelete_ActiveUnchanged(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "Hi"}))
	archived, err := st.ClearChat()
	require.NoError(t, err)

	_, err = st.LoadSession(archived.ID)
	require.NoError(t, err)
	ok, err := st.DeleteSession(archived.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Empty(t, st.Sessions())
	assert.Equal(t, archived.Messages, st.Messages())
}

func TestLoadAndDelete_UnknownIDIsNoOp(t *testing.T) {
	kv := storage.NewMemoryStore()
	st, _ := newTestStore(t, kv)
	_, err := st.ClearChat()
	require.NoError(t, err)

	before := st.Messages()
	beforeSessions := st.Sessions()

	ok, err := st.LoadSession(42)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.DeleteSession(42)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, before, st.Messages())
	assert.Equal(t, beforeSessions, st.Sessions())
}

func TestDeleteSession_KeepsRelativeOrder(t *testing.T) {
	kv := storage.NewMemoryStore()
	st, _ := newTestStore(t, kv)

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: text}))
		archived, err := st.ClearChat()
		require.NoError(t, err)
		ids = append(ids, archived.ID)
	}
	oldest, middle, newest := ids[0], ids[1], ids[2]

	ok, err := st.DeleteSession(middle)
	require.NoError(t, err)
	require.True(t, ok)

	sessionIDs := func(sessions []model.ChatSession) []int64 {
		out := make([]int64, 0, len(sessions))
		for _, cs := range sessions {
			out = append(out, cs.ID)
		}
		return out
	}
	assert.Equal(t, []int64{newest, oldest}, sessionIDs(st.Sessions()))

	reloaded := New(kv)
	assert.Equal(t, []int64{newest, oldest}, sessionIDs(reloaded.Sessions()))
}

func TestDeleteSession_ConcurrentDeletesReportOnce(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	_, err := st.ClearChat()
	require.NoError(t, err)
	keep, err := st.ClearChat()
	require.NoError(t, err)
	target := st.Sessions()[1].ID

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.DeleteSession(target)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				deleted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, deleted)
	require.Len(t, st.Sessions(), 1)
	assert.Equal(t, keep.ID, st.Sessions()[0].ID)
}

func TestUnknownIDDoesNotNotify(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	var calls int
	st.Subscribe(func(Change) { calls++ })

	_, err := st.LoadSession(42)
	require.NoError(t, err)
	_, err = st.DeleteSession(42)
	require.NoError(t, err)

	assert.Zero(t, calls)
}

func TestLoadedSessionIsIsolatedFromArchive(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	archived, err := st.ClearChat()
	require.NoError(t, err)

	_, err = st.LoadSession(archived.ID)
	require.NoError(t, err)
	require.NoError(t, st.AppendMessage(model.Message{ID: 9, Sender: model.SenderUser, Text: "more"}))

	stored, ok := st.Session(archived.ID)
	require.True(t, ok)
	assert.Len(t, stored.Messages, 1, "appending to the active conversation must not touch the archive")
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestPersistence_RoundTrip(t *testing.T) {
	for _, driver := range []storage.Driver{storage.DriverFile, storage.DriverSQLite} {
		t.Run(string(driver), func(t *testing.T) {
			dir := t.TempDir()

			kv, err := storage.Open(driver, dir)
			require.NoError(t, err)
			st, _ := newTestStore(t, kv)
			require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "chest pain"}))
			_, err = st.ClearChat()
			require.NoError(t, err)
			require.NoError(t, st.AppendMessage(model.Message{ID: 3, Sender: model.SenderUser, Text: "follow up"}))
			wantMsgs, wantSessions := st.Messages(), st.Sessions()
			require.NoError(t, kv.Close())

			kv2, err := storage.Open(driver, dir)
			require.NoError(t, err)
			defer kv2.Close()
			reloaded := New(kv2)

			assert.Equal(t, wantMsgs, reloaded.Messages())
			assert.Equal(t, wantSessions, reloaded.Sessions())
		})
	}
}

func TestRemoveMessagesWithText(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())
	require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "Hi"}))
	require.NoError(t, st.AppendMessage(model.Message{ID: 3, Sender: model.SenderBot, Text: "loading"}))

	n, err := st.RemoveMessagesWithText("loading")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msgs := st.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi", msgs[1].Text)

	n, err = st.RemoveMessagesWithText("absent")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemoveMessagesWithText_NeverEmpty(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())

	_, err := st.RemoveMessagesWithText(model.GreetingText)
	require.NoError(t, err)

	assert.Equal(t, model.DefaultConversation(), st.Messages())
}

// failingStore rejects every write.
type failingStore struct{ *storage.MemoryStore }

func (failingStore) Set(string, []byte) error { return storage.ErrClosed }

func TestPersistFailure_StateStillUpdated(t *testing.T) {
	st, _ := newTestStore(t, failingStore{storage.NewMemoryStore()})

	err := st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "Hi"})
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.Len(t, st.Messages(), 2)
}

// =============================================================================
// LISTENER AND CONCURRENCY TESTS
// =============================================================================

func TestSubscribe_ReportsChanges(t *testing.T) {
	st, _ := newTestStore(t, storage.NewMemoryStore())

	var got []Change
	st.Subscribe(func(c Change) { got = append(got, c) })

	require.NoError(t, st.AppendMessage(model.Message{ID: 2, Sender: model.SenderUser, Text: "Hi"}))
	_, err := st.ClearChat()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[0].Has(ChangeMessages))
	assert.False(t, got[0].Has(ChangeSessions))
	assert.True(t, got[1].Has(ChangeMessages|ChangeSessions))
}

func TestConcurrentAppends(t *testing.T) {
	kv := storage.NewMemoryStore()
	st, _ := newTestStore(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = st.AppendMessage(model.Message{ID: int64(i + 10), Sender: model.SenderUser, Text: "x"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, st.Messages(), 51)

	var persisted []model.Message
	require.NoError(t, storage.GetJSON(kv, storage.KeyChatMessages, &persisted))
	assert.Len(t, persisted, 51, "persisted state matches the final in-memory state")
}
