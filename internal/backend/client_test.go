// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/model"
)

func testClient(url string) *Client {
	return NewClient(Config{
		BaseURL:           url,
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	})
}

// captureServer records the last request body and answers with reply.
func captureServer(t *testing.T, wantPath string, reply any) (*httptest.Server, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestChat_SendsQueryAndHistory(t *testing.T) {
	srv, got := captureServer(t, PathChat, map[string]string{"response": "Drink water."})

	history := []model.Message{
		model.Greeting(),
		{ID: 2, Sender: model.SenderUser, Text: "I feel dizzy"},
	}
	reply, err := testClient(srv.URL).Chat(context.Background(), "I feel dizzy", history)
	require.NoError(t, err)

	assert.Equal(t, "Drink water.", reply)
	assert.Equal(t, "I feel dizzy", (*got)["query"])
	hist, ok := (*got)["history"].([]any)
	require.True(t, ok)
	require.Len(t, hist, 2)
	last := hist[1].(map[string]any)
	assert.Equal(t, "user", last["sender"])
	assert.Equal(t, "I feel dizzy", last["text"])
}

func TestChat_NilHistorySendsEmptyArray(t *testing.T) {
	srv, got := captureServer(t, PathChat, map[string]string{"response": "ok"})

	_, err := testClient(srv.URL).Chat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, (*got)["history"])
}

func TestAnalyzeImage(t *testing.T) {
	srv, got := captureServer(t, PathAnalyzeImage, map[string]string{"response": "Looks like a rash."})

	reply, err := testClient(srv.URL).AnalyzeImage(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Looks like a rash.", reply)
	assert.Equal(t, "aGVsbG8=", (*got)["image"])
}

func TestCalculateBMI_EchoesBackendValue(t *testing.T) {
	srv, got := captureServer(t, PathCalculateBMI, map[string]any{"bmi": 24.221453, "category": "Normal weight"})

	res, err := testClient(srv.URL).CalculateBMI(context.Background(), 70, 170)
	require.NoError(t, err)

	assert.Equal(t, 24.221453, res.BMI)
	assert.Equal(t, "Normal weight", res.Category)
	assert.Equal(t, 70.0, (*got)["weight"])
	assert.Equal(t, 170.0, (*got)["height"])
}

func TestTrackMood(t *testing.T) {
	srv, got := captureServer(t, PathMood, map[string]string{"response": "**Insight**", "type": InsightMoodTracking})

	res, err := testClient(srv.URL).TrackMood(context.Background(), MoodRequest{Description: "tired", Score: 4})
	require.NoError(t, err)

	assert.Equal(t, InsightMoodTracking, res.Type)
	assert.Equal(t, "tired", (*got)["description"])
	assert.Equal(t, 4.0, (*got)["score"])
	assert.Equal(t, []any{}, (*got)["tags"])
}

func TestCBTExercises_AppliesDefaults(t *testing.T) {
	srv, got := captureServer(t, PathCBT, map[string]string{"response": "1. Reframe", "type": InsightCBTExercises})

	_, err := testClient(srv.URL).CBTExercises(context.Background(), CBTRequest{Concern: "exam stress"})
	require.NoError(t, err)

	assert.Equal(t, "exam stress", (*got)["concern"])
	assert.Equal(t, DefaultTriedStrategies, (*got)["tried_strategies"])
	assert.Equal(t, DefaultDesiredOutcome, (*got)["desired_outcome"])
}

func TestTrackSymptom(t *testing.T) {
	srv, got := captureServer(t, PathSymptoms, map[string]any{"status": "ok", "inserted_id": "65f0c0ffee"})

	entry := model.SymptomEntry{Date: "2025-01-02T08:30", Symptom: "Headache", Severity: 6, Triggers: []string{"stress"}}
	res, err := testClient(srv.URL).TrackSymptom(context.Background(), entry)
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, RecordID("65f0c0ffee"), res.InsertedID)
	assert.Equal(t, "Headache", (*got)["symptom"])
	assert.Equal(t, 6.0, (*got)["severity"])
	_, hasNotes := (*got)["notes"]
	assert.False(t, hasNotes, "empty optional fields are omitted")
}

func TestRecordID_AcceptsNumbers(t *testing.T) {
	var res SymptomResponse
	require.NoError(t, json.Unmarshal([]byte(`{"status":"ok","inserted_id":42}`), &res))
	assert.Equal(t, RecordID("42"), res.InsertedID)
}

// =============================================================================
// ERROR AND RETRY TESTS
// =============================================================================

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "finally"})
	}))
	defer srv.Close()

	reply, err := testClient(srv.URL).Chat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"query is required"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Chat(context.Background(), "", nil)
	require.Error(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Contains(t, err.Error(), "query is required")
}

func TestDo_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Chat(context.Background(), "hi", nil)
	require.Error(t, err)
	assert.True(t, IsConnection(err), "got %v", err)
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestDo_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Chat(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrDecode), "got %v", err)
}

func TestDo_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).Chat(ctx, "hi", nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("MediBot API"))
	}))
	defer srv.Close()

	assert.NoError(t, testClient(srv.URL).Health(context.Background()))
}

func TestNewClient_FillsDefaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://example.test/"})
	assert.Equal(t, "http://example.test", c.BaseURL())
	assert.Equal(t, DefaultConfig().Timeout, c.config.Timeout)

	c = NewClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
