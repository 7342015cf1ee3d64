// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/medibot/medibot-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is where the MediBot service listens in development.
	DefaultBaseURL = "http://localhost:5000"

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024

	// RequestIDHeader carries a per-call UUID for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Config holds configuration options for the client.
type Config struct {
	// BaseURL is the service root (default: http://localhost:5000).
	BaseURL string

	// Timeout bounds one HTTP attempt (default: 60s, analysis is slow).
	Timeout time.Duration

	// MaxRetries for transport errors and 5xx answers (default: 2).
	// Negative disables retries.
	MaxRetries int

	// RetryDelay is the first backoff step, doubled each retry (default: 500ms).
	RetryDelay time.Duration

	// RequestsPerSecond limits outgoing calls (default: 5). Burst is twice that.
	RequestsPerSecond float64

	// UserAgent sent with every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           60 * time.Second,
		MaxRetries:        2,
		RetryDelay:        500 * time.Millisecond,
		RequestsPerSecond: 5,
		UserAgent:         "medibot-tui",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the MediBot service. It is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling zero config fields with defaults.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	burst := int(cfg.RequestsPerSecond * 2)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// WithHTTPClient swaps the transport, for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Health checks that the service answers at its root.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// Chat sends query with the conversation history and returns the raw reply.
func (c *Client) Chat(ctx context.Context, query string, history []model.Message) (string, error) {
	if history == nil {
		history = []model.Message{}
	}
	var out TextResponse
	err := c.do(ctx, http.MethodPost, PathChat, ChatRequest{Query: query, History: history}, &out)
	return out.Response, err
}

// AnalyzeImage sends a base64-encoded image and returns the raw analysis.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64 string) (string, error) {
	var out TextResponse
	err := c.do(ctx, http.MethodPost, PathAnalyzeImage, ImageRequest{Image: imageBase64}, &out)
	return out.Response, err
}

// CalculateBMI asks the service to classify weight (kg) and height (cm).
// The client never computes BMI itself.
func (c *Client) CalculateBMI(ctx context.Context, weightKg, heightCm float64) (BMIResponse, error) {
	var out BMIResponse
	err := c.do(ctx, http.MethodPost, PathCalculateBMI, BMIRequest{Weight: weightKg, Height: heightCm}, &out)
	return out, err
}

// TrackMood records a mood entry and returns the generated insight.
func (c *Client) TrackMood(ctx context.Context, req MoodRequest) (InsightResponse, error) {
	if req.Tags == nil {
		req.Tags = []string{}
	}
	var out InsightResponse
	err := c.do(ctx, http.MethodPost, PathMood, req, &out)
	return out, err
}

// CBTExercises requests exercises for a concern. Empty optional fields are
// sent with their documented defaults.
func (c *Client) CBTExercises(ctx context.Context, req CBTRequest) (InsightResponse, error) {
	if strings.TrimSpace(req.TriedStrategies) == "" {
		req.TriedStrategies = DefaultTriedStrategies
	}
	if strings.TrimSpace(req.DesiredOutcome) == "" {
		req.DesiredOutcome = DefaultDesiredOutcome
	}
	var out InsightResponse
	err := c.do(ctx, http.MethodPost, PathCBT, req, &out)
	return out, err
}

// TrackSymptom stores a symptom-log entry.
func (c *Client) TrackSymptom(ctx context.Context, entry model.SymptomEntry) (SymptomResponse, error) {
	var out SymptomResponse
	err := c.do(ctx, http.MethodPost, PathSymptoms, entry, &out)
	return out, err
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends body as JSON to path and decodes the answer into out (if non-nil).
// Transport errors and 5xx answers are retried with exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Type: ErrTypeRequest, Endpoint: path, Message: "failed to marshal request", Cause: err}
		}
	}

	requestID := uuid.New().String()
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return c.contextError(path, ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return c.contextError(path, err)
		}

		data, err := c.attempt(ctx, method, path, payload, requestID)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return &Error{Type: ErrTypeDecode, Endpoint: path, Message: "failed to decode response", Cause: err}
			}
			return nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
		log.Printf("BACKEND_RETRY | path=%s request_id=%s attempt=%d error=%v", path, requestID, attempt+1, err)
	}

	log.Printf("BACKEND_ERROR | path=%s request_id=%s type=%s error=%v", path, requestID, typeOf(lastErr), lastErr)
	return lastErr
}

// attempt performs one HTTP round trip and returns the response body.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, requestID string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &Error{Type: ErrTypeRequest, Endpoint: path, Message: "failed to create request", Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(path, ctx.Err())
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &Error{Type: ErrTypeTimeout, Endpoint: path, Message: "request timed out", Cause: err}
		}
		return nil, &Error{Type: ErrTypeConnection, Endpoint: path, Message: "backend unreachable", Cause: err}
	}
	defer resp.Body.Close()

	// SECURITY: bound memory use on a misbehaving server.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &Error{Type: ErrTypeConnection, Endpoint: path, Message: "failed to read response", Cause: err}
	}
	if len(data) > MaxResponseSize {
		return nil, &Error{Type: ErrTypeDecode, Endpoint: path, Message: fmt.Sprintf("response exceeds %d bytes", MaxResponseSize)}
	}

	log.Printf("BACKEND_RESPONSE | method=%s path=%s status=%d duration=%s request_id=%s",
		method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Type:       ErrTypeStatus,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    statusMessage(resp.Status, data),
		}
	}
	return data, nil
}

func (c *Client) contextError(path string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Type: ErrTypeTimeout, Endpoint: path, Message: "request timed out", Cause: err}
	}
	return &Error{Type: ErrTypeConnection, Endpoint: path, Message: "request cancelled", Cause: err}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	switch be.Type {
	case ErrTypeConnection, ErrTypeTimeout:
		return !errors.Is(be.Cause, context.Canceled) && !errors.Is(be.Cause, context.DeadlineExceeded)
	case ErrTypeStatus:
		return be.StatusCode >= 500 || be.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// statusMessage prefers an {"error": "..."} body over the bare status line.
func statusMessage(status string, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "request failed: " + status
}
