// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/config"
)

func configArgs(t *testing.T, raw ...string) Args {
	t.Helper()
	return Args{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Flags:      NewArgParser(raw),
	}
}

// savedConfigArgs is configArgs over a config file that already exists.
func savedConfigArgs(t *testing.T, raw ...string) Args {
	t.Helper()
	a := configArgs(t, "set", "emergency.number", "911")
	require.NoError(t, HandleConfig(&bytes.Buffer{}, a))
	a.Flags = NewArgParser(raw)
	return a
}

func TestHandleConfig_SetThenGet(t *testing.T) {
	a := configArgs(t, "set", "emergency.number", "112")
	var buf bytes.Buffer

	require.NoError(t, HandleConfig(&buf, a))
	assert.Contains(t, buf.String(), "emergency.number = 112")

	buf.Reset()
	a.Flags = NewArgParser([]string{"get", "emergency.number"})
	require.NoError(t, HandleConfig(&buf, a))
	assert.Equal(t, "112\n", buf.String())
}

func TestHandleConfig_SetRejectsInvalidValue(t *testing.T) {
	a := configArgs(t, "set", "backend.max_retries", "99")

	err := HandleConfig(&bytes.Buffer{}, a)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestHandleConfig_UnknownKeySuggests(t *testing.T) {
	a := savedConfigArgs(t, "get", "emergncy.number")

	err := HandleConfig(&bytes.Buffer{}, a)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "err=%v", err)
	assert.Equal(t, "emergency.number", verr.Example)
}

func TestHandleConfig_Keys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleConfig(&buf, configArgs(t, "keys")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, config.GetAllKeys(), lines)
}

func TestHandleConfig_PathAndShowJSON(t *testing.T) {
	a := savedConfigArgs(t, "path")
	var buf bytes.Buffer
	require.NoError(t, HandleConfig(&buf, a))
	assert.Equal(t, a.ConfigPath+"\n", buf.String())

	buf.Reset()
	a.JSON = true
	a.Flags = NewArgParser([]string{"show"})
	require.NoError(t, HandleConfig(&buf, a))

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Data, "backend")
}

func TestHandleConfig_MissingFile(t *testing.T) {
	err := HandleConfig(&bytes.Buffer{}, configArgs(t, "show"))
	require.Error(t, err)
}

func TestHandleConfig_UnknownSubcommand(t *testing.T) {
	err := HandleConfig(&bytes.Buffer{}, configArgs(t, "sett"))
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Contains(t, err.Error(), `did you mean "set"`)
}

func TestLoadConfig_Overrides(t *testing.T) {
	a := savedConfigArgs(t)
	a.Backend = "http://127.0.0.1:9999"
	a.Store = "memory"

	cfg, err := LoadConfig(a)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Backend.URL)
	assert.Equal(t, "memory", cfg.Storage.Driver)

	a.Backend = "not a url"
	_, err = LoadConfig(a)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

// =============================================================================
// DOCTOR
// =============================================================================

func TestSummarize(t *testing.T) {
	s := summarize([]HealthCheck{
		{Name: "a", Status: StatusPass},
		{Name: "b", Status: StatusWarn},
		{Name: "c", Status: StatusPass},
	})
	assert.Equal(t, DoctorSummary{Passed: 2, Warned: 1, Healthy: true}, s)

	s = summarize([]HealthCheck{{Name: "a", Status: StatusFail}})
	assert.False(t, s.Healthy)
}

func TestCheckStorage_MemoryWarns(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"

	c := checkStorage(cfg)
	assert.Equal(t, StatusWarn, c.Status)
	assert.NotEmpty(t, c.Fix)
}

func TestCheckOpener(t *testing.T) {
	assert.Equal(t, StatusPass, checkOpener(&fakeOpener{supported: true}).Status)
	assert.Equal(t, StatusWarn, checkOpener(&fakeOpener{}).Status)
}

func TestCheckLocation(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, StatusWarn, checkLocation(cfg).Status)

	cfg.Emergency.ShareLocation = true
	cfg.Emergency.Latitude = 48.85
	cfg.Emergency.Longitude = 2.35
	assert.Equal(t, StatusPass, checkLocation(cfg).Status)
}

func TestCheckBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	cfg := config.Default()
	cfg.Backend.URL = url
	cfg.Backend.MaxRetries = 0

	c := checkBackend(context.Background(), cfg)
	assert.Equal(t, StatusFail, c.Status)
	assert.Contains(t, c.Message, url)
}

func TestHealthCheckRender(t *testing.T) {
	c := HealthCheck{Name: "backend", Status: StatusFail, Message: "Backend unreachable", Fix: "Start the service"}
	out := c.Render()
	assert.Contains(t, out, "Backend unreachable")
	assert.Contains(t, out, "Start the service")
}
