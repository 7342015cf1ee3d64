// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for medibot.
//
// Command: doctor
// Short:   Run health checks and diagnostics
// Aliases: (none)
//
// Health Checks Performed:
//  1. Config Valid       - Config file parses and validates
//  2. Data Directory     - The store directory is writable
//  3. Storage            - The configured store opens and lists keys
//  4. Backend            - The MediBot service answers
//  5. Speech             - A text-to-speech program is installed
//  6. Opener             - Calls and exported files can be opened
//  7. Location           - Location sharing for the emergency screen
//
// Flags:
//
//	--json              Output in JSON format
//
// Exit Codes:
//
//	0   No check failed (warnings allowed)
//	1   One or more checks failed
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/storage"
)

// backendCheckTimeout bounds the backend probe.
const backendCheckTimeout = 5 * time.Second

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"` // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", RenderStatus(c.Status), c.Message)
	if c.Status != StatusPass && c.Fix != "" {
		result += "\n" + DimStyle.Render("     -> "+c.Fix)
	}
	return result
}

// DoctorSummary counts check results.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// DoctorData is the doctor command's payload.
type DoctorData struct {
	Checks  []HealthCheck `json:"checks"`
	Summary DoctorSummary `json:"summary"`
}

func summarize(checks []HealthCheck) DoctorSummary {
	var s DoctorSummary
	for _, c := range checks {
		switch c.Status {
		case StatusPass:
			s.Passed++
		case StatusWarn:
			s.Warned++
		case StatusFail:
			s.Failed++
		}
	}
	s.Healthy = s.Failed == 0
	return s
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles "medibot doctor". It opens its own store and client
// so that each failure is reported as a check rather than aborting.
func HandleDoctor(ctx context.Context, w io.Writer, args Args) error {
	checks := RunChecks(ctx, args)
	summary := summarize(checks)

	if args.JSON {
		resp := NewJSONResponse("doctor", DoctorData{Checks: checks, Summary: summary})
		if !summary.Healthy {
			msg := fmt.Sprintf("%d health check(s) failed", summary.Failed)
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Write(w); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, TitleStyle.Render("MediBot Doctor"))
		fmt.Fprintln(w, RenderSeparator(41))
		for _, c := range checks {
			fmt.Fprintln(w, c.Render())
		}
		fmt.Fprintln(w, RenderSeparator(41))

		parts := []string{fmt.Sprintf("%d passed", summary.Passed)}
		if summary.Warned > 0 {
			parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d warning", summary.Warned)))
		}
		if summary.Failed > 0 {
			parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d failed", summary.Failed)))
		}
		fmt.Fprintln(w, strings.Join(parts, ", "))
	}

	if !summary.Healthy {
		return fmt.Errorf("%d health check(s) failed", summary.Failed)
	}
	return nil
}

// RunChecks runs every health check in order.
func RunChecks(ctx context.Context, args Args) []HealthCheck {
	cfg, cfgCheck := checkConfig(args)
	return []HealthCheck{
		cfgCheck,
		checkDataDir(cfg),
		checkStorage(cfg),
		checkBackend(ctx, cfg),
		checkSpeech(cfg, capability.NewCommandSpeaker()),
		checkOpener(capability.NewSystemOpener()),
		checkLocation(cfg),
	}
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// checkConfig loads the config. On failure the defaults are returned so the
// remaining checks still run.
func checkConfig(args Args) (*config.Config, HealthCheck) {
	c := HealthCheck{Name: "config"}
	path, _ := configFilePath(args)

	cfg, err := LoadConfig(args)
	if err != nil {
		c.Status = StatusFail
		c.Message = "Config invalid: " + err.Error()
		c.Fix = "Edit " + path + " or run: medibot config set KEY VALUE"
		return config.Default(), c
	}

	c.Status = StatusPass
	if _, statErr := os.Stat(path); statErr != nil {
		c.Message = "Config: using defaults (no " + path + ")"
	} else {
		c.Message = "Config valid: " + path
	}
	return cfg, c
}

func checkDataDir(cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "data_dir"}
	dir := cfg.DataDir()

	if err := os.MkdirAll(dir, 0700); err != nil {
		c.Status = StatusFail
		c.Message = "Data directory not creatable: " + err.Error()
		c.Fix = "Run: medibot config set storage.dir PATH"
		return c
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		c.Status = StatusFail
		c.Message = "Data directory not writable: " + dir
		c.Fix = "Check the permissions of " + dir
		return c
	}
	probe.Close()
	os.Remove(probe.Name())

	c.Status = StatusPass
	c.Message = "Data directory writable: " + dir
	return c
}

func checkStorage(cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "storage"}
	driver := storage.Driver(cfg.Storage.Driver)

	kv, err := storage.Open(driver, cfg.DataDir())
	if err != nil {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("Storage (%s) failed to open: %v", driver, err)
		c.Fix = "Run: medibot config set storage.driver file"
		return c
	}
	defer kv.Close()

	keys, err := kv.Keys()
	if err != nil {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("Storage (%s) unreadable: %v", driver, err)
		return c
	}

	c.Status = StatusPass
	c.Message = fmt.Sprintf("Storage (%s) OK, %d key(s)", driver, len(keys))
	if driver == storage.DriverMemory {
		c.Status = StatusWarn
		c.Message = "Storage is in memory; nothing is kept between runs"
		c.Fix = "Run: medibot config set storage.driver file"
	}
	return c
}

func checkBackend(ctx context.Context, cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "backend"}
	client := backend.NewClient(cfg.BackendClientConfig())

	ctx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := client.Health(ctx); err != nil {
		c.Status = StatusFail
		c.Message = fmt.Sprintf("Backend unreachable at %s: %v", client.BaseURL(), err)
		c.Fix = "Start the MediBot service or run: medibot config set backend.url URL"
		return c
	}

	c.Status = StatusPass
	c.Message = fmt.Sprintf("Backend reachable at %s (%s)", client.BaseURL(), time.Since(start).Round(time.Millisecond))
	return c
}

func checkSpeech(cfg *config.Config, speaker *capability.CommandSpeaker) HealthCheck {
	c := HealthCheck{Name: "speech", Status: StatusPass}
	switch {
	case !cfg.UI.Speech:
		c.Message = "Speech disabled in config"
	case speaker.Supported():
		c.Message = "Speech available via " + filepath.Base(speaker.Engine())
	default:
		c.Status = StatusWarn
		c.Message = "No text-to-speech program found; replies cannot be read aloud"
		c.Fix = "Install espeak-ng or speech-dispatcher"
	}
	return c
}

func checkOpener(opener capability.Opener) HealthCheck {
	c := HealthCheck{Name: "opener"}
	if opener.Supported() {
		c.Status = StatusPass
		c.Message = "Desktop handler available for tel: links and exports"
		return c
	}
	c.Status = StatusWarn
	c.Message = "No desktop handler; emergency calls must be dialled by hand"
	c.Fix = "Install xdg-utils"
	return c
}

func checkLocation(cfg *config.Config) HealthCheck {
	c := HealthCheck{Name: "location"}
	if cfg.Locator().Supported() {
		c.Status = StatusPass
		c.Message = "Location sharing configured for the emergency screen"
		return c
	}
	c.Status = StatusWarn
	c.Message = "Location sharing off; the emergency screen cannot share a position"
	c.Fix = "Run: medibot config set emergency.share_location true (and set latitude/longitude)"
	return c
}
