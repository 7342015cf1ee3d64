// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring shared by the TUI and the CLI commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/format"
	"github.com/medibot/medibot-tui/internal/render"
	"github.com/medibot/medibot-tui/internal/session"
	"github.com/medibot/medibot-tui/internal/settings"
	"github.com/medibot/medibot-tui/internal/storage"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// Backend is everything the front ends need from the MediBot service.
type Backend interface {
	assistant.Backend
	tracker.Backend
	Health(ctx context.Context) error
}

// App holds the services one run of medibot works with.
type App struct {
	Config *config.Config
	KV     storage.Store

	Store     *session.Store
	Backend   Backend
	Assistant *assistant.Service
	Tracker   *tracker.Service
	Settings  *settings.Manager
	Auth      *auth.LocalProvider

	Speech *capability.SpeechToggle
	Opener capability.Opener
	Files  capability.FileReader

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Now is the clock behind message and session ids.
	Now func() time.Time

	JSON    bool
	Quiet   bool
	Verbose bool

	// Interactive is set when stdin is a terminal.
	Interactive bool
	// Plain disables markdown styling, for pipes.
	Plain bool

	prompter *Prompter
}

// LoadConfig loads the config file named by --config (or the default one)
// and applies the --backend and --store overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	overridden := false
	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
		overridden = true
	}
	if args.Store != "" {
		cfg.Storage.Driver = args.Store
		overridden = true
	}
	if args.Verbose {
		cfg.Logging.Verbose = true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	return cfg, nil
}

// Open loads the config, opens the store and connects the backend client.
func Open(args Args) (*App, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(storage.Driver(cfg.Storage.Driver), cfg.DataDir())
	if err != nil {
		return nil, &CommandError{Command: "storage", Action: "open", Err: err}
	}
	log.Printf("STORE_OPENED | driver=%s dir=%s", cfg.Storage.Driver, cfg.DataDir())

	app := NewApp(cfg, kv, backend.NewClient(cfg.BackendClientConfig()))
	app.JSON = args.JSON
	app.Quiet = args.Quiet
	app.Verbose = args.Verbose
	return app, nil
}

// NewApp wires the services over kv and b. Terminal I/O defaults to the
// process's standard streams; tests replace the fields afterwards.
func NewApp(cfg *config.Config, kv storage.Store, b Backend) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		Config:      cfg,
		KV:          kv,
		Backend:     b,
		Files:       capability.OSFileReader{},
		Opener:      capability.NewSystemOpener(),
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Now:         time.Now,
		Interactive: IsTTY(),
		Plain:       !IsStdoutTTY(),
	}
	clock := func() time.Time { return a.Now() }

	a.Store = session.New(kv, session.WithClock(clock))
	a.Assistant = assistant.New(a.Store, b,
		assistant.WithClock(clock),
		assistant.WithFileReader(fileReader{a}),
	)
	a.Tracker = tracker.NewService(b)
	a.Settings = settings.NewManager(kv, fileReader{a})
	a.Auth = auth.NewLocalProvider(kv, a.Settings, auth.WithClock(clock))

	var speaker capability.Speaker
	if cfg.UI.Speech {
		speaker = capability.NewCommandSpeaker()
	}
	a.Speech = capability.NewSpeechToggle(speaker)

	return a
}

// fileReader reads through the app's current Files, so tests can swap it
// after NewApp.
type fileReader struct{ a *App }

func (r fileReader) Supported() bool { return r.a.Files.Supported() }

func (r fileReader) Read(path string) (capability.File, error) {
	return r.a.Files.Read(path)
}

// Close releases the store.
func (a *App) Close() error {
	if a.KV == nil {
		return nil
	}
	return a.KV.Close()
}

// prompt returns the app's prompter, created on first use so reads share
// one buffer.
func (a *App) prompt() *Prompter {
	if a.prompter == nil {
		a.prompter = NewPrompter(a.In, a.Err)
	}
	return a.prompter
}

// info prints a human-readable line unless --quiet or --json.
func (a *App) info(format string, args ...any) {
	if a.Quiet || a.JSON {
		return
	}
	fmt.Fprintf(a.Out, format+"\n", args...)
}

// emit writes data as a JSON response in --json mode, otherwise calls text.
func (a *App) emit(command string, data any, text func()) error {
	if a.JSON {
		return NewJSONResponse(command, data).Write(a.Out)
	}
	text()
	return nil
}

// renderReply formats a bot answer for the terminal.
func (a *App) renderReply(text string) string {
	return a.renderMarkdown(format.Format(text))
}

// renderMarkdown styles md with glamour unless output is plain.
func (a *App) renderMarkdown(md string) string {
	if a.Plain {
		return md
	}
	width := GetTerminalWidth()
	if a.Config.UI.WordWrap > 0 && a.Config.UI.WordWrap < width {
		width = a.Config.UI.WordWrap
	}
	return render.New(render.ParseStyle(a.Config.UI.Theme), width).Render(md)
}
