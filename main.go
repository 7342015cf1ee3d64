// MediBot TUI - a terminal client for the MediBot medical assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medibot/medibot-tui/internal/cli"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/ui/chat"
	"github.com/medibot/medibot-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	if cmd == cli.CmdTUI {
		err = runTUI(args)
	} else {
		err = cli.Run(cmd, args)
	}

	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("the chat interface"); err != nil {
		return err
	}

	app, err := cli.Open(args)
	if err != nil {
		return err
	}
	defer app.Close()

	// The TUI owns the terminal, so logs go to a file or nowhere.
	if app.Config.Logging.Verbose {
		f, err := tea.LogToFile(app.Config.DebugLogPath(), "medibot")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m := chat.New(styles.NewTheme(), chat.Deps{
		Assistant: app.Assistant,
		Tracker:   app.Tracker,
		Settings:  app.Settings,
		Auth:      app.Auth,
		Speech:    app.Speech,
		Opener:    app.Opener,
		Config:    app.Config,
		Now:       app.Now,
	})
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if w := watchConfig(ctx, args, p); w != nil {
		defer w.Close()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run medibot: %w", err)
	}
	return nil
}

// watchConfig forwards config file edits to the running program. A watcher
// that cannot start is logged and skipped.
func watchConfig(ctx context.Context, args cli.Args, p *tea.Program) *config.Watcher {
	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			log.Printf("CONFIG_WATCH_ERROR | err=%v", err)
			return nil
		}
	}

	w, err := config.NewWatcher(path, config.DefaultDebounce, func(cfg *config.Config, err error) {
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		log.Printf("CONFIG_WATCH_ERROR | path=%s err=%v", path, err)
		return nil
	}
	if err := w.Watch(ctx); err != nil {
		log.Printf("CONFIG_WATCH_ERROR | path=%s err=%v", path, err)
		_ = w.Close()
		return nil
	}
	return w
}
