// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session management CLI commands for medibot.
//
// Command: session [subcommand]
// Short:   Manage archived conversations
// Aliases: sessions
//
// Subcommands:
//
//	list (default)      List archived conversations (aliases: ls, l)
//	show <id>           Print a conversation
//	load <id>           Make an archived conversation active
//	delete <id>         Remove an archived conversation (alias: rm)
//	clear               Archive the active conversation and start over
//	export [id|active]  Export a conversation (default: active)
//
// Examples:
//
//	medibot session
//	medibot session show 1718000000000
//	medibot session export 1718000000000 --format json --output ~/exports
//	medibot session export --format md --output -
//	medibot session delete 1718000000000 --yes
//
// Flags:
//
//	--format FORMAT     Export format: md, json, html (default: md)
//	--output DIR        Export directory, or - for stdout (default: .)
//	--open              Open the exported file
//	--yes, -y           Skip the delete confirmation
//	--json              Output in JSON format
package cli

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/export"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/util"
)

// RunSession handles "medibot session".
func (a *App) RunSession(p *ArgParser) error {
	sub := strings.ToLower(p.Subcommand())
	switch sub {
	case "", "list", "ls", "l":
		return a.sessionList()
	case "show", "view":
		return a.sessionShow(p.Positional(1))
	case "load", "open":
		return a.sessionLoad(p.Positional(1))
	case "delete", "rm":
		return a.sessionDelete(p.Positional(1), p.BoolFlag("yes", "y"))
	case "clear", "new":
		return a.sessionClear()
	case "export":
		return a.sessionExport(p)
	default:
		msg := fmt.Sprintf("unknown session subcommand %q", sub)
		if s := suggestFrom(sub, []string{"list", "show", "load", "delete", "clear", "export"}); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return &UsageError{Message: msg}
	}
}

// =============================================================================
// SESSION LIST / SHOW
// =============================================================================

func sessionData(s model.ChatSession) SessionData {
	return SessionData{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt().UTC().Format(time.RFC3339),
		Messages:     len(s.Messages),
		UserMessages: s.UserMessageCount(),
	}
}

func (a *App) sessionList() error {
	sessions := a.Store.Sessions()
	data := make([]SessionData, len(sessions))
	for i, s := range sessions {
		data[i] = sessionData(s)
	}
	return a.emit("session list", data, func() { a.printSessions(sessions) })
}

// printSessions prints the archive as a table, newest first.
func (a *App) printSessions(sessions []model.ChatSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(a.Out, "No archived conversations.")
		fmt.Fprintln(a.Out, DimStyle.Render("Conversations are archived when you start a new chat."))
		return
	}

	fmt.Fprintln(a.Out, SectionStyle.Render("Archived Conversations"))
	fmt.Fprintf(a.Out, "%-14s  %-22s  %5s  %s\n", "ID", "Title", "Msgs", "Created")
	fmt.Fprintln(a.Out, RenderSeparator(60))
	for _, s := range sessions {
		fmt.Fprintf(a.Out, "%-14d  %s  %5d  %s\n",
			s.ID,
			util.PadRight(util.TruncateRunes(s.Title, 22, "…"), 22),
			s.UserMessageCount(),
			s.CreatedAt().Local().Format("Jan 2 15:04"),
		)
	}
	if !a.Quiet {
		fmt.Fprintln(a.Out)
		fmt.Fprintf(a.Out, "Total: %d conversation(s)\n", len(sessions))
	}
}

// findSession resolves an id argument against the archive.
func (a *App) findSession(raw string) (model.ChatSession, error) {
	id, err := ParseSessionID(raw)
	if err != nil {
		return model.ChatSession{}, err
	}
	s, ok := a.Store.Session(id)
	if !ok {
		return model.ChatSession{}, ErrNotFound("session", raw)
	}
	return s, nil
}

func (a *App) sessionShow(raw string) error {
	s, err := a.findSession(raw)
	if err != nil {
		return err
	}
	return a.emit("session show", s, func() {
		fmt.Fprintln(a.Out, TitleStyle.Render(s.Title))
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Created:"), s.CreatedAt().Local().Format(time.RFC1123))
		fmt.Fprintf(a.Out, "%s%d\n\n", RenderLabel("Messages:"), len(s.Messages))
		for _, m := range s.Messages {
			meta := m.Sender.DisplayName()
			if m.ID > model.GreetingID {
				meta += " · " + time.UnixMilli(m.ID).Local().Format("15:04")
			}
			fmt.Fprintln(a.Out, DimStyle.Render(meta))
			if m.IsUser() {
				fmt.Fprintln(a.Out, m.Text)
			} else {
				fmt.Fprintln(a.Out, a.renderReply(m.Text))
			}
			fmt.Fprintln(a.Out)
		}
	})
}

// =============================================================================
// SESSION LOAD / DELETE / CLEAR
// =============================================================================

func (a *App) sessionLoad(raw string) error {
	s, err := a.findSession(raw)
	if err != nil {
		return err
	}
	if _, err := a.Store.LoadSession(s.ID); err != nil {
		return &CommandError{Command: "session", Action: "load", Err: err}
	}
	log.Printf("SESSION_LOADED | id=%d", s.ID)
	return a.emit("session load", sessionData(s), func() {
		a.info("%s %s", SuccessStyle.Render("Loaded"), s.Title)
	})
}

func (a *App) sessionDelete(raw string, yes bool) error {
	s, err := a.findSession(raw)
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("delete %q", s.Title), yes)
	if err != nil {
		return err
	}
	if !ok {
		a.ShowCancellationMessage()
		return nil
	}

	if _, err := a.Store.DeleteSession(s.ID); err != nil {
		return &CommandError{Command: "session", Action: "delete", Err: err}
	}
	log.Printf("SESSION_DELETED | id=%d", s.ID)
	return a.emit("session delete", sessionData(s), func() {
		a.info("%s %s", SuccessStyle.Render("Deleted"), s.Title)
	})
}

func (a *App) sessionClear() error {
	archived, err := a.Store.ClearChat()
	if err != nil {
		return &CommandError{Command: "session", Action: "clear", Err: err}
	}

	var data *SessionData
	if archived.ID != 0 {
		d := sessionData(archived)
		data = &d
	}
	return a.emit("session clear", data, func() {
		if data == nil {
			a.info("Nothing to archive; the conversation is new.")
			return
		}
		a.info("%s %s", SuccessStyle.Render("Archived"), archived.Title)
	})
}

// =============================================================================
// SESSION EXPORT
// =============================================================================

func (a *App) sessionExport(p *ArgParser) error {
	f, err := export.ParseFormat(p.Flag("format"))
	if err != nil {
		return &ValidationError{Field: "--format", Value: p.Flag("format"), Reason: "must be md, json or html"}
	}

	var cs model.ChatSession
	switch target := p.Positional(1); target {
	case "", "active", "current":
		cs = export.ActiveSession(a.Store.Messages(), a.Now())
	default:
		if cs, err = a.findSession(target); err != nil {
			return err
		}
	}

	out := p.FlagOrDefault("output", ".")
	if out == "-" {
		return a.exportToStdout(cs, f)
	}

	path, err := a.exportSession(cs, f, expandPath(out), p.BoolFlag("open"))
	if err != nil {
		return err
	}
	return a.emit("session export", map[string]string{"path": path, "format": string(f)}, func() {
		a.info("%s %s", SuccessStyle.Render("Exported to"), path)
	})
}

// exportSession writes cs to dir and returns the file path.
func (a *App) exportSession(cs model.ChatSession, f export.Format, dir string, open bool) (string, error) {
	opts := export.DefaultOptions()
	opts.OutputDir = dir
	opts.OpenAfterExport = open
	opts.Opener = a.Opener

	path, err := export.ToFile(cs, f, opts)
	if err != nil {
		return "", &CommandError{Command: "session", Action: "export", Err: err}
	}
	return path, nil
}

// exportToStdout prints the export. JSON and markdown are highlighted when
// stdout is a terminal.
func (a *App) exportToStdout(cs model.ChatSession, f export.Format) error {
	exporter, err := export.New(f, export.DefaultOptions())
	if err != nil {
		return &UsageError{Message: err.Error()}
	}
	content, err := exporter.Export(cs)
	if err != nil {
		return &CommandError{Command: "session", Action: "export", Err: err}
	}

	text := string(content)
	if !a.Plain {
		switch f {
		case export.FormatJSON:
			text = export.HighlightJSON(text)
		case export.FormatMarkdown:
			text = export.HighlightMarkdown(text)
		}
	}
	_, err = fmt.Fprintln(a.Out, strings.TrimRight(text, "\n"))
	return err
}
