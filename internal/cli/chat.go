// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the medibot CLI.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles "medibot chat", a line-editing REPL over the same conversation
// the chat UI shows. Input history is kept in ~/.medibot/chat_history.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/new                Archive this conversation and start a new one
//	/sessions           List archived conversations
//	/load ID            Make an archived conversation active
//	/delete ID          Remove an archived conversation
//	/image PATH         Analyze a medical image
//	/bmi W H            Calculate BMI (kg, cm)
//	/export [md|json]   Export this conversation
//	/sos                Show the emergency number
//	/quit, /q           Exit chat
//	Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/config"
	"github.com/medibot/medibot-tui/internal/emergency"
	"github.com/medibot/medibot-tui/internal/export"
	"github.com/medibot/medibot-tui/internal/model"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// chatScrollback is how many messages of the active conversation are shown
// when the REPL starts or a session is loaded.
const chatScrollback = 6

// =============================================================================
// LINE EDITING
// =============================================================================

// lineReader reads one line of input per prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads a line and adds it to the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (c *ChatCLI) Close() error {
	defer c.line.Close()

	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.line.WriteHistory(f)
	return err
}

// slashCommands are the REPL commands, for completion and help.
var slashCommands = []struct {
	cmd  string
	desc string
}{
	{"/help", "Show this help"},
	{"/new", "Archive this conversation and start a new one"},
	{"/sessions", "List archived conversations"},
	{"/load ID", "Make an archived conversation active"},
	{"/delete ID", "Remove an archived conversation"},
	{"/image PATH", "Analyze a medical image"},
	{"/bmi W H", "Calculate BMI (weight kg, height cm)"},
	{"/export [md|json]", "Export this conversation"},
	{"/sos", "Show the emergency number"},
	{"/quit", "Exit chat"},
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		name, _, _ := strings.Cut(c.cmd, " ")
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	return out
}

// =============================================================================
// REPL
// =============================================================================

// RunChat handles "medibot chat".
func (a *App) RunChat(ctx context.Context) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	if a.JSON {
		return &UsageError{Message: "chat is interactive and does not support --json"}
	}

	r := NewChatCLI()
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("CHAT_HISTORY_ERROR | err=%v", err)
		}
	}()
	return a.chatLoop(ctx, r)
}

// chatLoop runs the REPL until /quit, end of input or cancellation.
func (a *App) chatLoop(ctx context.Context, r lineReader) error {
	if !a.Quiet {
		fmt.Fprintln(a.Out, TitleStyle.Render("MediBot chat"))
		fmt.Fprintln(a.Out, DimStyle.Render("Type /help for commands, /quit or Ctrl+D to exit."))
		fmt.Fprintln(a.Out, EmergencyStyle.Render("In an emergency call "+a.emergencyScreen().Number()+"."))
		fmt.Fprintln(a.Out)
		a.printConversation(a.Store.Messages())
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.Prompt(PromptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(a.Out)
				return nil
			}
			return &CommandError{Command: "chat", Action: "read input", Err: err}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := a.handleSlash(ctx, input)
			if err != nil {
				fmt.Fprintln(a.Err, ErrorStyle.Render("Error: "+err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		fmt.Fprintln(a.Out, DimStyle.Render(assistant.ChatPlaceholder))
		reply, err := a.Assistant.Send(ctx, input)
		if err != nil {
			fmt.Fprintln(a.Err, ErrorStyle.Render("Error: "+err.Error()))
			continue
		}
		a.printBotMessage(reply.Message.Text, reply.Failed)
	}
}

// handleSlash runs one REPL command. It reports whether the REPL should end.
func (a *App) handleSlash(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		a.printChatHelp()

	case "/new", "/clear":
		archived, err := a.Store.ClearChat()
		if err != nil {
			return false, err
		}
		if archived.ID != 0 {
			fmt.Fprintf(a.Out, "%s %s\n", SuccessStyle.Render("Archived"), archived.Title)
		}
		a.printConversation(a.Store.Messages())

	case "/sessions":
		a.printSessions(a.Store.Sessions())

	case "/load":
		id, err := ParseSessionID(first(args))
		if err != nil {
			return false, err
		}
		ok, err := a.Store.LoadSession(id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, ErrNotFound("session", first(args))
		}
		a.printConversation(a.Store.Messages())

	case "/delete":
		id, err := ParseSessionID(first(args))
		if err != nil {
			return false, err
		}
		ok, err := a.Store.DeleteSession(id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, ErrNotFound("session", first(args))
		}
		fmt.Fprintln(a.Out, SuccessStyle.Render("Deleted "+first(args)))

	case "/image", "/img":
		path := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		if path == "" {
			return false, ErrMissingArgument("image path", "/image PATH")
		}
		fmt.Fprintln(a.Out, DimStyle.Render(assistant.ImagePlaceholder))
		reply, err := a.Assistant.AnalyzeImageFile(ctx, expandPath(path))
		if err != nil {
			return false, err
		}
		a.printBotMessage(reply.Message.Text, reply.Failed)

	case "/bmi":
		if len(args) != 2 {
			return false, ErrMissingArgument("weight and height", "/bmi WEIGHT_KG HEIGHT_CM")
		}
		res, err := a.Tracker.CalculateBMI(ctx, tracker.BMIForm{Weight: args[0], Height: args[1]})
		if err != nil {
			return false, err
		}
		a.printBMI(res)

	case "/export":
		f, err := export.ParseFormat(first(args))
		if err != nil {
			return false, &UsageError{Message: err.Error()}
		}
		path, err := a.exportSession(export.ActiveSession(a.Store.Messages(), a.Now()), f, ".", false)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(a.Out, SuccessStyle.Render("Exported to "+path))

	case "/sos", "/emergency":
		screen := a.emergencyScreen()
		fmt.Fprintln(a.Out, EmergencyStyle.Render(emergency.Instruction))
		fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("Emergency number:"), EmergencyStyle.Render(screen.Number()))

	default:
		msg := fmt.Sprintf("unknown command %s", cmd)
		if s := suggestFrom(cmd, slashNames()); s != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", s)
		}
		return false, &UsageError{Message: msg}
	}
	return false, nil
}

func slashNames() []string {
	names := make([]string, 0, len(slashCommands))
	for _, c := range slashCommands {
		name, _, _ := strings.Cut(c.cmd, " ")
		names = append(names, name)
	}
	return names
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// =============================================================================
// OUTPUT
// =============================================================================

func (a *App) printChatHelp() {
	fmt.Fprintln(a.Out)
	fmt.Fprintln(a.Out, SectionStyle.Render("Available Commands"))
	for _, c := range slashCommands {
		fmt.Fprintf(a.Out, "  %s  %s\n", PromptStyle.Render(fmt.Sprintf("%-18s", c.cmd)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(a.Out)
}

// printConversation shows the tail of msgs.
func (a *App) printConversation(msgs []model.Message) {
	if len(msgs) > chatScrollback {
		fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("... %d earlier messages", len(msgs)-chatScrollback)))
		msgs = msgs[len(msgs)-chatScrollback:]
	}
	for _, m := range msgs {
		if m.IsUser() {
			fmt.Fprintf(a.Out, "%s %s\n", PromptStyle.Render("you>"), m.Text)
			continue
		}
		a.printBotMessage(m.Text, false)
	}
}

func (a *App) printBotMessage(text string, failed bool) {
	if failed {
		fmt.Fprintln(a.Out, ErrorStyle.Render(text))
		return
	}
	fmt.Fprintln(a.Out, a.renderReply(text))
}
