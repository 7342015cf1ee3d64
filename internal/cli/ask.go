// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the medibot CLI.
//
// USABILITY: Markdown rendering for better CLI experience
//
// Handles "medibot ask", which sends one question to the assistant and
// prints the formatted answer. The turn is recorded in the active
// conversation, so it shows up in the chat UI afterwards.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//
//	medibot ask "I have a sore throat and a fever"
//	echo "What helps with migraines?" | medibot ask
//	medibot ask --json "Is ibuprofen safe with coffee?"
//
// Flags:
//
//	--raw               Print the answer without formatting
//	--json              Output response as JSON
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/format"
)

// maxPipedQuery bounds a question read from stdin.
const maxPipedQuery = 64 * 1024

// RunAsk handles "medibot ask".
func (a *App) RunAsk(ctx context.Context, p *ArgParser) error {
	query := strings.TrimSpace(JoinPositionalArgs(p, 0))
	if query == "" && !a.Interactive {
		data, err := io.ReadAll(io.LimitReader(a.In, maxPipedQuery))
		if err != nil {
			return &CommandError{Command: "ask", Action: "read stdin", Err: err}
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return ErrMissingArgument("question", `medibot ask "your question"`)
	}

	if a.Interactive && !a.Quiet && !a.JSON {
		fmt.Fprintln(a.Err, DimStyle.Render(assistant.ChatPlaceholder))
	}

	reply, err := a.Assistant.Send(ctx, query)
	if err != nil {
		return &CommandError{Command: "ask", Action: "send", Err: err}
	}

	answer := reply.Message.Text
	data := AskData{
		Query:  query,
		Answer: answer,
		Kind:   format.Classify(answer).String(),
		Failed: reply.Failed,
	}
	if err := a.emit("ask", data, func() {
		a.printReply(answer, reply.Failed, p.BoolFlag("raw"))
	}); err != nil {
		return err
	}

	if reply.Failed {
		return &CommandError{Command: "ask", Action: "query", Err: reply.Err}
	}
	return nil
}

// printReply writes a bot answer to Out, or an error line to Err.
func (a *App) printReply(text string, failed, raw bool) {
	switch {
	case failed:
		fmt.Fprintln(a.Err, ErrorStyle.Render(text))
	case raw:
		fmt.Fprintln(a.Out, text)
	default:
		fmt.Fprintln(a.Out, a.renderReply(text))
	}
}
