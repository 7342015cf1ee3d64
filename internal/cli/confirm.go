// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Unified confirmation handling for destructive commands.
//
// USABILITY: TTY detection for proper terminal handling
//
// One pattern for every destructive action (session delete, session clear,
// signout):
//  1. If --yes is present, proceed without prompting
//  2. If --json mode, require --yes (no interactive prompts in JSON mode)
//  3. If stdin is not a terminal, require --yes (can't prompt)
//  4. Otherwise, ask and accept "y" or "yes"
package cli

import (
	"fmt"
	"strings"
)

// ConfirmationOptions describes how a confirmation may be satisfied.
type ConfirmationOptions struct {
	// Yes indicates --yes was passed (skip the prompt)
	Yes bool
	// JSONMode indicates --json was passed
	JSONMode bool
	// Interactive reports whether the input can be prompted
	Interactive bool
}

// RequireConfirmation asks before a destructive action.
//
// Returns true if confirmed, false if the user declined, and an error if
// confirmation was required but could not be asked for.
func (a *App) RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSONMode {
		return false, &UsageError{Message: "confirmation required: use --yes for destructive actions in JSON mode"}
	}
	if !opts.Interactive {
		return false, &UsageError{Message: "confirmation required but stdin is not a terminal; use --yes"}
	}

	fmt.Fprintln(a.Err)
	answer, err := a.prompt().Ask(fmt.Sprintf("Are you sure you want to %s? [y/N]:", action))
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(answer)
	return response == "y" || response == "yes", nil
}

// confirm is RequireConfirmation with the app's own modes filled in.
func (a *App) confirm(action string, yes bool) (bool, error) {
	return a.RequireConfirmation(action, ConfirmationOptions{
		Yes:         yes,
		JSONMode:    a.JSON,
		Interactive: a.Interactive,
	})
}

// ShowCancellationMessage displays a standard cancellation message.
func (a *App) ShowCancellationMessage() {
	fmt.Fprintln(a.Err, DimStyle.Render("Cancelled."))
}
