// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI front end of
// medibot: a line-editing chat REPL and one-shot commands over the same
// conversation store the chat UI uses.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Global flags plus the command's own ArgParser
//   - App: The services one run works with (store, assistant, trackers,
//     profile, identity and platform capabilities)
//   - JSONResponse: The --json output envelope
//
// # Usage
//
//	cmd, args := cli.Parse()
//	if cmd == cli.CmdTUI {
//	    // start the Bubble Tea program
//	}
//	if err := cli.Run(cmd, args); err != nil {
//	    cli.DisplayError(os.Stderr, err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands Overview
//
// Conversation:
//   - chat, ask, image, session
//
// Health trackers:
//   - bmi, mood, cbt, symptom
//
// Account:
//   - signup, signin, signout, whoami, settings
//
// Safety:
//   - emergency, consult
//
// Maintenance:
//   - config, doctor, version, help
//
// All commands support --json. Errors map to exit codes by type (see
// GetExitCode).
package cli
