// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// emergency_cmd.go - Emergency and consult-doctor commands.
//
// Commands:
//
//	emergency [--share-location] [--call]
//	consult [--fullName V] [--symptoms V] ...
//
// The consult request has no backend endpoint; submitting it writes a
// structured record to the log.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/emergency"
)

func (a *App) emergencyScreen() *emergency.Screen {
	return emergency.NewScreen(a.Config.Emergency.Number, a.Config.Locator(), a.Opener)
}

// RunEmergency handles "medibot emergency".
func (a *App) RunEmergency(ctx context.Context, p *ArgParser) error {
	screen := a.emergencyScreen()
	data := EmergencyData{Number: screen.Number(), TelURL: screen.TelURL()}

	if !a.JSON {
		fmt.Fprintln(a.Out, EmergencyStyle.Render(emergency.Title))
		fmt.Fprintln(a.Out, WrapText(emergency.Instruction, GetTerminalWidth()))
		fmt.Fprintln(a.Out)
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Emergency number:"), EmergencyStyle.Render(screen.Number()))
	}

	if p.BoolFlag("share-location") {
		if !a.JSON && a.Interactive {
			fmt.Fprintln(a.Out, DimStyle.Render(emergency.Locating))
		}
		loc := screen.ShareLocation(ctx)
		data.Location = loc.String()
		if !a.JSON {
			fmt.Fprintln(a.Out, loc.String())
		}
	}

	var callErr error
	if p.BoolFlag("call") {
		callErr = screen.Call()
		data.Called = callErr == nil
		if !a.JSON {
			switch {
			case callErr == nil:
				fmt.Fprintln(a.Out, SuccessStyle.Render("Calling "+screen.Number()+"..."))
			case errors.Is(callErr, capability.ErrUnsupported):
				fmt.Fprintln(a.Err, WarningStyle.Render("This device cannot place calls. Dial "+screen.Number()+" from your phone."))
			}
		}
	} else if !a.JSON && !a.Quiet {
		fmt.Fprintln(a.Out, DimStyle.Render("Run with --call to dial "+screen.TelURL()))
	}

	if a.JSON {
		if err := NewJSONResponse("emergency", data).Write(a.Out); err != nil {
			return err
		}
	}
	if callErr != nil && !errors.Is(callErr, capability.ErrUnsupported) {
		return &CommandError{Command: "emergency", Action: "call", Err: callErr}
	}
	return nil
}

// RunConsult handles "medibot consult". Fields come from --<key> flags;
// with none given, each field is prompted for in turn.
func (a *App) RunConsult(p *ArgParser) error {
	var req emergency.ConsultRequest
	fields := req.Fields()

	fromFlags := false
	for _, f := range fields {
		if v := p.Flag(f.Key); v != "" {
			*f.Value = v
			fromFlags = true
		}
	}

	if !fromFlags {
		if a.JSON || !a.Interactive {
			return &UsageError{Message: "consult needs a terminal, or field flags such as --symptoms"}
		}
		fmt.Fprintln(a.Out, TitleStyle.Render("Consult a Doctor"))
		fmt.Fprintln(a.Out, DimStyle.Render("Every field is optional; press Enter to skip."))
		for _, f := range fields {
			v, err := a.prompt().Ask(f.Placeholder + ":")
			if err != nil {
				return &CommandError{Command: "consult", Action: "read " + f.Key, Err: err}
			}
			*f.Value = v
		}
	}

	if req.Empty() {
		return &UsageError{Message: "the consult request is empty"}
	}
	req.Submit()

	return a.emit("consult", req, func() {
		a.info("%s", SuccessStyle.Render("Consultation request recorded."))
	})
}
