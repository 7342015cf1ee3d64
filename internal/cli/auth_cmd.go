// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Account and profile commands for medibot.
//
// Accounts are local to this machine. Passwords are read without echo when
// stdin is a terminal, otherwise one per line from stdin.
//
// Commands:
//
//	signup     Create an account (--email, --username)
//	signin     Sign in (--email, --code for a second factor)
//	signout    Sign out and erase local data (--yes to skip the prompt)
//	whoami     Show the signed-in user
//	settings   Show or change the profile
//
// Settings flags:
//
//	--username NAME     Change the display name
//	--avatar PATH       Import an avatar image
//	--clear-avatar      Remove the avatar
//	--enable-2fa        Enroll an authenticator app (prints the secret)
//	--disable-2fa       Remove the second factor
//
// Examples:
//
//	medibot signup --email ana@example.com --username ana
//	medibot signin --email ana@example.com --code 123456
//	medibot settings --username "Ana P."
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medibot/medibot-tui/internal/auth"
	"github.com/medibot/medibot-tui/internal/settings"
)

// askOrFlag returns the flag value, prompting for it when absent.
func (a *App) askOrFlag(p *ArgParser, flag, label string) (string, error) {
	if v := p.Flag(flag); v != "" {
		return v, nil
	}
	if a.JSON {
		return "", ErrMissingArgument("--"+flag, "pass --"+flag+" in --json mode")
	}
	v, err := a.prompt().Ask(label)
	if err != nil {
		return "", &CommandError{Command: "prompt", Action: flag, Err: err}
	}
	return v, nil
}

func (a *App) askSecret(label string) (string, error) {
	v, err := a.prompt().AskSecret(label)
	if err != nil {
		return "", &CommandError{Command: "prompt", Action: "password", Err: err}
	}
	return v, nil
}

func userData(u auth.User) UserData {
	d := UserData{Email: u.Email, Username: u.Username, TOTPEnabled: u.TOTPEnabled}
	if !u.CreatedAt.IsZero() {
		d.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return d
}

// =============================================================================
// SIGN UP / SIGN IN / SIGN OUT
// =============================================================================

// RunSignUp handles "medibot signup".
func (a *App) RunSignUp(ctx context.Context, p *ArgParser) error {
	var req auth.SignUpRequest
	var err error
	if req.Email, err = a.askOrFlag(p, "email", "Email:"); err != nil {
		return err
	}
	if req.Username, err = a.askOrFlag(p, "username", "Username:"); err != nil {
		return err
	}
	if req.Password, err = a.askSecret("Password:"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = a.askSecret("Confirm password:"); err != nil {
		return err
	}

	u, err := a.Auth.SignUp(ctx, req)
	if err != nil {
		return err
	}
	return a.emit("signup", userData(u), func() {
		a.info("%s %s", SuccessStyle.Render("Welcome,"), u.Username)
	})
}

// RunSignIn handles "medibot signin". An account with a second factor
// is asked for its code when --code was not given.
func (a *App) RunSignIn(ctx context.Context, p *ArgParser) error {
	email, err := a.askOrFlag(p, "email", "Email:")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Password:")
	if err != nil {
		return err
	}

	code := p.Flag("code")
	u, err := a.Auth.SignIn(ctx, email, password, code)
	if errors.Is(err, auth.ErrTOTPRequired) && code == "" && !a.JSON {
		if code, err = a.askOrFlag(p, "code", "Authentication code:"); err != nil {
			return err
		}
		u, err = a.Auth.SignIn(ctx, email, password, code)
	}
	if err != nil {
		return err
	}

	return a.emit("signin", userData(u), func() {
		a.info("%s %s", SuccessStyle.Render("Signed in as"), u.Username)
	})
}

// RunSignOut handles "medibot signout". Signing out erases the local
// conversation, archive and profile, as the chat UI does.
func (a *App) RunSignOut(p *ArgParser) error {
	ok, err := a.confirm("sign out and erase local conversations", p.BoolFlag("yes", "y"))
	if err != nil {
		return err
	}
	if !ok {
		a.ShowCancellationMessage()
		return nil
	}

	if err := a.signOut(); err != nil {
		return err
	}
	return a.emit("signout", map[string]bool{"signed_out": true}, func() {
		a.info("Signed out")
	})
}

func (a *App) signOut() error {
	if err := a.Auth.SignOut(); err != nil {
		return &CommandError{Command: "signout", Action: "end session", Err: err}
	}
	if err := a.Settings.Logout(); err != nil {
		return &CommandError{Command: "signout", Action: "clear data", Err: err}
	}
	if err := a.Store.Reset(); err != nil {
		return &CommandError{Command: "signout", Action: "reset chat", Err: err}
	}
	return nil
}

// RunWhoAmI handles "medibot whoami".
func (a *App) RunWhoAmI() error {
	u, ok := a.Auth.Current()
	if !ok {
		return auth.ErrNotSignedIn
	}
	return a.emit("whoami", userData(u), func() {
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Username:"), u.Username)
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Email:"), u.Email)
		if !u.CreatedAt.IsZero() {
			fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Member since:"), u.CreatedAt.Local().Format("Jan 2, 2006"))
		}
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Two-factor:"), onOff(u.TOTPEnabled))
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// =============================================================================
// SETTINGS
// =============================================================================

// settingsView is the settings payload.
type settingsView struct {
	Username  string    `json:"username"`
	HasAvatar bool      `json:"has_avatar"`
	User      *UserData `json:"user,omitempty"`
	TOTPURL   string    `json:"totp_url,omitempty"`
	TOTPKey   string    `json:"totp_secret,omitempty"`
}

// RunSettings handles "medibot settings".
func (a *App) RunSettings(p *ArgParser) error {
	var (
		s    = a.Settings.Load()
		view settingsView
		err  error
	)

	if p.HasFlag("username") {
		if s, err = a.Settings.SetUsername(p.Flag("username")); err != nil {
			return &CommandError{Command: "settings", Action: "set username", Err: err}
		}
	}
	if path := p.Flag("avatar"); path != "" {
		if s, err = a.Settings.ImportAvatar(expandPath(path)); err != nil {
			return &CommandError{Command: "settings", Action: "import avatar", Err: err}
		}
	}
	if p.BoolFlag("clear-avatar") {
		if s, err = a.Settings.ClearAvatar(); err != nil {
			return &CommandError{Command: "settings", Action: "clear avatar", Err: err}
		}
	}
	if p.BoolFlag("enable-2fa") {
		if view.TOTPKey, view.TOTPURL, err = a.Auth.EnrollTOTP(); err != nil {
			return err
		}
	}
	if p.BoolFlag("disable-2fa") {
		if err := a.Auth.DisableTOTP(); err != nil {
			return err
		}
	}

	view.Username = s.Username
	view.HasAvatar = s.HasAvatar()
	if u, ok := a.Auth.Current(); ok {
		d := userData(u)
		view.User = &d
	}

	return a.emit("settings", view, func() { a.printSettings(view) })
}

func (a *App) printSettings(v settingsView) {
	name := v.Username
	if name == "" {
		name = settings.GuestName
	}
	fmt.Fprintln(a.Out, SectionStyle.Render("Profile"))
	fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Username:"), name)
	avatar := "none"
	if v.HasAvatar {
		avatar = "set"
	}
	fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Avatar:"), avatar)
	if v.User != nil {
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Email:"), v.User.Email)
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Two-factor:"), onOff(v.User.TOTPEnabled))
	} else {
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Account:"), DimStyle.Render("not signed in"))
	}

	if v.TOTPKey != "" {
		fmt.Fprintln(a.Out)
		fmt.Fprintln(a.Out, WarningStyle.Render("Add this account to your authenticator app:"))
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Secret:"), v.TOTPKey)
		fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("URL:"), v.TOTPURL)
	}
}
