// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medibot/medibot-tui/internal/capability"
)

// =============================================================================
// ERRORS
// =============================================================================

// Form messages shown to the user.
const (
	MsgFillAllFields     = "Please fill in all fields"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgPasswordTooShort  = "Password should be at least 6 characters"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountExists is returned by SignUp for a registered email.
	ErrAccountExists = errors.New("an account with this email already exists")

	// ErrTOTPRequired is returned by SignIn when the account has a second
	// factor and no code was given.
	ErrTOTPRequired = errors.New("authentication code required")

	// ErrInvalidTOTP is returned for a wrong or expired code.
	ErrInvalidTOTP = errors.New("invalid authentication code")

	// ErrNotSignedIn is returned by operations that need a current user.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrFederatedUnsupported is returned by SignInFederated.
	ErrFederatedUnsupported = fmt.Errorf("federated sign-in: %w", capability.ErrUnsupported)
)

// ValidationError is a form problem, shown verbatim.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a form problem.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// =============================================================================
// PROVIDER
// =============================================================================

// User is an authenticated identity.
type User struct {
	Email       string
	Username    string
	CreatedAt   time.Time
	TOTPEnabled bool
}

// SignUpRequest holds the sign-up form.
type SignUpRequest struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Validate applies the sign-up form rules in order; the first failing rule
// wins.
func (r SignUpRequest) Validate() error {
	if r.Email == "" || r.Username == "" || r.Password == "" || r.ConfirmPassword == "" {
		return ValidationError{MsgFillAllFields}
	}
	if r.Password != r.ConfirmPassword {
		return ValidationError{MsgPasswordsMismatch}
	}
	if len([]rune(r.Password)) < MinPasswordLength {
		return ValidationError{MsgPasswordTooShort}
	}
	return nil
}

// Provider is an identity backend.
type Provider interface {
	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, req SignUpRequest) (User, error)

	// SignIn checks credentials. code is the TOTP code, ignored for
	// accounts without a second factor.
	SignIn(ctx context.Context, email, password, code string) (User, error)

	// SignInFederated signs in through an external identity provider.
	SignInFederated(ctx context.Context) (User, error)

	// SignOut forgets the current user.
	SignOut() error

	// Current returns the signed-in user.
	Current() (User, bool)
}

// =============================================================================
// GATE
// =============================================================================

// GateAction is what a profile action leads to.
type GateAction int

const (
	// GateSignIn means nobody is signed in: show the sign-in form.
	GateSignIn GateAction = iota

	// GateSettings means a user is present: open the settings editor.
	GateSettings
)

func (a GateAction) String() string {
	if a == GateSettings {
		return "settings"
	}
	return "sign-in"
}

// Gate decides where a profile action goes.
func Gate(p Provider) GateAction {
	if _, ok := p.Current(); ok {
		return GateSettings
	}
	return GateSignIn
}
