// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/settings"
	"github.com/medibot/medibot-tui/internal/storage"
)

func newProvider(t *testing.T) (*LocalProvider, storage.Store) {
	t.Helper()
	kv := storage.NewMemoryStore()
	p := NewLocalProvider(kv, settings.NewManager(kv, nil), WithIterations(1000))
	return p, kv
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		Email:           "Ada@Example.com ",
		Username:        "ada",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestSignUpRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*SignUpRequest)
		want string
	}{
		{"missing email", func(r *SignUpRequest) { r.Email = "" }, MsgFillAllFields},
		{"missing username", func(r *SignUpRequest) { r.Username = "" }, MsgFillAllFields},
		{"missing confirm", func(r *SignUpRequest) { r.ConfirmPassword = "" }, MsgFillAllFields},
		{"mismatch", func(r *SignUpRequest) { r.ConfirmPassword = "secret2" }, MsgPasswordsMismatch},
		{"short", func(r *SignUpRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignUp()
			tt.mod(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	assert.NoError(t, validSignUp().Validate())
}

func TestSignUp_WritesUserDataAndSignsIn(t *testing.T) {
	p, kv := newProvider(t)

	u, err := p.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "ada", cur.Username)
	assert.Equal(t, GateSettings, Gate(p))

	d, ok := settings.NewManager(kv, nil).UserData()
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", d.Email)

	// The password itself is never stored.
	raw, err := kv.Get(storage.KeyAccounts)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret1")
}

func TestSignUp_Duplicate(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	_, err = p.SignUp(context.Background(), validSignUp())
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignIn(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	require.NoError(t, p.SignOut())
	assert.Equal(t, GateSignIn, Gate(p))

	_, err = p.SignIn(context.Background(), "", "", "")
	assert.Equal(t, MsgFillAllFields, err.Error())

	_, err = p.SignIn(context.Background(), "ada@example.com", "wrong-pass", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignIn(context.Background(), "nobody@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := p.SignIn(context.Background(), "ADA@example.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	_, ok := p.Current()
	assert.True(t, ok)
}

func TestTOTP_RequiredWhenEnrolled(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	secret, url, err := p.EnrollTOTP()
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")
	require.NoError(t, p.SignOut())

	_, err = p.SignIn(context.Background(), "ada@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrTOTPRequired)

	_, err = p.SignIn(context.Background(), "ada@example.com", "secret1", "000000x")
	assert.ErrorIs(t, err, ErrInvalidTOTP)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	u, err := p.SignIn(context.Background(), "ada@example.com", "secret1", code)
	require.NoError(t, err)
	assert.True(t, u.TOTPEnabled)

	require.NoError(t, p.DisableTOTP())
	require.NoError(t, p.SignOut())
	_, err = p.SignIn(context.Background(), "ada@example.com", "secret1", "")
	assert.NoError(t, err)
}

func TestEnrollTOTP_NeedsUser(t *testing.T) {
	p, _ := newProvider(t)
	_, _, err := p.EnrollTOTP()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSignInFederated_Unsupported(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.SignInFederated(context.Background())
	assert.ErrorIs(t, err, capability.ErrUnsupported)
}

func TestCurrent_AfterStoreCleared(t *testing.T) {
	p, kv := newProvider(t)
	_, err := p.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)

	require.NoError(t, kv.Clear())
	_, ok := p.Current()
	assert.False(t, ok)
}
