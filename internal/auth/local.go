// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/pbkdf2"

	"github.com/medibot/medibot-tui/internal/settings"
	"github.com/medibot/medibot-tui/internal/storage"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// PBKDF2Iterations follows the OWASP 2023 guidance for PBKDF2-SHA-256.
	PBKDF2Iterations = 600000

	// KeySize is the derived hash length in bytes.
	KeySize = 32

	// SaltSize is the per-account salt length in bytes.
	SaltSize = 32

	// TOTPIssuer labels enrolled accounts in authenticator apps.
	TOTPIssuer = "MediBot"
)

// account is the stored form of a user.
type account struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Salt         string `json:"salt"`
	PasswordHash string `json:"passwordHash"`
	TOTPSecret   string `json:"totpSecret,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func (a account) user() User {
	created, _ := time.Parse(time.RFC3339, a.CreatedAt)
	return User{
		Email:       a.Email,
		Username:    a.Username,
		CreatedAt:   created,
		TOTPEnabled: a.TOTPSecret != "",
	}
}

// authSession records who is signed in.
type authSession struct {
	Email      string `json:"email"`
	SignedInAt string `json:"signedInAt"`
}

// =============================================================================
// LOCAL PROVIDER
// =============================================================================

// LocalProvider keeps accounts in the local store.
type LocalProvider struct {
	mu sync.Mutex

	kv         storage.Store
	profile    *settings.Manager
	now        func() time.Time
	iterations int
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) { p.now = now }
}

// WithIterations lowers the PBKDF2 cost, for tests.
func WithIterations(n int) LocalOption {
	return func(p *LocalProvider) {
		if n > 0 {
			p.iterations = n
		}
	}
}

// NewLocalProvider creates a provider over kv. userData is written through
// profile on sign-up.
func NewLocalProvider(kv storage.Store, profile *settings.Manager, opts ...LocalOption) *LocalProvider {
	p := &LocalProvider{
		kv:         kv,
		profile:    profile,
		now:        time.Now,
		iterations: PBKDF2Iterations,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignUp implements Provider.
func (p *LocalProvider) SignUp(ctx context.Context, req SignUpRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		return User{}, err
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.loadAccounts()
	if err != nil {
		return User{}, err
	}
	if _, ok := accounts[req.Email]; ok {
		return User{}, ErrAccountExists
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return User{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash := p.derive(req.Password, salt)

	now := p.now()
	acct := account{
		Email:        req.Email,
		Username:     req.Username,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		PasswordHash: base64.StdEncoding.EncodeToString(hash),
		CreatedAt:    now.UTC().Format(time.RFC3339),
	}
	accounts[req.Email] = acct
	if err := p.saveAccounts(accounts); err != nil {
		return User{}, err
	}

	if p.profile != nil {
		if err := p.profile.SaveUserData(settings.NewUserData(req.Username, req.Email, now)); err != nil {
			return User{}, err
		}
	}
	if err := p.setSession(req.Email); err != nil {
		return User{}, err
	}

	log.Printf("AUTH_SIGNUP | email=%s", req.Email)
	return acct.user(), nil
}

// SignIn implements Provider.
func (p *LocalProvider) SignIn(ctx context.Context, email, password, code string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ValidationError{MsgFillAllFields}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.loadAccounts()
	if err != nil {
		return User{}, err
	}
	acct, ok := accounts[email]
	if !ok || !p.verify(acct, password) {
		log.Printf("AUTH_SIGNIN_FAILED | email=%s reason=credentials", email)
		return User{}, ErrInvalidCredentials
	}

	if acct.TOTPSecret != "" {
		code = strings.TrimSpace(code)
		if code == "" {
			return User{}, ErrTOTPRequired
		}
		if !totp.Validate(code, acct.TOTPSecret) {
			log.Printf("AUTH_SIGNIN_FAILED | email=%s reason=totp", email)
			return User{}, ErrInvalidTOTP
		}
	}

	if err := p.setSession(email); err != nil {
		return User{}, err
	}
	log.Printf("AUTH_SIGNIN | email=%s mfa=%t", email, acct.TOTPSecret != "")
	return acct.user(), nil
}

// SignInFederated implements Provider. No external identity provider is
// available locally.
func (p *LocalProvider) SignInFederated(context.Context) (User, error) {
	return User{}, ErrFederatedUnsupported
}

// SignOut implements Provider.
func (p *LocalProvider) SignOut() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.kv.Remove(storage.KeyAuthSession); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	log.Printf("AUTH_SIGNOUT")
	return nil
}

// Current implements Provider. A session whose account no longer exists
// counts as signed out.
func (p *LocalProvider) Current() (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sess authSession
	if err := storage.GetJSON(p.kv, storage.KeyAuthSession, &sess); err != nil {
		return User{}, false
	}
	accounts, err := p.loadAccounts()
	if err != nil {
		return User{}, false
	}
	acct, ok := accounts[sess.Email]
	if !ok {
		return User{}, false
	}
	return acct.user(), true
}

// =============================================================================
// TOTP
// =============================================================================

// EnrollTOTP adds a second factor to the signed-in account and returns the
// secret and its otpauth:// URL for an authenticator app.
func (p *LocalProvider) EnrollTOTP() (secret, url string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, accounts, err := p.currentAccount()
	if err != nil {
		return "", "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: acct.Email,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate TOTP secret: %w", err)
	}

	acct.TOTPSecret = key.Secret()
	accounts[acct.Email] = acct
	if err := p.saveAccounts(accounts); err != nil {
		return "", "", err
	}
	log.Printf("AUTH_TOTP_ENROLLED | email=%s", acct.Email)
	return key.Secret(), key.URL(), nil
}

// DisableTOTP removes the second factor from the signed-in account.
func (p *LocalProvider) DisableTOTP() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, accounts, err := p.currentAccount()
	if err != nil {
		return err
	}
	acct.TOTPSecret = ""
	accounts[acct.Email] = acct
	return p.saveAccounts(accounts)
}

// =============================================================================
// HELPERS
// =============================================================================

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, p.iterations, KeySize, sha256.New)
}

// SECURITY: constant-time comparison of the derived hash.
func (p *LocalProvider) verify(acct account, password string) bool {
	salt, err := base64.StdEncoding.DecodeString(acct.Salt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(acct.PasswordHash)
	if err != nil {
		return false
	}
	got := p.derive(password, salt)
	defer zeroBytes(got)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// loadAccounts must be called with p.mu held.
func (p *LocalProvider) loadAccounts() (map[string]account, error) {
	var list []account
	err := storage.GetJSON(p.kv, storage.KeyAccounts, &list)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	out := make(map[string]account, len(list))
	for _, a := range list {
		out[a.Email] = a
	}
	return out, nil
}

// saveAccounts must be called with p.mu held.
func (p *LocalProvider) saveAccounts(accounts map[string]account) error {
	list := make([]account, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, a)
	}
	if err := storage.SetJSON(p.kv, storage.KeyAccounts, list); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

func (p *LocalProvider) setSession(email string) error {
	sess := authSession{Email: email, SignedInAt: p.now().UTC().Format(time.RFC3339)}
	if err := storage.SetJSON(p.kv, storage.KeyAuthSession, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// currentAccount must be called with p.mu held.
func (p *LocalProvider) currentAccount() (account, map[string]account, error) {
	var sess authSession
	if err := storage.GetJSON(p.kv, storage.KeyAuthSession, &sess); err != nil {
		return account{}, nil, ErrNotSignedIn
	}
	accounts, err := p.loadAccounts()
	if err != nil {
		return account{}, nil, err
	}
	acct, ok := accounts[sess.Email]
	if !ok {
		return account{}, nil, ErrNotSignedIn
	}
	return acct, accounts, nil
}
