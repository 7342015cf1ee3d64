// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides MediBot's identity layer.
//
// Provider is the contract the UI talks to. LocalProvider implements it on
// the local key/value store: accounts are kept under the "accounts" key with
// salted PBKDF2-SHA-256 password hashes, the signed-in user under
// "authSession". Accounts may enrol a TOTP second factor.
//
// Federated sign-in (e.g. Google) is reported as unsupported.
//
// # Key Types
//
//   - Provider: SignUp, SignIn, SignOut, Current
//   - LocalProvider: store-backed Provider
//   - ValidationError: a user-facing form message
//   - Gate: what a profile action should open
//
// # Security Notes
//
//   - Passwords are never stored; only PBKDF2 output and a random salt
//   - Hash comparison is constant time
//   - Unknown email and wrong password return the same error
package auth
