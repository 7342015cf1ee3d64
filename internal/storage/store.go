// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// =============================================================================
// KEYS
// =============================================================================

const (
	KeyChatMessages = "chatMessages"
	KeyChatSessions = "chatSessions"
	KeyUserSettings = "userSettings"
	KeyUserData     = "userData"
	KeyAccounts     = "accounts"
	KeyAuthSession  = "authSession"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned by Get for keys that were never set.
	ErrNotFound = errors.New("storage: key not found")

	// ErrInvalidKey rejects keys that could escape the store directory.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("storage: store closed")
)

// SECURITY: keys become file names in FileStore, so only a conservative
// alphabet is accepted.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// ValidateKey returns ErrInvalidKey unless key is safe to use.
func ValidateKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is a durable string-keyed byte store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set replaces the value for key.
	Set(key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Clear deletes every key.
	Clear() error

	// Keys lists the stored keys in lexical order.
	Keys() ([]string, error)

	// Close releases resources. The store is unusable afterwards.
	Close() error
}

// GetJSON decodes the value at key into v. A missing key returns
// ErrNotFound; a value that is not valid JSON for v returns the decode error.
func GetJSON(s Store, key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, data)
}

// =============================================================================
// FACTORY
// =============================================================================

// Driver selects a Store implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverMemory Driver = "memory"
)

// Drivers lists every accepted driver name.
func Drivers() []Driver {
	return []Driver{DriverFile, DriverSQLite, DriverMemory}
}

// Open returns the store for driver rooted at dir.
func Open(driver Driver, dir string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(dir)
	case DriverSQLite:
		return NewSQLiteStore(dir)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
