// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings persists the user's profile: the editable userSettings
// record (username and avatar) and the userData record written at sign-up.
package settings

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/storage"
)

// GuestName is shown when no username is known.
const GuestName = "Guest"

// UserSettings is the editable profile.
type UserSettings struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// HasAvatar reports whether an avatar is set.
func (s UserSettings) HasAvatar() bool {
	return s.Avatar != nil && *s.Avatar != ""
}

// UserData is written once when an account is created.
type UserData struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// NewUserData stamps a record with now in RFC 3339.
func NewUserData(username, email string, now time.Time) UserData {
	return UserData{Username: username, Email: email, CreatedAt: now.UTC().Format(time.RFC3339)}
}

// Manager reads and writes the profile records.
type Manager struct {
	kv    storage.Store
	files capability.FileReader
}

// NewManager creates a Manager over kv. files may be nil for the default
// OS reader.
func NewManager(kv storage.Store, files capability.FileReader) *Manager {
	if files == nil {
		files = capability.OSFileReader{}
	}
	return &Manager{kv: kv, files: files}
}

// =============================================================================
// USER SETTINGS
// =============================================================================

// Load returns the saved settings, or zero settings when none are stored or
// the record is unreadable.
func (m *Manager) Load() UserSettings {
	var s UserSettings
	if err := storage.GetJSON(m.kv, storage.KeyUserSettings, &s); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("SETTINGS_LOAD_ERROR | key=%s error=%v", storage.KeyUserSettings, err)
		}
		return UserSettings{}
	}
	return s
}

// Save writes s.
func (m *Manager) Save(s UserSettings) error {
	s.Username = strings.TrimSpace(s.Username)
	if err := storage.SetJSON(m.kv, storage.KeyUserSettings, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetUsername updates and saves the username.
func (m *Manager) SetUsername(name string) (UserSettings, error) {
	s := m.Load()
	s.Username = strings.TrimSpace(name)
	return s, m.Save(s)
}

// ImportAvatar reads an image and saves it immediately as a data: URL.
func (m *Manager) ImportAvatar(path string) (UserSettings, error) {
	f, err := capability.ReadImage(m.files, path)
	if err != nil {
		return m.Load(), err
	}
	s := m.Load()
	url := f.DataURL()
	s.Avatar = &url
	return s, m.Save(s)
}

// ClearAvatar removes the avatar.
func (m *Manager) ClearAvatar() (UserSettings, error) {
	s := m.Load()
	s.Avatar = nil
	return s, m.Save(s)
}

// =============================================================================
// USER DATA
// =============================================================================

// UserData returns the account record, if present.
func (m *Manager) UserData() (UserData, bool) {
	var d UserData
	if err := storage.GetJSON(m.kv, storage.KeyUserData, &d); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("SETTINGS_LOAD_ERROR | key=%s error=%v", storage.KeyUserData, err)
		}
		return UserData{}, false
	}
	return d, true
}

// SaveUserData writes the account record.
func (m *Manager) SaveUserData(d UserData) error {
	if err := storage.SetJSON(m.kv, storage.KeyUserData, d); err != nil {
		return fmt.Errorf("save user data: %w", err)
	}
	return nil
}

// DisplayName picks the settings username, then the account username, then
// GuestName.
func (m *Manager) DisplayName() string {
	if s := m.Load(); s.Username != "" {
		return s.Username
	}
	if d, ok := m.UserData(); ok && d.Username != "" {
		return d.Username
	}
	return GuestName
}

// Logout wipes every stored key: chat, sessions, profile and accounts
// alike.
func (m *Manager) Logout() error {
	if err := m.kv.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	log.Printf("SETTINGS_LOGOUT | cleared=all")
	return nil
}
