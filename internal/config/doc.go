// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for MediBot.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, validation, dot-notation access for the `config get/set`
// commands, and a file watcher that reloads edits into a running TUI.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: MediBot service URL, timeouts, retries, rate limit
//   - StorageConfig: local store driver and directory
//   - EmergencyConfig: emergency number and optional fixed location
//   - Watcher: fsnotify-based reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the caller)
//   - Environment variables (MEDIBOT_*)
//   - ~/.medibot/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClient(cfg.BackendClientConfig())
package config
