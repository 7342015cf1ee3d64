// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration commands for medibot.
//
// Command: config [subcommand]
// Short:   Show or change ~/.medibot/config.toml
//
// Subcommands:
//
//	show (default)      Print the effective configuration
//	path                Print the config file path
//	keys                List the settable keys
//	get KEY             Print one value (dot notation)
//	set KEY VALUE       Change one value and save the file
//
// Examples:
//
//	medibot config get backend.url
//	medibot config set emergency.number 112
//	medibot config set storage.driver sqlite
//
// "set" edits the file as written: environment overrides are not saved.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/medibot/medibot-tui/internal/config"
)

// HandleConfig handles "medibot config". It needs no store or backend.
func HandleConfig(w io.Writer, args Args) error {
	p := args.Flags
	if p == nil {
		p = NewArgParser(nil)
	}

	switch sub := strings.ToLower(p.Subcommand()); sub {
	case "", "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		if args.JSON {
			// String is already JSON with the location redacted.
			return NewJSONResponse("config show", json.RawMessage(cfg.String())).Write(w)
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "path":
		path, err := configFilePath(args)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		keys := config.GetAllKeys()
		if args.JSON {
			return NewJSONResponse("config keys", keys).Write(w)
		}
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "medibot config get KEY")
		}
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		v, err := cfg.Get(key)
		if err != nil {
			return configKeyError(key, err)
		}
		if args.JSON {
			return NewJSONResponse("config get", map[string]any{"key": key, "value": v}).Write(w)
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "medibot config set KEY VALUE")
		}
		path, err := setConfigValue(args, key, value)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config set", map[string]string{"key": key, "value": value, "path": path}).Write(w)
		}
		if !args.Quiet {
			fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Saved"), key, value)
		}
		return nil

	default:
		msg := fmt.Sprintf("unknown config subcommand %q", sub)
		if s := suggestFrom(sub, []string{"show", "path", "keys", "get", "set"}); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return &UsageError{Message: msg}
	}
}

func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// setConfigValue changes one key in the file at the config path and
// returns that path. The file is read without environment overrides so
// they are never persisted.
func setConfigValue(args Args, key, value string) (string, error) {
	path, err := configFilePath(args)
	if err != nil {
		return "", err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return "", &CommandError{Command: "config", Action: "read", Err: err}
		}
	}
	cfg.SetDefaults()

	if err := cfg.Set(key, value); err != nil {
		return "", configKeyError(key, err)
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return "", &CommandError{Command: "config", Action: "save", Err: err}
	}
	return path, nil
}

func configKeyError(key string, err error) error {
	if s := suggestFrom(strings.ToLower(key), config.GetAllKeys()); s != "" {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: s}
	}
	return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
}
