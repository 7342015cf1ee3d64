// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/medibot/medibot-tui/internal/backend"
	"github.com/medibot/medibot-tui/internal/capability"
	"github.com/medibot/medibot-tui/internal/storage"
	"github.com/medibot/medibot-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete MediBot configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend is the MediBot analysis service.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Storage is where chats, sessions and the profile are kept.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Emergency screen configuration
	Emergency EmergencyConfig `toml:"emergency" json:"emergency"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// BackendConfig contains service connection settings.
type BackendConfig struct {
	// URL is the service root (default: http://localhost:5000)
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds one request; analysis can be slow
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries for transport errors and 5xx answers
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerSecond caps outgoing calls
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// StorageConfig contains local store settings.
type StorageConfig struct {
	// Driver is "file", "sqlite" or "memory"
	Driver string `toml:"driver" json:"driver"`
	// Dir overrides the data directory (default: ~/.medibot/data)
	Dir string `toml:"dir" json:"dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the markdown theme: "auto", "dark", "light" or "notty"
	Theme string `toml:"theme" json:"theme"`
	// ShowSidebar opens the session sidebar at startup
	ShowSidebar bool `toml:"show_sidebar" json:"show_sidebar"`
	// Speech enables reading replies aloud when a TTS program exists
	Speech bool `toml:"speech" json:"speech"`
	// WordWrap is the REPL wrap width; 0 uses the terminal width
	WordWrap int `toml:"word_wrap" json:"word_wrap"`
}

// EmergencyConfig contains emergency screen settings.
type EmergencyConfig struct {
	// Number is dialled from the emergency screen (default: 911)
	Number string `toml:"number" json:"number"`
	// ShareLocation shows the configured coordinates
	ShareLocation bool    `toml:"share_location" json:"share_location"`
	Latitude      float64 `toml:"latitude" json:"latitude"`
	Longitude     float64 `toml:"longitude" json:"longitude"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	// Verbose writes logs to stderr (CLI) or DebugFile (TUI)
	Verbose bool `toml:"verbose" json:"verbose"`
	// DebugFile is the TUI log file (default: ~/.medibot/debug.log)
	DebugFile string `toml:"debug_file" json:"debug_file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			URL:               backend.DefaultBaseURL,
			TimeoutSecs:       60,
			MaxRetries:        2,
			RequestsPerSecond: 5,
		},
		Storage: StorageConfig{
			Driver: string(storage.DriverFile),
		},
		UI: UIConfig{
			Theme:       "auto",
			ShowSidebar: true,
			Speech:      true,
		},
		Emergency: EmergencyConfig{
			Number: "911",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the MediBot directory. MEDIBOT_HOME overrides it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("MEDIBOT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".medibot"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the storage directory: Storage.Dir or <config dir>/data.
func (c *Config) DataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	dir, err := ConfigDir()
	if err != nil {
		dir = filepath.Join(util.HomeDir(), ".medibot")
	}
	return filepath.Join(dir, "data")
}

// DebugLogPath returns Logging.DebugFile or <config dir>/debug.log.
func (c *Config) DebugLogPath() string {
	if c.Logging.DebugFile != "" {
		return c.Logging.DebugFile
	}
	dir, err := ConfigDir()
	if err != nil {
		dir = filepath.Join(util.HomeDir(), ".medibot")
	}
	return filepath.Join(dir, "debug.log")
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: the config and store hold health data; owner-only access.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file, falling back to defaults when it does
// not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path into cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.RequestsPerSecond == 0 {
		c.Backend.RequestsPerSecond = d.Backend.RequestsPerSecond
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Emergency.Number == "" {
		c.Emergency.Number = d.Emergency.Number
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path.
// RELIABILITY: Atomic write with fsync prevents a torn config on crash.
// SECURITY: 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# MediBot configuration file\n")
	b.WriteString("# Generated by medibot - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true, "notty": true}

// Validate checks every section and returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if u, err := url.Parse(c.Backend.URL); err != nil {
		errs = append(errs, ValidationError{Field: "backend.url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{Field: "backend.url", Message: fmt.Sprintf("must be an http(s) URL with a host, got '%s'", c.Backend.URL)})
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.timeout_secs", Message: "cannot be negative"})
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{Field: "backend.max_retries", Message: "must be between 0 and 10"})
	}
	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "backend.requests_per_second", Message: "cannot be negative"})
	}

	// Storage
	if !validDriver(c.Storage.Driver) {
		names := make([]string, 0, len(storage.Drivers()))
		for _, d := range storage.Drivers() {
			names = append(names, string(d))
		}
		errs = append(errs, ValidationError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("invalid driver '%s', must be one of: %s", c.Storage.Driver, strings.Join(names, ", ")),
		})
	}

	// UI
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, notty", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "cannot be negative"})
	}

	// Emergency
	if !validPhoneNumber(c.Emergency.Number) {
		errs = append(errs, ValidationError{
			Field:   "emergency.number",
			Message: fmt.Sprintf("invalid number '%s', digits and an optional leading + only", c.Emergency.Number),
		})
	}
	if c.Emergency.ShareLocation && !c.Coordinates().Valid() {
		errs = append(errs, ValidationError{Field: "emergency.latitude", Message: "coordinates out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validDriver(name string) bool {
	for _, d := range storage.Drivers() {
		if string(d) == name {
			return true
		}
	}
	return false
}

func validPhoneNumber(n string) bool {
	n = strings.TrimPrefix(n, "+")
	if n == "" || len(n) > 15 {
		return false
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// BackendClientConfig converts the backend section for backend.NewClient.
func (c *Config) BackendClientConfig() backend.Config {
	cfg := backend.Config{
		BaseURL:           c.Backend.URL,
		Timeout:           time.Duration(c.Backend.TimeoutSecs) * time.Second,
		MaxRetries:        c.Backend.MaxRetries,
		RequestsPerSecond: c.Backend.RequestsPerSecond,
	}
	if c.Backend.MaxRetries == 0 {
		cfg.MaxRetries = -1
	}
	return cfg
}

// Coordinates returns the configured location.
func (c *Config) Coordinates() capability.Coordinates {
	return capability.Coordinates{Latitude: c.Emergency.Latitude, Longitude: c.Emergency.Longitude}
}

// Locator returns a locator for the emergency screen: the configured
// coordinates when sharing is on, else unsupported.
func (c *Config) Locator() capability.Locator {
	if !c.Emergency.ShareLocation {
		return capability.NoLocator{}
	}
	coords := c.Coordinates()
	return capability.NewLocator(&coords)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - MEDIBOT_BACKEND_URL: overrides backend.url
//   - MEDIBOT_STORE: overrides storage.driver
//   - MEDIBOT_STORE_DIR: overrides storage.dir
//   - MEDIBOT_THEME: overrides ui.theme
//   - MEDIBOT_EMERGENCY_NUMBER: overrides emergency.number
//   - MEDIBOT_LOCATION: "lat,lon", enables emergency.share_location
//   - MEDIBOT_VERBOSE: overrides logging.verbose
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MEDIBOT_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("MEDIBOT_STORE"); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("MEDIBOT_STORE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("MEDIBOT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("MEDIBOT_EMERGENCY_NUMBER"); v != "" {
		c.Emergency.Number = v
	}
	if v := os.Getenv("MEDIBOT_LOCATION"); v != "" {
		if lat, lon, ok := parseLocation(v); ok {
			c.Emergency.ShareLocation = true
			c.Emergency.Latitude = lat
			c.Emergency.Longitude = lon
		}
	}
	if v := os.Getenv("MEDIBOT_VERBOSE"); v != "" {
		c.Logging.Verbose = v == "1" || strings.ToLower(v) == "true"
	}
}

func parseLocation(s string) (lat, lon float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "backend.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g. "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} with type
// conversion for string input.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.url",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.requests_per_second",
		"storage.driver",
		"storage.dir",
		"ui.theme",
		"ui.show_sidebar",
		"ui.speech",
		"ui.word_wrap",
		"emergency.number",
		"emergency.share_location",
		"emergency.latitude",
		"emergency.longitude",
		"logging.verbose",
		"logging.debug_file",
	}
}

// Clone returns a copy. Config holds no maps or slices, so a value copy is
// deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON.
// SECURITY: the location is health-adjacent personal data and is redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Emergency.ShareLocation {
		safe.Emergency.Latitude, safe.Emergency.Longitude = 0, 0
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
