// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for siemspeak.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete siemspeak configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
	Server  ServerConfig  `toml:"server" json:"server"`
}

// BackendConfig selects where questions are answered.
type BackendConfig struct {
	// URL is the base URL of the question backend
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds one backend request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// Demo answers from the in-process synthetic backend instead of URL
	Demo bool `toml:"demo" json:"demo"`
	// DemoSeed seeds the synthetic generator; 0 picks a random seed
	DemoSeed uint64 `toml:"demo_seed" json:"demo_seed"`
	// SuggestRatePerSec limits suggestion requests
	SuggestRatePerSec float64 `toml:"suggest_rate_per_sec" json:"suggest_rate_per_sec"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// UIConfig contains display settings.
type UIConfig struct {
	// Theme is "auto" (follow the terminal), "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// RowCap is the most table rows rendered per response
	RowCap int `toml:"row_cap" json:"row_cap"`
	// PreviewRows is the row count of collapsed history previews
	PreviewRows int `toml:"preview_rows" json:"preview_rows"`
	// SuggestDebounceMs is the quiet period before asking for suggestions
	SuggestDebounceMs int `toml:"suggest_debounce_ms" json:"suggest_debounce_ms"`
	ChartWidth        int `toml:"chart_width" json:"chart_width"`
	ChartHeight       int `toml:"chart_height" json:"chart_height"`
}

// SuggestDebounce returns SuggestDebounceMs as a duration.
func (u UIConfig) SuggestDebounce() time.Duration {
	return time.Duration(u.SuggestDebounceMs) * time.Millisecond
}

// StorageConfig locates local state.
type StorageConfig struct {
	// Dir holds preferences and transcripts (empty = ~/.siemspeak)
	Dir string `toml:"dir" json:"dir"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" json:"level"`
	// File receives console logs (empty = <storage dir>/siemspeak.log)
	File string `toml:"file" json:"file"`
	// Development switches to human-readable output
	Development bool `toml:"development" json:"development"`
}

// ServerConfig configures "siemspeak serve".
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// AuthToken, when set, is required as a bearer token
	AuthToken string `toml:"auth_token" json:"auth_token"`
	// RateLimit is requests per second per client (negative disables)
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Bounds applied by SetDefaults.
const (
	MinRowCap, MaxRowCap           = 1, 500
	MinPreviewRows, MaxPreviewRows = 1, 50
	MaxSuggestDebounceMs           = 2000
	MinChartWidth, MaxChartWidth   = 20, 200
	MinChartHeight, MaxChartHeight = 5, 60
	MinTimeoutSecs, MaxTimeoutSecs = 1, 300
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://127.0.0.1:5000",
			TimeoutSecs:       30,
			SuggestRatePerSec: 4,
		},
		UI: UIConfig{
			Theme:             "auto",
			RowCap:            50,
			PreviewRows:       5,
			SuggestDebounceMs: 300,
			ChartWidth:        60,
			ChartHeight:       12,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:5000",
			RateLimit: 20,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the siemspeak configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".siemspeak"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorageDir returns the directory for local state.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// LogPath returns the console log file path.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := c.StorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "siemspeak.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600. It may hold a
// server auth token.
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

// LoadFromPath reads the TOML file at path, then applies environment
// overrides, clamping and validation. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep their
// current values.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Encode writes cfg as TOML to w.
func Encode(cfg *Config, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveTOML atomically writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# siemspeak configuration file\n")
	buf.WriteString("# Generated by siemspeak - edit with care\n\n")

	if err := Encode(cfg, &buf); err != nil {
		return err
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes = map[string]bool{"auto": true, "dark": true, "light": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate reports every invalid setting. Numeric ranges are clamped by
// SetDefaults rather than rejected.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !c.Backend.Demo {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Backend.URL),
			})
		}
	}
	if c.Backend.SuggestRatePerSec <= 0 {
		errs = append(errs, ValidationError{Field: "backend.suggest_rate_per_sec", Message: "must be positive"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	if c.Server.Addr == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults normalizes case and clamps numeric settings into range.
func (c *Config) SetDefaults() {
	def := Default()

	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}

	c.Backend.TimeoutSecs = clamp(c.Backend.TimeoutSecs, MinTimeoutSecs, MaxTimeoutSecs)
	c.UI.RowCap = clamp(c.UI.RowCap, MinRowCap, MaxRowCap)
	c.UI.PreviewRows = clamp(c.UI.PreviewRows, MinPreviewRows, MaxPreviewRows)
	c.UI.SuggestDebounceMs = clamp(c.UI.SuggestDebounceMs, 0, MaxSuggestDebounceMs)
	c.UI.ChartWidth = clamp(c.UI.ChartWidth, MinChartWidth, MaxChartWidth)
	c.UI.ChartHeight = clamp(c.UI.ChartHeight, MinChartHeight, MaxChartHeight)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - SIEMSPEAK_BACKEND_URL: overrides backend.url
//   - SIEMSPEAK_THEME: overrides ui.theme
//   - SIEMSPEAK_DEMO: "1" or "true" answers from the synthetic backend
//   - SIEMSPEAK_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SIEMSPEAK_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("SIEMSPEAK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SIEMSPEAK_DEMO"); v != "" {
		demo, err := strconv.ParseBool(v)
		c.Backend.Demo = err == nil && demo
	}
	if v := os.Getenv("SIEMSPEAK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
