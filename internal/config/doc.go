// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for siemspeak.
//
// Settings come from a TOML file, sensible defaults and environment variable
// overrides, and are validated and clamped before use.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Where questions are answered (HTTP or demo)
//   - UIConfig: Display mode, row caps, chart size, suggestion debounce
//   - Watcher: Reloads the file when it changes on disk
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SIEMSPEAK_*)
//   - ~/.siemspeak/config.toml
//   - Built-in defaults
//
// # Usage
//
//	path, _ := config.ConfigPath()
//	cfg, err := config.LoadFromPath(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.Backend.Timeout()
package config
