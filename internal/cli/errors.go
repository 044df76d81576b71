// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/siemspeak/internal/api"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is bad user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError wraps a config load failure.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, usage string) error {
	return &ValidationError{Field: name, Reason: "is required", Example: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		displayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
}

func displayErrorJSON(w io.Writer, err error) {
	out := map[string]any{
		"success": false,
		"error":   err.Error(),
	}

	var cmdErr *CommandError
	var valErr *ValidationError
	var cfgErr *ConfigError
	switch {
	case errors.As(err, &valErr):
		out["error_type"] = "validation_error"
		out["field"] = valErr.Field
	case errors.As(err, &cfgErr):
		out["error_type"] = "config_error"
	case errors.As(err, &cmdErr):
		out["error_type"] = "command_error"
		out["command"] = cmdErr.Command
		out["action"] = cmdErr.Action
	default:
		if t := api.TypeOf(err); t != api.ErrTypeUnknown {
			out["error_type"] = t.String()
		} else {
			out["error_type"] = "generic_error"
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return ExitUsageError
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	switch api.TypeOf(err) {
	case api.ErrTypeConnection:
		return ExitNetworkError
	case api.ErrTypeTimeout:
		return ExitTimeoutError
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return ExitNetworkError
	}
	return ExitGeneralError
}
