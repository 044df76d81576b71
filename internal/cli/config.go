// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/siemspeak/internal/config"
)

// ConfigData is the JSON payload of "config show" and "config path".
type ConfigData struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Config *config.Config `json:"config,omitempty"`
}

// HandleConfig shows, locates or creates the config file.
func HandleConfig(args Args, stdout io.Writer) error {
	action := "show"
	if len(args.Raw) > 0 {
		action = strings.ToLower(args.Raw[0])
	}

	switch action {
	case "show":
		return handleConfigShow(args, stdout)
	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config", ConfigData{Path: path, Exists: fileExists(path)}).Write(stdout)
		}
		fmt.Fprintln(stdout, path)
		return nil
	case "init":
		return handleConfigInit(args, stdout)
	}
	return &ValidationError{
		Field:   "config action",
		Value:   action,
		Reason:  "expected show, path or init",
		Example: "siemspeak config init",
	}
}

func handleConfigShow(args Args, stdout io.Writer) error {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return err
	}
	shown := cfg.Clone()
	shown.Server.AuthToken = maskSecret(shown.Server.AuthToken)

	if args.JSON {
		return NewJSONResponse("config", ConfigData{Path: path, Exists: fileExists(path), Config: shown}).Write(stdout)
	}
	if !fileExists(path) {
		fmt.Fprintf(stdout, "# %s does not exist; showing defaults\n", path)
	} else {
		fmt.Fprintf(stdout, "# %s\n", path)
	}
	return config.Encode(shown, stdout)
}

func handleConfigInit(args Args, stdout io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	if fileExists(path) && !args.Force {
		return &ValidationError{
			Field:   "config",
			Value:   path,
			Reason:  "file already exists",
			Example: "siemspeak config init --force",
		}
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if args.JSON {
		return NewJSONResponse("config", ConfigData{Path: path, Exists: true}).Write(stdout)
	}
	fmt.Fprintf(stdout, "%s wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

// maskSecret replaces a secret with a short fingerprint.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("sha256:%x...", sum[:4])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
