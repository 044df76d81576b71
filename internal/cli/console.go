// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/logging"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/theme"
	"github.com/jeranaias/siemspeak/internal/ui/console"
)

// preferencesFile is the sqlite database under the storage dir.
const preferencesFile = "preferences.db"

// HandleConsole starts the interactive console.
func HandleConsole(ctx context.Context, args Args) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &ValidationError{
			Field:   "terminal",
			Reason:  "the console needs an interactive terminal",
			Example: `siemspeak ask "failed logins in the last 24 hours"`,
		}
	}

	env, err := setup(args, logging.ToFile)
	if err != nil {
		return err
	}
	defer env.Logger.Sync() //nolint:errcheck

	dir, err := env.Config.StorageDir()
	if err != nil {
		return &ConfigError{Err: err}
	}

	deps := console.Deps{
		Backend:      env.Backend,
		Config:       env.Config,
		BackendLabel: env.Label,
		ConfigPath:   env.ConfigPath,
		Logger:       env.Logger,
	}

	// Both stores are optional. Without them the mode lives in memory and
	// /save only exports to files.
	if prefs, err := storage.OpenPreferences(filepath.Join(dir, preferencesFile)); err != nil {
		env.Logger.Warn("preferences unavailable", zap.Error(err))
	} else {
		defer prefs.Close()
		deps.Prefs = theme.Store(prefs)
	}
	if store, err := storage.NewTranscriptStoreWithDir(filepath.Join(dir, "transcripts")); err != nil {
		env.Logger.Warn("transcript store unavailable", zap.Error(err))
	} else {
		deps.Transcripts = store
	}

	err = console.Run(ctx, deps)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
