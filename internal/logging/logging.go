// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap loggers used across siemspeak.
//
// The console owns the terminal, so interactive commands log to a file.
// The demo server logs to stderr. Components accept a *zap.Logger and
// treat nil as zap.NewNop().
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/siemspeak/internal/config"
)

// Output selects where log lines go.
type Output int

const (
	// ToFile writes to the configured log file.
	ToFile Output = iota
	// ToStderr writes to standard error.
	ToStderr
)

// ParseLevel converts a config level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}

// New builds a logger from cfg. For ToFile, path is the destination and its
// directory is created with 0700.
func New(cfg config.LoggingConfig, out Output, path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch out {
	case ToStderr:
		zcfg.OutputPaths = []string{"stderr"}
	default:
		if path == "" {
			return nil, fmt.Errorf("log file path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zcfg.OutputPaths = []string{path}
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("siemspeak"), nil
}

// ForConsole builds a file logger at the path the config resolves to. On
// failure it returns a no-op logger along with the error so the console can
// still start.
func ForConsole(cfg *config.Config) (*zap.Logger, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return zap.NewNop(), err
	}
	logger, err := New(cfg.Logging, ToFile, path)
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}

// ForServer builds a stderr logger.
func ForServer(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.Logging, ToStderr, "")
}
