// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/config"
	"github.com/jeranaias/siemspeak/internal/demo"
	"github.com/jeranaias/siemspeak/internal/logging"
)

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env is what every command needs: the resolved config, a logger and the
// backend questions go to.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger
	Backend    api.Backend
	// Label names the backend for banners and transcripts.
	Label string
}

// LoadConfig reads the config file named by args (or the default one) and
// applies the command line overrides.
func LoadConfig(args Args) (*config.Config, string, error) {
	path, err := configPath(args)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, &ConfigError{Path: path, Err: err}
	}
	if args.Demo {
		cfg.Backend.Demo = true
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, path, nil
}

// configPath returns --config or the default location.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

// NewBackend returns the synthetic backend in demo mode, otherwise an HTTP
// client for the configured URL.
func NewBackend(cfg *config.Config, logger *zap.Logger) (api.Backend, string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Backend.Demo {
		seed := cfg.Backend.DemoSeed
		if seed == 0 {
			seed = rand.Uint64()
		}
		return demo.New(demo.Config{Seed: seed, Logger: logger.Named("demo")}), "demo"
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL:     cfg.Backend.URL,
		Timeout:     cfg.Backend.Timeout(),
		MaxRetries:  api.DefaultConfig().MaxRetries,
		SuggestRate: cfg.Backend.SuggestRatePerSec,
		Logger:      logger.Named("api"),
	})
	return client, cfg.Backend.URL
}

// setup builds an Env. out picks where the logger writes.
func setup(args Args, out logging.Output) (*Env, error) {
	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	switch out {
	case logging.ToStderr:
		logger, err = logging.ForServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
	default:
		// A console without a log file still works.
		logger, _ = logging.ForConsole(cfg)
	}

	backend, label := NewBackend(cfg, logger)
	logger.Debug("environment ready",
		zap.String("config", path),
		zap.String("backend", label))

	return &Env{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Backend:    backend,
		Label:      label,
	}, nil
}
