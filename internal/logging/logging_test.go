// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/siemspeak/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" INFO ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "siemspeak.log")
	logger, err := New(config.LoggingConfig{Level: "warn"}, ToFile, path)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("route", "/ask"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, `"route":"/ask"`)
	assert.Contains(t, out, `"logger":"siemspeak"`)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "info"}, ToFile, "")
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "loud"}, ToStderr, "")
	assert.Error(t, err)
}

func TestForConsole_UsesLogPath(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()

	logger, err := ForConsole(cfg)
	require.NoError(t, err)
	logger.Info("console started")
	_ = logger.Sync()

	_, err = os.Stat(filepath.Join(cfg.Storage.Dir, "siemspeak.log"))
	assert.NoError(t, err)
}
