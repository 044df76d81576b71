// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved console transcripts to files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// CHART EXPORT
// =============================================================================

// ChartSource serializes live charts by id.
type ChartSource interface {
	ExportImage(id string) ([]byte, error)
	ExportTable(id string) (string, error)
}

// ChartImage writes chart id as PNG. An empty path becomes <id>.png in the
// current directory.
func ChartImage(src ChartSource, id, path string) (string, error) {
	data, err := src.ExportImage(id)
	if err != nil {
		return "", err
	}
	return writeOut(defaultPath(path, id, ".png"), data)
}

// ChartTable writes chart id as CSV. An empty path becomes <id>.csv.
func ChartTable(src ChartSource, id, path string) (string, error) {
	csv, err := src.ExportTable(id)
	if err != nil {
		return "", err
	}
	return writeOut(defaultPath(path, id, ".csv"), []byte(csv))
}

// WriteTranscript writes t to path in the format its extension names
// (.json, .html, anything else markdown). A path ending in a separator or
// naming an existing directory gets a timestamped markdown file inside it.
func WriteTranscript(t *storage.Transcript, path string, opts *Options) (string, error) {
	format := FormatMarkdown
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".html", ".htm":
		format = FormatHTML
	}
	exporter, err := New(format, opts)
	if err != nil {
		return "", err
	}
	if isDir(path) {
		if err := validate(t); err != nil {
			return "", err
		}
		path = filepath.Join(path, transcriptFilename(t, exporter.FileExtension(), time.Now()))
	}
	data, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return writeOut(path, data)
}

func isDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func defaultPath(path, id, ext string) string {
	if path != "" {
		return path
	}
	return sanitizeFilename(id) + ext
}

func writeOut(path string, data []byte) (string, error) {
	if err := util.AtomicWriteFileWithDir(path, data, 0644, 0755); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
