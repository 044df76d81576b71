// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved console transcripts to files.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/siemspeak/internal/storage"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a transcript to one file format.
type Exporter interface {
	Export(t *storage.Transcript) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and their short forms.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Errors returned for transcripts that cannot be exported.
var (
	ErrNilTranscript   = errors.New("transcript is nil")
	ErrEmptyTranscript = errors.New("transcript has no turns")
)

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds the session header.
	IncludeMetadata bool

	// IncludeQueries adds each generated query block.
	IncludeQueries bool

	// RowCap limits table rows per response (0 = render default).
	RowCap int

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		IncludeQueries:  true,
		Theme:           "dark",
	}
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func validate(t *storage.Transcript) error {
	if t == nil {
		return ErrNilTranscript
	}
	if len(t.Turns) == 0 {
		return ErrEmptyTranscript
	}
	return nil
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		runes = runes[:50]
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out = append(out, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = append(out, '_')
		case r < 32 || r == 127:
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "transcript"
	}
	return string(out)
}

// transcriptFilename names an export of t written into a directory.
func transcriptFilename(t *storage.Transcript, ext string, now time.Time) string {
	return fmt.Sprintf("siemspeak_%s_%s%s", sanitizeFilename(t.Title), now.Format("20060102_150405"), ext)
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
