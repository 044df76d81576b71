// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved console transcripts to files.
//
// # Supported Formats
//
//   - Markdown: questions, summaries, insights and result tables
//   - HTML: the markdown rendered through goldmark into a styled page
//   - JSON: the transcript as stored
//
// # Usage
//
//	path, err := export.WriteTranscript(t, "session.html", nil)
package export
