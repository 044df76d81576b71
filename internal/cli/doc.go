// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
//
// Commands:
//
//	siemspeak                  Start the interactive console (default)
//	siemspeak ask "question"   Answer one question and print it
//	siemspeak chat             Line-oriented REPL with slash commands
//	siemspeak serve            Serve the synthetic backend over HTTP
//	siemspeak config           Show, locate or create the config file
//	siemspeak version          Print version information
//
// Global flags (--config, --demo, --json, --quiet, --verbose) are accepted
// anywhere on the command line. Output is styled only when stdout is a
// terminal; NO_COLOR disables color everywhere.
package cli
