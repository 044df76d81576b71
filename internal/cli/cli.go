// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the top-level command to run.
type Command int

const (
	CmdConsole Command = iota
	CmdAsk
	CmdChat
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdConsole: "console",
	CmdAsk:     "ask",
	CmdChat:    "chat",
	CmdServe:   "serve",
	CmdConfig:  "config",
	CmdVersion: "version",
	CmdHelp:    "help",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Args holds parsed arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Demo       bool
	JSON       bool
	Quiet      bool
	Verbose    bool

	// ask
	Query     string
	ShowQuery bool
	NoColor   bool

	// serve
	Addr string

	// config init
	Force bool

	// Raw positionals after the command name
	Raw []string
}

// booleanFlags never take a value.
var booleanFlags = []string{
	"demo", "json", "quiet", "q", "verbose", "v",
	"show-query", "no-color", "help", "h", "version", "force",
}

const usageText = `siemspeak - ask questions about security events in plain language

Usage:
  siemspeak [flags]                 Start the interactive console (default)
  siemspeak ask [flags] "question"  Answer one question and print the result
  siemspeak chat [flags]            Line-oriented REPL with slash commands
  siemspeak serve [flags]           Serve the synthetic backend over HTTP
  siemspeak config [show|path|init] Show, locate or create the config file
  siemspeak version                 Show version information
  siemspeak help                    Show this help

Global flags:
  --config FILE     Config file (default: ~/.siemspeak/config.toml)
  --demo            Answer from the built-in synthetic backend
  --json            Machine-readable output (ask)
  -q, --quiet       Suppress banners and hints
  -v, --verbose     Debug logging

ask flags:
  --show-query      Include the generated search query
  --no-color        Plain output even on a terminal

serve flags:
  --addr HOST:PORT  Listen address (default: [server] addr)

config init flags:
  --force           Overwrite an existing config file

Slash commands (console and chat):
  /filter key=value ...    Narrow the event search
  /reset                   Restore the default filters
  /refine text             Re-ask the last question with more detail
  /query                   Show or hide the generated query
  /export image|table ID   Export a chart
  /fullscreen ID           Show one chart on its own
  /theme [dark|light]      Switch display mode
  /save [file|dir/]        Save the transcript
  /clear                   Clear the conversation
  /help, /quit

Examples:
  siemspeak --demo
  siemspeak ask --demo "failed logins in the last 24 hours"
  siemspeak ask --json "malware detections from yesterday" | jq .data.total_events
  siemspeak serve --addr 127.0.0.1:5000
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "siemspeak %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// ParseArgs parses argv without the program name.
func ParseArgs(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, booleanFlags...)

	args := Args{
		ConfigPath: p.Flag("config"),
		Demo:       p.BoolFlag("demo"),
		JSON:       p.BoolFlag("json"),
		Quiet:      p.BoolFlag("quiet") || p.BoolFlag("q"),
		Verbose:    p.BoolFlag("verbose") || p.BoolFlag("v"),
		ShowQuery:  p.BoolFlag("show-query"),
		NoColor:    p.BoolFlag("no-color"),
		Addr:       p.Flag("addr"),
		Force:      p.BoolFlag("force"),
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	name := strings.ToLower(p.Subcommand())
	args.Raw = p.PositionalFrom(1)

	switch name {
	case "", "console", "tui":
		return CmdConsole, args, nil
	case "ask", "a":
		args.Query = strings.TrimSpace(strings.Join(args.Raw, " "))
		if args.Query == "" {
			return CmdAsk, args, ErrMissingArgument("question", `siemspeak ask "failed logins in the last 24 hours"`)
		}
		return CmdAsk, args, nil
	case "chat", "repl":
		return CmdChat, args, nil
	case "serve", "server":
		return CmdServe, args, nil
	case "config":
		return CmdConfig, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	}

	// A bare question is treated as ask.
	if p.PositionalCount() > 1 || strings.Contains(name, " ") {
		args.Query = strings.TrimSpace(strings.Join(p.PositionalFrom(0), " "))
		return CmdAsk, args, nil
	}
	return CmdHelp, args, &ValidationError{
		Field:   "command",
		Value:   name,
		Reason:  "unknown command",
		Example: "siemspeak help",
	}
}
