// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"io"
	"runtime"
)

// Main parses argv, runs the command and returns the exit status.
func Main(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cmd, args, err := ParseArgs(argv)
	if err != nil {
		DisplayError(stderr, err, args.JSON)
		if cmd == CmdHelp {
			PrintUsage(stderr)
		}
		return ExitCode(err)
	}

	err = Execute(ctx, cmd, args, stdout)
	// ask --json has already written its error envelope.
	if err != nil && !(args.JSON && cmd == CmdAsk) {
		DisplayError(stderr, err, args.JSON)
	}
	return ExitCode(err)
}

// Execute runs one parsed command.
func Execute(ctx context.Context, cmd Command, args Args, stdout io.Writer) error {
	switch cmd {
	case CmdAsk:
		return HandleAsk(ctx, args, stdout)
	case CmdChat:
		return HandleChat(ctx, args, stdout)
	case CmdServe:
		return HandleServe(ctx, args, stdout)
	case CmdConfig:
		return HandleConfig(args, stdout)
	case CmdVersion:
		if args.JSON {
			return NewJSONResponse("version", VersionData{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			}).Write(stdout)
		}
		PrintVersion(stdout)
		return nil
	case CmdHelp:
		PrintUsage(stdout)
		return nil
	default:
		return HandleConsole(ctx, args)
	}
}
