// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
//
// Input beginning with "/" is parsed against a Registry and decoded into an
// Invocation whose Action is one of a closed set. The console and the line
// REPL dispatch on the Action; this package never performs the action
// itself.
//
// # Commands
//
//   - /filter key=value ...          - Apply structured filters
//   - /reset                         - Restore the default filters
//   - /clear                         - Clear the conversation (asks first)
//   - /theme [dark|light]            - Toggle or set the display mode
//   - /export image|table <chart> [file]
//   - /fullscreen <chart>            - Show one chart full screen
//   - /refine <text>                 - Re-ask the last question with more detail
//   - /query                         - Show the last generated query
//   - /save [file]                   - Save the transcript
//   - /help                          - List commands
//   - /quit                          - Leave
//
// # Usage
//
//	reg := commands.NewRegistry()
//	inv, err := commands.NewParser(reg).Parse("/filter severity=high time=7d")
//	if err == nil && inv.Action == commands.ActionFilter {
//		cmd := searchCtl.Apply(inv.Filters)
//	}
package commands
