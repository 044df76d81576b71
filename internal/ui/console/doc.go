// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console is the interactive Bubble Tea front end of siemspeak.
//
// The Model owns no business state of its own. It routes keys and messages
// to the controllers and paints what they hold:
//
//   - session.Controller: questions, answers and the clear gate
//   - search.Controller: structured filters set with /filter and /reset
//   - autocomplete.Controller: debounced suggestions for free text
//   - viz.Manager: the live charts of the latest answer
//   - theme.Controller: dark/light mode, persisted across runs
//
// Every collaborator call runs in a tea.Cmd and returns as a typed message,
// so all state changes happen on the Update loop.
//
// # Usage
//
//	err := console.Run(ctx, console.Deps{Backend: client, Config: cfg})
package console
