// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the console.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: UTF-8 and display-width safe truncation
//   - PadRight, PadLeft: column padding for table cells
//
// Scheduling:
//   - Debouncer: trailing-edge, superseding deferred execution
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	d := util.NewDebouncer(300 * time.Millisecond)
//	d.Schedule(func() { send(FetchDueMsg{Query: q}) })
//	d.Cancel() // input dropped below the threshold
//
//	err := util.AtomicWriteFile(path, data, 0644)
package util
