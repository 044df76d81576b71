// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversational state of the console.
//
// The Controller keeps the ordered history of question/response pairs and
// enforces at most one in-flight question at a time. Collaborator calls run
// inside tea.Cmd values; their results come back to the Update loop as
// ResultMsg, HistoryMsg and ClearResultMsg.
//
// # Key Types
//
//   - Controller: conversational session controller
//   - Sink: receives payloads to render and empty-state resets
//   - ResultMsg, HistoryMsg, ClearResultMsg: Bubble Tea messages
//
// # Usage
//
//	ctrl := session.New(backend, sink, vizMgr)
//	cmd, err := ctrl.Submit("show failed logins in the last 24 hours")
//	// ... Update loop runs cmd, then:
//	ctrl.HandleResult(msg.(session.ResultMsg))
//
// Clearing is a two-step action:
//
//	ctrl.RequestClear()
//	cmd := ctrl.ConfirmClear(true)
//	ctrl.HandleClearResult(cmd().(session.ClearResultMsg))
//
// # Guarantees
//
// The in-flight flag and the loading indicator are released on every exit
// path of HandleResult, including collaborator failures and panics.
package session
