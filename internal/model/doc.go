// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the console core.
//
// This package defines the domain types exchanged with the query backend and
// held in the conversational history: response payloads, insights, event
// records, chart series, and the conversation turns shown to the operator.
//
// # Key Types
//
//   - ResponsePayload: Result of one natural-language question
//   - Insight: Analyst-facing finding tagged with a visual severity
//   - EventRecord: One sampled security event row
//   - ChartKind / SeriesData: Chart data keyed by a known (or unknown) kind
//   - ConversationEntry: Question/response pair retained in history
//   - Turn: One line of the visible conversation (user, assistant, error)
//
// # Usage
//
// Build a history and append a completed entry:
//
//	h := model.NewHistory()
//	h.AddUserTurn("Show failed logins in the last 24 hours")
//	h.AddEntry(model.ConversationEntry{Question: q, Response: payload})
package model
