// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api defines the collaborator contracts the console consumes.
package api

import (
	"context"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// QuerySubmitter translates a natural-language question and runs it.
type QuerySubmitter interface {
	Submit(ctx context.Context, question string) (*model.ResponsePayload, error)
}

// Searcher runs a structured filtered search.
type Searcher interface {
	Search(ctx context.Context, filters filter.Set) (*model.SearchResult, error)
}

// Suggester returns ordered completions for a partial question.
type Suggester interface {
	Suggest(ctx context.Context, partial string) ([]string, error)
}

// HistoryLoader returns the persisted conversation for replay.
type HistoryLoader interface {
	LoadHistory(ctx context.Context) ([]model.HistoryItem, error)
}

// HistoryClearer clears server-held history. Must be idempotent.
type HistoryClearer interface {
	ClearHistory(ctx context.Context) error
}

// Backend is every collaborator operation in one.
type Backend interface {
	QuerySubmitter
	Searcher
	Suggester
	HistoryLoader
	HistoryClearer
}
