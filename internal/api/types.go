// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api defines the collaborator contracts the console consumes.
package api

import (
	"encoding/json"

	"github.com/jeranaias/siemspeak/internal/model"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Reply          *model.ResponsePayload `json:"reply"`
	GeneratedQuery json.RawMessage        `json:"generated_query,omitempty"`
	Entities       json.RawMessage        `json:"entities,omitempty"`
}

// SuggestResponse is the body returned by GET /suggest.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ConversationResponse is the body returned by GET /conversation.
type ConversationResponse struct {
	Conversation []model.HistoryItem `json:"conversation"`
}

// StatusResponse is the body returned by POST /clear and GET /health.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
