// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the console core.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies who produced a visible conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Analyst"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// CONVERSATION ENTRY
// =============================================================================

// ConversationEntry is one completed question/response pair.
type ConversationEntry struct {
	Question    string           `json:"question"`
	Response    *ResponsePayload `json:"response"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one line of the visible conversation. Assistant turns point at the
// entry they render; error turns carry only the failure description.
type Turn struct {
	ID        string             `json:"id"`
	Role      Role               `json:"role"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Entry     *ConversationEntry `json:"entry,omitempty"`
}

// IsError reports whether the turn is an error-flagged message.
func (t *Turn) IsError() bool {
	return t.Role == RoleError
}

// Preview returns the first line of the content truncated to maxLen runes.
func (t *Turn) Preview(maxLen int) string {
	content := t.Content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	runes := []rune(content)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return content
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the ordered, append-only record of a console session: the
// visible turns and the completed entries behind the assistant turns.
type History struct {
	turns   []*Turn
	entries []*ConversationEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{
		turns:   make([]*Turn, 0),
		entries: make([]*ConversationEntry, 0),
	}
}

// AddUserTurn appends the operator's question.
func (h *History) AddUserTurn(question string) *Turn {
	return h.addTurn(RoleUser, question, nil)
}

// AddSystemTurn appends an informational line.
func (h *History) AddSystemTurn(content string) *Turn {
	return h.addTurn(RoleSystem, content, nil)
}

// AddErrorTurn appends an error-flagged message. Error turns never carry a
// response and are not recorded as entries.
func (h *History) AddErrorTurn(description string) *Turn {
	return h.addTurn(RoleError, description, nil)
}

// AddEntry records a completed entry and appends the assistant turn that
// renders it.
func (h *History) AddEntry(entry ConversationEntry) *Turn {
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now()
	}
	stored := &entry
	h.entries = append(h.entries, stored)

	content := ""
	if entry.Response != nil {
		content = entry.Response.Summary
	}
	return h.addTurn(RoleAssistant, content, stored)
}

func (h *History) addTurn(role Role, content string, entry *ConversationEntry) *Turn {
	turn := &Turn{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Entry:     entry,
	}
	h.turns = append(h.turns, turn)
	return turn
}

// Turns returns a copy of the visible turns in order.
func (h *History) Turns() []*Turn {
	out := make([]*Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Entries returns a copy of the completed entries in order.
func (h *History) Entries() []*ConversationEntry {
	out := make([]*ConversationEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// LastEntry returns the most recent completed entry, or nil.
func (h *History) LastEntry() *ConversationEntry {
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[len(h.entries)-1]
}

// LastTurn returns the most recent turn, or nil.
func (h *History) LastTurn() *Turn {
	if len(h.turns) == 0 {
		return nil
	}
	return h.turns[len(h.turns)-1]
}

// Len returns the number of visible turns.
func (h *History) Len() int {
	return len(h.turns)
}

// IsEmpty returns true if nothing has been asked yet.
func (h *History) IsEmpty() bool {
	return len(h.turns) == 0
}

// Clear removes every turn and entry.
func (h *History) Clear() {
	h.turns = make([]*Turn, 0)
	h.entries = make([]*ConversationEntry, 0)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique turn ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "turn_" + hex.EncodeToString(bytes)
}
