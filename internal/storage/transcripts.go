// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides client-side persistence for the console.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is a saved console session.
type Transcript struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Backend   string            `json:"backend,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Turns     []TranscriptTurn  `json:"turns"`
	Filters   map[string]string `json:"filters,omitempty"`
}

// TranscriptTurn is one saved turn. Assistant turns carry the payload.
type TranscriptTurn struct {
	Role      model.Role             `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Question  string                 `json:"question,omitempty"`
	Response  *model.ResponsePayload `json:"response,omitempty"`
}

// TranscriptMeta is the listing view of a transcript.
type TranscriptMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Questions int       `json:"questions"`
	Preview   string    `json:"preview"`
}

// TranscriptFromHistory snapshots a history into a transcript.
func TranscriptFromHistory(h *model.History) *Transcript {
	t := &Transcript{}
	for _, turn := range h.Turns() {
		tt := TranscriptTurn{
			Role:      turn.Role,
			Content:   turn.Content,
			Timestamp: turn.Timestamp,
		}
		if turn.Entry != nil {
			tt.Question = turn.Entry.Question
			tt.Response = turn.Entry.Response
		}
		t.Turns = append(t.Turns, tt)
	}
	return t
}

// Questions returns the user questions in order.
func (t *Transcript) Questions() []string {
	var qs []string
	for _, turn := range t.Turns {
		if turn.Role == model.RoleUser {
			qs = append(qs, turn.Content)
		}
	}
	return qs
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore keeps transcripts as one JSON file each.
type TranscriptStore struct {
	// BaseDir is the directory for transcripts
	// Default: ~/.siemspeak/transcripts/
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited)
	MaxTranscripts int
}

// NewTranscriptStore creates a store under the user's home directory.
func NewTranscriptStore() (*TranscriptStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewTranscriptStoreWithDir(filepath.Join(homeDir, ".siemspeak", "transcripts"))
}

// NewTranscriptStoreWithDir creates a store with a custom directory.
func NewTranscriptStoreWithDir(baseDir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: 100,
	}, nil
}

// Save persists a transcript and returns its ID.
func (s *TranscriptStore) Save(t *Transcript) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Title == "" {
		t.Title = generateTitle(t)
	}
	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(s.filePath(t.ID), data, 0644); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}
	return t.ID, nil
}

// generateTitle uses the first question, flattened and truncated.
func generateTitle(t *Transcript) string {
	for _, q := range t.Questions() {
		q = strings.ReplaceAll(q, "\n", " ")
		q = strings.ReplaceAll(q, "\r", "")
		if q != "" {
			return util.TruncateRunes(q, 50)
		}
	}
	return "Empty session"
}

// enforceLimit removes the oldest transcripts over the limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}
	// List is newest first.
	for _, m := range metas[s.MaxTranscripts:] {
		s.Delete(m.ID)
	}
}

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all saved transcripts, most recent first. Corrupted files
// are skipped.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	metas := make([]TranscriptMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		qs := t.Questions()
		preview := ""
		if len(qs) > 0 {
			preview = util.TruncateRunes(qs[0], 80)
		}
		metas = append(metas, TranscriptMeta{
			ID:        t.ID,
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
			Questions: len(qs),
			Preview:   preview,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// filePath returns the file path for an ID. The base name guards against
// ids containing path separators.
func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, filepath.Base(id)+".json")
}

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
var ErrTranscriptNotFound = errors.New("transcript not found")
