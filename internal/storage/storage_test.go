// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siemspeak/internal/model"
)

// =============================================================================
// PREFERENCES TESTS
// =============================================================================

func TestPreferences_RoundTripAndDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	prefs, err := OpenPreferences(path)
	require.NoError(t, err)

	_, err = prefs.Get(ctx, KeyDisplayMode)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	require.NoError(t, prefs.Set(ctx, KeyDisplayMode, "dark"))
	require.NoError(t, prefs.Set(ctx, KeyDisplayMode, "light"))
	require.NoError(t, prefs.Close())

	// Reopen: the value survives across sessions.
	prefs, err = OpenPreferences(path)
	require.NoError(t, err)
	defer prefs.Close()

	v, err := prefs.Get(ctx, KeyDisplayMode)
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	all, err := prefs.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyDisplayMode: "light"}, all)

	require.NoError(t, prefs.Delete(ctx, KeyDisplayMode))
	require.NoError(t, prefs.Delete(ctx, KeyDisplayMode))
	_, err = prefs.Get(ctx, KeyDisplayMode)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func sampleHistory() *model.History {
	h := model.NewHistory()
	h.AddUserTurn("Show failed logins in the last 24 hours")
	h.AddEntry(model.ConversationEntry{
		Question: "Show failed logins in the last 24 hours",
		Response: &model.ResponsePayload{Summary: "Found 347 events", TotalEvents: 347},
	})
	h.AddUserTurn("and malware?")
	h.AddErrorTurn("backend unavailable")
	return h
}

func TestTranscriptStore_SaveLoad(t *testing.T) {
	store, err := NewTranscriptStoreWithDir(t.TempDir())
	require.NoError(t, err)

	tr := TranscriptFromHistory(sampleHistory())
	id, err := store.Save(tr)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Show failed logins in the last 24 hours", tr.Title)

	loaded, err := store.Load(id)
	require.NoError(t, err)
	require.Len(t, loaded.Turns, 4)
	assert.Equal(t, model.RoleAssistant, loaded.Turns[1].Role)
	assert.Equal(t, 347, loaded.Turns[1].Response.TotalEvents)
	assert.Equal(t, model.RoleError, loaded.Turns[3].Role)
	assert.Nil(t, loaded.Turns[3].Response)
	assert.Equal(t, []string{"Show failed logins in the last 24 hours", "and malware?"}, loaded.Questions())
}

func TestTranscriptStore_ListNewestFirstAndLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTranscriptStoreWithDir(dir)
	require.NoError(t, err)
	store.MaxTranscripts = 2

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Save(TranscriptFromHistory(sampleHistory()))
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, ids[2], metas[0].ID)
	assert.Equal(t, 2, metas[0].Questions)

	_, err = store.Load(ids[0])
	assert.ErrorIs(t, err, ErrTranscriptNotFound)
}

func TestTranscriptStore_SkipsCorrupted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTranscriptStoreWithDir(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	_, err = store.Save(TranscriptFromHistory(sampleHistory()))
	require.NoError(t, err)

	metas, err := store.List()
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}

func TestTranscriptStore_DeleteMissing(t *testing.T) {
	store, err := NewTranscriptStoreWithDir(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, store.Delete("nope"), ErrTranscriptNotFound)
}
