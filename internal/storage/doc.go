// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides client-side persistence for the console.
//
// # Key Types
//
//   - Preferences: durable key/value preferences in SQLite (display mode)
//   - TranscriptStore: saved session transcripts as JSON files
//
// # Usage
//
//	prefs, err := storage.OpenPreferences(filepath.Join(dir, "prefs.db"))
//	defer prefs.Close()
//	prefs.Set(ctx, storage.KeyDisplayMode, "light")
//
//	store, err := storage.NewTranscriptStoreWithDir(filepath.Join(dir, "transcripts"))
//	id, err := store.Save(storage.TranscriptFromHistory(history))
//
// Transcripts are written atomically (util.AtomicWriteFile).
package storage
