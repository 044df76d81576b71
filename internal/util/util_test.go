// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the console.
package util

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	err := AtomicWriteFile(path, []byte("hello, world!"), 0644)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("test data"), 0644))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))
}

func TestAtomicWriteFile_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, AtomicWriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"hello", 2, "he"},
		{"日本語テキスト", 5, "日本..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max), tt.in)
	}
}

func TestTruncateWidth_WideRunes(t *testing.T) {
	// Each CJK rune is two columns wide.
	got := TruncateWidth("日本語テキスト", 8)
	assert.LessOrEqual(t, StringWidth(got), 8)
	assert.Contains(t, got, "...")

	assert.Equal(t, "abc", TruncateWidth("abc", 3))
}

func TestPadRightLeft(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "   ab", PadLeft("ab", 5))
	assert.Equal(t, 5, StringWidth(PadRight("abcdefghij", 5)))
	assert.Equal(t, 6, StringWidth(PadRight("日本", 6)))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", FirstLine("one\ntwo"))
	assert.Equal(t, "single", FirstLine("single"))
}

// =============================================================================
// DEBOUNCER TESTS
// =============================================================================

func TestDebouncer_OnlyLatestRuns(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var last atomic.Int64
	var calls atomic.Int32
	done := make(chan struct{}, 4)
	for i := int64(1); i <= 3; i++ {
		v := i
		d.Schedule(func() {
			last.Store(v)
			calls.Add(1)
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	// Give superseded timers a chance to (wrongly) fire.
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int64(3), last.Load())
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(time.Hour)

	ran := false
	d.Schedule(func() { ran = true })
	assert.True(t, d.Flush())
	assert.True(t, ran)
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}
