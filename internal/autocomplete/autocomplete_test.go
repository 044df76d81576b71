// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package autocomplete

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSuggester records queries and returns canned items.
type fakeSuggester struct {
	items   []string
	err     error
	panics  bool
	queries []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, partial string) ([]string, error) {
	f.queries = append(f.queries, partial)
	if f.panics {
		panic("boom")
	}
	return f.items, f.err
}

// newTestController returns a controller whose debouncer never fires on its
// own; tests drive it with FlushPending.
func newTestController(s *fakeSuggester) (*Controller, *[]tea.Msg) {
	var sent []tea.Msg
	c := New(s, WithDelay(time.Hour), WithSender(func(m tea.Msg) { sent = append(sent, m) }))
	return c, &sent
}

// drive flushes the debouncer and runs the resulting fetch through the
// controller, returning whether the result was applied.
func drive(t *testing.T, c *Controller, sent *[]tea.Msg) bool {
	t.Helper()
	require.True(t, c.FlushPending())
	require.NotEmpty(t, *sent)
	due, ok := (*sent)[len(*sent)-1].(FetchDueMsg)
	require.True(t, ok)
	cmd := c.Fetch(due)
	require.NotNil(t, cmd)
	return c.HandleResult(cmd().(ResultMsg))
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestOnInput_ShortInputStaysIdle(t *testing.T) {
	s := &fakeSuggester{items: []string{"x"}}
	c, _ := newTestController(s)

	c.OnInput("  ab  ")
	assert.False(t, c.FlushPending())
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, s.queries)
}

func TestOnInput_FetchEntersSuggesting(t *testing.T) {
	s := &fakeSuggester{items: []string{"failed logins", "failed vpn"}}
	c, sent := newTestController(s)

	c.OnInput("fail")
	assert.True(t, drive(t, c, sent))

	assert.Equal(t, StateSuggesting, c.State())
	assert.Equal(t, 0, c.ActiveIndex())
	assert.Equal(t, "failed logins", c.Active())
	assert.Equal(t, []string{"fail"}, s.queries)
}

func TestOnInput_OnlyLatestSurvivesDebounce(t *testing.T) {
	s := &fakeSuggester{items: []string{"x"}}
	c, sent := newTestController(s)

	c.OnInput("mal")
	c.OnInput("malw")
	c.OnInput("malware")
	require.True(t, c.FlushPending())

	require.Len(t, *sent, 1)
	assert.Equal(t, "malware", (*sent)[0].(FetchDueMsg).Query)
}

func TestOnInput_DebouncerFiresOnItsOwn(t *testing.T) {
	s := &fakeSuggester{items: []string{"x"}}
	got := make(chan tea.Msg, 4)
	c := New(s, WithDelay(10*time.Millisecond), WithSender(func(m tea.Msg) { got <- m }))

	c.OnInput("vpn a")
	c.OnInput("vpn access")

	select {
	case m := <-got:
		assert.Equal(t, "vpn access", m.(FetchDueMsg).Query)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced fetch never delivered")
	}
}

func TestHandleResult_EmptyAndErrorGoIdle(t *testing.T) {
	s := &fakeSuggester{}
	c, sent := newTestController(s)

	c.OnInput("zzz")
	assert.True(t, drive(t, c, sent))
	assert.Equal(t, StateIdle, c.State())

	s.err = errors.New("backend down")
	s.items = []string{"ignored"}
	c.OnInput("zzzz")
	assert.True(t, drive(t, c, sent))
	assert.Equal(t, StateIdle, c.State())
}

func TestFetch_PanicBecomesIdle(t *testing.T) {
	s := &fakeSuggester{panics: true}
	c, sent := newTestController(s)

	c.OnInput("boom")
	assert.NotPanics(t, func() { drive(t, c, sent) })
	assert.Equal(t, StateIdle, c.State())
}

func TestHandleResult_StaleDiscarded(t *testing.T) {
	s := &fakeSuggester{items: []string{"old"}}
	c, sent := newTestController(s)

	c.OnInput("first")
	require.True(t, c.FlushPending())
	cmd := c.Fetch((*sent)[0].(FetchDueMsg))
	require.NotNil(t, cmd)
	stale := cmd().(ResultMsg)

	// A newer input arrives before the first result does.
	c.OnInput("second")
	assert.False(t, c.HandleResult(stale))
	assert.Equal(t, StateIdle, c.State())

	// Fetching for a superseded due message is a no-op.
	assert.Nil(t, c.Fetch(FetchDueMsg{Seq: stale.Seq, Query: "first"}))
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestNavigation_Circular(t *testing.T) {
	s := &fakeSuggester{items: []string{"a1", "a2", "a3"}}
	c, sent := newTestController(s)
	c.OnInput("aaa")
	drive(t, c, sent)

	c.Prev()
	assert.Equal(t, 2, c.ActiveIndex())
	c.Next()
	assert.Equal(t, 0, c.ActiveIndex())
	c.Next()
	c.Next()
	c.Next()
	assert.Equal(t, 0, c.ActiveIndex())
}

func TestNavigation_IdleIsNoop(t *testing.T) {
	c, _ := newTestController(&fakeSuggester{})
	assert.NotPanics(t, func() {
		c.Next()
		c.Prev()
	})
	assert.Equal(t, 0, c.ActiveIndex())
}

func TestConfirm(t *testing.T) {
	s := &fakeSuggester{items: []string{"a1", "a2"}}
	c, sent := newTestController(s)

	item, ok := c.Confirm()
	assert.False(t, ok)
	assert.Empty(t, item)

	c.OnInput("aaa")
	drive(t, c, sent)
	c.Next()

	item, ok = c.Confirm()
	require.True(t, ok)
	assert.Equal(t, "a2", item)
	assert.Equal(t, StateIdle, c.State())
}

func TestCancel_DropsPendingAndInFlight(t *testing.T) {
	s := &fakeSuggester{items: []string{"a1"}}
	c, sent := newTestController(s)

	c.OnInput("aaa")
	drive(t, c, sent)
	require.True(t, c.Visible())

	c.OnInput("aaab")
	c.Cancel()
	assert.False(t, c.Visible())
	assert.False(t, c.FlushPending())
}

func TestFlushCmd_DeliversPendingFetch(t *testing.T) {
	s := &fakeSuggester{items: []string{"x"}}
	c, sent := newTestController(s)

	assert.Nil(t, c.FlushCmd())

	c.OnInput("brute")
	cmd := c.FlushCmd()
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	require.Len(t, *sent, 1)
	assert.Equal(t, "brute", (*sent)[0].(FetchDueMsg).Query)
	assert.Nil(t, c.FlushCmd())
}
