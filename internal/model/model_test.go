// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the console core.
package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory_AppendOrder(t *testing.T) {
	h := NewHistory()
	require.True(t, h.IsEmpty())

	h.AddUserTurn("show failed logins")
	h.AddEntry(ConversationEntry{
		Question: "show failed logins",
		Response: &ResponsePayload{Summary: "Found 347 events", TotalEvents: 347},
	})
	h.AddUserTurn("and malware?")
	h.AddErrorTurn("backend unavailable")

	turns := h.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "Found 347 events", turns[1].Content)
	require.NotNil(t, turns[1].Entry)
	assert.Equal(t, 347, turns[1].Entry.Response.TotalEvents)
	assert.True(t, turns[3].IsError())
	assert.Nil(t, turns[3].Entry)

	// Error turns are not entries.
	assert.Len(t, h.Entries(), 1)
	assert.False(t, h.LastEntry().SubmittedAt.IsZero())
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory()
	h.AddUserTurn("q")
	h.AddEntry(ConversationEntry{Question: "q", Response: &ResponsePayload{}})

	h.Clear()
	assert.True(t, h.IsEmpty())
	assert.Empty(t, h.Entries())
	assert.Nil(t, h.LastEntry())
	assert.Nil(t, h.LastTurn())
}

func TestHistory_TurnsIsCopy(t *testing.T) {
	h := NewHistory()
	h.AddUserTurn("q")
	turns := h.Turns()
	turns[0] = nil
	assert.NotNil(t, h.Turns()[0])
}

func TestTurn_Preview(t *testing.T) {
	turn := &Turn{Content: strings.Repeat("a", 80) + "\nsecond line"}
	p := turn.Preview(20)
	assert.Len(t, []rune(p), 20)
	assert.True(t, strings.HasSuffix(p, "..."))

	short := &Turn{Content: "hello\nworld"}
	assert.Equal(t, "hello", short.Preview(20))
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestResponsePayload_ChartKindsOrder(t *testing.T) {
	p := &ResponsePayload{ChartData: map[ChartKind]SeriesData{
		"zeta_custom":        {},
		ChartTopUsers:        {},
		ChartTimeline:        {},
		"alpha_custom":       {},
		ChartGeoDistribution: {},
	}}

	got := p.ChartKinds()
	want := []ChartKind{ChartTimeline, ChartTopUsers, ChartGeoDistribution, "alpha_custom", "zeta_custom"}
	assert.Equal(t, want, got)

	var nilPayload *ResponsePayload
	assert.Nil(t, nilPayload.ChartKinds())
}

func TestChartKind_IsKnownAndTitle(t *testing.T) {
	assert.True(t, ChartTimeline.IsKnown())
	assert.False(t, ChartKind("packet_sizes").IsKnown())
	assert.Equal(t, "packet_sizes", ChartKind("packet_sizes").Title())
	assert.Equal(t, "Top Users", ChartTopUsers.Title())
}

func TestSeriesData_CloneAndLen(t *testing.T) {
	s := SeriesData{Labels: []string{"a", "b", "c"}, Values: []float64{1, 2}}
	assert.Equal(t, 2, s.Len())

	c := s.Clone()
	c.Labels[0] = "changed"
	assert.Equal(t, "a", s.Labels[0])
}

func TestInsightType_Valid(t *testing.T) {
	for _, it := range []InsightType{InsightInfo, InsightSuccess, InsightWarning, InsightDanger} {
		assert.True(t, it.Valid(), it)
	}
	assert.False(t, InsightType("critical").Valid())
}
