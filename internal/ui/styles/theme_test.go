// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the siemspeak console.
package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siemspeak/internal/model"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ResolvesMode(t *testing.T) {
	dark := NewTheme(true)
	light := NewTheme(false)

	assert.Equal(t, "dark", dark.ModeName())
	assert.Equal(t, "light", light.ModeName())
	assert.Equal(t, lipgloss.Color(Cyan.Dark), dark.HeaderTitle.GetForeground())
	assert.Equal(t, lipgloss.Color(Cyan.Light), light.HeaderTitle.GetForeground())
}

func TestTheme_StylesInitialized(t *testing.T) {
	theme := NewTheme(true)
	styles := map[string]lipgloss.Style{
		"UserTurn":        theme.UserTurn,
		"AssistantTurn":   theme.AssistantTurn,
		"ErrorTurn":       theme.ErrorTurn,
		"SuggestionPopup": theme.SuggestionPopup,
		"StatusBar":       theme.StatusBar,
		"InsightBox":      theme.InsightBox,
		"AlertBox":        theme.AlertBox,
		"ConfirmBox":      theme.ConfirmBox,
	}
	for name, s := range styles {
		assert.NotEmpty(t, s.Render("test"), name)
	}
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestTheme_InsightColors(t *testing.T) {
	theme := NewTheme(true)
	assert.Equal(t, lipgloss.Color(Rose.Dark), theme.Insight(model.InsightDanger))
	assert.Equal(t, lipgloss.Color(Emerald.Dark), theme.Insight(model.InsightSuccess))
	assert.Equal(t, theme.Insight(model.InsightInfo), theme.Insight("mystery"))
}

func TestInsightIndicator(t *testing.T) {
	assert.Equal(t, "[X]", InsightIndicator(model.InsightDanger))
	assert.Equal(t, "[!]", InsightIndicator(model.InsightWarning))
	assert.Equal(t, "[OK]", InsightIndicator(model.InsightSuccess))
	assert.Equal(t, "[i]", InsightIndicator("other"))
}

func TestTheme_BucketFallback(t *testing.T) {
	theme := NewTheme(false)
	assert.Equal(t, lipgloss.Color(Rose.Light), theme.Bucket(BucketHighest).GetForeground())
	assert.Equal(t, theme.Bucket(BucketUnknown).GetForeground(), theme.Bucket("bogus").GetForeground())
}

func TestTheme_ChartPalette(t *testing.T) {
	dark := NewTheme(true).ChartPalette()
	light := NewTheme(false).ChartPalette()

	require.Len(t, dark.Series, len(SeriesColors))
	assert.Equal(t, "dark", dark.Name)
	assert.Equal(t, Cyan.Dark, dark.Series[0])
	assert.Equal(t, Cyan.Light, light.Series[0])
	assert.Equal(t, Surface.Dark, dark.Background)
	assert.NotEqual(t, dark.Background, light.Background)
}

func TestTheme_SyntaxAndGlamourStyles(t *testing.T) {
	assert.Equal(t, "monokai", NewTheme(true).SyntaxStyle())
	assert.Equal(t, "github", NewTheme(false).SyntaxStyle())
	assert.Equal(t, "light", NewTheme(false).GlamourStyle())
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme(true)
	cases := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tc := range cases {
		theme.SetSize(tc.width, 30)
		assert.Equal(t, tc.want, theme.GetLayoutMode(), tc.width)
	}
}
