// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the siemspeak console.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/model"
)

// Presentation bucket names shared with the result renderer.
const (
	BucketHighest = "highest"
	BucketHigh    = "high"
	BucketMedium  = "medium"
	BucketLow     = "low"
	BucketUnknown = "unknown"
)

// Theme holds all the styled components for one display mode.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// CONVERSATION STYLES
	// ==========================================================================

	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	SystemTurn    lipgloss.Style
	ErrorTurn     lipgloss.Style
	TurnRole      lipgloss.Style
	Timestamp     lipgloss.Style
	EmptyState    lipgloss.Style

	// ==========================================================================
	// INPUT AND SUGGESTION STYLES
	// ==========================================================================

	InputContainer     lipgloss.Style
	InputPrompt        lipgloss.Style
	InputPlaceholder   lipgloss.Style
	InputDisabled      lipgloss.Style
	SuggestionPopup    lipgloss.Style
	SuggestionItem     lipgloss.Style
	SuggestionSelected lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusMode   lipgloss.Style
	FilterBadge  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	LoadingText  lipgloss.Style

	// ==========================================================================
	// RESULT STYLES
	// ==========================================================================

	Summary       lipgloss.Style
	SummaryCount  lipgloss.Style
	Caption       lipgloss.Style
	ProcessingTag lipgloss.Style
	InsightBox    lipgloss.Style
	InsightTitle  lipgloss.Style
	InsightAdvice lipgloss.Style
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	TableNote     lipgloss.Style
	QueryBlock    lipgloss.Style
	ChartFrame    lipgloss.Style

	insight map[model.InsightType]lipgloss.Color
	bucket  map[string]lipgloss.Style

	// ==========================================================================
	// DIALOG STYLES
	// ==========================================================================

	AlertBox      lipgloss.Style
	AlertTitle    lipgloss.Style
	ConfirmBox    lipgloss.Style
	ConfirmTitle  lipgloss.Style
	ConfirmButton lipgloss.Style
	ConfirmActive lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
}

// NewTheme creates a theme for the given display mode.
func NewTheme(isDark bool) *Theme {
	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// DetectTheme creates a theme matching the terminal background.
func DetectTheme() *Theme {
	return NewTheme(termenv.HasDarkBackground())
}

// c resolves an adaptive color for this theme's mode.
func (t *Theme) c(ac lipgloss.AdaptiveColor) lipgloss.Color {
	return resolve(ac, t.IsDark)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Cyan))

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	// Conversation
	t.UserTurn = lipgloss.NewStyle().
		Foreground(t.c(UserTurnFg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.c(UserTurnBorder)).
		PaddingLeft(1)

	t.AssistantTurn = lipgloss.NewStyle().
		Foreground(t.c(AssistantTurnFg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.c(AssistantTurnBorder)).
		PaddingLeft(1)

	t.SystemTurn = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Italic(true)

	t.ErrorTurn = lipgloss.NewStyle().
		Foreground(t.c(ErrorTurnFg)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.c(Rose)).
		PaddingLeft(1)

	t.TurnRole = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Purple))

	t.Timestamp = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.EmptyState = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true).
		Padding(1, 2)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.SuggestionPopup = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Purple)).
		Padding(0, 1)

	t.SuggestionItem = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.SuggestionSelected = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		Background(t.c(SelectionBg)).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	t.StatusMode = lipgloss.NewStyle().
		Foreground(t.c(Purple)).
		Bold(true)

	t.FilterBadge = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Cyan)).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.Spinner = lipgloss.NewStyle().
		Foreground(t.c(Purple))

	t.LoadingText = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Italic(true)

	// Results
	t.Summary = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.SummaryCount = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.Caption = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.ProcessingTag = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.InsightBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)

	t.InsightTitle = lipgloss.NewStyle().
		Bold(true)

	t.InsightAdvice = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Italic(true)

	t.TableHeader = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Bold(true).
		Underline(true)

	t.TableCell = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.TableNote = lipgloss.NewStyle().
		Foreground(t.c(Amber)).
		Italic(true)

	t.QueryBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(t.c(Overlay)).
		PaddingLeft(1)

	t.ChartFrame = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.insight = map[model.InsightType]lipgloss.Color{
		model.InsightInfo:    t.c(Blue),
		model.InsightSuccess: t.c(Emerald),
		model.InsightWarning: t.c(Amber),
		model.InsightDanger:  t.c(Rose),
	}

	t.bucket = map[string]lipgloss.Style{
		BucketHighest: lipgloss.NewStyle().Foreground(t.c(Rose)).Bold(true),
		BucketHigh:    lipgloss.NewStyle().Foreground(t.c(Amber)).Bold(true),
		BucketMedium:  lipgloss.NewStyle().Foreground(t.c(Yellow)),
		BucketLow:     lipgloss.NewStyle().Foreground(t.c(Emerald)),
		BucketUnknown: lipgloss.NewStyle().Foreground(t.c(TextMuted)),
	}

	// Dialogs
	t.AlertBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(t.c(Rose)).
		Background(t.c(RoseDeep)).
		Padding(1, 2)

	t.AlertTitle = lipgloss.NewStyle().
		Foreground(t.c(Rose)).
		Bold(true)

	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Amber)).
		Background(t.c(AmberDeep)).
		Padding(1, 2)

	t.ConfirmTitle = lipgloss.NewStyle().
		Foreground(t.c(Amber)).
		Bold(true)

	t.ConfirmButton = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Padding(0, 2)

	t.ConfirmActive = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Amber)).
		Bold(true).
		Padding(0, 2)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(t.c(Cyan)).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Insight returns the accent color for an insight type. Unknown types use the
// info color.
func (t *Theme) Insight(kind model.InsightType) lipgloss.Color {
	if c, ok := t.insight[kind]; ok {
		return c
	}
	return t.insight[model.InsightInfo]
}

// InsightIndicator returns the shape shown next to an insight of this type.
func InsightIndicator(kind model.InsightType) string {
	switch kind {
	case model.InsightSuccess:
		return StatusIndicators.Success
	case model.InsightWarning:
		return StatusIndicators.Warning
	case model.InsightDanger:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Info
	}
}

// Bucket returns the style for a presentation bucket. Unknown names use the
// unknown bucket.
func (t *Theme) Bucket(name string) lipgloss.Style {
	if s, ok := t.bucket[name]; ok {
		return s
	}
	return t.bucket[BucketUnknown]
}

// ModeName returns "dark" or "light".
func (t *Theme) ModeName() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// GlamourStyle returns the glamour standard style for this mode.
func (t *Theme) GlamourStyle() string {
	return t.ModeName()
}

// SyntaxStyle returns the chroma style name for this mode.
func (t *Theme) SyntaxStyle() string {
	if t.IsDark {
		return "monokai"
	}
	return "github"
}

// ChartPalette returns the chart palette for this mode.
func (t *Theme) ChartPalette() chart.Palette {
	series := make([]string, len(SeriesColors))
	for i, ac := range SeriesColors {
		series[i] = string(t.c(ac))
	}
	return chart.Palette{
		Name:       t.ModeName(),
		Series:     series,
		Text:       string(t.c(TextPrimary)),
		Muted:      string(t.c(TextMuted)),
		Grid:       string(t.c(Overlay)),
		Background: string(t.c(Surface)),
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
