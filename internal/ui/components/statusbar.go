// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable widgets of the siemspeak console.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the console activity shown at the left of the bar.
type Status int

const (
	StatusReady Status = iota
	StatusProcessing
	StatusSearching
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusProcessing:
		return "Analyzing..."
	case StatusSearching:
		return "Searching..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape for the status so it never depends on color alone.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusProcessing, StatusSearching:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the bottom line of the console.
type StatusBar struct {
	Status        Status
	Spinner       string // spinner frame shown while busy
	Mode          string // "dark" or "light"
	Filters       string // one-line filter summary
	ActiveFilters int
	Backend       string
	Message       string // transient notice, e.g. "saved transcript"
	Width         int
	ShowShortcuts bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:        StatusReady,
		Mode:          theme.ModeName(),
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetTheme switches the bar to a new theme.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
	s.Mode = theme.ModeName()
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar. Sections drop from the right when space runs out.
func (s *StatusBar) View() string {
	t := s.theme
	sep := t.ShortcutDesc.Render(" | ")

	status := s.Status.Icon() + " " + s.Status.String()
	if s.Spinner != "" && (s.Status == StatusProcessing || s.Status == StatusSearching) {
		status = s.Spinner + " " + s.Status.String()
	}
	left := []string{
		t.StatusMode.Render(strings.ToUpper(s.Mode)),
		t.LoadingText.Render(status),
	}
	if s.ActiveFilters > 0 {
		left = append(left, t.FilterBadge.Render(fmt.Sprintf("%d filters", s.ActiveFilters)))
	}
	if s.Filters != "" {
		left = append(left, t.ShortcutDesc.Render(s.Filters))
	}
	if s.Message != "" {
		left = append(left, t.ShortcutDesc.Render(s.Message))
	}

	var right []string
	if s.ShowShortcuts {
		right = append(right,
			shortcut(t, "Enter", "ask"),
			shortcut(t, "Tab", "accept"),
			shortcut(t, "C-t", "theme"),
			shortcut(t, "C-l", "clear"),
			shortcut(t, "/help", ""),
		)
	}
	if s.Backend != "" {
		right = append(right, t.ShortcutDesc.Render(s.Backend))
	}

	leftStr := strings.Join(left, sep)
	rightStr := strings.Join(right, " ")
	for len(right) > 0 && lipgloss.Width(leftStr)+lipgloss.Width(rightStr)+1 > s.Width {
		right = right[:len(right)-1]
		rightStr = strings.Join(right, " ")
	}
	if lipgloss.Width(leftStr) > s.Width {
		leftStr = util.TruncateWidth(stripStyles(left), s.Width)
	}

	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr)
	if gap < 1 {
		gap = 1
	}
	return t.StatusBar.Width(s.Width).Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}

func shortcut(t *styles.Theme, key, desc string) string {
	if desc == "" {
		return t.ShortcutKey.Render(key)
	}
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}

// stripStyles falls back to plain text when the styled sections do not fit.
func stripStyles(parts []string) string {
	plain := make([]string, len(parts))
	for i, p := range parts {
		plain[i] = stripANSI(p)
	}
	return strings.Join(plain, " | ")
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
