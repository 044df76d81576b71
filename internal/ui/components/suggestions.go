// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/util"
)

// MaxVisibleSuggestions is the popup height before it scrolls.
const MaxVisibleSuggestions = 8

// SuggestionPopup draws a list with one highlighted row. It holds no
// selection state of its own; the autocomplete controller owns that.
type SuggestionPopup struct {
	theme *styles.Theme
	width int
}

// NewSuggestionPopup creates a popup.
func NewSuggestionPopup(theme *styles.Theme) *SuggestionPopup {
	return &SuggestionPopup{theme: theme, width: 60}
}

// SetTheme switches the popup to a new theme.
func (p *SuggestionPopup) SetTheme(theme *styles.Theme) { p.theme = theme }

// SetWidth sets the popup width including its border.
func (p *SuggestionPopup) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	p.width = width
}

// View renders items with active highlighted. Empty items render nothing.
func (p *SuggestionPopup) View(items []string, active int) string {
	if len(items) == 0 {
		return ""
	}

	start := 0
	if active >= MaxVisibleSuggestions {
		start = active - MaxVisibleSuggestions + 1
	}
	end := start + MaxVisibleSuggestions
	if end > len(items) {
		end = len(items)
	}

	inner := p.width - 4
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := util.PadRight(items[i], inner)
		if i == active {
			lines = append(lines, p.theme.SuggestionSelected.Render("> "+text))
		} else {
			lines = append(lines, p.theme.SuggestionItem.Render("  "+text))
		}
	}
	return p.theme.SuggestionPopup.Render(strings.Join(lines, "\n"))
}
