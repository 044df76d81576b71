// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siemspeak/internal/ui/styles"
)

// =============================================================================
// CONFIRM DIALOG
// =============================================================================

// ConfirmResultMsg reports the answer of a confirm dialog.
type ConfirmResultMsg struct {
	ID       string
	Accepted bool
}

// ConfirmDialog is a modal yes/no question. "No" is selected by default.
type ConfirmDialog struct {
	id      string
	title   string
	message string
	yes     bool
	visible bool
	width   int
	theme   *styles.Theme
}

// NewConfirmDialog creates a hidden dialog.
func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{theme: theme, width: 50}
}

// SetTheme switches the dialog to a new theme.
func (d *ConfirmDialog) SetTheme(theme *styles.Theme) { d.theme = theme }

// SetWidth sets the dialog width.
func (d *ConfirmDialog) SetWidth(width int) { d.width = width }

// Show opens the dialog. id is echoed in the result message.
func (d *ConfirmDialog) Show(id, title, message string) {
	d.id = id
	d.title = title
	d.message = message
	d.yes = false
	d.visible = true
}

// Hide closes the dialog without answering.
func (d *ConfirmDialog) Hide() { d.visible = false }

// IsVisible reports whether the dialog is open.
func (d *ConfirmDialog) IsVisible() bool { return d.visible }

// Update handles keys while visible. The bool reports whether the key was
// consumed.
func (d *ConfirmDialog) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !d.visible {
		return nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}

	switch key.String() {
	case "left", "right", "tab", "shift+tab", "h", "l":
		d.yes = !d.yes
		return nil, true
	case "y", "Y":
		return d.answer(true), true
	case "n", "N", "esc":
		return d.answer(false), true
	case "enter", " ":
		return d.answer(d.yes), true
	}
	// Modal: swallow everything else.
	return nil, true
}

func (d *ConfirmDialog) answer(accepted bool) tea.Cmd {
	id := d.id
	d.visible = false
	return func() tea.Msg { return ConfirmResultMsg{ID: id, Accepted: accepted} }
}

// View renders the dialog, or "" when hidden.
func (d *ConfirmDialog) View() string {
	if !d.visible {
		return ""
	}
	t := d.theme
	yes, no := t.ConfirmButton, t.ConfirmActive
	if d.yes {
		yes, no = t.ConfirmActive, t.ConfirmButton
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yes.Render("Yes"), "  ", no.Render("No"))

	body := []string{t.ConfirmTitle.Render(d.title)}
	if d.message != "" {
		body = append(body, "", d.message)
	}
	body = append(body, "", buttons, "", t.HelpDesc.Render("y/n, arrows, Enter"))
	return t.ConfirmBox.Width(d.width).Render(strings.Join(body, "\n"))
}

// =============================================================================
// ALERT
// =============================================================================

// Alert renders a blocking error box.
func Alert(theme *styles.Theme, title string, err error, width int) string {
	if err == nil {
		return ""
	}
	body := strings.Join([]string{
		theme.AlertTitle.Render(styles.StatusIndicators.Error + " " + title),
		"",
		err.Error(),
		"",
		theme.HelpDesc.Render("Enter or Esc to dismiss"),
	}, "\n")
	return theme.AlertBox.Width(width).Render(body)
}
