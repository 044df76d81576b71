// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/commands"
	"github.com/jeranaias/siemspeak/internal/export"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/session"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/theme"
)

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, handled := m.confirm.Update(msg); handled {
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// A blocking alert eats every key until dismissed.
	if m.session.Alert() != nil {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			m.session.DismissAlert()
		}
		return m, nil
	}

	if m.popupVisible() {
		switch {
		case key.Matches(msg, m.keys.Next):
			m.movePopup(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.movePopup(-1)
			return m, nil
		case key.Matches(msg, m.keys.Accept), key.Matches(msg, m.keys.Submit):
			m.acceptPopup()
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			m.closePopup()
			return m, nil
		}
	}

	// Any binding outside the popup and the text field dismisses the popup.
	if key.Matches(msg, m.keys.ToggleTheme, m.keys.Clear, m.keys.ToggleQuery, m.keys.PageUp, m.keys.PageDown) {
		m.closePopup()
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keys.Next):
		if cmd := m.suggest.FlushCmd(); cmd != nil {
			return m, cmd
		}

	case key.Matches(msg, m.keys.Cancel):
		if m.fullscreen != "" {
			m.fullscreen = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.toggleTheme("")
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.requestClear()
		return m, nil

	case key.Matches(msg, m.keys.ToggleQuery):
		m.showQuery = !m.showQuery
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.onInputChanged()
	return m, cmd
}

// onInputChanged routes a changed input to the slash completer or the
// suggestion controller.
func (m *Model) onInputChanged() {
	value := m.input.Value()
	if value == m.lastInput {
		return
	}
	m.lastInput = value

	if commands.IsCommand(value) {
		m.suggest.Cancel()
		m.cmdItems = m.complete.Complete(value)
		m.cmdActive = 0
		return
	}
	m.cmdItems = nil
	m.suggest.OnInput(value)
}

// =============================================================================
// SUGGESTION POPUP
// =============================================================================

func (m *Model) popupVisible() bool {
	return len(m.cmdItems) > 0 || m.suggest.Visible()
}

func (m *Model) popupItems() ([]string, int) {
	if len(m.cmdItems) > 0 {
		items := make([]string, len(m.cmdItems))
		for i, c := range m.cmdItems {
			items[i] = c.Display
			if c.Description != "" {
				items[i] += "  " + c.Description
			}
		}
		return items, m.cmdActive
	}
	return m.suggest.Items(), m.suggest.ActiveIndex()
}

func (m *Model) movePopup(delta int) {
	if n := len(m.cmdItems); n > 0 {
		m.cmdActive = (m.cmdActive + delta + n) % n
		return
	}
	if delta > 0 {
		m.suggest.Next()
	} else {
		m.suggest.Prev()
	}
}

func (m *Model) acceptPopup() {
	if len(m.cmdItems) > 0 {
		m.setInput(applyCompletion(m.input.Value(), m.cmdItems[m.cmdActive].Value))
		m.onInputChanged()
		return
	}
	if item, ok := m.suggest.Confirm(); ok {
		m.setInput(item)
		m.lastInput = item
	}
}

func (m *Model) closePopup() {
	m.cmdItems = nil
	m.suggest.Cancel()
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// applyCompletion replaces the token being typed with value.
func applyCompletion(input, value string) string {
	if strings.HasSuffix(input, " ") || input == "" {
		return input + value
	}
	idx := strings.LastIndex(input, " ")
	out := input[:idx+1] + value
	if !strings.HasSuffix(value, "=") {
		out += " "
	}
	return out
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return m, nil
	}
	m.closePopup()
	m.notice = ""

	if commands.IsCommand(text) {
		m.setInput("")
		m.lastInput = ""
		return m.runCommand(text)
	}

	cmd, err := m.session.Submit(text)
	switch {
	case errors.Is(err, session.ErrInFlight):
		m.notice = "still answering the previous question"
		return m, nil
	case err != nil:
		return m, nil
	}
	m.setInput("")
	m.lastInput = ""
	m.refresh(true)
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// runCommand decodes a slash command and dispatches on its action.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	inv, err := m.parser.Parse(text)
	if err != nil {
		m.session.History().AddErrorTurn(err.Error())
		m.refresh(true)
		return m, nil
	}
	m.logger.Debug("command", zap.String("action", inv.Action.String()))

	switch inv.Action {
	case commands.ActionFilter:
		cmd := m.search.Apply(inv.Filters)
		m.notice = "filters: " + m.filterSummary()
		return m, tea.Batch(cmd, m.spinner.Tick)

	case commands.ActionReset:
		cmd := m.search.Reset()
		m.notice = "filters reset"
		return m, tea.Batch(cmd, m.spinner.Tick)

	case commands.ActionClear:
		m.requestClear()
		return m, nil

	case commands.ActionTheme:
		m.toggleTheme(inv.Mode)
		return m, nil

	case commands.ActionExportImage:
		return m, m.writeFile("chart image", func() (string, error) {
			return export.ChartImage(m.viz, inv.ChartID, inv.Path)
		})

	case commands.ActionExportTable:
		return m, m.writeFile("chart table", func() (string, error) {
			return export.ChartTable(m.viz, inv.ChartID, inv.Path)
		})

	case commands.ActionFullscreen:
		if _, ok := m.viz.Get(inv.ChartID); !ok {
			m.session.History().AddErrorTurn("no chart " + inv.ChartID)
			m.refresh(true)
			return m, nil
		}
		m.fullscreen = inv.ChartID
		return m, nil

	case commands.ActionRefine:
		cmd, err := m.session.Refine(inv.Text)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.refresh(true)
		return m, tea.Batch(cmd, m.spinner.Tick)

	case commands.ActionQuery:
		m.showQuery = !m.showQuery
		m.refresh(true)
		return m, nil

	case commands.ActionSave:
		return m, m.saveTranscript(inv.Path)

	case commands.ActionHelp:
		help := m.registry.HelpText() + "\nKeys:\n  " + strings.Join(m.keys.HelpLines(), "\n  ")
		m.session.History().AddSystemTurn(help)
		m.refresh(true)
		return m, nil

	case commands.ActionQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) toggleTheme(mode string) {
	if mode == "" {
		m.theme.Toggle()
	} else if parsed, err := theme.ParseMode(mode); err == nil {
		m.theme.Set(parsed)
	}
	m.applyTheme(m.theme.Theme())
	m.notice = m.theme.Theme().ModeName() + " mode"
	m.refresh(false)
}

func (m *Model) requestClear() {
	if !m.session.RequestClear() {
		m.notice = "cannot clear while a question is in flight"
		return
	}
	m.confirm.Show(confirmClearID, "Clear conversation?",
		"Questions, answers and charts are removed from this session and the server.")
}

// writeFile runs fn off the Update loop and reports the result.
func (m *Model) writeFile(what string, fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		path, err := fn()
		return fileWrittenMsg{What: what, Path: path, Err: err}
	}
}

// saveTranscript stores the session and, with a path, also exports it.
func (m *Model) saveTranscript(path string) tea.Cmd {
	t := storage.TranscriptFromHistory(m.session.History())
	t.Backend = m.statusBar.Backend
	t.Filters = make(map[string]string)
	for k, v := range m.search.Filters() {
		t.Filters[string(k)] = filter.FormatValue(k, v)
	}
	store := m.transcripts
	rowCap := m.cfg.UI.RowCap

	return m.writeFile("transcript", func() (string, error) {
		if len(t.Turns) == 0 {
			return "", export.ErrEmptyTranscript
		}
		if path != "" {
			opts := export.DefaultOptions()
			opts.RowCap = rowCap
			return export.WriteTranscript(t, path, opts)
		}
		if store == nil {
			return "", errors.New("no transcript store configured")
		}
		id, err := store.Save(t)
		if err != nil {
			return "", err
		}
		return id, nil
	})
}
