// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/autocomplete"
	"github.com/jeranaias/siemspeak/internal/config"
	"github.com/jeranaias/siemspeak/internal/demo"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/search"
	"github.com/jeranaias/siemspeak/internal/session"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/theme"
	"github.com/jeranaias/siemspeak/internal/ui/components"
)

// =============================================================================
// HARNESS
// =============================================================================

func newTestModel(t *testing.T) Model {
	t.Helper()
	return newTestModelWith(t, demo.New(demo.Config{Seed: 7}))
}

func newTestModelWith(t *testing.T, backend api.Backend) Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	cfg.Backend.Demo = true

	store, err := storage.NewTranscriptStoreWithDir(t.TempDir())
	require.NoError(t, err)

	m := New(Deps{
		Backend:     backend,
		Config:      cfg,
		Transcripts: store,
		Logger:      zaptest.NewLogger(t),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// drain runs cmd and feeds the console messages it yields back into the
// model. Timer driven messages (cursor blink, spinner) are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case session.ResultMsg, session.HistoryMsg, session.ClearResultMsg,
			search.ResultMsg, autocomplete.ResultMsg,
			components.ConfirmResultMsg, fileWrittenMsg:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return drain(t, next.(Model), cmd)
}

func ask(t *testing.T, m Model, question string) Model {
	t.Helper()
	m = typeText(m, question)
	m.closePopup()
	return press(t, m, tea.KeyEnter)
}

func run(t *testing.T, m Model, command string) Model {
	t.Helper()
	next, cmd := m.submit(command)
	return drain(t, next.(Model), cmd)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestInit_RunsDefaultSearch(t *testing.T) {
	m := newTestModel(t)
	m = drain(t, m, m.Init())

	require.NotNil(t, m.search.Result())
	assert.False(t, m.search.Pending())
	assert.Contains(t, m.renderConversation(), "Filtered search")
	assert.Contains(t, m.renderConversation(), "Ask a question")
}

func TestSubmit_RendersAnswerAndCharts(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins in the last 24 hours")

	assert.False(t, m.session.Loading())
	require.Len(t, m.session.Entries(), 1)
	assert.NotNil(t, m.pane.entry)
	assert.NotEmpty(t, m.viz.IDs())
	assert.Empty(t, m.input.Value())

	out := m.renderConversation()
	assert.Contains(t, out, "failed logins in the last 24 hours")
	assert.Contains(t, out, m.session.Entries()[0].Response.Summary)
}

func TestSubmit_BlankInputIgnored(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyEnter)
	assert.Empty(t, m.session.Turns())
}

func TestSubmit_InFlightShowsNotice(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.submit("malware detections from yesterday")
	m = next.(Model)
	require.True(t, m.session.InFlight())

	next, cmd := m.submit("another question")
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "still answering")
	assert.Len(t, m.session.Turns(), 1)
}

func TestView_ShowsLoadingLine(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.submit("vpn connections from foreign countries")
	m = next.(Model)
	assert.Contains(t, m.View(), "Analyzing: vpn connections")
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestCommand_FilterAndReset(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, "/filter severity=high")

	assert.Equal(t, 1, m.search.ActiveCount())
	assert.Contains(t, m.notice, "severity")
	assert.NotNil(t, m.search.Result())

	m = run(t, m, "/reset")
	assert.Equal(t, filter.Describe(filter.Default()), m.search.ActiveCount())
	assert.Equal(t, "filters reset", m.notice)
}

type flakySearch struct {
	api.Backend
	fail bool
}

func (f *flakySearch) Search(ctx context.Context, set filter.Set) (*model.SearchResult, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	return f.Backend.Search(ctx, set)
}

func TestCommand_FailedFilterShowsError(t *testing.T) {
	backend := &flakySearch{Backend: demo.New(demo.Config{Seed: 7})}
	m := newTestModelWith(t, backend)
	m = run(t, m, "/filter severity=low")
	require.NotNil(t, m.search.Result())
	total := m.search.Result().TotalCount

	backend.fail = true
	m = run(t, m, "/filter severity=critical")

	last := m.session.History().LastTurn()
	require.NotNil(t, last)
	assert.Equal(t, model.RoleError, last.Role)
	assert.Contains(t, last.Content, "boom")

	assert.Equal(t, total, m.search.Result().TotalCount)
	view := m.renderConversation()
	assert.Contains(t, view, "Search failed: boom")
	assert.Contains(t, view, "Filtered search")
	assert.Contains(t, filter.Summary(m.search.Applied()), "low")
}

func TestCommand_UnknownAddsErrorTurn(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, "/bogus")

	last := m.session.History().LastTurn()
	require.NotNil(t, last)
	assert.Equal(t, model.RoleError, last.Role)
}

func TestCommand_Help(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, "/help")

	last := m.session.History().LastTurn()
	require.NotNil(t, last)
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "/filter")
	assert.Contains(t, last.Content, "C-t")
}

func TestCommand_Refine(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins")
	m = run(t, m, "/refine for admin")

	entries := m.session.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "failed logins for admin", entries[1].Question)
}

func TestCommand_FullscreenAndEscape(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins in the last 24 hours")
	ids := m.viz.IDs()
	require.NotEmpty(t, ids)

	m = run(t, m, "/fullscreen "+ids[0])
	assert.Equal(t, ids[0], m.fullscreen)
	assert.Contains(t, m.View(), "Esc to leave full screen")

	m = press(t, m, tea.KeyEsc)
	assert.Empty(t, m.fullscreen)

	m = run(t, m, "/fullscreen chart-nope")
	assert.Empty(t, m.fullscreen)
	assert.Equal(t, model.RoleError, m.session.History().LastTurn().Role)
}

func TestCommand_ExportTable(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins in the last 24 hours")
	ids := m.viz.IDs()
	require.NotEmpty(t, ids)

	path := filepath.Join(t.TempDir(), "out.csv")
	m = run(t, m, "/export table "+ids[0]+" "+path)

	assert.Contains(t, m.notice, "chart table written")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCommand_SaveToStoreAndFile(t *testing.T) {
	m := newTestModel(t)

	m = run(t, m, "/save")
	assert.Equal(t, model.RoleError, m.session.History().LastTurn().Role)

	m = ask(t, m, "malware detections from yesterday")
	m = run(t, m, "/save")
	assert.Contains(t, m.notice, "transcript written")

	list, err := m.transcripts.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	path := filepath.Join(t.TempDir(), "session.md")
	m = run(t, m, "/save "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "malware detections from yesterday")
}

// =============================================================================
// CLEAR AND THEME
// =============================================================================

func TestClear_ConfirmAccepted(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins")
	require.NotEmpty(t, m.viz.IDs())

	m = run(t, m, "/clear")
	require.True(t, m.confirm.IsVisible())
	assert.Contains(t, m.View(), "Clear conversation?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = drain(t, next.(Model), cmd)

	assert.False(t, m.confirm.IsVisible())
	assert.Empty(t, m.session.Turns())
	assert.Empty(t, m.viz.IDs())
	assert.Equal(t, "conversation cleared", m.notice)
}

func TestClear_ConfirmDeclined(t *testing.T) {
	m := newTestModel(t)
	m = ask(t, m, "failed logins")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(Model)
	require.True(t, m.confirm.IsVisible())

	m = press(t, m, tea.KeyEsc)
	assert.False(t, m.confirm.IsVisible())
	assert.Len(t, m.session.Entries(), 1)
	assert.Equal(t, "clear cancelled", m.notice)
}

func TestTheme_ToggleAndExplicit(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, theme.Dark, m.theme.Mode())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)
	assert.Equal(t, theme.Light, m.theme.Mode())
	assert.Equal(t, "light mode", m.notice)

	m = run(t, m, "/theme dark")
	assert.Equal(t, theme.Dark, m.theme.Mode())

	m = run(t, m, "/theme dark")
	assert.Equal(t, theme.Dark, m.theme.Mode())
}

func TestConfigReload_SwitchesTheme(t *testing.T) {
	m := newTestModel(t)
	cfg := config.Default()
	cfg.UI.Theme = "light"

	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)
	assert.Equal(t, theme.Light, m.theme.Mode())
	assert.Equal(t, "config reloaded", m.notice)
}

// =============================================================================
// COMPLETION
// =============================================================================

func TestSlashCompletion_PopupAndAccept(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "/the")
	require.True(t, m.popupVisible())

	items, active := m.popupItems()
	require.NotEmpty(t, items)
	assert.Equal(t, 0, active)
	assert.True(t, strings.HasPrefix(items[0], "/theme"))

	m = press(t, m, tea.KeyTab)
	assert.Equal(t, "/theme ", m.input.Value())
}

func TestSuggestions_FetchThroughSender(t *testing.T) {
	m := newTestModel(t)
	msgs := make(chan tea.Msg, 4)
	m.SetSender(func(msg tea.Msg) { msgs <- msg })

	m = typeText(m, "failed")

	var due autocomplete.FetchDueMsg
	select {
	case msg := <-msgs:
		due = msg.(autocomplete.FetchDueMsg)
	case <-time.After(2 * time.Second):
		t.Fatal("no fetch scheduled")
	}

	next, cmd := m.Update(due)
	m = drain(t, next.(Model), cmd)
	require.True(t, m.popupVisible())
	items, _ := m.popupItems()
	assert.Contains(t, strings.ToLower(items[0]), "failed")

	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, items[0], m.input.Value())
	assert.Empty(t, m.session.Turns())
}

// openSuggestions types text and delivers the debounced fetch so the
// suggestion popup is showing.
func openSuggestions(t *testing.T, m Model, msgs chan tea.Msg, text string) Model {
	t.Helper()
	m = typeText(m, text)
	var due autocomplete.FetchDueMsg
	select {
	case msg := <-msgs:
		due = msg.(autocomplete.FetchDueMsg)
	case <-time.After(2 * time.Second):
		t.Fatal("no fetch scheduled")
	}
	next, cmd := m.Update(due)
	m = drain(t, next.(Model), cmd)
	require.True(t, m.popupVisible())
	return m
}

func TestGlobalKeys_ClosePopup(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlT, tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlG, tea.KeyCtrlL} {
		t.Run(tea.KeyMsg{Type: k}.String(), func(t *testing.T) {
			m := newTestModel(t)
			msgs := make(chan tea.Msg, 4)
			m.SetSender(func(msg tea.Msg) { msgs <- msg })
			m = openSuggestions(t, m, msgs, "failed")

			m = press(t, m, k)
			assert.Equal(t, autocomplete.StateIdle, m.suggest.State())
			assert.False(t, m.popupVisible())
			assert.Equal(t, "failed", m.input.Value())
		})
	}
}

func TestGlobalKeys_CloseSlashPopup(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "/the")
	require.True(t, m.popupVisible())

	m = press(t, m, tea.KeyCtrlG)
	assert.False(t, m.popupVisible())
	assert.True(t, m.showQuery)
}

func TestNextKey_FlushesPendingFetch(t *testing.T) {
	m := newTestModel(t)
	msgs := make(chan tea.Msg, 4)
	m.SetSender(func(msg tea.Msg) { msgs <- msg })

	m = typeText(m, "vpn access")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	select {
	case msg := <-msgs:
		assert.Equal(t, "vpn access", msg.(autocomplete.FetchDueMsg).Query)
	default:
		t.Fatal("pending fetch not delivered")
	}
	assert.Nil(t, m.suggest.FlushCmd())
}

func TestApplyCompletion(t *testing.T) {
	tests := []struct {
		input, value, want string
	}{
		{"", "/theme", "/theme"},
		{"/the", "/theme", "/theme "},
		{"/theme ", "dark", "/theme dark"},
		{"/filter sev", "severity=", "/filter severity="},
		{"/export table chart-t", "chart-timeline", "/export table chart-timeline "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, applyCompletion(tt.input, tt.value), tt.input)
	}
}
