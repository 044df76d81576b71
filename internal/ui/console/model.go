// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console is the interactive Bubble Tea front end of siemspeak.
package console

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/autocomplete"
	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/commands"
	"github.com/jeranaias/siemspeak/internal/config"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/search"
	"github.com/jeranaias/siemspeak/internal/session"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/theme"
	"github.com/jeranaias/siemspeak/internal/ui/components"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/viz"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps are the collaborators of the console. Only Backend is required.
type Deps struct {
	Backend api.Backend
	Config  *config.Config

	// Prefs persists the display mode. Nil keeps it in memory.
	Prefs theme.Store

	// Transcripts receives /save. Nil disables saving to the store.
	Transcripts *storage.TranscriptStore

	// BackendLabel is shown in the status bar, e.g. the backend URL.
	BackendLabel string

	// ConfigPath is watched for edits while the console runs. Empty disables
	// hot reload.
	ConfigPath string

	Logger *zap.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the console. Controllers and widgets are
// pointers, so copies of Model share them.
type Model struct {
	cfg         *config.Config
	logger      *zap.Logger
	transcripts *storage.TranscriptStore

	session  *session.Controller
	search   *search.Controller
	suggest  *autocomplete.Controller
	viz      *viz.Manager
	theme    *theme.Controller
	registry *commands.Registry
	parser   *commands.Parser
	complete *commands.Completer
	pane     *resultPane

	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	statusBar *components.StatusBar
	popup     *components.SuggestionPopup
	confirm   *components.ConfirmDialog
	keys      KeyMap

	// Slash command completions, computed locally.
	cmdItems  []commands.Completion
	cmdActive int

	lastInput  string
	fullscreen string
	showQuery  bool
	notice     string
	width      int
	height     int
	ready      bool
}

// New builds the console and its controllers.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	vizMgr := viz.NewManager(chart.NewTerminalSurface(),
		viz.WithSize(cfg.UI.ChartWidth, cfg.UI.ChartHeight),
		viz.WithLogger(logger.Named("viz")))

	themeOpts := []theme.Option{theme.WithLogger(logger.Named("theme"))}
	switch cfg.UI.Theme {
	case "dark":
		themeOpts = append(themeOpts, theme.WithAmbient(func() bool { return true }))
	case "light":
		themeOpts = append(themeOpts, theme.WithAmbient(func() bool { return false }))
	}
	themeCtl := theme.NewController(deps.Prefs, vizMgr, themeOpts...)
	th := themeCtl.Theme()
	// Charts drawn before the first toggle use the resolved mode.
	_ = vizMgr.RerenderAll(th.ChartPalette())

	pane := &resultPane{viz: vizMgr, logger: logger.Named("pane")}
	sess := session.New(deps.Backend, pane, vizMgr, session.Config{
		Timeout: cfg.Backend.Timeout(),
		Logger:  logger,
	})
	searchCtl := search.New(deps.Backend, filter.NewManager(),
		search.WithTimeout(cfg.Backend.Timeout()),
		search.WithLogger(logger.Named("search")))
	suggest := autocomplete.New(deps.Backend,
		autocomplete.WithDelay(cfg.UI.SuggestDebounce()),
		autocomplete.WithLogger(logger.Named("autocomplete")))

	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)
	completer.ChartsFn = vizMgr.IDs

	input := textinput.New()
	input.Placeholder = "Ask about security events, e.g. failed logins in the last 24 hours"
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		cfg:         cfg,
		logger:      logger,
		transcripts: deps.Transcripts,
		session:     sess,
		search:      searchCtl,
		suggest:     suggest,
		viz:         vizMgr,
		theme:       themeCtl,
		registry:    registry,
		parser:      commands.NewParser(registry),
		complete:    completer,
		pane:        pane,
		input:       input,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		statusBar:   components.NewStatusBar(th),
		popup:       components.NewSuggestionPopup(th),
		confirm:     components.NewConfirmDialog(th),
		keys:        DefaultKeyMap(),
		width:       80,
		height:      24,
	}
	m.statusBar.Backend = deps.BackendLabel
	m.applyTheme(th)
	return m
}

// SetSender wires the debounced suggestion fetch to the running program.
func (m Model) SetSender(send func(tea.Msg)) {
	m.suggest.SetSender(send)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init replays the persisted conversation and runs the default search.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.session.LoadHistory(),
		m.search.Reset(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case session.ResultMsg:
		m.session.HandleResult(msg)
		m.fullscreen = ""
		m.refresh(true)
		return m, nil

	case session.HistoryMsg:
		if err := m.session.HandleHistory(msg); err != nil {
			m.notice = "history unavailable"
		}
		m.refresh(true)
		return m, nil

	case session.ClearResultMsg:
		m.session.HandleClearResult(msg)
		if m.session.ClearOutcome() == session.ClearDone {
			m.fullscreen = ""
			m.notice = "conversation cleared"
		}
		m.refresh(true)
		return m, nil

	case search.ResultMsg:
		if m.search.HandleResult(msg) {
			if err := m.search.Err(); err != nil {
				m.session.History().AddErrorTurn("Search for " + filter.Summary(msg.Filters) + " failed: " + err.Error())
			}
			m.refresh(true)
		}
		return m, nil

	case autocomplete.FetchDueMsg:
		return m, m.suggest.Fetch(msg)

	case autocomplete.ResultMsg:
		m.suggest.HandleResult(msg)
		return m, nil

	case components.ConfirmResultMsg:
		if msg.ID == confirmClearID {
			cmd := m.session.ConfirmClear(msg.Accepted)
			if !msg.Accepted {
				m.notice = "clear cancelled"
			}
			return m, cmd
		}
		return m, nil

	case fileWrittenMsg:
		if msg.Err != nil {
			m.session.History().AddErrorTurn(msg.What + " failed: " + msg.Err.Error())
		} else {
			m.notice = msg.What + " written to " + msg.Path
		}
		m.refresh(true)
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// STATE HELPERS
// =============================================================================

func (m *Model) busy() bool {
	return m.session.Loading() || m.search.Pending()
}

func (m *Model) applyTheme(th *styles.Theme) {
	th.SetSize(m.width, m.height)
	m.statusBar.SetTheme(th)
	m.popup.SetTheme(th)
	m.confirm.SetTheme(th)
	m.input.PromptStyle = th.InputPrompt
	m.input.PlaceholderStyle = th.InputPlaceholder
	m.spinner.Style = th.Spinner
}

// applyConfig takes a reloaded config. An explicit theme switches the mode;
// layout settings apply on the next paint.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	if mode, err := theme.ParseMode(cfg.UI.Theme); err == nil && mode != m.theme.Mode() {
		m.theme.Set(mode)
		m.applyTheme(m.theme.Theme())
	}
	if err := m.viz.ResizeAll(m.chartSize()); err != nil {
		m.logger.Warn("resize charts after reload", zap.Error(err))
	}
	m.notice = "config reloaded"
	m.refresh(false)
}

func (m *Model) chartSize() (int, int) {
	w := m.cfg.UI.ChartWidth
	if m.width > 0 && w > m.width-6 {
		w = m.width - 6
	}
	if w < config.MinChartWidth {
		w = config.MinChartWidth
	}
	return w, m.cfg.UI.ChartHeight
}

// refresh repaints the scrollback. bottom scrolls to the latest content.
func (m *Model) refresh(bottom bool) {
	m.viewport.SetContent(m.renderConversation())
	if bottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.ready = true

	m.theme.Theme().SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)
	m.popup.SetWidth(min(msg.Width-2, 80))
	m.confirm.SetWidth(min(msg.Width-4, 56))
	m.input.Width = msg.Width - 6

	m.viewport.Width = msg.Width
	m.viewport.Height = m.bodyHeight()

	if err := m.viz.ResizeAll(m.chartSize()); err != nil {
		m.logger.Warn("resize charts", zap.Error(err))
	}
	m.refresh(true)
	return m, nil
}

// bodyHeight is what remains after header, input, status bar and the
// loading line.
func (m *Model) bodyHeight() int {
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	return h
}
