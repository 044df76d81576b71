// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversational state of the console.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyQuestion is returned for blank questions; nothing is dispatched.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrInFlight is returned when a question is already being answered.
	// The call is a no-op.
	ErrInFlight = errors.New("a question is already in flight")

	// ErrNoPayload is recorded when the collaborator returns neither a
	// payload nor an error.
	ErrNoPayload = errors.New("backend returned no response")

	// ErrCollaboratorPanic wraps a recovered panic from a collaborator.
	ErrCollaboratorPanic = errors.New("backend call panicked")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Collaborator is the part of the backend the session talks to.
type Collaborator interface {
	api.QuerySubmitter
	api.HistoryLoader
	api.HistoryClearer
}

// Sink receives what the session wants drawn.
type Sink interface {
	// Present renders a completed entry (result renderer and charts).
	Present(entry *model.ConversationEntry)
	// ShowEmpty restores the empty-state view.
	ShowEmpty()
}

// Destroyer tears down every live visualization.
type Destroyer interface {
	DestroyAll()
}

// =============================================================================
// MESSAGES
// =============================================================================

// ResultMsg carries the outcome of one submitted question.
type ResultMsg struct {
	Question string
	Payload  *model.ResponsePayload
	Err      error
	Elapsed  time.Duration
}

// HistoryMsg carries the persisted conversation loaded at start.
type HistoryMsg struct {
	Items []model.HistoryItem
	Err   error
}

// ClearResultMsg carries the outcome of a confirmed clear.
type ClearResultMsg struct {
	Err error
}

// =============================================================================
// CLEAR STATE
// =============================================================================

// ClearState tracks the confirmation gate in front of clear.
type ClearState int

const (
	ClearIdle ClearState = iota
	ClearConfirming
	ClearPending
)

// ClearOutcome is the result of the last clear attempt.
type ClearOutcome int

const (
	ClearNone ClearOutcome = iota
	ClearAborted
	ClearDone
	ClearFailed
)

// =============================================================================
// CONFIG
// =============================================================================

// Config holds configuration for the controller.
type Config struct {
	// Timeout bounds one collaborator call (default: 60 seconds)
	Timeout time.Duration

	// Logger receives session events (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 60 * time.Second,
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the conversational session controller. It is driven from a
// single goroutine (the Update loop or the REPL).
type Controller struct {
	collab  Collaborator
	sink    Sink
	viz     Destroyer
	timeout time.Duration
	logger  *zap.Logger

	history  *model.History
	inFlight bool
	loading  bool
	pending  string

	clearState   ClearState
	clearOutcome ClearOutcome
	alert        error
}

// New creates a controller. sink and viz may be nil.
func New(collab Collaborator, sink Sink, viz Destroyer, cfg ...Config) *Controller {
	c := DefaultConfig()
	if len(cfg) > 0 {
		if cfg[0].Timeout > 0 {
			c.Timeout = cfg[0].Timeout
		}
		c.Logger = cfg[0].Logger
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		collab:  collab,
		sink:    sink,
		viz:     viz,
		timeout: c.Timeout,
		logger:  logger.Named("session"),
		history: model.NewHistory(),
	}
}

// SetSink replaces the sink.
func (c *Controller) SetSink(s Sink) {
	c.sink = s
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit starts answering question. It appends the user turn, raises the
// in-flight flag and loading indicator, and returns the command that calls
// the collaborator. Blank questions and calls made while another question
// is in flight return an error and change nothing.
func (c *Controller) Submit(question string) (tea.Cmd, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if c.inFlight {
		c.logger.Debug("submit ignored, already in flight", zap.String("question", question))
		return nil, ErrInFlight
	}

	c.history.AddUserTurn(question)
	c.inFlight = true
	c.loading = true
	c.pending = question

	return c.dispatch(question), nil
}

// Refine re-asks the last answered question with extra detail appended.
// With nothing answered yet, detail is submitted on its own.
func (c *Controller) Refine(detail string) (tea.Cmd, error) {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return nil, ErrEmptyQuestion
	}
	if last := c.LastQuestion(); last != "" {
		return c.Submit(last + " " + detail)
	}
	return c.Submit(detail)
}

func (c *Controller) dispatch(question string) tea.Cmd {
	collab := c.collab
	timeout := c.timeout

	return func() (msg tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				msg = ResultMsg{
					Question: question,
					Err:      fmt.Errorf("%w: %v", ErrCollaboratorPanic, r),
					Elapsed:  time.Since(start),
				}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		payload, err := collab.Submit(ctx, question)
		if err == nil && payload == nil {
			err = ErrNoPayload
		}
		return ResultMsg{Question: question, Payload: payload, Err: err, Elapsed: time.Since(start)}
	}
}

// HandleResult records the outcome of a submitted question. Success appends
// an entry and hands it to the sink; failure appends an error-flagged turn.
// The in-flight flag and loading indicator are cleared on every path.
func (c *Controller) HandleResult(msg ResultMsg) {
	defer c.release()

	if !c.inFlight {
		c.logger.Warn("result arrived with nothing in flight", zap.String("question", msg.Question))
		return
	}

	if msg.Err == nil && msg.Payload == nil {
		msg.Err = ErrNoPayload
	}
	if msg.Err != nil {
		c.logger.Warn("question failed", zap.String("question", msg.Question), zap.Error(msg.Err))
		c.history.AddErrorTurn(Describe(msg.Err))
		return
	}

	payload := msg.Payload
	if payload.ProcessingTimeLabel == "" {
		payload.ProcessingTimeLabel = fmt.Sprintf("%.2fs", msg.Elapsed.Seconds())
	}

	turn := c.history.AddEntry(model.ConversationEntry{
		Question:    msg.Question,
		Response:    payload,
		SubmittedAt: time.Now(),
	})
	c.logger.Info("question answered",
		zap.String("question", msg.Question),
		zap.Int("total_events", payload.TotalEvents),
		zap.Duration("elapsed", msg.Elapsed))

	if c.sink != nil {
		c.sink.Present(turn.Entry)
	}
}

func (c *Controller) release() {
	c.inFlight = false
	c.loading = false
	c.pending = ""
}

// Describe turns a collaborator error into the text shown to the operator.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrTimeout):
		return "The backend took too long to answer. Try a narrower question."
	case api.TypeOf(err) == api.ErrTypeConnection:
		return "Cannot reach the backend: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// =============================================================================
// HISTORY REPLAY
// =============================================================================

// LoadHistory returns the command that fetches the persisted conversation.
func (c *Controller) LoadHistory() tea.Cmd {
	collab := c.collab
	timeout := c.timeout

	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = HistoryMsg{Err: fmt.Errorf("%w: %v", ErrCollaboratorPanic, r)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		items, err := collab.LoadHistory(ctx)
		return HistoryMsg{Items: items, Err: err}
	}
}

// HandleHistory replays persisted pairs into the history and presents the
// last payload. Failures are logged; the session simply starts empty.
func (c *Controller) HandleHistory(msg HistoryMsg) error {
	if msg.Err != nil {
		c.logger.Warn("history load failed", zap.Error(msg.Err))
		return msg.Err
	}

	var last *model.ConversationEntry
	for _, item := range msg.Items {
		if item.Question == "" || item.Results == nil {
			continue
		}
		c.history.AddUserTurn(item.Question)
		turn := c.history.AddEntry(model.ConversationEntry{
			Question:    item.Question,
			Response:    item.Results,
			SubmittedAt: item.Timestamp,
		})
		last = turn.Entry
	}

	if last != nil && c.sink != nil {
		c.sink.Present(last)
	}
	c.logger.Debug("history replayed", zap.Int("entries", len(c.history.Entries())))
	return nil
}

// =============================================================================
// CLEAR
// =============================================================================

// RequestClear opens the confirmation gate. Returns false if a question is
// in flight or a clear is already underway.
func (c *Controller) RequestClear() bool {
	if c.inFlight || c.clearState != ClearIdle {
		return false
	}
	c.clearState = ClearConfirming
	return true
}

// ConfirmClear answers the confirmation. Declining is a normal abort.
// Accepting returns the command that clears the server-held history.
func (c *Controller) ConfirmClear(accept bool) tea.Cmd {
	if c.clearState != ClearConfirming {
		return nil
	}
	if !accept {
		c.clearState = ClearIdle
		c.clearOutcome = ClearAborted
		return nil
	}

	c.clearState = ClearPending
	collab := c.collab
	timeout := c.timeout

	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = ClearResultMsg{Err: fmt.Errorf("%w: %v", ErrCollaboratorPanic, r)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ClearResultMsg{Err: collab.ClearHistory(ctx)}
	}
}

// HandleClearResult applies the clear. On success the history is emptied,
// every visualization is destroyed and the empty state is shown. On failure
// a blocking alert is raised and the history is kept.
func (c *Controller) HandleClearResult(msg ClearResultMsg) {
	c.clearState = ClearIdle

	if msg.Err != nil {
		c.clearOutcome = ClearFailed
		c.alert = fmt.Errorf("clear conversation: %w", msg.Err)
		c.logger.Error("clear failed", zap.Error(msg.Err))
		return
	}

	c.history.Clear()
	if c.viz != nil {
		c.viz.DestroyAll()
	}
	if c.sink != nil {
		c.sink.ShowEmpty()
	}
	c.clearOutcome = ClearDone
	c.logger.Info("conversation cleared")
}

// =============================================================================
// ACCESSORS
// =============================================================================

// History returns the underlying history.
func (c *Controller) History() *model.History { return c.history }

// Turns returns the visible turns.
func (c *Controller) Turns() []*model.Turn { return c.history.Turns() }

// Entries returns the completed entries.
func (c *Controller) Entries() []*model.ConversationEntry { return c.history.Entries() }

// InFlight reports whether a question is being answered.
func (c *Controller) InFlight() bool { return c.inFlight }

// Loading reports whether the processing indicator should be shown.
func (c *Controller) Loading() bool { return c.loading }

// Pending returns the question in flight, or "".
func (c *Controller) Pending() string { return c.pending }

// LastQuestion returns the most recent answered question, or "".
func (c *Controller) LastQuestion() string {
	if e := c.history.LastEntry(); e != nil {
		return e.Question
	}
	return ""
}

// LastPayload returns the most recent response, or nil.
func (c *Controller) LastPayload() *model.ResponsePayload {
	if e := c.history.LastEntry(); e != nil {
		return e.Response
	}
	return nil
}

// ClearState returns the confirmation gate state.
func (c *Controller) ClearState() ClearState { return c.clearState }

// ClearOutcome returns the result of the last clear attempt.
func (c *Controller) ClearOutcome() ClearOutcome { return c.clearOutcome }

// Alert returns the pending blocking alert, or nil.
func (c *Controller) Alert() error { return c.alert }

// DismissAlert clears the blocking alert.
func (c *Controller) DismissAlert() { c.alert = nil }
