// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package autocomplete manages the suggestion popup layered over the
// question input.
//
// The controller is a two-state machine, Idle and Suggesting. Typing more
// than MinChars characters schedules a debounced fetch; when the debouncer
// fires it sends a FetchDueMsg into the program, the console hands that to
// Fetch, and the resulting ResultMsg comes back to HandleResult. Every
// scheduled fetch carries a sequence number and only the latest one is ever
// applied, so a slow response can never overwrite a newer one.
package autocomplete

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultDelay is the debounce window.
	DefaultDelay = 300 * time.Millisecond

	// MinChars is the trimmed input length that must be exceeded before
	// suggestions are fetched.
	MinChars = 2

	// DefaultFetchTimeout bounds one suggestion request.
	DefaultFetchTimeout = 5 * time.Second
)

// State is the controller state.
type State int

const (
	StateIdle State = iota
	StateSuggesting
)

// String returns the state name.
func (s State) String() string {
	if s == StateSuggesting {
		return "suggesting"
	}
	return "idle"
}

// =============================================================================
// MESSAGES
// =============================================================================

// FetchDueMsg is sent when the debounce window for Query has elapsed.
type FetchDueMsg struct {
	Seq   uint64
	Query string
}

// ResultMsg carries the outcome of one suggestion fetch.
type ResultMsg struct {
	Seq   uint64
	Query string
	Items []string
	Err   error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the suggestion sub-state. All methods except the
// debouncer callback run on the Update loop.
type Controller struct {
	suggester api.Suggester
	debouncer *util.Debouncer
	send      func(tea.Msg)
	timeout   time.Duration
	logger    *zap.Logger

	seq    uint64
	state  State
	items  []string
	active int
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.debouncer = util.NewDebouncer(d) }
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger. Fetch failures are logged, never surfaced.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSender sets the function the debouncer uses to deliver FetchDueMsg,
// typically (*tea.Program).Send.
func WithSender(send func(tea.Msg)) Option {
	return func(c *Controller) { c.send = send }
}

// New creates an idle controller.
func New(s api.Suggester, opts ...Option) *Controller {
	c := &Controller{
		suggester: s,
		debouncer: util.NewDebouncer(DefaultDelay),
		timeout:   DefaultFetchTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSender sets the delivery function after construction, once the
// program exists.
func (c *Controller) SetSender(send func(tea.Msg)) {
	c.send = send
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// OnInput reacts to a change of the input text. Long enough input schedules
// a fetch, superseding any pending one; short input cancels and goes Idle.
func (c *Controller) OnInput(text string) {
	query := strings.TrimSpace(text)
	c.seq++

	if len([]rune(query)) <= MinChars {
		c.debouncer.Cancel()
		c.toIdle()
		return
	}

	seq := c.seq
	send := c.send
	if send == nil {
		return
	}
	c.debouncer.Schedule(func() {
		send(FetchDueMsg{Seq: seq, Query: query})
	})
}

// Fetch returns the command that performs the fetch for msg, or nil if a
// newer input has superseded it.
func (c *Controller) Fetch(msg FetchDueMsg) tea.Cmd {
	if msg.Seq != c.seq || c.suggester == nil {
		return nil
	}
	suggester := c.suggester
	timeout := c.timeout

	return func() (result tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				result = ResultMsg{Seq: msg.Seq, Query: msg.Query, Err: fmt.Errorf("suggest panicked: %v", r)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		items, err := suggester.Suggest(ctx, msg.Query)
		return ResultMsg{Seq: msg.Seq, Query: msg.Query, Items: items, Err: err}
	}
}

// HandleResult applies a fetch result. Returns false when the result was
// stale and discarded.
func (c *Controller) HandleResult(msg ResultMsg) bool {
	if msg.Seq != c.seq {
		c.logger.Debug("discarding stale suggestions",
			zap.Uint64("seq", msg.Seq),
			zap.Uint64("latest", c.seq))
		return false
	}

	if msg.Err != nil {
		c.logger.Warn("suggestion fetch failed", zap.String("query", msg.Query), zap.Error(msg.Err))
		c.toIdle()
		return true
	}

	items := compact(msg.Items)
	if len(items) == 0 {
		c.toIdle()
		return true
	}

	c.state = StateSuggesting
	c.items = items
	c.active = 0
	return true
}

// Next moves the cursor down, wrapping around.
func (c *Controller) Next() {
	if c.state != StateSuggesting {
		return
	}
	c.active = (c.active + 1) % len(c.items)
}

// Prev moves the cursor up, wrapping around.
func (c *Controller) Prev() {
	if c.state != StateSuggesting {
		return
	}
	n := len(c.items)
	c.active = (c.active - 1 + n) % n
}

// Confirm commits the active item and returns to Idle. In Idle it returns
// ok=false so the caller falls through to normal submission.
func (c *Controller) Confirm() (string, bool) {
	if c.state != StateSuggesting {
		return "", false
	}
	item := c.items[c.active]
	c.Cancel()
	return item, true
}

// Cancel forces Idle and drops any pending or in-flight fetch.
func (c *Controller) Cancel() {
	c.seq++
	c.debouncer.Cancel()
	c.toIdle()
}

// FlushPending delivers a pending debounced fetch immediately.
func (c *Controller) FlushPending() bool {
	return c.debouncer.Flush()
}

// FlushCmd returns a command that delivers a pending debounced fetch
// without waiting for the delay, or nil when nothing is pending. The
// delivery goes through the sender, so it runs off the update loop.
func (c *Controller) FlushCmd() tea.Cmd {
	if !c.debouncer.Pending() {
		return nil
	}
	return func() tea.Msg {
		c.FlushPending()
		return nil
	}
}

func (c *Controller) toIdle() {
	c.state = StateIdle
	c.items = nil
	c.active = 0
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Visible reports whether the popup should be drawn.
func (c *Controller) Visible() bool { return c.state == StateSuggesting }

// Items returns a copy of the suggestions.
func (c *Controller) Items() []string {
	return append([]string(nil), c.items...)
}

// ActiveIndex returns the cursor position.
func (c *Controller) ActiveIndex() int { return c.active }

// Active returns the highlighted suggestion, or "".
func (c *Controller) Active() string {
	if c.state != StateSuggesting {
		return ""
	}
	return c.items[c.active]
}

// Seq returns the latest issued sequence number.
func (c *Controller) Seq() uint64 { return c.seq }

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}
