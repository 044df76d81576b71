// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search runs filter-driven event searches.
//
// The filter surface has no in-flight guard: applying filters while a search
// is still running dispatches another one. Each dispatch carries a sequence
// number and only the result of the latest dispatch is applied, so a slow
// earlier search can never overwrite a newer one.
package search

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// DefaultTimeout bounds one search request.
const DefaultTimeout = 30 * time.Second

// ResultMsg carries the outcome of one search.
type ResultMsg struct {
	Seq     uint64
	Filters filter.Set
	Result  *model.SearchResult
	Err     error
	Elapsed time.Duration
}

// Controller owns the filter set and the latest search result.
type Controller struct {
	searcher api.Searcher
	filters  *filter.Manager
	timeout  time.Duration
	logger   *zap.Logger

	seq      uint64
	resolved uint64
	result   *model.SearchResult
	applied  filter.Set
	err      error
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout sets the per-search timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller searching through s with filters from fm. A nil
// fm gets a default manager.
func New(s api.Searcher, fm *filter.Manager, opts ...Option) *Controller {
	if fm == nil {
		fm = filter.NewManager()
	}
	c := &Controller{
		searcher: s,
		filters:  fm,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply rebuilds the filter set from raw widget values and dispatches a
// search for it.
func (c *Controller) Apply(raw filter.RawInputs) tea.Cmd {
	return c.Run(c.filters.SetFromInputs(raw))
}

// Reset restores the default filters and dispatches a search for them.
func (c *Controller) Reset() tea.Cmd {
	return c.Run(c.filters.Reset())
}

// Run dispatches a search for set.
func (c *Controller) Run(set filter.Set) tea.Cmd {
	c.seq++
	seq := c.seq
	searcher := c.searcher
	timeout := c.timeout
	set = set.Clone()

	c.logger.Debug("search dispatched", zap.Uint64("seq", seq), zap.String("filters", filter.Summary(set)))

	return func() (result tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				result = ResultMsg{Seq: seq, Filters: set, Err: fmt.Errorf("search panicked: %v", r), Elapsed: time.Since(start)}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := searcher.Search(ctx, set)
		return ResultMsg{Seq: seq, Filters: set, Result: res, Err: err, Elapsed: time.Since(start)}
	}
}

// HandleResult applies msg if it answers the latest dispatch. Returns false
// when the result was stale and discarded.
func (c *Controller) HandleResult(msg ResultMsg) bool {
	if msg.Seq != c.seq {
		c.logger.Debug("discarding stale search result",
			zap.Uint64("seq", msg.Seq),
			zap.Uint64("latest", c.seq))
		return false
	}
	c.resolved = msg.Seq

	if msg.Err == nil && msg.Result == nil {
		msg.Err = fmt.Errorf("search returned no result")
	}
	if msg.Err != nil {
		c.err = msg.Err
		c.logger.Warn("search failed", zap.Error(msg.Err))
		return true
	}

	c.err = nil
	c.result = msg.Result
	c.applied = msg.Filters
	c.logger.Debug("search applied",
		zap.Uint64("seq", msg.Seq),
		zap.Int("total", msg.Result.TotalCount),
		zap.Duration("elapsed", msg.Elapsed))
	return true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Pending reports whether the latest dispatch has not resolved yet.
func (c *Controller) Pending() bool { return c.seq != c.resolved }

// Result returns the last applied result, or nil.
func (c *Controller) Result() *model.SearchResult { return c.result }

// Err returns the error of the latest resolved search, or nil.
func (c *Controller) Err() error { return c.err }

// Applied returns the filter set of the result returned by Result. A failed
// search leaves it unchanged.
func (c *Controller) Applied() filter.Set { return c.applied.Clone() }

// Filters returns the current filter set.
func (c *Controller) Filters() filter.Set { return c.filters.Current() }

// ActiveCount returns the number of active filters for the badge.
func (c *Controller) ActiveCount() int { return filter.Describe(c.filters.Current()) }

// Seq returns the latest dispatched sequence number.
func (c *Controller) Seq() uint64 { return c.seq }
