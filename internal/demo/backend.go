// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("empty question")

// MaxSuggestions caps one suggestion response.
const MaxSuggestions = 8

// generationBudget bounds how many candidate events are drawn per matching
// event requested.
const generationBudget = 20

// suggestionCatalog is the question list suggestions are drawn from.
var suggestionCatalog = []string{
	"Show failed logins in the last 24 hours",
	"Show failed logins yesterday",
	"Show successful logins today",
	"Show brute force attempts in the last 7 days",
	"Show malware alerts in the last 24 hours",
	"Show malware detections in the last 2 weeks",
	"Show VPN connections in the last 12 hours",
	"Show remote logins from foreign countries",
	"Show data exfiltration in the last 30 days",
	"Show port scans in the last 6 hours",
	"Show privilege escalation attempts this week",
	"Show firewall blocks in the last 48 hours",
	"Show high risk events in the last 24 hours",
	"Show authentication failures for admin",
	"Show threats from 182.162.0.0",
}

// ExampleQuestions returns a few catalog questions for welcome screens.
func ExampleQuestions() []string {
	return []string{suggestionCatalog[0], suggestionCatalog[4], suggestionCatalog[7]}
}

// Config configures a Backend.
type Config struct {
	// Seed makes generation reproducible.
	Seed uint64
	// Now overrides the clock.
	Now func() time.Time
	// Latency simulates backend processing time.
	Latency time.Duration
	// Intel enriches insights. Nil uses the bundled snapshot.
	Intel  *ThreatIntel
	Logger *zap.Logger
}

// Answer is the full result of one question.
type Answer struct {
	Payload  *model.ResponsePayload
	Entities Entities
	Query    json.RawMessage
}

// Backend answers console requests from synthetic data. It is safe for
// concurrent use.
type Backend struct {
	gen     *Generator
	now     func() time.Time
	latency time.Duration
	intel   *ThreatIntel
	logger  *zap.Logger

	mu      sync.Mutex
	history []model.HistoryItem
}

var _ api.Backend = (*Backend)(nil)

// New creates a backend.
func New(cfg Config) *Backend {
	b := &Backend{
		gen:     NewGenerator(cfg.Seed),
		now:     cfg.Now,
		latency: cfg.Latency,
		intel:   cfg.Intel,
		logger:  cfg.Logger,
	}
	if b.intel == nil {
		b.intel = bundledIntel
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Ask answers a question and records it in the history.
func (b *Backend) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	start := time.Now()
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	entities := ParseQuestion(question)
	now := b.now().UTC()
	query := EncodeQuery(BuildQuery(entities, now))

	window := entities.Window
	if window == nil {
		window = &Window{Unit: UnitHours, Value: 24}
	}
	from, to := window.Bounds(now)

	events := b.generate(fromEntities(entities), from, to)
	payload := &model.ResponsePayload{
		Summary:        Summary(len(events), entities.Window),
		TotalEvents:    len(events),
		Insights:       InsightsWith(events, b.intel),
		ChartData:      Charts(events, from, to),
		TableData:      Sample(events),
		GeneratedQuery: query,
	}
	payload.SampledEvents = len(payload.TableData)
	payload.ProcessingTimeLabel = fmt.Sprintf("%.2fs", time.Since(start).Seconds())

	b.mu.Lock()
	b.history = append(b.history, model.HistoryItem{Question: question, Results: payload, Timestamp: now})
	b.mu.Unlock()

	b.logger.Debug("question answered",
		zap.String("question", question),
		zap.Int("total", payload.TotalEvents),
		zap.Duration("elapsed", time.Since(start)))
	return &Answer{Payload: payload, Entities: entities, Query: query}, nil
}

// Submit answers a question.
func (b *Backend) Submit(ctx context.Context, question string) (*model.ResponsePayload, error) {
	ans, err := b.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	return ans.Payload, nil
}

// Search returns events matching set.
func (b *Backend) Search(ctx context.Context, set filter.Set) (*model.SearchResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	now := b.now().UTC()
	hours := 24
	if tr, ok := set.TimeRange(); ok {
		hours = tr.Hours()
	}
	from := now.Add(-time.Duration(hours) * time.Hour)

	events := b.generate(newCriteria(set), from, now)
	return &model.SearchResult{TotalCount: len(events), Events: Sample(events)}, nil
}

// Suggest returns catalog questions containing partial, prefix matches
// first.
func (b *Backend) Suggest(ctx context.Context, partial string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return []string{}, nil
	}

	type hit struct {
		text   string
		prefix bool
	}
	var hits []hit
	for _, s := range suggestionCatalog {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, needle), strings.HasPrefix(strings.TrimPrefix(lower, "show "), needle):
			hits = append(hits, hit{s, true})
		case strings.Contains(lower, needle):
			hits = append(hits, hit{s, false})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].prefix && !hits[j].prefix })

	out := make([]string, 0, MaxSuggestions)
	for _, h := range hits {
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, h.text)
	}
	return out, nil
}

// LoadHistory returns every answered question in order.
func (b *Backend) LoadHistory(ctx context.Context) ([]model.HistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.HistoryItem(nil), b.history...), nil
}

// ClearHistory forgets every answered question. Clearing twice is fine.
func (b *Backend) ClearHistory(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	b.history = nil
	b.mu.Unlock()
	return nil
}

// generate draws events until the target count matches or the budget runs
// out. The target is 50-200 events per day of window, capped at 2000.
func (b *Backend) generate(c criteria, from, to time.Time) []model.EventRecord {
	days := int(to.Sub(from)/(24*time.Hour)) + 1
	target := b.gen.Between(50, 200) * days
	if target > 2000 {
		target = 2000
	}

	shape := c.shape()
	events := make([]model.EventRecord, 0, target)
	for i := 0; i < target*generationBudget && len(events) < target; i++ {
		rec := b.gen.Event(from, to, shape)
		if c.match(rec) {
			events = append(events, rec)
		}
	}
	return events
}

// wait simulates latency, honoring cancellation.
func (b *Backend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
