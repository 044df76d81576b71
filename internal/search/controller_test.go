// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search runs filter-driven event searches.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

type fakeSearcher struct {
	received []filter.Set
	result   *model.SearchResult
	err      error
	panicMsg string
}

func (f *fakeSearcher) Search(_ context.Context, set filter.Set) (*model.SearchResult, error) {
	f.received = append(f.received, set)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result, f.err
}

func newTestController(t *testing.T, s *fakeSearcher) *Controller {
	t.Helper()
	return New(s, filter.NewManager(), WithLogger(zaptest.NewLogger(t)))
}

func TestApply_SendsExactFilterSet(t *testing.T) {
	s := &fakeSearcher{result: &model.SearchResult{TotalCount: 12}}
	c := newTestController(t, s)

	cmd := c.Apply(filter.RawInputs{
		filter.KeySeverity:  "high",
		filter.KeyTimeRange: "7d",
		filter.KeyCountry:   "all",
		filter.KeyKeywords:  "",
	})
	require.NotNil(t, cmd)
	assert.True(t, c.Pending())

	msg := cmd().(ResultMsg)
	require.Len(t, s.received, 1)
	body, err := json.Marshal(s.received[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"high","time_range":{"unit":"days","value":7,"type":"relative"}}`, string(body))

	assert.True(t, c.HandleResult(msg))
	assert.False(t, c.Pending())
	assert.NoError(t, c.Err())
	assert.Equal(t, 12, c.Result().TotalCount)
	assert.Equal(t, 2, c.ActiveCount())
}

func TestHandleResult_StaleDiscarded(t *testing.T) {
	s := &fakeSearcher{result: &model.SearchResult{TotalCount: 1}}
	c := newTestController(t, s)

	slow := c.Apply(filter.RawInputs{filter.KeySeverity: "low"})
	fast := c.Apply(filter.RawInputs{filter.KeySeverity: "critical"})

	s.result = &model.SearchResult{TotalCount: 99}
	assert.True(t, c.HandleResult(fast().(ResultMsg)))

	s.result = &model.SearchResult{TotalCount: 1}
	assert.False(t, c.HandleResult(slow().(ResultMsg)))

	assert.Equal(t, 99, c.Result().TotalCount)
	assert.Equal(t, "critical", c.Applied().String(filter.KeySeverity))
}

func TestHandleResult_FailureKeepsPreviousResult(t *testing.T) {
	s := &fakeSearcher{result: &model.SearchResult{TotalCount: 5}}
	c := newTestController(t, s)
	c.HandleResult(c.Reset()().(ResultMsg))

	s.err = errors.New("backend down")
	c.HandleResult(c.Reset()().(ResultMsg))

	assert.EqualError(t, c.Err(), "backend down")
	assert.Equal(t, 5, c.Result().TotalCount)
	assert.False(t, c.Pending())
}

func TestHandleResult_FailureKeepsAppliedFilters(t *testing.T) {
	s := &fakeSearcher{result: &model.SearchResult{TotalCount: 5}}
	c := newTestController(t, s)
	require.True(t, c.HandleResult(c.Apply(filter.RawInputs{filter.KeySeverity: "low"})().(ResultMsg)))

	s.err = errors.New("boom")
	require.True(t, c.HandleResult(c.Apply(filter.RawInputs{filter.KeySeverity: "critical"})().(ResultMsg)))

	assert.EqualError(t, c.Err(), "boom")
	assert.Equal(t, 5, c.Result().TotalCount)
	assert.Equal(t, "low", filter.FormatValue(filter.KeySeverity, c.Applied()[filter.KeySeverity]))
	assert.Equal(t, "critical", filter.FormatValue(filter.KeySeverity, c.Filters()[filter.KeySeverity]))
}

func TestRun_PanicBecomesError(t *testing.T) {
	s := &fakeSearcher{panicMsg: "boom"}
	c := newTestController(t, s)

	msg := c.Reset()().(ResultMsg)
	require.Error(t, msg.Err)
	assert.Contains(t, msg.Err.Error(), "boom")
	c.HandleResult(msg)
	assert.False(t, c.Pending())
}

func TestHandleResult_NilResultIsError(t *testing.T) {
	c := newTestController(t, &fakeSearcher{})
	c.HandleResult(c.Reset()().(ResultMsg))
	assert.Error(t, c.Err())
}

func TestReset_DefaultFilters(t *testing.T) {
	s := &fakeSearcher{result: &model.SearchResult{}}
	c := newTestController(t, s)
	c.Apply(filter.RawInputs{filter.KeySeverity: "high", filter.KeyUser: "admin"})
	c.Reset()()

	assert.Equal(t, 1, c.ActiveCount())
	last := s.received[len(s.received)-1]
	assert.True(t, last.Has(filter.KeyTimeRange))
	assert.Len(t, last, 1)
}
