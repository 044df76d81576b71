// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme owns the process-wide display mode.
package theme

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/viz"
)

type memStore struct {
	values  map[string]string
	failSet bool
	sets    int
}

func newMemStore() *memStore { return &memStore{values: make(map[string]string)} }

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", storage.ErrPreferenceNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.sets++
	if s.failSet {
		return errors.New("disk full")
	}
	s.values[key] = value
	return nil
}

type recordingViz struct {
	palettes []chart.Palette
}

func (r *recordingViz) RerenderAll(p chart.Palette) error {
	r.palettes = append(r.palettes, p)
	return nil
}

func alwaysDark() bool  { return true }
func alwaysLight() bool { return false }

// =============================================================================
// INITIALIZATION TESTS
// =============================================================================

func TestNewController_PersistedWins(t *testing.T) {
	store := newMemStore()
	store.values[PreferenceKey] = "light"

	c := NewController(store, nil, WithAmbient(alwaysDark))
	assert.Equal(t, Light, c.Mode())
	assert.False(t, c.Theme().IsDark)
}

func TestNewController_AmbientFallback(t *testing.T) {
	assert.Equal(t, Light, NewController(newMemStore(), nil, WithAmbient(alwaysLight)).Mode())
	assert.Equal(t, Dark, NewController(newMemStore(), nil, WithAmbient(alwaysDark)).Mode())
	assert.Equal(t, Dark, NewController(nil, nil, WithAmbient(alwaysDark)).Mode())
}

func TestNewController_GarbagePreferenceIgnored(t *testing.T) {
	store := newMemStore()
	store.values[PreferenceKey] = "sepia"
	c := NewController(store, nil, WithAmbient(alwaysLight), WithLogger(zaptest.NewLogger(t)))
	assert.Equal(t, Light, c.Mode())
}

// =============================================================================
// CHANGE TESTS
// =============================================================================

func TestToggle_PersistsAndRerenders(t *testing.T) {
	store := newMemStore()
	rv := &recordingViz{}
	var seen []Mode
	c := NewController(store, rv,
		WithAmbient(alwaysDark),
		OnChange(func(m Mode, th *styles.Theme) { seen = append(seen, m) }))

	assert.Equal(t, Light, c.Toggle())
	assert.Equal(t, "light", store.values[PreferenceKey])
	require.Len(t, rv.palettes, 1)
	assert.Equal(t, "light", rv.palettes[0].Name)
	assert.Equal(t, []Mode{Light}, seen)

	assert.Equal(t, Dark, c.Toggle())
	assert.Equal(t, "dark", store.values[PreferenceKey])
	assert.True(t, c.Theme().IsDark)
}

func TestSet_RunsCallbacksInOrder(t *testing.T) {
	var calls []string
	var got *styles.Theme
	c := NewController(newMemStore(), nil,
		WithAmbient(alwaysDark),
		OnChange(func(m Mode, th *styles.Theme) { calls = append(calls, "first:"+string(m)); got = th }),
		OnChange(func(m Mode, _ *styles.Theme) { calls = append(calls, "second:"+string(m)) }))

	c.Set(Light)
	assert.Equal(t, []string{"first:light", "second:light"}, calls)
	require.NotNil(t, got)
	assert.False(t, got.IsDark)
	assert.Same(t, c.Theme(), got)
}

func TestSet_StoreFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	store.failSet = true
	rv := &recordingViz{}
	c := NewController(store, rv, WithAmbient(alwaysDark), WithLogger(zaptest.NewLogger(t)))

	c.Set(Light)
	assert.Equal(t, Light, c.Mode())
	assert.Equal(t, 1, store.sets)
	assert.Len(t, rv.palettes, 1)
}

func TestToggle_WithTwoLiveCharts(t *testing.T) {
	surface := chart.NewTerminalSurface()
	mgr := viz.NewManager(surface)
	require.NoError(t, mgr.RenderOne(model.ChartTimeline, model.SeriesData{Labels: []string{"a", "b"}, Values: []float64{1, 2}}, "chart-timeline"))
	require.NoError(t, mgr.RenderOne(model.ChartTopIPs, model.SeriesData{Labels: []string{"10.0.0.1"}, Values: []float64{7}}, "chart-top_ips"))
	before := mgr.Handles()

	c := NewController(newMemStore(), mgr, WithAmbient(alwaysDark))
	c.Toggle()

	after := mgr.Handles()
	require.Len(t, after, 2)
	assert.Equal(t, 2, surface.Live())
	assert.Equal(t, 4, surface.Created())
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Kind, after[i].Kind)
		assert.Equal(t, before[i].Data, after[i].Data)
		assert.True(t, before[i].Instance.Destroyed())
		assert.Equal(t, "light", after[i].Instance.Config().Palette.Name)
	}
}

func TestToggle_NothingRenderedIsNoop(t *testing.T) {
	surface := chart.NewTerminalSurface()
	mgr := viz.NewManager(surface)
	c := NewController(nil, mgr, WithAmbient(alwaysDark))
	c.Toggle()
	assert.Zero(t, surface.Created())
}

func TestPreferenceDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	prefs, err := storage.OpenPreferences(path)
	require.NoError(t, err)

	NewController(prefs, nil, WithAmbient(alwaysDark)).Set(Light)
	require.NoError(t, prefs.Close())

	reopened, err := storage.OpenPreferences(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, Light, NewController(reopened, nil, WithAmbient(alwaysDark)).Mode())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, Dark, m)
	_, err = ParseMode("sepia")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
