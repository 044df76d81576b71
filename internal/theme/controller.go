// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme owns the process-wide display mode.
//
// The mode starts from the persisted preference, falling back to the
// terminal's ambient background. Every change is written back to the
// preference store and re-renders live charts with the new palette.
package theme

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
)

// PreferenceKey is the preference the mode is persisted under.
const PreferenceKey = storage.KeyDisplayMode

// storeTimeout bounds each preference read and write.
const storeTimeout = 2 * time.Second

// Mode is a display mode.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// ErrUnknownMode is returned by ParseMode for anything but dark or light.
var ErrUnknownMode = errors.New("unknown display mode")

// ParseMode reads a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Store persists the mode.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Rerenderer redraws live charts with a new palette.
type Rerenderer interface {
	RerenderAll(palette chart.Palette) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the current mode and the theme built for it.
type Controller struct {
	mu       sync.RWMutex
	mode     Mode
	theme    *styles.Theme
	store    Store
	viz      Rerenderer
	ambient  func() bool
	onChange []func(Mode, *styles.Theme)
	logger   *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithAmbient overrides terminal background detection.
func WithAmbient(isDark func() bool) Option {
	return func(c *Controller) { c.ambient = isDark }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// OnChange registers a callback run after every mode change.
func OnChange(fn func(Mode, *styles.Theme)) Option {
	return func(c *Controller) { c.onChange = append(c.onChange, fn) }
}

// NewController resolves the initial mode: persisted preference first, then
// the ambient background. store and viz may be nil.
func NewController(store Store, viz Rerenderer, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		viz:     viz,
		ambient: termenv.HasDarkBackground,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mode = c.initialMode()
	c.theme = styles.NewTheme(c.mode == Dark)
	c.logger.Debug("display mode initialized", zap.String("mode", string(c.mode)))
	return c
}

func (c *Controller) initialMode() Mode {
	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		value, err := c.store.Get(ctx, PreferenceKey)
		switch {
		case err == nil:
			if m, perr := ParseMode(value); perr == nil {
				return m
			}
			c.logger.Warn("ignoring stored display mode", zap.String("value", value))
		case errors.Is(err, storage.ErrPreferenceNotFound):
		default:
			c.logger.Warn("read display mode preference", zap.Error(err))
		}
	}
	if c.ambient != nil && !c.ambient() {
		return Light
	}
	return Dark
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Theme returns the styles for the current mode.
func (c *Controller) Theme() *styles.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// Toggle flips the mode.
func (c *Controller) Toggle() Mode {
	next := c.Mode().Opposite()
	c.Set(next)
	return next
}

// Set switches to mode, persists it and re-renders live charts. Setting the
// current mode still re-persists it. Storage and re-render failures are
// logged and never returned.
func (c *Controller) Set(mode Mode) {
	c.mu.Lock()
	c.mode = mode
	c.theme = styles.NewTheme(mode == Dark)
	th := c.theme
	callbacks := slices.Clone(c.onChange)
	c.mu.Unlock()

	c.persist(mode)

	if c.viz != nil {
		if err := c.viz.RerenderAll(th.ChartPalette()); err != nil {
			c.logger.Warn("re-render charts after mode change", zap.Error(err))
		}
	}
	for _, fn := range callbacks {
		fn(mode, th)
	}
	c.logger.Info("display mode changed", zap.String("mode", string(mode)))
}

func (c *Controller) persist(mode Mode) {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.store.Set(ctx, PreferenceKey, string(mode)); err != nil {
		c.logger.Warn("persist display mode", zap.String("mode", string(mode)), zap.Error(err))
	}
}
