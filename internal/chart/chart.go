// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart is the drawing surface the visualization manager paints on.
package chart

import (
	"errors"
	"sort"
)

// Type selects how a series is drawn.
type Type string

const (
	TypeLine     Type = "line"
	TypeBar      Type = "bar"
	TypeHBar     Type = "hbar"
	TypePie      Type = "pie"
	TypeDoughnut Type = "doughnut"
	TypePolar    Type = "polar"
)

// Default terminal and image sizes.
const (
	DefaultWidth       = 60
	DefaultHeight      = 12
	DefaultPixelWidth  = 640
	DefaultPixelHeight = 360
)

var (
	// ErrDestroyed is returned by any operation on a destroyed instance.
	ErrDestroyed = errors.New("chart instance destroyed")

	// ErrInvalidSize is returned for non-positive sizes.
	ErrInvalidSize = errors.New("chart size must be positive")
)

// Palette holds hex colors for one display mode.
type Palette struct {
	Name       string
	Series     []string
	Text       string
	Muted      string
	Grid       string
	Background string
}

// SeriesColor returns the color for the i-th series item, cycling.
func (p Palette) SeriesColor(i int) string {
	if len(p.Series) == 0 {
		return "#888888"
	}
	return p.Series[i%len(p.Series)]
}

// DefaultPalette is used when a config carries no palette.
func DefaultPalette() Palette {
	return Palette{
		Name:       "default",
		Series:     []string{"#22D3EE", "#A78BFA", "#34D399", "#FBBF24", "#FB7185", "#60A5FA", "#F472B6", "#A3E635"},
		Text:       "#CDD6F4",
		Muted:      "#6C7086",
		Grid:       "#313244",
		Background: "#1E1E2E",
	}
}

// Config fully describes one chart.
type Config struct {
	Type   Type
	Title  string
	Labels []string
	Values []float64

	// Ranked sorts items by value, largest first.
	Ranked bool
	// MaxItems caps the number of items drawn (0 = all).
	MaxItems int

	Palette Palette
	Width   int
	Height  int
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.Type == "" {
		c.Type = TypeBar
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if len(c.Palette.Series) == 0 {
		c.Palette = DefaultPalette()
	}
	return c
}

// Item is one labelled value.
type Item struct {
	Label string
	Value float64
}

// Items returns the drawable items after pairing, ranking and capping.
// Negative values are drawn as zero.
func (c Config) Items() []Item {
	n := len(c.Labels)
	if len(c.Values) < n {
		n = len(c.Values)
	}
	items := make([]Item, n)
	for i := 0; i < n; i++ {
		v := c.Values[i]
		if v < 0 {
			v = 0
		}
		items[i] = Item{Label: c.Labels[i], Value: v}
	}
	if c.Ranked {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	}
	if c.MaxItems > 0 && len(items) > c.MaxItems {
		items = items[:c.MaxItems]
	}
	return items
}

// =============================================================================
// SURFACE CONTRACT
// =============================================================================

// Surface creates chart instances.
type Surface interface {
	Create(id string, cfg Config) (Instance, error)
}

// Instance is one live chart on a surface.
type Instance interface {
	ID() string
	Config() Config
	Update(cfg Config) error
	Resize(width, height int) error
	Render() (string, error)
	PNG() ([]byte, error)
	Destroy()
	Destroyed() bool
}
