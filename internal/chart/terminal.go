// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart is the drawing surface the visualization manager paints on.
package chart

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// TERMINAL SURFACE
// =============================================================================

// TerminalSurface draws charts as styled terminal text. It counts live
// instances so leaks show up in tests and diagnostics.
type TerminalSurface struct {
	mu      sync.Mutex
	live    map[*termChart]struct{}
	created int
}

// NewTerminalSurface creates an empty surface.
func NewTerminalSurface() *TerminalSurface {
	return &TerminalSurface{live: make(map[*termChart]struct{})}
}

// Create builds a live instance.
func (s *TerminalSurface) Create(id string, cfg Config) (Instance, error) {
	cfg = cfg.withDefaults()
	c := &termChart{id: id, cfg: cfg, surface: s}

	s.mu.Lock()
	s.live[c] = struct{}{}
	s.created++
	s.mu.Unlock()
	return c, nil
}

// Live returns the number of instances not yet destroyed.
func (s *TerminalSurface) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Created returns the number of instances ever created.
func (s *TerminalSurface) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *TerminalSurface) release(c *termChart) {
	s.mu.Lock()
	delete(s.live, c)
	s.mu.Unlock()
}

// =============================================================================
// TERMINAL INSTANCE
// =============================================================================

type termChart struct {
	mu        sync.Mutex
	id        string
	cfg       Config
	surface   *TerminalSurface
	destroyed bool
}

func (c *termChart) ID() string { return c.id }

func (c *termChart) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *termChart) Update(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	w, h := c.cfg.Width, c.cfg.Height
	c.cfg = cfg.withDefaults()
	if cfg.Width <= 0 {
		c.cfg.Width = w
	}
	if cfg.Height <= 0 {
		c.cfg.Height = h
	}
	return nil
}

func (c *termChart) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.cfg.Width = width
	c.cfg.Height = height
	return nil
}

func (c *termChart) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()
	c.surface.release(c)
}

func (c *termChart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func (c *termChart) Render() (string, error) {
	cfg := c.Config()
	if c.Destroyed() {
		return "", ErrDestroyed
	}
	return RenderText(cfg), nil
}

func (c *termChart) PNG() ([]byte, error) {
	cfg := c.Config()
	if c.Destroyed() {
		return nil, ErrDestroyed
	}
	return EncodePNG(cfg, DefaultPixelWidth, DefaultPixelHeight)
}

// =============================================================================
// TEXT RENDERING
// =============================================================================

const sparkRunes = "▁▂▃▄▅▆▇█"

// RenderText draws cfg as terminal text.
func RenderText(cfg Config) string {
	cfg = cfg.withDefaults()
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Palette.Text)).Render(cfg.Title)
	items := cfg.Items()

	var body string
	switch {
	case len(items) == 0:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.Muted)).Render("(no data)")
	case cfg.Type == TypeLine:
		body = renderLine(cfg, items)
	case cfg.Type == TypePie, cfg.Type == TypeDoughnut, cfg.Type == TypePolar:
		body = renderShare(cfg, items)
	case cfg.Type == TypeBar:
		body = renderColumns(cfg, items)
	default:
		body = renderBars(cfg, items)
	}

	if cfg.Title == "" {
		return body
	}
	return title + "\n" + body
}

func maxValue(items []Item) float64 {
	m := 0.0
	for _, it := range items {
		if it.Value > m {
			m = it.Value
		}
	}
	return m
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// renderBars draws one horizontal bar per item.
func renderBars(cfg Config, items []Item) string {
	labelW := 0
	for _, it := range items {
		if w := runewidth.StringWidth(it.Label); w > labelW {
			labelW = w
		}
	}
	if labelW > cfg.Width/3 {
		labelW = cfg.Width / 3
	}
	barW := cfg.Width - labelW - 8
	if barW < 4 {
		barW = 4
	}

	peak := maxValue(items)
	var b strings.Builder
	for i, it := range items {
		n := 0
		if peak > 0 {
			n = int(math.Round(it.Value / peak * float64(barW)))
		}
		label := util.PadRight(runewidth.Truncate(it.Label, labelW, "…"), labelW)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.SeriesColor(i))).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%s │%s %s", label, bar, formatValue(it.Value))
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderColumns draws vertical columns with a label legend underneath.
func renderColumns(cfg Config, items []Item) string {
	height := cfg.Height - 2
	if height < 2 {
		height = 2
	}
	peak := maxValue(items)
	colors := make([]lipgloss.Style, len(items))
	for i := range items {
		colors[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.SeriesColor(i)))
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		for i, it := range items {
			filled := 0
			if peak > 0 {
				filled = int(math.Round(it.Value / peak * float64(height)))
			}
			if filled >= row {
				b.WriteString(colors[i].Render("██"))
			} else {
				b.WriteString("  ")
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	for i, it := range items {
		fmt.Fprintf(&b, "%s %s %s", colors[i].Render("■"), it.Label, formatValue(it.Value))
		if i < len(items)-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}

// renderLine draws a sparkline resampled to the chart width.
func renderLine(cfg Config, items []Item) string {
	width := cfg.Width - 2
	if width < 2 {
		width = 2
	}
	values := resample(items, width)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	runes := []rune(sparkRunes)
	var line strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(runes)-1))
		}
		line.WriteRune(runes[idx])
	}

	spark := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.SeriesColor(0))).Render(line.String())
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.Muted))
	axis := fmt.Sprintf("%s … %s  (min %s, max %s)",
		items[0].Label, items[len(items)-1].Label, formatValue(lo), formatValue(hi))
	return spark + "\n" + muted.Render(axis)
}

// resample maps items onto n buckets, averaging or repeating as needed.
func resample(items []Item, n int) []float64 {
	if len(items) <= n {
		out := make([]float64, len(items))
		for i, it := range items {
			out[i] = it.Value
		}
		return out
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * len(items) / n
		end := (i + 1) * len(items) / n
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, it := range items[start:end] {
			sum += it.Value
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// renderShare draws a proportional strip and a percentage legend.
func renderShare(cfg Config, items []Item) string {
	total := 0.0
	for _, it := range items {
		total += it.Value
	}

	marker := map[Type]string{TypePie: "●", TypeDoughnut: "◍", TypePolar: "◆"}[cfg.Type]
	width := cfg.Width - 2
	if width < len(items) {
		width = len(items)
	}

	var strip, legend strings.Builder
	for i, it := range items {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Palette.SeriesColor(i)))
		share := 0.0
		if total > 0 {
			share = it.Value / total
		}
		strip.WriteString(style.Render(strings.Repeat("█", int(math.Round(share*float64(width))))))
		fmt.Fprintf(&legend, "%s %s %.1f%% (%s)", style.Render(marker), it.Label, share*100, formatValue(it.Value))
		if i < len(items)-1 {
			legend.WriteByte('\n')
		}
	}
	return strip.String() + "\n" + legend.String()
}
