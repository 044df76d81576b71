// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart is the drawing surface the visualization manager paints on.
package chart

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig(t Type) Config {
	return Config{
		Type:   t,
		Title:  "Sample",
		Labels: []string{"alice", "bob", "carol"},
		Values: []float64{3, 9, 5},
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfig_ItemsRankAndCap(t *testing.T) {
	cfg := sampleConfig(TypeHBar)
	cfg.Ranked = true
	cfg.MaxItems = 2

	items := cfg.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "bob", items[0].Label)
	assert.Equal(t, "carol", items[1].Label)
}

func TestConfig_ItemsMismatchedLengths(t *testing.T) {
	cfg := Config{Labels: []string{"a", "b", "c"}, Values: []float64{1, -4}}
	items := cfg.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 0.0, items[1].Value)
}

func TestPalette_SeriesColorCycles(t *testing.T) {
	p := Palette{Series: []string{"#000001", "#000002"}}
	assert.Equal(t, "#000001", p.SeriesColor(2))
	assert.Equal(t, "#888888", Palette{}.SeriesColor(0))
}

// =============================================================================
// INSTANCE LIFECYCLE TESTS
// =============================================================================

func TestTerminalSurface_LiveCount(t *testing.T) {
	s := NewTerminalSurface()
	a, err := s.Create("a", sampleConfig(TypeBar))
	require.NoError(t, err)
	b, err := s.Create("b", sampleConfig(TypeLine))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Live())

	a.Destroy()
	a.Destroy()
	assert.Equal(t, 1, s.Live())
	assert.True(t, a.Destroyed())
	assert.False(t, b.Destroyed())
	assert.Equal(t, 2, s.Created())
}

func TestInstance_DestroyedRejectsOperations(t *testing.T) {
	s := NewTerminalSurface()
	inst, err := s.Create("x", sampleConfig(TypePie))
	require.NoError(t, err)
	inst.Destroy()

	_, err = inst.Render()
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = inst.PNG()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, inst.Update(sampleConfig(TypeBar)), ErrDestroyed)
	assert.ErrorIs(t, inst.Resize(10, 10), ErrDestroyed)
}

func TestInstance_ResizeAndUpdate(t *testing.T) {
	s := NewTerminalSurface()
	inst, err := s.Create("x", sampleConfig(TypeBar))
	require.NoError(t, err)

	assert.ErrorIs(t, inst.Resize(0, 5), ErrInvalidSize)
	require.NoError(t, inst.Resize(80, 20))
	assert.Equal(t, 80, inst.Config().Width)

	// Update keeps the current size when the new config has none.
	require.NoError(t, inst.Update(sampleConfig(TypeLine)))
	assert.Equal(t, TypeLine, inst.Config().Type)
	assert.Equal(t, 80, inst.Config().Width)
	assert.Equal(t, 20, inst.Config().Height)
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestRenderText_AllTypes(t *testing.T) {
	for _, typ := range []Type{TypeLine, TypeBar, TypeHBar, TypePie, TypeDoughnut, TypePolar} {
		t.Run(string(typ), func(t *testing.T) {
			out := RenderText(sampleConfig(typ))
			assert.Contains(t, out, "Sample")
			if typ != TypeLine {
				assert.Contains(t, out, "bob")
			}
		})
	}
}

func TestRenderText_ShareLegendPercent(t *testing.T) {
	cfg := Config{Type: TypePie, Labels: []string{"a", "b"}, Values: []float64{1, 3}}
	out := RenderText(cfg)
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "75.0%")
}

func TestRenderText_Empty(t *testing.T) {
	out := RenderText(Config{Type: TypeBar, Title: "Nothing"})
	assert.Contains(t, out, "(no data)")
}

func TestRenderText_LineResamples(t *testing.T) {
	labels := make([]string, 200)
	values := make([]float64, 200)
	for i := range labels {
		labels[i] = "t"
		values[i] = float64(i)
	}
	out := RenderText(Config{Type: TypeLine, Labels: labels, Values: values, Width: 22})
	first := strings.Split(out, "\n")[0]
	assert.Contains(t, first, "▁")
	assert.Contains(t, first, "█")
}

func TestEncodePNG_Decodes(t *testing.T) {
	for _, typ := range []Type{TypeLine, TypeBar, TypeHBar, TypePie, TypeDoughnut, TypePolar} {
		data, err := EncodePNG(sampleConfig(typ), 200, 120)
		require.NoError(t, err, typ)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err, typ)
		assert.Equal(t, 200, img.Bounds().Dx())
	}

	_, err := EncodePNG(sampleConfig(TypeBar), 0, 10)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestParseHex(t *testing.T) {
	c := parseHex("#FF8000")
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0x80), c.G)
	assert.Equal(t, uint8(0x88), parseHex("nope").R)
}
