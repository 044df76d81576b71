// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart is the drawing surface the visualization manager paints on.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// RASTER EXPORT
// =============================================================================

const plotMargin = 24

// EncodePNG rasterizes cfg into a PNG of the given pixel size.
func EncodePNG(cfg Config, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	cfg = cfg.withDefaults()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), parseHex(cfg.Palette.Background))

	plot := image.Rect(plotMargin, plotMargin, width-plotMargin, height-plotMargin)
	if plot.Empty() {
		plot = img.Bounds()
	}

	items := cfg.Items()
	if len(items) > 0 {
		switch cfg.Type {
		case TypeLine:
			drawLine(img, plot, cfg.Palette, items)
		case TypePie, TypeDoughnut, TypePolar:
			drawPie(img, plot, cfg.Palette, items, cfg.Type)
		case TypeHBar:
			drawHBars(img, plot, cfg.Palette, items)
		default:
			drawColumns(img, plot, cfg.Palette, items)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawColumns(img *image.RGBA, plot image.Rectangle, p Palette, items []Item) {
	peak := maxValue(items)
	slot := plot.Dx() / len(items)
	if slot < 1 {
		slot = 1
	}
	gap := slot / 5
	for i, it := range items {
		h := 0
		if peak > 0 {
			h = int(it.Value / peak * float64(plot.Dy()))
		}
		x0 := plot.Min.X + i*slot + gap
		r := image.Rect(x0, plot.Max.Y-h, x0+slot-2*gap, plot.Max.Y)
		fill(img, r, parseHex(p.SeriesColor(i)))
	}
	fill(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), parseHex(p.Grid))
}

func drawHBars(img *image.RGBA, plot image.Rectangle, p Palette, items []Item) {
	peak := maxValue(items)
	slot := plot.Dy() / len(items)
	if slot < 1 {
		slot = 1
	}
	gap := slot / 5
	for i, it := range items {
		w := 0
		if peak > 0 {
			w = int(it.Value / peak * float64(plot.Dx()))
		}
		y0 := plot.Min.Y + i*slot + gap
		fill(img, image.Rect(plot.Min.X, y0, plot.Min.X+w, y0+slot-2*gap), parseHex(p.SeriesColor(i)))
	}
	fill(img, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y), parseHex(p.Grid))
}

func drawLine(img *image.RGBA, plot image.Rectangle, p Palette, items []Item) {
	lo, hi := items[0].Value, items[0].Value
	for _, it := range items {
		lo = math.Min(lo, it.Value)
		hi = math.Max(hi, it.Value)
	}
	point := func(i int) (int, int) {
		x := plot.Min.X
		if len(items) > 1 {
			x += i * (plot.Dx() - 1) / (len(items) - 1)
		}
		y := plot.Max.Y - 1
		if hi > lo {
			y -= int((items[i].Value - lo) / (hi - lo) * float64(plot.Dy()-1))
		}
		return x, y
	}

	fill(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), parseHex(p.Grid))
	c := parseHex(p.SeriesColor(0))
	x0, y0 := point(0)
	img.Set(x0, y0, c)
	for i := 1; i < len(items); i++ {
		x1, y1 := point(i)
		segment(img, x0, y0, x1, y1, c)
		x0, y0 = x1, y1
	}
}

// drawPie paints wedges by testing each pixel's angle against the cumulative
// shares. Doughnuts punch out the centre; polar wedges scale their radius by
// value instead of sweeping by share.
func drawPie(img *image.RGBA, plot image.Rectangle, p Palette, items []Item, kind Type) {
	total, peak := 0.0, maxValue(items)
	for _, it := range items {
		total += it.Value
	}
	if total <= 0 {
		return
	}

	cx := float64(plot.Min.X+plot.Max.X) / 2
	cy := float64(plot.Min.Y+plot.Max.Y) / 2
	radius := math.Min(float64(plot.Dx()), float64(plot.Dy())) / 2
	inner := 0.0
	if kind == TypeDoughnut {
		inner = radius * 0.55
	}

	bounds := make([]float64, len(items))
	acc := 0.0
	for i, it := range items {
		if kind == TypePolar {
			acc += 1 / float64(len(items))
		} else {
			acc += it.Value / total
		}
		bounds[i] = acc * 2 * math.Pi
	}
	colors := make([]color.RGBA, len(items))
	for i := range items {
		colors[i] = parseHex(p.SeriesColor(i))
	}

	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		for x := plot.Min.X; x < plot.Max.X; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Hypot(dx, dy)
			if d > radius || d < inner {
				continue
			}
			angle := math.Atan2(dy, dx) + math.Pi/2
			if angle < 0 {
				angle += 2 * math.Pi
			}
			for i, b := range bounds {
				if angle <= b {
					if kind == TypePolar && peak > 0 && d > radius*items[i].Value/peak {
						break
					}
					img.SetRGBA(x, y, colors[i])
					break
				}
			}
		}
	}
}

// segment draws a Bresenham line.
func segment(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHex reads "#RRGGBB". Anything else falls back to mid grey.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
