// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viz owns the lifecycle of rendered charts.
package viz

import (
	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/model"
)

// RankedLimit caps the ranked templates.
const RankedLimit = 10

// Template describes how one chart kind is drawn.
type Template struct {
	Type     chart.Type
	Ranked   bool
	MaxItems int
}

var templates = map[model.ChartKind]Template{
	model.ChartTimeline:             {Type: chart.TypeLine},
	model.ChartEventTypes:           {Type: chart.TypeDoughnut},
	model.ChartSeverityDistribution: {Type: chart.TypePie},
	model.ChartTopUsers:             {Type: chart.TypeHBar, Ranked: true, MaxItems: RankedLimit},
	model.ChartGeoDistribution:      {Type: chart.TypePolar},
	model.ChartTopIPs:               {Type: chart.TypeBar, Ranked: true, MaxItems: RankedLimit},
}

// TemplateFor returns the template for kind. Unknown kinds get a plain bar.
func TemplateFor(kind model.ChartKind) Template {
	if t, ok := templates[kind]; ok {
		return t
	}
	return Template{Type: chart.TypeBar}
}

// ChartID returns the target id a payload chart of this kind is drawn into.
func ChartID(kind model.ChartKind) string {
	return "chart-" + string(kind)
}

// buildConfig turns a series into a surface config.
func buildConfig(kind model.ChartKind, data model.SeriesData, palette chart.Palette, width, height int) chart.Config {
	tpl := TemplateFor(kind)
	n := data.Len()
	title := data.Title
	if title == "" {
		title = kind.Title()
	}
	return chart.Config{
		Type:     tpl.Type,
		Title:    title,
		Labels:   append([]string(nil), data.Labels[:n]...),
		Values:   append([]float64(nil), data.Values[:n]...),
		Ranked:   tpl.Ranked,
		MaxItems: tpl.MaxItems,
		Palette:  palette,
		Width:    width,
		Height:   height,
	}
}
