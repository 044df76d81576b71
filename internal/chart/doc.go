// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart is the drawing surface the visualization manager paints on.
//
// A Surface creates Instances from a Config. An instance can be updated,
// resized, rendered to terminal text, serialized to PNG and destroyed. After
// Destroy every operation on the instance fails with ErrDestroyed.
//
// # Chart Types
//
//   - line: sparkline time series
//   - bar, hbar: vertical and horizontal (optionally ranked) bars
//   - pie, doughnut, polar: share-of-total charts with a legend
//
// # Usage
//
//	surface := chart.NewTerminalSurface()
//	inst, err := surface.Create("chart-timeline", chart.Config{
//		Type:   chart.TypeLine,
//		Title:  "Event Timeline",
//		Labels: labels,
//		Values: values,
//	})
//	fmt.Println(inst.Render())
//	png, err := inst.PNG()
//	inst.Destroy()
package chart
