// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viz owns the lifecycle of rendered charts.
//
// The Manager keeps a registry of at most one live chart instance per target
// id. Every chart goes absent → live → absent: creating a chart for an id
// that already has one destroys the old instance first, and a new result
// payload destroys every chart before the new set is drawn.
//
// # Templates
//
// Each chart kind maps to a drawing template:
//
//   - timeline: line
//   - event_types: doughnut
//   - severity_distribution: pie
//   - top_users: ranked horizontal bar
//   - geo_distribution: polar area
//   - top_ips: ranked bar
//   - anything else: generic bar
//
// # Theme Changes
//
// RerenderAll destroys and recreates every live chart from the last data it
// was given, using the new palette.
package viz
