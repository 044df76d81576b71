// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the console core.
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// =============================================================================
// CHART KINDS
// =============================================================================

// ChartKind names the kind of chart a series should be drawn as.
// The set below is the set of kinds the console has templates for; any other
// value is still accepted and drawn with a generic template.
type ChartKind string

const (
	ChartTimeline             ChartKind = "timeline"
	ChartEventTypes           ChartKind = "event_types"
	ChartSeverityDistribution ChartKind = "severity_distribution"
	ChartTopUsers             ChartKind = "top_users"
	ChartGeoDistribution      ChartKind = "geo_distribution"
	ChartTopIPs               ChartKind = "top_ips"
)

// KnownChartKinds lists every kind with a dedicated template, in display order.
var KnownChartKinds = []ChartKind{
	ChartTimeline,
	ChartEventTypes,
	ChartSeverityDistribution,
	ChartTopUsers,
	ChartGeoDistribution,
	ChartTopIPs,
}

// IsKnown reports whether the kind has a dedicated template.
func (k ChartKind) IsKnown() bool {
	for _, known := range KnownChartKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Title returns a human-readable chart title for the kind.
func (k ChartKind) Title() string {
	switch k {
	case ChartTimeline:
		return "Event Timeline"
	case ChartEventTypes:
		return "Event Types"
	case ChartSeverityDistribution:
		return "Severity Distribution"
	case ChartTopUsers:
		return "Top Users"
	case ChartGeoDistribution:
		return "Geographic Distribution"
	case ChartTopIPs:
		return "Top Source IPs"
	default:
		return string(k)
	}
}

// SeriesData is the labelled numeric series behind a single chart.
type SeriesData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title,omitempty"`
}

// Len returns the number of usable points (the shorter of labels and values).
func (s SeriesData) Len() int {
	if len(s.Labels) < len(s.Values) {
		return len(s.Labels)
	}
	return len(s.Values)
}

// Clone returns a deep copy so stored series never alias a caller's slices.
func (s SeriesData) Clone() SeriesData {
	out := SeriesData{Title: s.Title}
	if s.Labels != nil {
		out.Labels = append([]string(nil), s.Labels...)
	}
	if s.Values != nil {
		out.Values = append([]float64(nil), s.Values...)
	}
	return out
}

// =============================================================================
// INSIGHTS
// =============================================================================

// InsightType doubles as the visual severity tag of an insight card.
// No ordering between the values is implied.
type InsightType string

const (
	InsightInfo    InsightType = "info"
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightDanger  InsightType = "danger"
)

// Valid reports whether the type is one of the four known tags.
func (t InsightType) Valid() bool {
	switch t {
	case InsightInfo, InsightSuccess, InsightWarning, InsightDanger:
		return true
	}
	return false
}

// Insight is a finding attached to a response.
type Insight struct {
	Type           InsightType `json:"type"`
	Title          string      `json:"title"`
	Message        string      `json:"message"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// =============================================================================
// EVENT RECORDS
// =============================================================================

// EventRecord is one sampled security event.
type EventRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip,omitempty"`
	User          string    `json:"user"`
	Severity      string    `json:"severity"`
	Country       string    `json:"country,omitempty"`
	Message       string    `json:"message"`
	RiskScore     int       `json:"risk_score"`
	BytesSent     int64     `json:"bytes_sent,omitempty"`
	BytesReceived int64     `json:"bytes_received,omitempty"`
}

// =============================================================================
// RESPONSE PAYLOAD
// =============================================================================

// ResponsePayload is the backend's answer to one natural-language question.
type ResponsePayload struct {
	Summary             string                   `json:"summary"`
	TotalEvents         int                      `json:"total_events"`
	SampledEvents       int                      `json:"sampled_events"`
	Insights            []Insight                `json:"insights"`
	ChartData           map[ChartKind]SeriesData `json:"chart_data"`
	TableData           []EventRecord            `json:"table_data"`
	GeneratedQuery      json.RawMessage          `json:"generated_query,omitempty"`
	ProcessingTimeLabel string                   `json:"processing_time"`
}

// ChartKinds returns the payload's chart kinds: known kinds first in display
// order, then unknown kinds sorted by name. The order is stable so chart ids
// and layout do not jump between renders.
func (p *ResponsePayload) ChartKinds() []ChartKind {
	if p == nil || len(p.ChartData) == 0 {
		return nil
	}

	kinds := make([]ChartKind, 0, len(p.ChartData))
	for _, k := range KnownChartKinds {
		if _, ok := p.ChartData[k]; ok {
			kinds = append(kinds, k)
		}
	}

	var unknown []ChartKind
	for k := range p.ChartData {
		if !k.IsKnown() {
			unknown = append(unknown, k)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })

	return append(kinds, unknown...)
}

// =============================================================================
// COLLABORATOR RESULT SHAPES
// =============================================================================

// SearchResult is the answer to a structured filtered search.
type SearchResult struct {
	TotalCount int           `json:"total_count"`
	Events     []EventRecord `json:"events"`
}

// HistoryItem is one persisted question/results pair replayed on start.
type HistoryItem struct {
	Question  string           `json:"question"`
	Results   *ResponsePayload `json:"results"`
	Timestamp time.Time        `json:"timestamp,omitempty"`
}
