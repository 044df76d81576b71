// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// Display limits.
const (
	// SampleSize caps the events returned in a payload.
	SampleSize = 100
	// MessageLimit truncates event messages in a payload.
	MessageLimit = 100
	// TopN caps ranked charts.
	TopN = 10
	// HighRisk is the risk score counted as high risk.
	HighRisk = 80
)

// =============================================================================
// CHARTS
// =============================================================================

// Charts aggregates events into every chart kind.
func Charts(events []model.EventRecord, start, end time.Time) map[model.ChartKind]model.SeriesData {
	return map[model.ChartKind]model.SeriesData{
		model.ChartTimeline:             Timeline(events, start, end),
		model.ChartTopIPs:               topCounts(events, TopN, func(e model.EventRecord) string { return e.SourceIP }),
		model.ChartEventTypes:           topCounts(events, 0, func(e model.EventRecord) string { return e.EventType }),
		model.ChartSeverityDistribution: severityCounts(events),
		model.ChartTopUsers:             topCounts(events, TopN, func(e model.EventRecord) string { return e.User }),
		model.ChartGeoDistribution:      topCounts(events, TopN, func(e model.EventRecord) string { return e.Country }),
	}
}

// Timeline buckets events by hour, or by day for windows over three days.
func Timeline(events []model.EventRecord, start, end time.Time) model.SeriesData {
	step, layout := time.Hour, "15:04"
	if end.Sub(start) > 72*time.Hour {
		step, layout = 24*time.Hour, "01-02"
	}
	first := start.UTC().Truncate(step)

	n := int(end.UTC().Sub(first)/step) + 1
	if n < 1 {
		n = 1
	}
	labels := make([]string, n)
	values := make([]float64, n)
	for i := range labels {
		labels[i] = first.Add(time.Duration(i) * step).Format(layout)
	}
	for _, e := range events {
		idx := int(e.Timestamp.UTC().Sub(first) / step)
		if idx >= 0 && idx < n {
			values[idx]++
		}
	}
	return model.SeriesData{Labels: labels, Values: values, Title: "Events over time"}
}

// topCounts counts events by key, largest first, ties by name. limit <= 0
// keeps every key.
func topCounts(events []model.EventRecord, limit int, key func(model.EventRecord) string) model.SeriesData {
	counts := make(map[string]int)
	for _, e := range events {
		if k := key(e); k != "" {
			counts[k]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := model.SeriesData{Labels: keys, Values: make([]float64, len(keys))}
	for i, k := range keys {
		out.Values[i] = float64(counts[k])
	}
	return out
}

func severityCounts(events []model.EventRecord) model.SeriesData {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Severity]++
	}
	out := model.SeriesData{Labels: append([]string(nil), Severities...), Values: make([]float64, len(Severities))}
	for i, s := range Severities {
		out.Values[i] = float64(counts[s])
	}
	return out
}

// =============================================================================
// INSIGHTS
// =============================================================================

// Insights derives analyst notes from events using the bundled threat
// intelligence snapshot.
func Insights(events []model.EventRecord) []model.Insight {
	return InsightsWith(events, bundledIntel)
}

var bundledIntel = DefaultThreatIntel()

// InsightsWith derives analyst notes from events, enriching them from ti.
// A nil ti skips enrichment.
func InsightsWith(events []model.EventRecord, ti *ThreatIntel) []model.Insight {
	if len(events) == 0 {
		return []model.Insight{{
			Type:    model.InsightInfo,
			Title:   "No matching events",
			Message: "Nothing matched this question in the selected window.",
		}}
	}

	var out []model.Insight
	var highRisk, foreign int
	var exfilBytes int64
	bruteSources := make(map[string]bool)
	for _, e := range events {
		if e.RiskScore >= HighRisk {
			highRisk++
		}
		if e.Country != "" && e.Country != "US" {
			foreign++
		}
		if e.EventType == TypeBruteForceAttempt {
			bruteSources[e.SourceIP] = true
		}
		if e.EventType == TypeDataExfiltration {
			exfilBytes += e.BytesSent
		}
	}

	if highRisk > 0 {
		out = append(out, model.Insight{
			Type:           model.InsightDanger,
			Title:          fmt.Sprintf("%s high-risk events", filter.FormatCount(highRisk)),
			Message:        fmt.Sprintf("%d%% of matching events score %d or above.", highRisk*100/len(events), HighRisk),
			Recommendation: "Triage the highest risk scores first.",
		})
	}
	if len(bruteSources) > 0 {
		out = append(out, model.Insight{
			Type:           model.InsightWarning,
			Title:          "Brute force activity",
			Message:        fmt.Sprintf("%d source addresses repeatedly failed logins against privileged accounts.", len(bruteSources)),
			Recommendation: "Block the offending networks and enforce lockout on admin, root and service accounts.",
		})
	}
	if exfilBytes > 0 {
		out = append(out, model.Insight{
			Type:           model.InsightDanger,
			Title:          "Possible data exfiltration",
			Message:        fmt.Sprintf("%.1f MB left the network toward foreign destinations.", float64(exfilBytes)/1_000_000),
			Recommendation: "Review egress for the affected users.",
		})
	}
	hits := ti.match(events)
	if hits.events > 0 {
		out = append(out, model.Insight{
			Type:           model.InsightDanger,
			Title:          "Known malicious infrastructure",
			Message:        fmt.Sprintf("%d events came from %d addresses listed by %s.", hits.events, len(hits.sources), sortedKeys(hits.feeds)),
			Recommendation: "Block the listed addresses at the perimeter and hunt for successful sessions from them.",
		})
	}
	if foreign > 0 {
		out = append(out, model.Insight{
			Type:    model.InsightInfo,
			Title:   "Foreign sources",
			Message: fmt.Sprintf("%d%% of events originate outside the US.", foreign*100/len(events)),
		})
	}
	if seen := ti.techniquesSeen(events); len(seen) > 0 {
		out = append(out, model.Insight{
			Type:    model.InsightInfo,
			Title:   "ATT&CK techniques",
			Message: strings.Join(seen, ", ") + ".",
		})
	}
	if highRisk == 0 && len(bruteSources) == 0 && exfilBytes == 0 && hits.events == 0 {
		out = append(out, model.Insight{
			Type:    model.InsightSuccess,
			Title:   "No high-risk activity",
			Message: "Matching events are routine.",
		})
	}
	return out
}

// =============================================================================
// SUMMARY AND SAMPLE
// =============================================================================

// Summary describes the result count and window.
func Summary(total int, w *Window) string {
	s := fmt.Sprintf("Found %d events", total)
	if w != nil {
		s += " " + w.Describe()
	}
	return s
}

// Sample returns the newest events, at most SampleSize, with messages
// truncated to MessageLimit characters.
func Sample(events []model.EventRecord) []model.EventRecord {
	sorted := append([]model.EventRecord(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })
	if len(sorted) > SampleSize {
		sorted = sorted[:SampleSize]
	}
	for i := range sorted {
		sorted[i].Message = truncateMessage(sorted[i].Message)
	}
	return sorted
}

func truncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MessageLimit {
		return msg
	}
	return strings.TrimSpace(string(runes[:MessageLimit])) + "..."
}
