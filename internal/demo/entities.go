// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package demo is an in-process backend that answers questions with
// synthetic security events.
package demo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/siemspeak/internal/filter"
)

// WindowUnit names how a question's time window was expressed.
type WindowUnit string

const (
	UnitNow       WindowUnit = "now"
	UnitYesterday WindowUnit = "yesterday"
	UnitHours     WindowUnit = "hours"
	UnitDays      WindowUnit = "days"
	UnitWeeks     WindowUnit = "weeks"
)

// Window is a parsed time window.
type Window struct {
	Unit  WindowUnit `json:"unit"`
	Value int        `json:"value"`
}

// Bounds returns the absolute interval the window covers at now.
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	switch w.Unit {
	case UnitNow:
		return now.Add(-time.Hour), now
	case UnitYesterday:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return start, start.Add(24*time.Hour - time.Second)
	case UnitHours:
		return now.Add(-time.Duration(w.Value) * time.Hour), now
	case UnitDays:
		return now.AddDate(0, 0, -w.Value), now
	case UnitWeeks:
		return now.AddDate(0, 0, -7*w.Value), now
	}
	return now.Add(-24 * time.Hour), now
}

// Describe returns the window as summary text, e.g. "in the last 24 hours".
func (w Window) Describe() string {
	switch w.Unit {
	case UnitNow:
		return "in the last hour"
	case UnitYesterday:
		return "yesterday"
	}
	unit := string(w.Unit)
	if w.Value == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return fmt.Sprintf("in the last %d %s", w.Value, unit)
}

// Entities is what a question asks for.
type Entities struct {
	Intent    string   `json:"intent"`
	Window    *Window  `json:"time_range"`
	EventType string   `json:"event_type,omitempty"`
	Status    string   `json:"status,omitempty"`
	IPs       []string `json:"ips"`
	Filters   []string `json:"filters"`
}

// HasFilter reports whether a named filter hint was found.
func (e Entities) HasFilter(name string) bool {
	for _, f := range e.Filters {
		if f == name {
			return true
		}
	}
	return false
}

var (
	windowPatterns = []struct {
		re   *regexp.Regexp
		unit WindowUnit
	}{
		{regexp.MustCompile(`last (\d+) (?:hour|hours|hr|hrs)\b`), UnitHours},
		{regexp.MustCompile(`last (\d+) (?:day|days)\b`), UnitDays},
		{regexp.MustCompile(`last (\d+) (?:week|weeks)\b`), UnitWeeks},
	}
	ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	wordSplit = regexp.MustCompile(`[^a-z0-9]+`)
)

// ParseQuestion extracts entities from a natural-language question.
func ParseQuestion(text string) Entities {
	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range wordSplit.Split(lower, -1) {
		if w != "" {
			words[w] = true
		}
	}
	has := func(ws ...string) bool {
		for _, w := range ws {
			if words[w] {
				return true
			}
		}
		return false
	}

	e := Entities{Intent: "search", IPs: []string{}, Filters: []string{}}

	switch {
	case words["yesterday"]:
		e.Window = &Window{Unit: UnitYesterday, Value: 1}
	case has("today", "now"):
		e.Window = &Window{Unit: UnitNow, Value: 0}
	default:
		for _, p := range windowPatterns {
			if m := p.re.FindStringSubmatch(lower); m != nil {
				n, err := strconv.Atoi(m[1])
				if err == nil && n > 0 {
					e.Window = &Window{Unit: p.unit, Value: n}
				}
				break
			}
		}
	}

	switch {
	case has("login", "logins", "authentication", "auth"):
		e.EventType = "authentication"
	case has("malware", "virus", "threat", "threats"):
		e.EventType = "malware"
	case has("vpn", "remote"):
		e.Filters = append(e.Filters, "vpn")
	}

	switch {
	case has("failed", "failure", "failures"):
		e.Status = "failed"
	case has("success", "successful"):
		e.Status = "success"
	}

	e.IPs = append(e.IPs, ipPattern.FindAllString(text, -1)...)
	return e
}

// FilterSet converts the entities to a filter set for a structured search.
func (e Entities) FilterSet() filter.Set {
	set := filter.Set{}
	if e.Window != nil {
		switch e.Window.Unit {
		case UnitHours:
			set[filter.KeyTimeRange] = filter.Relative(filter.UnitHours, e.Window.Value)
		case UnitDays:
			set[filter.KeyTimeRange] = filter.Relative(filter.UnitDays, e.Window.Value)
		case UnitWeeks:
			set[filter.KeyTimeRange] = filter.Relative(filter.UnitDays, 7*e.Window.Value)
		case UnitNow:
			set[filter.KeyTimeRange] = filter.Relative(filter.UnitHours, 1)
		case UnitYesterday:
			set[filter.KeyTimeRange] = filter.Relative(filter.UnitDays, 1)
		}
	}
	if e.Status != "" {
		set[filter.KeyStatus] = e.Status
	}
	if len(e.IPs) > 0 {
		set[filter.KeySourceIP] = e.IPs[0]
	}
	return set
}
