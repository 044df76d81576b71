// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter normalizes structured search inputs into a canonical,
// sparse filter set.
package filter

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount formats n with thousands separators ("12,345").
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatTimeRange renders a window as "last 24 hours" / "last 1 day".
func FormatTimeRange(tr TimeRange) string {
	unit := strings.TrimSuffix(string(tr.Unit), "s")
	if tr.Value != 1 {
		unit += "s"
	}
	return fmt.Sprintf("last %d %s", tr.Value, unit)
}

// TimestampLayout is the layout used for event timestamps in tables.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in UTC, or "-" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimestampLayout)
}

// FormatValue renders one filter value for display.
func FormatValue(k Key, v any) string {
	switch val := v.(type) {
	case TimeRange:
		return FormatTimeRange(val)
	case RiskRange:
		return fmt.Sprintf("%d-%d", val.Low, val.High)
	case []string:
		return strings.Join(val, ", ")
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Summary renders the set as one line of badge text, keys in display order.
func Summary(s Set) string {
	if len(s) == 0 {
		return "no filters"
	}
	parts := make([]string, 0, len(s))
	for _, k := range s.SortedKeys() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, FormatValue(k, s[k])))
	}
	return strings.Join(parts, " | ")
}
