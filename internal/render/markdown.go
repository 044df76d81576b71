// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a response payload into a console view.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
)

// Markdown writes the view as GitHub-flavored markdown, used by transcript
// export and non-terminal output.
func (v View) Markdown() string {
	var b strings.Builder

	if v.Summary != "" {
		b.WriteString(v.Summary)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "**%s events**", v.TotalLabel)
	if v.ProcessingTime != "" {
		fmt.Fprintf(&b, " _(%s)_", v.ProcessingTime)
	}
	b.WriteString("\n\n")

	for _, in := range v.Insights {
		fmt.Fprintf(&b, "> %s **%s**", styles.InsightIndicator(in.Type), in.Title)
		if in.Message != "" {
			fmt.Fprintf(&b, "  \n> %s", in.Message)
		}
		if in.Recommendation != "" {
			fmt.Fprintf(&b, "  \n> _%s_", in.Recommendation)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "_%s_\n", v.Caption)

	if len(v.Rows) > 0 {
		b.WriteString("\n| Time | Type | Source IP | User | Severity | Risk | Message |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, r := range v.Rows {
			rec := r.Record
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				filter.FormatTimestamp(rec.Timestamp),
				cell(rec.EventType), cell(rec.SourceIP), cell(rec.User),
				cell(rec.Severity), strconv.Itoa(rec.RiskScore), cell(rec.Message))
		}
	}
	if v.Truncated {
		fmt.Fprintf(&b, "\n_%d more rows not shown_\n", v.HiddenRows)
	}
	if v.GeneratedQuery != "" {
		b.WriteString("\n```json\n")
		b.WriteString(v.GeneratedQuery)
		b.WriteString("\n```\n")
	}
	return b.String()
}

// cell escapes pipes and newlines for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
