// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a response payload into a console view.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// DefaultRowCap is the table row limit of the full view.
const DefaultRowCap = 50

// DefaultPreviewRows is the row count of the inline preview.
const DefaultPreviewRows = 5

// Options control how a payload is laid out.
type Options struct {
	// RowCap limits table rows in the full view (0 = DefaultRowCap).
	RowCap int
	// Width is the paint width in cells (0 = unbounded).
	Width int
	// ShowQuery includes the generated query block.
	ShowQuery bool
}

// View is a laid-out payload, ready to paint.
type View struct {
	Summary        string
	TotalEvents    int
	TotalLabel     string
	Insights       []model.Insight
	Caption        string
	Rows           []Row
	Truncated      bool
	HiddenRows     int
	ProcessingTime string
	GeneratedQuery string
	Preview        bool
	Width          int
}

// Row is one table row with its presentation buckets resolved.
type Row struct {
	Record   model.EventRecord
	Severity Bucket
	Risk     Bucket
}

// Render lays out p as the full view.
func Render(p *model.ResponsePayload, opts Options) View {
	rowCap := opts.RowCap
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	v := layout(p, rowCap)
	v.Width = opts.Width
	if !opts.ShowQuery {
		v.GeneratedQuery = ""
	}
	return v
}

// Preview lays out p as the inline view with n rows. The full-view row cap
// does not apply.
func Preview(p *model.ResponsePayload, n int) View {
	if n < 0 {
		n = 0
	}
	v := layout(p, -1)
	if len(v.Rows) > n {
		v.Rows = v.Rows[:n]
	}
	v.Preview = true
	v.GeneratedQuery = ""
	return v
}

// layout builds a view. rowCap < 0 keeps every row.
func layout(p *model.ResponsePayload, rowCap int) View {
	if p == nil {
		p = &model.ResponsePayload{}
	}

	v := View{
		Summary:        p.Summary,
		TotalEvents:    p.TotalEvents,
		TotalLabel:     filter.FormatCount(p.TotalEvents),
		Insights:       append([]model.Insight(nil), p.Insights...),
		ProcessingTime: p.ProcessingTimeLabel,
		GeneratedQuery: prettyQuery(p.GeneratedQuery),
	}

	sampled := p.SampledEvents
	if sampled == 0 {
		sampled = len(p.TableData)
	}
	v.Caption = fmt.Sprintf("%s of %s events", filter.FormatCount(sampled), filter.FormatCount(p.TotalEvents))

	records := p.TableData
	if rowCap >= 0 && len(records) > rowCap {
		v.Truncated = true
		v.HiddenRows = len(records) - rowCap
		records = records[:rowCap]
	}
	v.Rows = make([]Row, len(records))
	for i, rec := range records {
		v.Rows[i] = Row{
			Record:   rec,
			Severity: SeverityBucket(rec.Severity),
			Risk:     RiskBucket(rec.RiskScore),
		}
	}
	return v
}

// prettyQuery indents a raw JSON query. Invalid JSON is returned as-is.
func prettyQuery(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
