// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a response payload into a console view.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/util"
)

// =============================================================================
// TABLE COLUMNS
// =============================================================================

type column struct {
	title string
	max   int
	cell  func(Row) string
}

var fullColumns = []column{
	{"Time", 19, func(r Row) string { return filter.FormatTimestamp(r.Record.Timestamp) }},
	{"Type", 22, func(r Row) string { return r.Record.EventType }},
	{"Source IP", 15, func(r Row) string { return r.Record.SourceIP }},
	{"User", 16, func(r Row) string { return r.Record.User }},
	{"Severity", 8, func(r Row) string { return r.Record.Severity }},
	{"Risk", 4, func(r Row) string { return strconv.Itoa(r.Record.RiskScore) }},
	{"Country", 7, func(r Row) string { return r.Record.Country }},
	{"Message", 60, func(r Row) string { return r.Record.Message }},
}

// previewColumns drop the wide columns.
var previewColumns = []column{fullColumns[0], fullColumns[1], fullColumns[2], fullColumns[4], fullColumns[5]}

// =============================================================================
// PAINTING
// =============================================================================

// String paints the view with theme.
func (v View) String(theme *styles.Theme) string {
	if theme == nil {
		theme = styles.NewTheme(true)
	}
	var sections []string

	sections = append(sections, v.paintSummary(theme))
	for _, in := range v.Insights {
		sections = append(sections, v.paintInsight(theme, in.Type, in.Title, in.Message, in.Recommendation))
	}
	sections = append(sections, theme.Caption.Render(v.Caption))
	if len(v.Rows) > 0 {
		sections = append(sections, v.paintTable(theme))
	}
	if v.Truncated {
		sections = append(sections, theme.TableNote.Render(
			fmt.Sprintf("%d more rows not shown", v.HiddenRows)))
	}
	if v.GeneratedQuery != "" {
		sections = append(sections, theme.QueryBlock.Render(highlight(v.GeneratedQuery, theme.SyntaxStyle())))
	}
	return strings.Join(sections, "\n\n")
}

func (v View) paintSummary(theme *styles.Theme) string {
	count := theme.SummaryCount.Render(v.TotalLabel) + theme.Summary.Render(" events")
	if v.ProcessingTime != "" {
		count += theme.ProcessingTag.Render("  (" + v.ProcessingTime + ")")
	}
	if v.Summary == "" {
		return count
	}
	if v.Preview || !looksLikeMarkdown(v.Summary) {
		return theme.Summary.Render(v.Summary) + "\n" + count
	}
	return strings.TrimRight(markdown(v.Summary, theme.GlamourStyle(), v.Width), "\n") + "\n" + count
}

func (v View) paintInsight(theme *styles.Theme, kind model.InsightType, title, message, advice string) string {
	accent := theme.Insight(kind)
	head := theme.InsightTitle.Foreground(accent).Render(styles.InsightIndicator(kind) + " " + title)
	body := head
	if message != "" {
		body += "\n" + message
	}
	if advice != "" {
		body += "\n" + theme.InsightAdvice.Render("→ "+advice)
	}
	box := theme.InsightBox.BorderForeground(accent)
	if v.Width > 4 {
		box = box.Width(v.Width - 2)
	}
	return box.Render(body)
}

func (v View) paintTable(theme *styles.Theme) string {
	cols := fullColumns
	if v.Preview {
		cols = previewColumns
	}

	// Column widths fit the widest cell, bounded by each column's max.
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = util.StringWidth(col.title)
		for _, r := range v.Rows {
			if w := util.StringWidth(col.cell(r)); w > widths[i] {
				widths[i] = w
			}
		}
		if widths[i] > col.max {
			widths[i] = col.max
		}
	}
	if v.Width > 0 {
		shrinkLast(widths, v.Width)
	}

	var b strings.Builder
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = theme.TableHeader.Render(util.PadRight(col.title, widths[i]))
	}
	b.WriteString(strings.Join(header, " "))

	for _, r := range v.Rows {
		b.WriteByte('\n')
		cells := make([]string, len(cols))
		for i, col := range cols {
			text := util.PadRight(util.TruncateWidth(col.cell(r), widths[i]), widths[i])
			switch col.title {
			case "Severity":
				cells[i] = theme.Bucket(string(r.Severity)).Render(text)
			case "Risk":
				cells[i] = theme.Bucket(string(r.Risk)).Render(text)
			default:
				cells[i] = theme.TableCell.Render(text)
			}
		}
		b.WriteString(strings.Join(cells, " "))
	}
	return b.String()
}

// shrinkLast narrows the last column so the row fits total cells.
func shrinkLast(widths []int, total int) {
	used := len(widths) - 1
	for _, w := range widths {
		used += w
	}
	last := len(widths) - 1
	if over := used - total; over > 0 {
		widths[last] -= over
		if widths[last] < 3 {
			widths[last] = 3
		}
	}
}

// =============================================================================
// MARKDOWN AND HIGHLIGHTING
// =============================================================================

var markdownHint = regexp.MustCompile("(?m)(\\*\\*|__|`|^#{1,6} |^[-*] |^\\d+\\. )")

func looksLikeMarkdown(s string) bool {
	return markdownHint.MatchString(s)
}

// markdown renders s with glamour, falling back to the raw text.
func markdown(s, style string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return s
	}
	out, err := r.Render(s)
	if err != nil {
		return s
	}
	return out
}

// highlight colors a JSON query, falling back to plain text.
func highlight(code, styleName string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// Plain paints the view without color, for pipes and logs.
func (v View) Plain() string {
	plain := styles.NewTheme(true)
	out := v.String(plain)
	return stripANSI(out)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
