// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/render"
	"github.com/jeranaias/siemspeak/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown. Each response is laid out with
// the same renderer the console uses.
func (e *MarkdownExporter) Export(t *storage.Transcript) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	var sb strings.Builder
	title := t.Title
	if title == "" {
		title = "siemspeak session"
	}

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(title))
		if !t.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "date: %s\n", t.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "questions: %d\n", len(t.Questions()))
		fmt.Fprintf(&sb, "exported: %s\n", time.Now().Format(time.RFC3339))
		sb.WriteString("generator: siemspeak\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		if t.Backend != "" {
			fmt.Fprintf(&sb, "- **Backend**: %s\n", t.Backend)
		}
		if !t.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "- **Created**: %s\n", formatTimestamp(t.CreatedAt))
		}
		fmt.Fprintf(&sb, "- **Questions**: %d\n", len(t.Questions()))
		if len(t.Filters) > 0 {
			fmt.Fprintf(&sb, "- **Filters**: %s\n", formatFilters(t.Filters))
		}
		sb.WriteString("\n---\n\n")
	}

	for i, turn := range t.Turns {
		sb.WriteString(e.formatTurn(turn))
		if i < len(t.Turns)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	sb.WriteString("\n---\n\n*Exported from siemspeak*\n")
	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }
func (e *MarkdownExporter) MimeType() string      { return "text/markdown" }

func (e *MarkdownExporter) formatTurn(turn storage.TranscriptTurn) string {
	var sb strings.Builder
	stamp := ""
	if !turn.Timestamp.IsZero() {
		stamp = fmt.Sprintf(" <sub>%s</sub>", turn.Timestamp.Format("15:04:05"))
	}

	switch turn.Role {
	case model.RoleUser:
		fmt.Fprintf(&sb, "### %s%s\n\n", turn.Role.DisplayName(), stamp)
		fmt.Fprintf(&sb, "> %s\n", escapeMarkdown(turn.Content))
	case model.RoleAssistant:
		fmt.Fprintf(&sb, "### %s%s\n\n", turn.Role.DisplayName(), stamp)
		if turn.Response == nil {
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
			break
		}
		view := render.Render(turn.Response, render.Options{
			RowCap:    e.options.RowCap,
			ShowQuery: e.options.IncludeQueries,
		})
		sb.WriteString(view.Markdown())
	case model.RoleError:
		fmt.Fprintf(&sb, "### %s%s\n\n", turn.Role.DisplayName(), stamp)
		fmt.Fprintf(&sb, "**Error:** %s\n", turn.Content)
	default:
		fmt.Fprintf(&sb, "_%s_\n", turn.Content)
	}
	return sb.String()
}

func formatFilters(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("`%s=%s`", k, filters[k]))
	}
	return strings.Join(parts, ", ")
}

// escapeMarkdown escapes characters that would start markup in a heading or
// quote line.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`,
		"[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "\n", " ",
	)
	return r.Replace(s)
}

// escapeYAML quotes a frontmatter value.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return `"` + s + `"`
}
