// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/siemspeak/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders the Markdown export through goldmark into a page with
// embedded CSS. Raw HTML in transcript content is dropped by goldmark.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type htmlPage struct {
	Title     string
	Theme     string
	Generated string
	Created   string
	Body      template.HTML
	CSS       template.CSS
}

// Export converts a transcript to a standalone HTML page.
func (e *HTMLExporter) Export(t *storage.Transcript) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	// The page header carries the metadata; skip the YAML frontmatter.
	mdOpts := *e.options
	mdOpts.IncludeMetadata = false
	source, err := NewMarkdownExporter(&mdOpts).Export(t)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := e.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	page := htmlPage{
		Title:     t.Title,
		Theme:     theme,
		Generated: time.Now().Format(time.RFC3339),
		Body:      template.HTML(body.String()),
		CSS:       template.CSS(pageCSS),
	}
	if page.Title == "" {
		page.Title = "siemspeak session"
	}
	if !t.CreatedAt.IsZero() && e.options.IncludeMetadata {
		page.Created = formatTimestamp(t.CreatedAt)
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, page); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

func (e *HTMLExporter) FileExtension() string { return ".html" }
func (e *HTMLExporter) MimeType() string      { return "text/html" }

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="generator" content="siemspeak">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body class="{{.Theme}}-theme">
<div class="container">
<header class="header">
<p class="meta">{{if .Created}}Session started {{.Created}} · {{end}}Exported {{.Generated}}</p>
</header>
<main class="transcript">
{{.Body}}
</main>
</div>
</body>
</html>
`))

const pageCSS = `
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; line-height: 1.5; }
.dark-theme { background: #1a1b26; color: #c0caf5; }
.light-theme { background: #ffffff; color: #24292f; }
.container { max-width: 1100px; margin: 0 auto; padding: 2rem; }
.meta { font-size: 0.85rem; opacity: 0.7; }
blockquote { border-left: 4px solid #7aa2f7; margin: 0.5rem 0; padding: 0.25rem 1rem; }
table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
th, td { border: 1px solid rgba(128,128,128,0.35); padding: 4px 8px; text-align: left; }
pre { overflow-x: auto; padding: 1rem; border-radius: 6px; background: rgba(128,128,128,0.12); }
hr { border: none; border-top: 1px solid rgba(128,128,128,0.3); margin: 1.5rem 0; }
`
