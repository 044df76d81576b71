// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the siemspeak console.

Colors are declared once as light/dark pairs (colors.go). A Theme resolves
every pair for one display mode, so switching modes means building a new
Theme rather than relying on terminal background detection at render time.

# Color System (colors.go)

  - Purple - Assistant turns, selections
  - Cyan - Brand color, prompts, counts
  - Emerald - Success insights, low risk
  - Amber - Warning insights, high risk, confirmations
  - Rose - Errors, danger insights, highest risk
  - Blue - Informational insights

SeriesColors is the ordered palette charts cycle through.

# Theme System (theme.go)

	theme := styles.NewTheme(true)
	theme.Bucket(styles.BucketHigh).Render("82")
	theme.Insight(model.InsightDanger)
	palette := theme.ChartPalette()

GlamourStyle and SyntaxStyle name the markdown and highlighting styles that
match the mode.

# Status Indicators

Meaning never depends on color alone; insights and status lines carry an
ASCII indicator:

	StatusIndicators.Success   - [OK]
	StatusIndicators.Error     - [X]
	StatusIndicators.Warning   - [!]
	StatusIndicators.Info      - [i]
*/
package styles
