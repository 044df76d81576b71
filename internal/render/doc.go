// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a response payload into a console view.
//
// Render builds a View in a fixed order: summary with the total event count,
// insight cards in the order received, a sampled-of-total caption and the
// event table capped at a row limit. Preview builds the small inline view,
// which takes its own row count and ignores the cap.
//
// Building a View is pure. Painting it (View.String) applies a styles.Theme,
// renders markdown summaries through glamour and highlights the generated
// query with chroma.
package render
