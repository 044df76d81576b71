// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable widgets of the siemspeak console.
//
// # Components
//
//   - StatusBar: bottom line with state, display mode and the filter badge
//   - SuggestionPopup: the autocomplete list under the input
//   - ConfirmDialog: yes/no gate in front of destructive actions
//   - Alert: blocking error box dismissed with Enter or Esc
//
// Components hold a *styles.Theme and are re-themed with SetTheme when the
// display mode changes.
package components
