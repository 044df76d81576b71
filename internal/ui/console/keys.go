// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console is the interactive Bubble Tea front end of siemspeak.
package console

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the console key bindings.
type KeyMap struct {
	Submit      key.Binding
	Accept      key.Binding
	Next        key.Binding
	Prev        key.Binding
	Cancel      key.Binding
	ToggleTheme key.Binding
	Clear       key.Binding
	ToggleQuery key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask / pick suggestion"),
		),
		Accept: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "accept suggestion"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("Down/C-n", "next suggestion"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("Up/C-p", "previous suggestion"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close popup / leave full screen"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle dark/light"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear conversation"),
		),
		ToggleQuery: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "show generated query"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// HelpLines returns "key  description" pairs for the help turn.
func (k KeyMap) HelpLines() []string {
	bindings := []key.Binding{
		k.Submit, k.Accept, k.Next, k.Prev, k.Cancel,
		k.ToggleTheme, k.Clear, k.ToggleQuery, k.PageUp, k.PageDown, k.Quit,
	}
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, padKey(h.Key)+h.Desc)
	}
	return lines
}

func padKey(s string) string {
	const width = 12
	for len(s) < width {
		s += " "
	}
	return s
}
