// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/siemspeak/internal/filter"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is one tab-completion candidate.
type Completion struct {
	// Value replaces the token being completed
	Value string
	// Display is shown in the popup
	Display     string
	Description string
	Score       int
}

// Completer completes command names and arguments.
type Completer struct {
	registry *Registry

	// ChartsFn returns the live chart ids.
	ChartsFn func() []string
}

// NewCompleter creates a completer over registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns candidates for the token at the end of input, best
// first. Non-command input has no completions.
func (c *Completer) Complete(input string) []Completion {
	if !IsCommand(input) {
		return nil
	}
	trailingSpace := strings.HasSuffix(input, " ")
	parts := splitCommandLine(strings.TrimLeft(input, " "))

	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if trailingSpace {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}
	return c.completeArg(cmd, argIndex, partial)
}

func (c *Completer) completeCommands(partial string) []Completion {
	partial = strings.ToLower(partial)
	var out []Completion
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if partial != "/" && strings.HasPrefix(alias, partial) {
				out = append(out, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}
	sortCompletions(out)
	return out
}

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if len(cmd.Args) == 0 {
		return nil
	}
	// A trailing variadic filter argument keeps completing.
	if argIndex >= len(cmd.Args) && cmd.Args[len(cmd.Args)-1].Type == ArgTypeFilter {
		argIndex = len(cmd.Args) - 1
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	case ArgTypeChart:
		if c.ChartsFn == nil {
			return nil
		}
		return completeFromList(c.ChartsFn(), partial)
	case ArgTypeFilter:
		return completeFilterKey(partial)
	}
	return nil
}

// completeFilterKey offers "key=" for partially typed filter keys.
func completeFilterKey(partial string) []Completion {
	if strings.Contains(partial, "=") {
		return nil
	}
	keys := make([]string, len(filter.Keys))
	for i, k := range filter.Keys {
		keys[i] = string(k) + "="
	}
	return completeFromList(keys, partial)
}

func completeFromList(values []string, partial string) []Completion {
	partial = strings.ToLower(partial)
	var out []Completion
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), partial) {
			out = append(out, Completion{Value: v, Display: v, Score: calculateScore(v, partial)})
		}
	}
	sortCompletions(out)
	return out
}

// calculateScore ranks a candidate; higher is better. Exact matches win,
// then short prefix matches.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50 + 20 - len(value)
	}
	return score - len(value)/2
}

// sortCompletions orders by score, then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
