// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
package commands

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// ACTION
// =============================================================================

// Action is what an invocation asks the console to do. The set is closed.
type Action int

const (
	ActionNone Action = iota
	ActionFilter
	ActionReset
	ActionClear
	ActionTheme
	ActionExportImage
	ActionExportTable
	ActionFullscreen
	ActionRefine
	ActionQuery
	ActionSave
	ActionHelp
	ActionQuit
)

var actionNames = [...]string{
	ActionNone:        "none",
	ActionFilter:      "filter",
	ActionReset:       "reset",
	ActionClear:       "clear",
	ActionTheme:       "theme",
	ActionExportImage: "export-image",
	ActionExportTable: "export-table",
	ActionFullscreen:  "fullscreen",
	ActionRefine:      "refine",
	ActionQuery:       "query",
	ActionSave:        "save",
	ActionHelp:        "help",
	ActionQuit:        "quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is one slash command.
type Command struct {
	// Name is the primary command name (e.g., "/filter")
	Name string

	// Aliases are alternative names (e.g., "/f")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/theme [dark|light]")
	Usage string

	// Args defines the positional arguments
	Args []ArgDef

	// Action is what the command decodes to. /export decodes by its first
	// argument instead.
	Action Action

	// Category for grouping in help display
	Category string

	// Hidden commands don't appear in help
	Hidden bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string
	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form text
	ArgTypeEnum                  // One of Values
	ArgTypeChart                 // Live chart id
	ArgTypeFilter                // key=value filter pair
	ArgTypeFile                  // Output path
)

// Categories in help order.
const (
	CategorySearch  = "Search"
	CategoryCharts  = "Charts"
	CategorySession = "Session"
)

var categoryOrder = []string{CategorySearch, CategoryCharts, CategorySession}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	for _, cmd := range builtins() {
		r.Register(cmd)
	}
	return r
}

// Register adds a command, replacing any command with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, case-insensitively.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}

// HelpText renders the visible commands as plain text, one per line,
// grouped by category.
func (r *Registry) HelpText() string {
	groups := r.ByCategory()
	var sb strings.Builder
	for _, cat := range categoryOrder {
		cmds := groups[cat]
		if len(cmds) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(cat + ":\n")
		for _, cmd := range cmds {
			fmt.Fprintf(&sb, "  %-36s %s\n", cmd.Usage, cmd.Description)
		}
	}
	return sb.String()
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// FilterKeyAliases maps short filter names onto canonical keys.
var FilterKeyAliases = map[string]string{
	"time":     "time_range",
	"window":   "time_range",
	"sev":      "severity",
	"type":     "event_type",
	"ip":       "source_ip",
	"src":      "source_ip",
	"risk":     "risk_score",
	"keyword":  "keywords",
	"kw":       "keywords",
	"username": "user",
}

func builtins() []*Command {
	chartArg := ArgDef{Name: "chart", Required: true, Type: ArgTypeChart, Description: "chart id, e.g. chart-timeline"}

	return []*Command{
		{
			Name:        "/filter",
			Aliases:     []string{"/f"},
			Description: "Apply structured filters",
			Usage:       "/filter key=value ...",
			Args:        []ArgDef{{Name: "filter", Required: true, Type: ArgTypeFilter, Description: "key=value"}},
			Action:      ActionFilter,
			Category:    CategorySearch,
		},
		{
			Name:        "/reset",
			Description: "Restore the default filters",
			Usage:       "/reset",
			Action:      ActionReset,
			Category:    CategorySearch,
		},
		{
			Name:        "/refine",
			Aliases:     []string{"/r"},
			Description: "Re-ask the last question with more detail",
			Usage:       "/refine <text>",
			Args:        []ArgDef{{Name: "text", Required: true, Type: ArgTypeString, Description: "extra detail"}},
			Action:      ActionRefine,
			Category:    CategorySearch,
		},
		{
			Name:        "/query",
			Description: "Show the last generated query",
			Usage:       "/query",
			Action:      ActionQuery,
			Category:    CategorySearch,
		},
		{
			Name:        "/export",
			Aliases:     []string{"/e"},
			Description: "Export a chart as an image or a table",
			Usage:       "/export image|table <chart> [file]",
			Args: []ArgDef{
				{Name: "format", Required: true, Type: ArgTypeEnum, Values: []string{"image", "table"}, Description: "image or table"},
				chartArg,
				{Name: "file", Type: ArgTypeFile, Description: "output path"},
			},
			Category: CategoryCharts,
		},
		{
			Name:        "/fullscreen",
			Aliases:     []string{"/fs"},
			Description: "Show one chart full screen",
			Usage:       "/fullscreen <chart>",
			Args:        []ArgDef{chartArg},
			Action:      ActionFullscreen,
			Category:    CategoryCharts,
		},
		{
			Name:        "/theme",
			Aliases:     []string{"/t"},
			Description: "Toggle or set the display mode",
			Usage:       "/theme [dark|light]",
			Args:        []ArgDef{{Name: "mode", Type: ArgTypeEnum, Values: []string{"dark", "light"}, Description: "display mode"}},
			Action:      ActionTheme,
			Category:    CategorySession,
		},
		{
			Name:        "/clear",
			Description: "Clear the conversation",
			Usage:       "/clear",
			Action:      ActionClear,
			Category:    CategorySession,
		},
		{
			Name:        "/save",
			Aliases:     []string{"/s"},
			Description: "Save the transcript",
			Usage:       "/save [file]",
			Args:        []ArgDef{{Name: "file", Type: ArgTypeFile, Description: "output path"}},
			Action:      ActionSave,
			Category:    CategorySession,
		},
		{
			Name:        "/help",
			Aliases:     []string{"/h", "/?"},
			Description: "List commands",
			Usage:       "/help",
			Action:      ActionHelp,
			Category:    CategorySession,
		},
		{
			Name:        "/quit",
			Aliases:     []string{"/q", "/exit"},
			Description: "Leave",
			Usage:       "/quit",
			Action:      ActionQuit,
			Category:    CategorySession,
		},
	}
}
