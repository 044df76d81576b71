// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
package commands

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jeranaias/siemspeak/internal/filter"
)

var (
	// ErrNotCommand is returned for input that does not start with "/".
	ErrNotCommand = errors.New("not a command")

	// ErrUnknownCommand is returned for an unregistered command name.
	ErrUnknownCommand = errors.New("unknown command")
)

// ChartIDPrefix prefixes every chart id.
const ChartIDPrefix = "chart-"

// =============================================================================
// INVOCATION
// =============================================================================

// Invocation is a decoded command line.
type Invocation struct {
	Action  Action
	Command *Command
	// Args are the positional arguments after the command name.
	Args []string

	// Filters holds /filter pairs keyed by canonical filter key.
	Filters filter.RawInputs
	// Mode is the requested display mode; empty means toggle.
	Mode string
	// ChartID is the target of /export and /fullscreen.
	ChartID string
	// Path is the optional output file of /export and /save.
	Path string
	// Text is the free text of /refine.
	Text string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser decodes slash command input.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser over registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse decodes input. Non-command input yields ErrNotCommand; unknown
// names wrap ErrUnknownCommand; bad arguments return a *ValidationError.
func (p *Parser) Parse(input string) (Invocation, error) {
	input = strings.TrimSpace(input)
	if !IsCommand(input) {
		return Invocation{}, ErrNotCommand
	}

	parts := splitCommandLine(input)
	name := parts[0]
	cmd := p.registry.Get(name)
	if cmd == nil {
		return Invocation{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	inv := Invocation{Action: cmd.Action, Command: cmd, Args: parts[1:]}
	if err := ValidateArgs(cmd, inv.Args); err != nil {
		return Invocation{}, err
	}

	switch cmd.Name {
	case "/filter":
		filters, err := parseFilterArgs(cmd.Name, inv.Args)
		if err != nil {
			return Invocation{}, err
		}
		inv.Filters = filters
	case "/theme":
		if len(inv.Args) > 0 {
			inv.Mode = strings.ToLower(inv.Args[0])
		}
	case "/export":
		inv.Action = ActionExportImage
		if strings.EqualFold(inv.Args[0], "table") {
			inv.Action = ActionExportTable
		}
		inv.ChartID = NormalizeChartID(inv.Args[1])
		if len(inv.Args) > 2 {
			inv.Path = inv.Args[2]
		}
	case "/fullscreen":
		inv.ChartID = NormalizeChartID(inv.Args[0])
	case "/save":
		if len(inv.Args) > 0 {
			inv.Path = inv.Args[0]
		}
	case "/refine":
		inv.Text = rawArgs(input, name)
	}
	return inv, nil
}

// NormalizeChartID accepts a chart kind or a full id and returns the id.
func NormalizeChartID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, ChartIDPrefix) {
		return s
	}
	return ChartIDPrefix + s
}

// parseFilterArgs decodes key=value pairs. Repeated keywords accumulate.
func parseFilterArgs(cmdName string, args []string) (filter.RawInputs, error) {
	out := make(filter.RawInputs, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, &ValidationError{Command: cmdName, Arg: "filter", Message: "expected key=value", Got: arg}
		}
		if canonical, aliased := FilterKeyAliases[k]; aliased {
			k = canonical
		}
		key := filter.Key(k)
		if !key.Valid() {
			return nil, &ValidationError{Command: cmdName, Arg: "filter", Message: "unknown filter key", Got: k, Expected: filterKeyList()}
		}
		if key == filter.KeyKeywords && out[key] != "" {
			v = out[key] + "," + v
		}
		out[key] = strings.TrimSpace(v)
	}
	return out, nil
}

func filterKeyList() string {
	names := make([]string, len(filter.Keys))
	for i, k := range filter.Keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// rawArgs returns everything after the command name, unsplit.
func rawArgs(input, name string) string {
	return strings.TrimSpace(input[len(name):])
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// ParseArgs splits a raw argument string, honoring quotes.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// splitCommandLine splits a command line into tokens. Single and double
// quotes group words; a backslash escapes a quote inside quotes.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '\\' && i+1 < len(runes) && (inSingle || inDouble):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(r)
			}
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand reports whether input is a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName returns the command name, e.g. "/theme light" -> "/theme".
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
		return input[:end]
	}
	return input
}

// ValidateArgs checks required and enum arguments.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	for i, def := range cmd.Args {
		if def.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      def.Name,
				Message:  "required argument missing",
				Expected: def.Description,
			}
		}
		if i < len(args) && def.Type == ArgTypeEnum && len(def.Values) > 0 && !containsFold(def.Values, args[i]) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      def.Name,
				Message:  "invalid value",
				Got:      args[i],
				Expected: strings.Join(def.Values, ", "),
			}
		}
	}
	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError describes a bad command argument.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
