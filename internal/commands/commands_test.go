// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siemspeak/internal/filter"
)

func parse(t *testing.T, input string) Invocation {
	t.Helper()
	inv, err := NewParser(NewRegistry()).Parse(input)
	require.NoError(t, err, input)
	return inv
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse_Actions(t *testing.T) {
	tests := []struct {
		input string
		want  Action
	}{
		{"/reset", ActionReset},
		{"/clear", ActionClear},
		{"/theme", ActionTheme},
		{"/t light", ActionTheme},
		{"/export image timeline", ActionExportImage},
		{"/export TABLE chart-top_ips", ActionExportTable},
		{"/fs geo_distribution", ActionFullscreen},
		{"/refine only for admin", ActionRefine},
		{"/query", ActionQuery},
		{"/save", ActionSave},
		{"/?", ActionHelp},
		{"/EXIT", ActionQuit},
		{"/f severity=high", ActionFilter},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.input).Action)
		})
	}
}

func TestParse_Filter(t *testing.T) {
	inv := parse(t, `/filter sev=high time=7d ip=10.0.0.1 kw=vpn keywords="root login" risk=80-100 country=all`)

	assert.Equal(t, filter.RawInputs{
		filter.KeySeverity:  "high",
		filter.KeyTimeRange: "7d",
		filter.KeySourceIP:  "10.0.0.1",
		filter.KeyKeywords:  "vpn,root login",
		filter.KeyRiskScore: "80-100",
		filter.KeyCountry:   "all",
	}, inv.Filters)

	set := filter.NewManager().SetFromInputs(inv.Filters)
	assert.Equal(t, "high", set.String(filter.KeySeverity))
	assert.False(t, set.Has(filter.KeyCountry))
}

func TestParse_FilterErrors(t *testing.T) {
	p := NewParser(NewRegistry())

	_, err := p.Parse("/filter")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "filter", ve.Arg)

	_, err = p.Parse("/filter severity")
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "expected key=value")

	_, err = p.Parse("/filter planet=mars")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "planet", ve.Got)
}

func TestParse_ExportAndSave(t *testing.T) {
	inv := parse(t, `/export table top_users "out dir/users.csv"`)
	assert.Equal(t, "chart-top_users", inv.ChartID)
	assert.Equal(t, "out dir/users.csv", inv.Path)

	_, err := NewParser(NewRegistry()).Parse("/export pdf chart-timeline")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "pdf", ve.Got)

	assert.Equal(t, "notes.json", parse(t, "/save notes.json").Path)
	assert.Empty(t, parse(t, "/save").Path)
}

func TestParse_ThemeAndRefine(t *testing.T) {
	assert.Equal(t, "", parse(t, "/theme").Mode)
	assert.Equal(t, "dark", parse(t, "/theme DARK").Mode)

	_, err := NewParser(NewRegistry()).Parse("/theme sepia")
	assert.Error(t, err)

	assert.Equal(t, `only "admin"   accounts`, parse(t, `/refine only "admin"   accounts`).Text)
}

func TestParse_NotCommandAndUnknown(t *testing.T) {
	p := NewParser(NewRegistry())

	_, err := p.Parse("show failed logins")
	assert.ErrorIs(t, err, ErrNotCommand)

	_, err = p.Parse("/launch")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "/launch")
	assert.False(t, errors.Is(err, ErrNotCommand))
}

func TestSplitCommandLine(t *testing.T) {
	assert.Equal(t, []string{"/a", "b c", "d'e", `f"g`}, splitCommandLine(`/a "b c" "d'e" 'f"g'`))
	assert.Equal(t, []string{"/a", `x"y`}, splitCommandLine(`/a "x\"y"`))
	assert.Empty(t, splitCommandLine("   "))
}

func TestNormalizeChartID(t *testing.T) {
	assert.Equal(t, "chart-timeline", NormalizeChartID("timeline"))
	assert.Equal(t, "chart-timeline", NormalizeChartID(" Chart-Timeline "))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "/theme", ExtractCommandName("  /theme light"))
	assert.Equal(t, "/help", ExtractCommandName("/help"))
	assert.Equal(t, "", ExtractCommandName("help"))
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_EveryActionReachable(t *testing.T) {
	seen := map[Action]bool{ActionExportImage: true, ActionExportTable: true}
	for _, cmd := range NewRegistry().All() {
		seen[cmd.Action] = true
	}
	for a := ActionFilter; a <= ActionQuit; a++ {
		assert.True(t, seen[a], a.String())
	}
}

func TestRegistry_HelpText(t *testing.T) {
	help := NewRegistry().HelpText()
	assert.True(t, strings.HasPrefix(help, "Search:\n"))
	assert.Less(t, strings.Index(help, "Charts:"), strings.Index(help, "Session:"))
	assert.Contains(t, help, "/export image|table <chart> [file]")
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "export-table", ActionExportTable.String())
	assert.Equal(t, "action(99)", Action(99).String())
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func values(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}

func TestComplete_CommandNames(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := values(c.Complete("/re"))
	assert.ElementsMatch(t, []string{"/reset", "/refine"}, got)

	assert.Nil(t, c.Complete("show"))
	assert.Contains(t, values(c.Complete("/f")), "/filter")
}

func TestComplete_Arguments(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ChartsFn = func() []string { return []string{"chart-timeline", "chart-top_ips", "chart-top_users"} }

	assert.Equal(t, []string{"image"}, values(c.Complete("/export im")))
	assert.Equal(t, []string{"dark", "light"}, values(c.Complete("/theme ")))
	assert.Equal(t, []string{"chart-top_ips", "chart-top_users"}, values(c.Complete("/export image chart-top")))
	assert.Equal(t, []string{"severity="}, values(c.Complete("/filter time=7d sev")))
	assert.Nil(t, c.Complete("/filter severity=h"))
	assert.Nil(t, c.Complete("/reset "))
}
