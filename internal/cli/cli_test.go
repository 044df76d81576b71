// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/config"
	"github.com/jeranaias/siemspeak/internal/demo"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/storage"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"chat"},
			wantSub: "chat",
		},
		{
			name:    "flag with value",
			args:    []string{"serve", "--addr", "127.0.0.1:9000"},
			wantSub: "serve",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.Flag("addr"); got != "127.0.0.1:9000" {
					t.Errorf("Flag(addr) = %q, want %q", got, "127.0.0.1:9000")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"--config=/tmp/c.toml", "chat"},
			wantSub: "chat",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.Flag("config"); got != "/tmp/c.toml" {
					t.Errorf("Flag(config) = %q", got)
				}
			},
		},
		{
			name:    "known boolean does not swallow the next word",
			args:    []string{"ask", "--json", "failed", "logins"},
			bools:   []string{"json"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
				if got := strings.Join(p.PositionalFrom(1), " "); got != "failed logins" {
					t.Errorf("PositionalFrom(1) = %q", got)
				}
			},
		},
		{
			name:    "explicit boolean value",
			args:    []string{"--demo=false"},
			bools:   []string{"demo"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("demo") {
					t.Error("BoolFlag(demo) should be false")
				}
				if !p.HasFlag("demo") {
					t.Error("HasFlag(demo) should be true")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"ask", "--", "--not-a-flag"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.Positional(1); got != "--not-a-flag" {
					t.Errorf("Positional(1) = %q", got)
				}
			},
		},
		{
			name:    "empty",
			args:    []string{},
			wantSub: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			if got := p.Subcommand(); got != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", got, tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_IntFlags(t *testing.T) {
	p := NewArgParser([]string{"--rows", "25", "--bad", "x"})
	if n, err := p.FlagInt("rows"); err != nil || n != 25 {
		t.Errorf("FlagInt(rows) = %d, %v", n, err)
	}
	if n := p.FlagIntOrDefault("bad", 7); n != 7 {
		t.Errorf("FlagIntOrDefault(bad) = %d, want 7", n)
	}
	if _, err := p.FlagInt("missing"); err == nil {
		t.Error("FlagInt(missing) should fail")
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"y", "YES", "true", "1", "on"} {
		if ok, err := ParseBoolString(s); err != nil || !ok {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, ok, err)
		}
	}
	for _, s := range []string{"n", "No", "false", "0", "off"} {
		if ok, err := ParseBoolString(s); err != nil || ok {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, ok, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should fail")
	}
}

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		want    Command
		wantErr bool
		check   func(*testing.T, Args)
	}{
		{name: "default console", argv: nil, want: CmdConsole},
		{name: "demo console", argv: []string{"--demo"}, want: CmdConsole, check: func(t *testing.T, a Args) {
			if !a.Demo {
				t.Error("Demo should be set")
			}
		}},
		{name: "ask", argv: []string{"ask", "--json", "failed", "logins"}, want: CmdAsk, check: func(t *testing.T, a Args) {
			if a.Query != "failed logins" || !a.JSON {
				t.Errorf("Query = %q, JSON = %v", a.Query, a.JSON)
			}
		}},
		{name: "ask without question", argv: []string{"ask"}, want: CmdAsk, wantErr: true},
		{name: "bare question", argv: []string{"malware", "yesterday"}, want: CmdAsk, check: func(t *testing.T, a Args) {
			if a.Query != "malware yesterday" {
				t.Errorf("Query = %q", a.Query)
			}
		}},
		{name: "chat", argv: []string{"chat", "-q"}, want: CmdChat, check: func(t *testing.T, a Args) {
			if !a.Quiet {
				t.Error("Quiet should be set")
			}
		}},
		{name: "serve with addr", argv: []string{"serve", "--addr", ":9000"}, want: CmdServe, check: func(t *testing.T, a Args) {
			if a.Addr != ":9000" {
				t.Errorf("Addr = %q", a.Addr)
			}
		}},
		{name: "config init force", argv: []string{"config", "init", "--force"}, want: CmdConfig, check: func(t *testing.T, a Args) {
			if !a.Force || len(a.Raw) != 1 || a.Raw[0] != "init" {
				t.Errorf("Force = %v, Raw = %q", a.Force, a.Raw)
			}
		}},
		{name: "version", argv: []string{"version"}, want: CmdVersion},
		{name: "version flag", argv: []string{"--version"}, want: CmdVersion},
		{name: "help flag", argv: []string{"ask", "-h"}, want: CmdHelp},
		{name: "unknown", argv: []string{"frobnicate"}, want: CmdHelp, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := ParseArgs(tt.argv)
			if cmd != tt.want {
				t.Errorf("command = %v, want %v", cmd, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{ErrMissingArgument("question", ""), ExitUsageError},
		{&ConfigError{Path: "x", Err: errors.New("bad")}, ExitConfigError},
		{fmt.Errorf("ask: %w", api.ErrUnavailable), ExitNetworkError},
		{NewCommandError("ask", "submit", "timed out", api.ErrTimeout), ExitTimeoutError},
		{context.DeadlineExceeded, ExitTimeoutError},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &ValidationError{Field: "question", Reason: "is required"}, true)

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out["success"] != false || out["error_type"] != "validation_error" || out["field"] != "question" {
		t.Errorf("unexpected output: %v", out)
	}
}

func TestDisplayError_Plain(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, errors.New("backend is not reachable"), false)
	if !strings.Contains(buf.String(), "Error:") || !strings.Contains(buf.String(), "not reachable") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunMain_VersionAndHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Main(context.Background(), []string{"version"}, &out, &errOut); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out.String(), Version) {
		t.Errorf("version output = %q", out.String())
	}

	out.Reset()
	if code := Main(context.Background(), []string{"bogus-cmd"}, &out, &errOut); code != ExitUsageError {
		t.Errorf("exit = %d, want %d", code, ExitUsageError)
	}
	if !strings.Contains(errOut.String(), "Usage:") {
		t.Error("unknown command should print usage to stderr")
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfig_InitShowAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siemspeak", "config.toml")
	var out bytes.Buffer

	if err := HandleConfig(Args{Raw: []string{"show"}, ConfigPath: path}, &out); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), "does not exist") || !strings.Contains(out.String(), "[ui]") {
		t.Errorf("show before init = %q", out.String())
	}

	out.Reset()
	if err := HandleConfig(Args{Raw: []string{"init"}, ConfigPath: path}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("init output = %q", out.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	err := HandleConfig(Args{Raw: []string{"init"}, ConfigPath: path}, &out)
	var valErr *ValidationError
	if !errors.As(err, &valErr) || ExitCode(err) != ExitUsageError {
		t.Errorf("second init err = %v", err)
	}
	if err := HandleConfig(Args{Raw: []string{"init"}, ConfigPath: path, Force: true}, &out); err != nil {
		t.Errorf("forced init: %v", err)
	}

	out.Reset()
	if err := HandleConfig(Args{Raw: []string{"path"}, ConfigPath: path}, &out); err != nil {
		t.Fatalf("path: %v", err)
	}
	if strings.TrimSpace(out.String()) != path {
		t.Errorf("path output = %q", out.String())
	}
}

func TestConfig_ShowMasksToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.Server.AuthToken = "s3cret-token"
	if err := config.SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	var out bytes.Buffer
	if err := HandleConfig(Args{ConfigPath: path, JSON: true}, &out); err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(out.String(), "s3cret-token") {
		t.Fatal("token leaked into output")
	}

	var resp struct {
		Success bool       `json:"success"`
		Data    ConfigData `json:"data"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if !resp.Success || !resp.Data.Exists || resp.Data.Path != path {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Data.Config == nil || !strings.HasPrefix(resp.Data.Config.Server.AuthToken, "sha256:") {
		t.Errorf("auth token not masked: %+v", resp.Data.Config)
	}
}

func TestConfig_UnknownAction(t *testing.T) {
	err := HandleConfig(Args{Raw: []string{"delete"}}, &bytes.Buffer{})
	if ExitCode(err) != ExitUsageError {
		t.Errorf("err = %v", err)
	}
}

// =============================================================================
// ASK TESTS
// =============================================================================

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.Demo = true
	cfg.UI.Theme = "dark"
	return &Env{
		Config:  cfg,
		Logger:  zap.NewNop(),
		Backend: demo.New(demo.Config{Seed: 3}),
		Label:   "demo",
	}
}

func TestAsk_JSON(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	err := Ask(context.Background(), env, Args{Query: "failed logins in the last 24 hours", JSON: true}, &out)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Question    string `json:"question"`
			Backend     string `json:"backend"`
			Summary     string `json:"summary"`
			TotalEvents int    `json:"total_events"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || resp.Data.Question != "failed logins in the last 24 hours" || resp.Data.Backend != "demo" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Data.Summary == "" {
		t.Error("summary should be present")
	}
}

func TestAsk_Plain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	env := newTestEnv(t)
	var out bytes.Buffer

	if err := Ask(context.Background(), env, Args{Query: "malware detections from yesterday", Quiet: true}, &out); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if strings.Contains(out.String(), "\x1b[") {
		t.Error("plain output should carry no escape sequences")
	}
	if !strings.Contains(out.String(), "Found") {
		t.Errorf("output should carry the summary:\n%s", out.String())
	}
}

type failingBackend struct{ api.Backend }

func (failingBackend) Submit(context.Context, string) (*model.ResponsePayload, error) {
	return nil, api.ErrUnavailable
}

func TestAsk_BackendFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Backend = failingBackend{env.Backend}
	var out bytes.Buffer

	err := Ask(context.Background(), env, Args{Query: "anything", JSON: true}, &out)
	if err == nil {
		t.Fatal("expected an error")
	}
	if ExitCode(err) != ExitNetworkError {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitNetworkError)
	}
	if !strings.Contains(out.String(), `"success": false`) {
		t.Errorf("JSON error envelope missing:\n%s", out.String())
	}
}

// =============================================================================
// REPL TESTS
// =============================================================================

func newTestRepl(t *testing.T) (*Repl, *bytes.Buffer) {
	t.Helper()
	store, err := storage.NewTranscriptStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	r := NewRepl(newTestEnv(t), Args{}, &out, store)
	return r, &out
}

func TestRepl_QuestionAndCharts(t *testing.T) {
	r, out := newTestRepl(t)
	ctx := context.Background()

	if err := r.Exec(ctx, "failed logins in the last 24 hours"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(r.Session().Entries()) != 1 {
		t.Fatalf("entries = %d, want 1", len(r.Session().Entries()))
	}
	if len(r.viz.IDs()) == 0 {
		t.Error("charts should be drawn")
	}
	if !strings.Contains(out.String(), "Found") {
		t.Errorf("answer not printed:\n%s", out.String())
	}
}

func TestRepl_ExitAndQuit(t *testing.T) {
	r, _ := newTestRepl(t)
	for _, in := range []string{"exit", "QUIT", "/quit"} {
		if err := r.Exec(context.Background(), in); !errors.Is(err, ErrQuit) {
			t.Errorf("Exec(%q) = %v, want ErrQuit", in, err)
		}
	}
	if err := r.Exec(context.Background(), "   "); err != nil {
		t.Errorf("blank input should be ignored, got %v", err)
	}
}

func TestRepl_FilterAndReset(t *testing.T) {
	r, out := newTestRepl(t)
	ctx := context.Background()

	if err := r.Exec(ctx, "/filter severity=high"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out.String(), "Filtered search:") {
		t.Errorf("search results not printed:\n%s", out.String())
	}
	if r.search.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", r.search.ActiveCount())
	}

	if err := r.Exec(ctx, "/reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := r.Exec(ctx, "/filter bogus=1"); err == nil {
		t.Error("unknown filter key should fail")
	}
}

func TestRepl_Refine(t *testing.T) {
	r, _ := newTestRepl(t)
	ctx := context.Background()

	if err := r.Exec(ctx, "failed logins"); err != nil {
		t.Fatal(err)
	}
	if err := r.Exec(ctx, "/refine for admin"); err != nil {
		t.Fatal(err)
	}
	entries := r.Session().Entries()
	if len(entries) != 2 || entries[1].Question != "failed logins for admin" {
		t.Errorf("refined question = %+v", entries)
	}
}

func TestRepl_ClearConfirmation(t *testing.T) {
	r, out := newTestRepl(t)
	ctx := context.Background()
	if err := r.Exec(ctx, "failed logins"); err != nil {
		t.Fatal(err)
	}

	r.Confirm = func(string) bool { return false }
	if err := r.Exec(ctx, "/clear"); err != nil {
		t.Fatal(err)
	}
	if len(r.Session().Entries()) != 1 || !strings.Contains(out.String(), "Clear cancelled.") {
		t.Error("declined clear should keep the history")
	}

	r.Confirm = func(string) bool { return true }
	if err := r.Exec(ctx, "/clear"); err != nil {
		t.Fatal(err)
	}
	if len(r.Session().Turns()) != 0 || len(r.viz.IDs()) != 0 {
		t.Error("accepted clear should empty history and charts")
	}
	if !strings.Contains(out.String(), "Conversation cleared.") {
		t.Error("cleared message missing")
	}
}

func TestRepl_Theme(t *testing.T) {
	r, out := newTestRepl(t)
	ctx := context.Background()

	if err := r.Exec(ctx, "/theme"); err != nil {
		t.Fatal(err)
	}
	if r.printer.theme.IsDark {
		t.Error("toggle from dark should give light")
	}
	if err := r.Exec(ctx, "/theme dark"); err != nil {
		t.Fatal(err)
	}
	if !r.printer.theme.IsDark {
		t.Error("/theme dark should give dark")
	}
	if !strings.Contains(out.String(), "light mode") || !strings.Contains(out.String(), "dark mode") {
		t.Errorf("mode changes not reported:\n%s", out.String())
	}
}

func TestRepl_ExportAndSave(t *testing.T) {
	r, _ := newTestRepl(t)
	ctx := context.Background()
	dir := t.TempDir()

	if err := r.Exec(ctx, "/save"); err == nil {
		t.Error("saving an empty session should fail")
	}

	if err := r.Exec(ctx, "failed logins in the last 24 hours"); err != nil {
		t.Fatal(err)
	}
	ids := r.viz.IDs()
	if len(ids) == 0 {
		t.Fatal("no charts")
	}

	csvPath := filepath.Join(dir, "chart.csv")
	if err := r.Exec(ctx, "/export table "+ids[0]+" "+csvPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("csv not written: %v", err)
	}

	if err := r.Exec(ctx, "/save"); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := r.transcripts.List()
	if err != nil || len(list) != 1 {
		t.Errorf("stored transcripts = %d, %v", len(list), err)
	}

	mdPath := filepath.Join(dir, "session.md")
	if err := r.Exec(ctx, "/save "+mdPath); err != nil {
		t.Fatalf("save to file: %v", err)
	}
	data, err := os.ReadFile(mdPath)
	if err != nil || !strings.Contains(string(data), "failed logins in the last 24 hours") {
		t.Errorf("markdown export = %q, %v", data, err)
	}
}

func TestRepl_UnknownCommandAndChart(t *testing.T) {
	r, _ := newTestRepl(t)
	if err := r.Exec(context.Background(), "/nope"); err == nil {
		t.Error("unknown command should fail")
	}
	if err := r.Exec(context.Background(), "/fullscreen chart-missing"); err == nil {
		t.Error("missing chart should fail")
	}
}

func TestRepl_Complete(t *testing.T) {
	r, _ := newTestRepl(t)

	got := r.Complete("/th")
	if len(got) != 1 || got[0] != "/theme " {
		t.Errorf("Complete(/th) = %v", got)
	}
	if got := r.Complete("fa"); got != nil {
		t.Errorf("short input should not suggest, got %v", got)
	}
	got = r.Complete("failed")
	if len(got) == 0 || !strings.Contains(strings.ToLower(got[0]), "failed") {
		t.Errorf("Complete(failed) = %v", got)
	}
}
