// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/commands"
	"github.com/jeranaias/siemspeak/internal/export"
	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/render"
	"github.com/jeranaias/siemspeak/internal/search"
	"github.com/jeranaias/siemspeak/internal/session"
	"github.com/jeranaias/siemspeak/internal/storage"
	"github.com/jeranaias/siemspeak/internal/theme"
	"github.com/jeranaias/siemspeak/internal/viz"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

// =============================================================================
// REPL
// =============================================================================

// Repl runs questions and slash commands against one session. It is the
// line-oriented twin of the console and shares its controllers.
type Repl struct {
	env         *Env
	out         io.Writer
	sess        *session.Controller
	search      *search.Controller
	viz         *viz.Manager
	registry    *commands.Registry
	parser      *commands.Parser
	printer     *printer
	transcripts *storage.TranscriptStore
	mode        theme.Mode
	logger      *zap.Logger

	// Confirm asks a yes/no question. Nil declines everything.
	Confirm func(prompt string) bool
}

// NewRepl creates a REPL writing to out. transcripts may be nil.
func NewRepl(env *Env, args Args, out io.Writer, transcripts *storage.TranscriptStore) *Repl {
	p := newPrinter(env.Config, args)
	mode := theme.Dark
	if !p.theme.IsDark {
		mode = theme.Light
	}

	r := &Repl{
		env:         env,
		out:         out,
		registry:    commands.NewRegistry(),
		printer:     p,
		transcripts: transcripts,
		mode:        mode,
		logger:      env.Logger.Named("repl"),
	}
	r.parser = commands.NewParser(r.registry)
	r.viz = viz.NewManager(chart.NewTerminalSurface(),
		viz.WithPalette(p.theme.ChartPalette()),
		viz.WithSize(min(env.Config.UI.ChartWidth, p.width-2), env.Config.UI.ChartHeight),
		viz.WithLogger(env.Logger.Named("viz")))
	r.sess = session.New(env.Backend, r, r.viz, session.Config{
		Timeout: env.Config.Backend.Timeout(),
		Logger:  env.Logger,
	})
	r.search = search.New(env.Backend, filter.NewManager(),
		search.WithTimeout(env.Config.Backend.Timeout()),
		search.WithLogger(env.Logger.Named("search")))
	return r
}

// Session exposes the underlying session controller.
func (r *Repl) Session() *session.Controller { return r.sess }

// Present implements session.Sink.
func (r *Repl) Present(entry *model.ConversationEntry) {
	if entry == nil {
		return
	}
	if err := r.viz.RenderPayload(entry.Response); err != nil {
		r.logger.Warn("some charts failed to render", zap.Error(err))
	}
}

// ShowEmpty implements session.Sink.
func (r *Repl) ShowEmpty() {
	fmt.Fprintln(r.out, DimStyle.Render("Conversation cleared."))
}

// Exec runs one line of input. It returns ErrQuit when the user is done.
func (r *Repl) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
		return ErrQuit
	case commands.IsCommand(line):
		return r.command(ctx, line)
	}

	cmd, err := r.sess.Submit(line)
	if err != nil {
		return err
	}
	return r.await(ctx, cmd)
}

// await runs a session command and prints the answer.
func (r *Repl) await(ctx context.Context, cmd tea.Cmd) error {
	done := make(chan session.ResultMsg, 1)
	go func() { done <- cmd().(session.ResultMsg) }()

	select {
	case res := <-done:
		r.sess.HandleResult(res)
		if res.Err != nil {
			return errors.New(session.Describe(res.Err))
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	if payload := r.sess.LastPayload(); payload != nil {
		r.printAnswer(payload)
	}
	return nil
}

func (r *Repl) printAnswer(payload *model.ResponsePayload) {
	v := render.Render(payload, render.Options{
		RowCap:    r.printer.rowCap,
		Width:     r.printer.width,
		ShowQuery: r.printer.showQuery,
	})
	fmt.Fprintln(r.out, r.printer.paint(v))
	if r.printer.charts {
		if out := r.viz.ViewAll(); strings.TrimSpace(out) != "" {
			fmt.Fprintln(r.out)
			fmt.Fprintln(r.out, out)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (r *Repl) command(ctx context.Context, line string) error {
	inv, err := r.parser.Parse(line)
	if err != nil {
		return err
	}
	r.logger.Debug("command", zap.String("action", inv.Action.String()))

	switch inv.Action {
	case commands.ActionFilter:
		return r.runSearch(r.search.Apply(inv.Filters))

	case commands.ActionReset:
		return r.runSearch(r.search.Reset())

	case commands.ActionRefine:
		cmd, err := r.sess.Refine(inv.Text)
		if err != nil {
			return err
		}
		return r.await(ctx, cmd)

	case commands.ActionClear:
		return r.clear()

	case commands.ActionTheme:
		return r.setTheme(inv.Mode)

	case commands.ActionExportImage:
		return r.wrote("chart image")(export.ChartImage(r.viz, inv.ChartID, inv.Path))

	case commands.ActionExportTable:
		return r.wrote("chart table")(export.ChartTable(r.viz, inv.ChartID, inv.Path))

	case commands.ActionFullscreen:
		out, err := r.viz.View(inv.ChartID)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, out)
		return nil

	case commands.ActionQuery:
		r.printer.showQuery = !r.printer.showQuery
		state := "hidden"
		if r.printer.showQuery {
			state = "shown"
		}
		fmt.Fprintf(r.out, "Generated query %s.\n", state)
		if p := r.sess.LastPayload(); p != nil && r.printer.showQuery && len(p.GeneratedQuery) > 0 {
			fmt.Fprintln(r.out, string(p.GeneratedQuery))
		}
		return nil

	case commands.ActionSave:
		return r.wrote("transcript")(r.save(inv.Path))

	case commands.ActionHelp:
		fmt.Fprintln(r.out, r.registry.HelpText())
		return nil

	case commands.ActionQuit:
		return ErrQuit
	}
	return fmt.Errorf("%s is not available here", inv.Command.Name)
}

func (r *Repl) wrote(what string) func(string, error) error {
	return func(path string, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		fmt.Fprintf(r.out, "%s %s written to %s\n", SuccessStyle.Render("[OK]"), what, path)
		return nil
	}
}

// runSearch runs a filtered search and prints the matching events.
func (r *Repl) runSearch(cmd tea.Cmd) error {
	msg, ok := cmd().(search.ResultMsg)
	if !ok || !r.search.HandleResult(msg) {
		return nil
	}
	if err := r.search.Err(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	res := r.search.Result()
	payload := &model.ResponsePayload{
		Summary:     "Filtered search: " + filter.Summary(r.search.Applied()),
		TotalEvents: res.TotalCount,
		TableData:   res.Events,
	}
	v := render.Render(payload, render.Options{RowCap: r.printer.rowCap, Width: r.printer.width})
	fmt.Fprintln(r.out, r.printer.paint(v))
	return nil
}

func (r *Repl) clear() error {
	if !r.sess.RequestClear() {
		return errors.New("cannot clear while a question is in flight")
	}
	accepted := r.Confirm != nil && r.Confirm("Clear conversation? Questions, answers and charts are removed. [y/N] ")
	cmd := r.sess.ConfirmClear(accepted)
	if cmd == nil {
		fmt.Fprintln(r.out, DimStyle.Render("Clear cancelled."))
		return nil
	}
	r.sess.HandleClearResult(cmd().(session.ClearResultMsg))
	if err := r.sess.Alert(); err != nil {
		r.sess.DismissAlert()
		return err
	}
	return nil
}

func (r *Repl) setTheme(mode string) error {
	next := r.mode.Opposite()
	if mode != "" {
		parsed, err := theme.ParseMode(mode)
		if err != nil {
			return err
		}
		next = parsed
	}
	r.mode = next
	r.printer.setDark(next == theme.Dark)
	if err := r.viz.RerenderAll(r.printer.theme.ChartPalette()); err != nil {
		r.logger.Warn("rerender charts", zap.Error(err))
	}
	fmt.Fprintf(r.out, "%s mode\n", r.printer.theme.ModeName())
	return nil
}

// save stores the session, or exports it when path is set.
func (r *Repl) save(path string) (string, error) {
	t := storage.TranscriptFromHistory(r.sess.History())
	if len(t.Turns) == 0 {
		return "", export.ErrEmptyTranscript
	}
	t.Backend = r.env.Label
	t.Filters = make(map[string]string)
	for k, v := range r.search.Filters() {
		t.Filters[string(k)] = filter.FormatValue(k, v)
	}

	if path != "" {
		opts := export.DefaultOptions()
		opts.RowCap = r.printer.rowCap
		return export.WriteTranscript(t, path, opts)
	}
	if r.transcripts == nil {
		return "", errors.New("no transcript store configured")
	}
	return r.transcripts.Save(t)
}
