// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/siemspeak/internal/chart"
	"github.com/jeranaias/siemspeak/internal/config"
	"github.com/jeranaias/siemspeak/internal/logging"
	"github.com/jeranaias/siemspeak/internal/model"
	"github.com/jeranaias/siemspeak/internal/render"
	"github.com/jeranaias/siemspeak/internal/session"
	"github.com/jeranaias/siemspeak/internal/ui/styles"
	"github.com/jeranaias/siemspeak/internal/viz"
)

// =============================================================================
// ASK
// =============================================================================

// HandleAsk answers args.Query once and prints the result to stdout.
func HandleAsk(ctx context.Context, args Args, stdout io.Writer) error {
	env, err := setup(args, logging.ToFile)
	if err != nil {
		return err
	}
	defer env.Logger.Sync() //nolint:errcheck
	return Ask(ctx, env, args, stdout)
}

// Ask is HandleAsk with a prepared environment.
func Ask(ctx context.Context, env *Env, args Args, stdout io.Writer) error {
	sess := session.New(env.Backend, nil, nil, session.Config{
		Timeout: env.Config.Backend.Timeout(),
		Logger:  env.Logger,
	})

	payload, err := answer(ctx, sess, args.Query)
	if err != nil {
		if args.JSON {
			_ = NewJSONErrorResponse("ask", err).Write(stdout)
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Question:        args.Query,
			Backend:         env.Label,
			ResponsePayload: payload,
		}).Write(stdout)
	}

	p := newPrinter(env.Config, args)
	p.answer(stdout, payload)
	return nil
}

// answer submits question and waits for the reply on the calling goroutine.
func answer(ctx context.Context, sess *session.Controller, question string) (*model.ResponsePayload, error) {
	cmd, err := sess.Submit(question)
	if err != nil {
		return nil, &ValidationError{Field: "question", Reason: err.Error()}
	}

	done := make(chan session.ResultMsg, 1)
	go func() { done <- cmd().(session.ResultMsg) }()

	var res session.ResultMsg
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sess.HandleResult(res)
	if res.Err != nil {
		return nil, NewCommandError("ask", "submit", session.Describe(res.Err), res.Err)
	}
	return sess.LastPayload(), nil
}

// =============================================================================
// PRINTING
// =============================================================================

// printer lays out answers for a stream.
type printer struct {
	theme     *styles.Theme
	color     bool
	width     int
	rowCap    int
	showQuery bool
	charts    bool
	chartW    int
	chartH    int
}

func newPrinter(cfg *config.Config, args Args) *printer {
	dark := true
	switch cfg.UI.Theme {
	case "light":
		dark = false
	case "auto", "":
		dark = HasDarkBackground()
	}
	return &printer{
		theme:     styles.NewTheme(dark),
		color:     ColorEnabled() && !args.NoColor,
		width:     TerminalWidth(),
		rowCap:    cfg.UI.RowCap,
		showQuery: args.ShowQuery,
		charts:    !args.Quiet,
		chartW:    cfg.UI.ChartWidth,
		chartH:    cfg.UI.ChartHeight,
	}
}

// setDark switches the palette used for later answers.
func (p *printer) setDark(dark bool) {
	p.theme = styles.NewTheme(dark)
}

func (p *printer) paint(v render.View) string {
	if p.color {
		return v.String(p.theme)
	}
	return v.Plain()
}

// answer writes the rendered payload followed by its charts.
func (p *printer) answer(w io.Writer, payload *model.ResponsePayload) {
	v := render.Render(payload, render.Options{
		RowCap:    p.rowCap,
		Width:     p.width,
		ShowQuery: p.showQuery,
	})
	fmt.Fprintln(w, p.paint(v))

	if !p.charts || len(payload.ChartKinds()) == 0 {
		return
	}
	mgr := viz.NewManager(chart.NewTerminalSurface(),
		viz.WithPalette(p.theme.ChartPalette()),
		viz.WithSize(min(p.chartW, p.width-2), p.chartH))
	defer mgr.DestroyAll()
	_ = mgr.RenderPayload(payload)
	if out := mgr.ViewAll(); strings.TrimSpace(out) != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, out)
	}
}
