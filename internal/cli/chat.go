// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/demo"
	"github.com/jeranaias/siemspeak/internal/logging"
	"github.com/jeranaias/siemspeak/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader provides line editing and history for the chat REPL.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader opens the terminal for line editing. History is kept in
// dir/chat_history.
func NewLineReader(dir string) *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LineReader{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

// SetCompleter installs tab completion.
func (r *LineReader) SetCompleter(fn func(string) []string) {
	r.line.SetCompleter(fn)
}

// ReadLine prompts for one line and records it in the history.
func (r *LineReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a y/N question.
func (r *LineReader) Confirm(prompt string) bool {
	answer, err := r.line.Prompt(prompt)
	if err != nil {
		return false
	}
	ok, err := ParseBoolString(answer)
	return err == nil && ok
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *LineReader) Close() {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// CHAT
// =============================================================================

// HandleChat runs the line REPL until the user quits or stdin closes.
func HandleChat(ctx context.Context, args Args, stdout io.Writer) error {
	env, err := setup(args, logging.ToFile)
	if err != nil {
		return err
	}
	defer env.Logger.Sync() //nolint:errcheck

	dir, err := env.Config.StorageDir()
	if err != nil {
		return &ConfigError{Err: err}
	}
	transcripts, err := storage.NewTranscriptStoreWithDir(filepath.Join(dir, "transcripts"))
	if err != nil {
		env.Logger.Warn("transcript store unavailable", zap.Error(err))
		transcripts = nil
	}

	repl := NewRepl(env, args, stdout, transcripts)
	reader := NewLineReader(dir)
	defer reader.Close()
	repl.Confirm = reader.Confirm
	reader.SetCompleter(repl.Complete)

	if !args.Quiet {
		printWelcome(stdout, env)
	}

	for {
		input, err := reader.ReadLine(PromptStyle.Render("siemspeak> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and a closed stdin all end the session.
			fmt.Fprintln(stdout)
			printSummary(stdout, repl, args.Quiet)
			return nil
		}

		err = repl.Exec(ctx, input)
		switch {
		case errors.Is(err, ErrQuit):
			printSummary(stdout, repl, args.Quiet)
			return nil
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			fmt.Fprintf(stdout, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// Complete offers slash commands and, for questions, catalog suggestions.
func (r *Repl) Complete(line string) []string {
	if strings.HasPrefix(line, "/") {
		var out []string
		for _, cmd := range r.registry.All() {
			if !cmd.Hidden && strings.HasPrefix(cmd.Name, line) {
				out = append(out, cmd.Name+" ")
			}
		}
		return out
	}
	if len([]rune(strings.TrimSpace(line))) < 3 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.env.Config.Backend.Timeout())
	defer cancel()
	items, err := r.env.Backend.Suggest(ctx, line)
	if err != nil {
		return nil
	}
	return items
}

func printWelcome(w io.Writer, env *Env) {
	fmt.Fprintln(w, TitleStyle.Render("siemspeak")+" "+DimStyle.Render(Version))
	fmt.Fprintf(w, "%s %s\n", DimStyle.Render("backend:"), env.Label)
	fmt.Fprintln(w, RenderSeparator())
	fmt.Fprintln(w, "Ask a question about your security events, for example:")
	for _, q := range demo.ExampleQuestions() {
		fmt.Fprintln(w, "  "+DimStyle.Render(q))
	}
	fmt.Fprintln(w, DimStyle.Render("Type /help for commands, exit to leave."))
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, r *Repl, quiet bool) {
	if quiet {
		return
	}
	n := len(r.sess.Entries())
	fmt.Fprintf(w, "%s %d question(s) answered.\n", DimStyle.Render("Session ended."), n)
}
