// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the siemspeak command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/logging"
	"github.com/jeranaias/siemspeak/internal/server"
)

// shutdownTimeout bounds the graceful stop of "serve".
const shutdownTimeout = 10 * time.Second

// HandleServe serves the synthetic backend until ctx is cancelled.
func HandleServe(ctx context.Context, args Args, stdout io.Writer) error {
	args.Demo = true
	env, err := setup(args, logging.ToStderr)
	if err != nil {
		return err
	}
	defer env.Logger.Sync() //nolint:errcheck

	addr := env.Config.Server.Addr
	if args.Addr != "" {
		addr = args.Addr
	}

	srv := server.New(server.Config{
		Addr:           addr,
		AuthToken:      env.Config.Server.AuthToken,
		RateLimit:      env.Config.Server.RateLimit,
		RequestTimeout: env.Config.Backend.Timeout(),
	}, env.Backend, env.Logger)

	if !args.Quiet {
		fmt.Fprintf(stdout, "%s listening on http://%s\n", TitleStyle.Render("siemspeak serve"), srv.Addr())
		fmt.Fprintln(stdout, DimStyle.Render("endpoints: /ask /search /suggest /conversation /clear /health /metrics"))
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return NewCommandError("serve", "listen", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		env.Logger.Error("shutdown", zap.Error(err))
		return err
	}
	return nil
}
