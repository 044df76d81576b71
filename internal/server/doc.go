// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a question backend over the HTTP API the console
// client speaks.
//
// # Endpoints
//
//   - POST /ask          - Answer a natural-language question
//   - POST /search       - Run a structured filtered search
//   - GET  /suggest?q=   - Completions for a partial question
//   - GET  /conversation - Answered questions, oldest first
//   - POST /clear        - Forget the conversation
//   - GET  /health       - Health check
//   - GET  /metrics      - Prometheus metrics
//
// Every failure is answered as {"error": "..."} with a 4xx or 5xx status.
//
// # Middleware
//
//   - Panic recovery with stack trace logging
//   - Security headers (X-Content-Type-Options, X-Frame-Options, etc.)
//   - Per-client rate limiting
//   - Optional bearer token authentication with constant-time comparison
//   - Request logging and metrics per route
//
// # Usage
//
//	backend := demo.New(demo.Config{})
//	srv := server.New(server.Config{Addr: "127.0.0.1:5000"}, backend, logger)
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//		logger.Fatal("server", zap.Error(err))
//	}
package server
