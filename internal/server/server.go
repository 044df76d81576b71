// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a question backend over the HTTP API the console
// client speaks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jeranaias/siemspeak/internal/api"
	"github.com/jeranaias/siemspeak/internal/demo"
	"github.com/jeranaias/siemspeak/internal/filter"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:5000"

	// MaxQuestionLength is the longest accepted question, in characters.
	MaxQuestionLength = 2000

	// MaxRequestBodySize caps request bodies (64KB).
	MaxRequestBodySize = 64 * 1024

	// DefaultRateLimit is the steady requests per second per client.
	DefaultRateLimit = 20

	// DefaultRateBurst is the request burst per client.
	DefaultRateBurst = 40
)

// Answerer is implemented by backends that can report the parsed entities
// and generated query alongside a reply.
type Answerer interface {
	Ask(ctx context.Context, question string) (*demo.Answer, error)
}

// Config configures a Server.
type Config struct {
	Addr      string
	AuthToken string
	// RateLimit is requests per second per client; zero means the default,
	// negative disables limiting.
	RateLimit float64
	RateBurst int
	// RequestTimeout bounds one backend call (default: 30s).
	RequestTimeout time.Duration
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves a backend over HTTP.
type Server struct {
	cfg     Config
	backend api.Backend
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	metrics *Metrics
	logger  *zap.Logger
}

// New creates a server for backend. A nil logger disables logging.
func New(cfg Config, backend api.Backend, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = DefaultRateBurst
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		backend: backend,
		router:  mux.NewRouter(),
		metrics: NewMetrics(),
		logger:  logger.Named("server"),
	}
	s.setupRoutes()

	outer := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
	}
	if cfg.RateLimit > 0 {
		outer = append(outer, RateLimitMiddleware(NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
	}
	outer = append(outer, AuthMiddleware(cfg.AuthToken, s.logger))
	s.handler = Chain(outer...)(s.router)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger, s.metrics))

	s.router.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	s.router.HandleFunc("/suggest", s.handleSuggest).Methods(http.MethodGet)
	s.router.HandleFunc("/conversation", s.handleConversation).Methods(http.MethodGet)
	s.router.HandleFunc("/clear", s.handleClear).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req api.AskRequest
	if !s.decode(w, r, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.metrics.question("rejected")
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		s.metrics.question("rejected")
		writeError(w, http.StatusBadRequest, "question is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	var resp api.AskResponse
	if a, ok := s.backend.(Answerer); ok {
		ans, err := a.Ask(ctx, question)
		if err != nil {
			s.backendError(w, "ask", err)
			return
		}
		entities, _ := json.Marshal(ans.Entities)
		resp = api.AskResponse{Reply: ans.Payload, GeneratedQuery: ans.Query, Entities: entities}
	} else {
		payload, err := s.backend.Submit(ctx, question)
		if err != nil {
			s.backendError(w, "ask", err)
			return
		}
		resp = api.AskResponse{Reply: payload, GeneratedQuery: payload.GeneratedQuery}
	}

	s.metrics.question("answered")
	s.metrics.matched(resp.Reply.TotalEvents)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	set := filter.Set{}
	if !s.decode(w, r, &set) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.backend.Search(ctx, set)
	if err != nil {
		s.backendError(w, "search", err)
		return
	}
	s.metrics.matched(result.TotalCount)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.backend.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.backendError(w, "suggest", err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, api.SuggestResponse{Suggestions: suggestions})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	items, err := s.backend.LoadHistory(r.Context())
	if err != nil {
		s.backendError(w, "conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, api.ConversationResponse{Conversation: items})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.ClearHistory(r.Context()); err != nil {
		s.backendError(w, "clear", err)
		return
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Start listens on the configured address and blocks until shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("server starting", zap.String("addr", s.cfg.Addr))
	return s.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// decode reads a JSON body into v, answering 413 or 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.logger.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// backendError logs the cause and answers with a generic message.
func (s *Server) backendError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, demo.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "question is required")
		return
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("backend timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "backend timed out")
		return
	}
	if op == "ask" {
		s.metrics.question("failed")
	}
	s.logger.Error("backend failure", zap.String("op", op), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "request processing failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}
