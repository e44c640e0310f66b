package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/config"
	derrors "git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	handlers "git.home.luguber.info/inful/syllabusbuilder/internal/server/handlers"
	smw "git.home.luguber.info/inful/syllabusbuilder/internal/server/middleware"
)

// Server serves the submission form, generation endpoints and the JSON API.
type Server struct {
	cfg    config.ServerConfig
	opts   Options
	logger *slog.Logger
	srv    *http.Server
	addr   net.Addr

	generateHandlers   *handlers.GenerateHandlers
	apiHandlers        *handlers.APIHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs the server; nothing listens until Start.
func New(cfg config.Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg.Server, opts: opts, logger: logger}
	s.generateHandlers = handlers.NewGenerateHandlers(opts.Service, handlers.GenerateOptions{
		Filename:     cfg.Output.Filename,
		MaxFormBytes: cfg.Server.MaxFormBytes,
		Normalizer:   opts.Normalizer,
		Logger:       logger,
	})
	s.apiHandlers = handlers.NewAPIHandlers(opts.History, cfg.History.ListLimit, logger)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Templates, logger)
	s.mchain = smw.Chain(logger, derrors.NewHTTPErrorAdapter(logger))
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.HandleIndex)
	// The form has always posted to / as well as /generate.
	mux.HandleFunc("POST /{$}", s.generateHandlers.HandleGenerate)
	mux.HandleFunc("POST /generate", s.generateHandlers.HandleGenerate)
	mux.HandleFunc("POST /preview", s.generateHandlers.HandlePreview)

	mux.HandleFunc("GET /api/fields", s.apiHandlers.HandleFields)
	mux.HandleFunc("GET /api/history", s.apiHandlers.HandleHistory)
	mux.HandleFunc("GET /api/history/{id}", s.apiHandlers.HandleHistoryItem)

	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("GET /health", s.monitoringHandlers.HandleHealthCheck)
	if s.opts.MetricsHandler != nil && s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.MetricsHandler)
	}

	return s.mchain(mux)
}

// Start binds the configured address and serves in the background. Binding
// happens before returning so an occupied port fails fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "http startup failed").
			WithContext("address", s.cfg.Address).
			Build()
	}

	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeoutDuration(),
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("HTTP server started", slog.String("address", s.addr.String()))
	return nil
}

// Addr is the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr { return s.addr }

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
