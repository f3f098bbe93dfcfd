// Package api provides the HTTP surface and webhook controller for Leadline.
//
// It exposes the provider webhook, the landing-page opt-in endpoint, the
// admin operations, and health/metrics. The controller owns the injected
// store and messaging service for the lifetime of the process.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FinalExpenseIQ/leadline/internal/locks"
	"github.com/FinalExpenseIQ/leadline/internal/messaging"
	"github.com/FinalExpenseIQ/leadline/internal/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3001"

// DefaultShutdownTimeout bounds graceful shutdown of in-flight requests.
const DefaultShutdownTimeout = 10 * time.Second

// Opts holds API server configuration.
type Opts struct {
	Addr       string
	AdminToken string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAdminToken sets the bearer token required on /admin routes. An
// empty token leaves the admin surface open for trusted-network
// deployments; a startup warning is logged in that case.
func WithAdminToken(token string) Option {
	return func(o *Opts) { o.AdminToken = token }
}

// Server is the webhook controller. It orchestrates the store, the
// dialogue engine, and the outbound channel; all dependencies are
// injected once at startup.
type Server struct {
	st         store.Store
	msgService messaging.Service
	phoneLocks *locks.KeyedMutex
	addr       string
	adminToken string
}

// NewServer creates a Server with injected dependencies.
func NewServer(st store.Store, msgService messaging.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.AdminToken == "" {
		slog.Warn("No admin token configured; /admin endpoints are unauthenticated, restrict network access")
	}

	return &Server{
		st:         st,
		msgService: msgService,
		phoneLocks: locks.NewKeyedMutex(),
		addr:       cfg.Addr,
		adminToken: cfg.AdminToken,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/sms", s.smsHandler)
	r.Post("/start-conversation", s.startConversationHandler)
	r.Get("/api/leads", s.listLeadsHandler)
	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminAuth)
		r.Post("/send-sms", s.adminSendHandler)
		r.Post("/takeover", s.adminTakeoverHandler)
	})

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Leadline API listening", "addr", s.addr, "mode", s.msgService.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
