// Package server exposes the evidence pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/coc-platform/evidence-service/pkg/audit"
	"github.com/coc-platform/evidence-service/pkg/evidence"
	"github.com/coc-platform/evidence-service/pkg/ledger"
)

// EvidenceService is the pipeline surface the handlers call.
type EvidenceService interface {
	Upload(ctx context.Context, req evidence.UploadRequest) (*evidence.UploadResult, error)
	GetRecord(ctx context.Context, chain, evidenceID string) (*ledger.EvidenceRecord, error)
	GetFile(ctx context.Context, chain, evidenceID string, verify bool) (*evidence.FileResult, error)
}

// StoreProber reports whether the content store answers.
type StoreProber interface {
	HealthCheck(ctx context.Context) bool
}

// ChainProber reports whether a chain's gateway peer answers.
type ChainProber interface {
	Ping(ctx context.Context, chain ledger.Chain) bool
}

// App wires the HTTP surface of the service.
type App struct {
	svc    EvidenceService
	store  StoreProber
	chains ChainProber
	audit  *audit.Store
	logger *slog.Logger
}

// Option configures an App.
type Option func(*App)

// WithAuditStore mounts the audit trail read API.
func WithAuditStore(store *audit.Store) Option {
	return func(a *App) { a.audit = store }
}

// WithProbers wires the health check dependencies.
func WithProbers(store StoreProber, chains ChainProber) Option {
	return func(a *App) {
		a.store = store
		a.chains = chains
	}
}

// NewApp creates the HTTP application.
func NewApp(svc EvidenceService, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router assembles the full route tree.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", a.HealthHandler)

	r.Route("/api/evidence", func(r chi.Router) {
		r.Post("/upload", a.UploadHandler)
		r.Get("/{evidenceId}", a.GetEvidenceHandler)
		r.Get("/{evidenceId}/file", a.GetFileHandler)
	})

	if a.audit != nil {
		r.Mount("/api/audit", audit.Router(a.audit))
	}

	return r
}

// requestLogger logs one line per request once the response is written.
func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the error envelope every endpoint shares.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
