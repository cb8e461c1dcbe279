// Package httptransport assembles the HTTP surface: middleware stack,
// authenticated ledger routes, and the unauthenticated operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kyc-ledger/internal/platform/health"
	"kyc-ledger/internal/platform/middleware"
	"kyc-ledger/internal/registry/handler"
)

// NewRouter wires all endpoints with middleware. Ledger routes sit behind
// bearer auth; health and metrics stay open for probes and scrapers.
func NewRouter(
	registry *handler.Handler,
	healthHandler *health.Handler,
	validator middleware.TokenValidator,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		registry.Register(r)
	})

	return r
}
