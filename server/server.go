// Package server exposes the profileinator pipeline over HTTP: a static
// upload page, a multipart generate endpoint, health, and metrics.
package server

import (
	"context"
	"embed"
	"log/slog"
	"net/http"

	"github.com/mhpenta/profileinator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static/index.html
var staticFiles embed.FS

// VariantService is the slice of the orchestration service the HTTP layer
// depends on.
type VariantService interface {
	GenerateVariants(ctx context.Context, image profileinator.InputImage, count int) ([]profileinator.Variant, error)
}

// Server wires the HTTP surface to a VariantService.
type Server struct {
	svc     VariantService
	cfg     *Config
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Server. A nil logger falls back to slog.Default.
func New(svc VariantService, cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:     svc,
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
	}
}

// Handler returns the fully assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate/", s.handleGenerate)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	var h http.Handler = mux
	h = s.withRecovery(h)
	h = s.withRequestLog(h)
	return h
}
