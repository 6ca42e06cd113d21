package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yumyai/ggderep/pkg/middle"
)

// NewRouter wires the API routes and wraps them in the request ID and
// logging middleware.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// API routes
	mux.HandleFunc("GET /api/v1/health", HealthCheck)
	mux.HandleFunc("POST /api/v1/dereplicate", s.Dereplicate)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}", s.GetJob)

	if s.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{}))
	}

	log := s.logger()
	return middle.Chain(mux, middle.RequestIDMiddleware(log), middle.LoggingMiddleware(log))
}
