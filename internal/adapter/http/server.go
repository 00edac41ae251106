package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/geocoding-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the geocode lookup alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	geocoder   domain.Geocoder
	timeout    time.Duration
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /geocode, /healthz, /readyz, and /metrics routes.
// A positive timeout bounds each lookup.
func NewServer(addr string, geocoder domain.Geocoder, timeout time.Duration, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger,
	}

	mux.HandleFunc("GET /geocode", s.handleGeocode)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("q")
	if strings.TrimSpace(location) == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "missing query parameter q",
		})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	geocode, err := s.geocoder.Resolve(ctx, location)
	if err != nil {
		kind := domain.ErrorKind(err)
		s.logger.Warn("geocode lookup failed", "location", location, "kind", kind, "error", err)
		sharedobs.WriteJSON(w, statusFor(err), map[string]string{
			"error": err.Error(),
			"kind":  kind,
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, geocode)
}

// statusFor maps a lookup failure to the response status.
func statusFor(err error) int {
	var noResult *domain.NoResultError
	if errors.As(err, &noResult) {
		return http.StatusNotFound
	}
	var transport *domain.TransportError
	if errors.As(err, &transport) && transport.Timeout() {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
