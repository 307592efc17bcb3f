package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dvcrn/ledspeed/internal/device"
	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Controller over the board's HTTP API.
type Server struct {
	controller *device.Controller
	mux        *http.ServeMux
	handler    http.Handler
	registry   *prometheus.Registry
	metrics    *metrics
	corsOrigin string
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin sets the Access-Control-Allow-Origin value. Defaults to "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// NewServer creates a server for controller with its own metrics registry.
func NewServer(controller *device.Controller, opts ...Option) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		controller: controller,
		mux:        http.NewServeMux(),
		registry:   registry,
		metrics:    newMetrics(registry, controller),
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()

	s.handler = loggingMiddleware(s.corsMiddleware(s.mux))
	return s
}

func (s *Server) setupRoutes() {
	s.mux.Handle("GET /speed", s.instrument("/speed", s.getSpeedHandler))
	s.mux.Handle("POST /speed", s.instrument("/speed", s.setSpeedHandler))
	s.mux.Handle("GET /leds", s.instrument("/leds", s.ledsHandler))
	s.mux.HandleFunc("GET /health", healthHandler)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start blinks the LEDs and serves HTTP on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve blinks the LEDs and serves HTTP on ln until ctx is done, then shuts
// down gracefully. It returns nil after a shutdown caused by ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := s.controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Get().Error().Err(err).Msg("LED loop stopped")
		}
	}()
	defer func() { <-loopDone }()

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info().Msgf("Starting device server on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
	}

	logger.Get().Info().Msg("Shutting down device server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
