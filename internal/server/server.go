package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/pkg/core/config"
	"github.com/msto63/kylang/pkg/core/health"
	"github.com/msto63/kylang/pkg/core/logging"
	"github.com/msto63/kylang/pkg/core/version"
)

// Server is the kylang playground server
type Server struct {
	httpServer *http.Server
	ws         *WebSocketHandler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string

	// Limits applied to every program run
	MaxSourceBytes int
	MaxSteps       int64
	RunTimeout     time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return FromConfig(config.Default().Server)
}

// FromConfig converts the [server] section into a server Config
func FromConfig(cfg config.ServerConfig) Config {
	return Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout.Duration,
		WriteTimeout:   cfg.WriteTimeout.Duration,
		Version:        version.Server,
		MaxSourceBytes: cfg.MaxSourceBytes,
		MaxSteps:       cfg.MaxSteps,
		RunTimeout:     cfg.RunTimeout.Duration,
	}
}

// Options holds the collaborators of a server
type Options struct {
	Logger *mdwlog.Logger

	// History records every run when set
	History history.Store
}

// New creates a new playground server
func New(cfg Config, opts Options) *Server {
	logger := logging.Wrap(opts.Logger, "kylang-server")

	wsHandler := NewWebSocketHandler(cfg, opts.Logger, opts.History)

	// Create health registry
	healthRegistry := health.NewRegistry("kylang-server", cfg.Version, health.DefaultCheckTimeout)
	healthRegistry.Register("engine", health.Critical, func(ctx context.Context) error {
		engine := kylang.New(kylang.Options{Logger: mdwlog.Discard(), Output: io.Discard, MaxSteps: 100})
		_, err := engine.Run(ctx, "let probe := 6 * 7\nif probe /= 42: display probe")
		return err
	})
	if opts.History != nil {
		// history failures only degrade the report
		healthRegistry.Register("history", health.Optional, func(ctx context.Context) error {
			_, err := opts.History.Stats(ctx)
			return err
		})
	}

	// Create HTTP server
	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/healthz", healthRegistry)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		ws:         wsHandler,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for the websocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting kylang playground server",
		"host", s.config.Host,
		"port", s.config.Port,
		"max_steps", s.config.MaxSteps,
		"run_timeout", s.config.RunTimeout,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server and cancels running programs
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping kylang playground server")
	s.ws.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
