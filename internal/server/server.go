package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/farmacob/cobtool/internal/api"
	"github.com/farmacob/cobtool/internal/config"
	"github.com/farmacob/cobtool/internal/home"
	"github.com/farmacob/cobtool/internal/letters"
	"github.com/farmacob/cobtool/internal/server/endpoints"
	"github.com/farmacob/cobtool/internal/svcctx"
)

// Server is the cobtool HTTP server.
// It owns the letter generator and rebuilds it when the config file changes.
type Server struct {
	httpServer *http.Server
	home       *home.Dir
	logger     *slog.Logger

	generator atomic.Pointer[letters.Generator]

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: server.host, then 127.0.0.1)
	Host string
	// Port is the port to listen on (default: server.port, then 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the cobtool home directory. Its templates directory is used
	// when the config names no template source.
	Home *home.Dir
	// Generator, when set, is used as is and config changes do not replace it.
	Generator *letters.Generator
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager != nil {
		c := cfg.ConfigManager.Get()
		if cfg.Host == "" {
			cfg.Host = c.Server.Host
		}
		if cfg.Port == "" {
			cfg.Port = c.Server.Port
		}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	s := &Server{
		home:   cfg.Home,
		logger: cfg.Logger,
	}

	switch {
	case cfg.Generator != nil:
		s.generator.Store(cfg.Generator)
	case cfg.ConfigManager != nil:
		gen, err := s.buildGenerator(cfg.ConfigManager.Get())
		if err != nil {
			// Letter endpoints answer 503 until a valid config is saved.
			s.logger.Warn("letter generator not configured", "error", err)
		} else {
			s.generator.Store(gen)
		}

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			gen, err := s.buildGenerator(c)
			if err != nil {
				s.logger.Error("config reload rejected, keeping previous generator", "error", err)
				return
			}
			s.generator.Store(gen)
			s.logger.Info("letter generator reloaded from config")
		})
	default:
		s.logger.Warn("no config manager or generator; letter endpoints disabled")
	}

	s.services = &svcctx.Services{
		Letters: s,
		Config:  cfg.ConfigManager,
		Logger:  s.logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// buildGenerator creates a generator from cfg, falling back to the home
// templates directory when no template source is configured.
func (s *Server) buildGenerator(cfg *config.Config) (*letters.Generator, error) {
	c := *cfg
	if s.home != nil {
		c = c.WithDefaultTemplatesDir(s.home.TemplatesPath())
	}
	lc, err := c.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	lc.Logger = s.logger
	return letters.NewGenerator(lc)
}

// Generator returns the letter generator in effect, or nil when none is
// configured.
func (s *Server) Generator() *letters.Generator {
	return s.generator.Load()
}

// Start starts the server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address. Once started, this is the
// bound address, so a configured port of "0" reports the chosen port.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Handler returns the server's HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if no letter generator is configured.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.generator.Load() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
