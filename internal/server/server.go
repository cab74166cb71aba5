// Package server runs an http.Handler with the timeouts and graceful
// shutdown shared by every binary in this repository.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// ShutdownTimeout bounds how long in-flight requests may drain on stop.
const ShutdownTimeout = 10 * time.Second

// Server represents one HTTP listener
type Server struct {
	name   string
	server *http.Server
}

// New creates a server for handler. name is used in log entries only.
func New(name string, handler http.Handler) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Handler:           handler,
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("server listening", "service", s.name, "addr", ln.Addr().String())
	return s.server.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves on ln until ctx is cancelled, then drains in-flight requests
// for at most ShutdownTimeout. A clean stop returns nil.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down", "service", s.name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped", "service", s.name)
	return nil
}
