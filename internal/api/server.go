package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults for server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            3000,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second, // Upgraded websocket conns manage their own deadlines
		ShutdownTimeout: 30 * time.Second,
	}
}

// Loop is the dispatch loop serving the websocket endpoint
type Loop interface {
	Run(ctx context.Context)
	Stopped() <-chan struct{}
}

// Server runs the HTTP listener together with the dispatch loop behind it
type Server struct {
	server   *http.Server
	loop     Loop
	listener net.Listener
	logger   *slog.Logger
	config   ServerConfig
}

// NewServer creates a new server
func NewServer(handler http.Handler, loop Loop, config ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         net.JoinHostPort(config.Host, fmt.Sprint(config.Port)),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
		loop:   loop,
		logger: logger.With(slog.String("component", "server")),
		config: config,
	}
}

// Listen binds the listen address. Serve calls it when it has not been called.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	return nil
}

// Serve starts the dispatch loop and serves HTTP until ctx is cancelled or
// the listener fails. On the way out the listener is drained first, then the
// loop is stopped, which closes every websocket client.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go s.loop.Run(loopCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", s.Addr()))
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		err = s.Shutdown(context.Background())
	}

	stopLoop()
	<-s.loop.Stopped()
	s.logger.Info("dispatch loop stopped")
	return err
}

// Shutdown gracefully stops the HTTP listener
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once listening, otherwise the configured one
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}
