// Package httpapi exposes the task manager over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/kanban/internal/domain"
)

// Options configures a Server.
type Options struct {
	Logger          *slog.Logger  // Access and lifecycle log (nil = discard)
	Addr            string        // Listen address (empty = DefaultAddr)
	ShutdownTimeout time.Duration // Graceful shutdown limit (0 = DefaultShutdownTimeout)
}

// Server is the kanban HTTP server.
type Server struct {
	manager         TaskManager
	router          *gin.Engine
	logger          *slog.Logger
	addr            string
	shutdownTimeout time.Duration
}

// New creates a server for the given manager.
func New(manager TaskManager, opts Options) *Server {
	s := &Server{
		manager:         manager,
		logger:          opts.Logger,
		addr:            opts.Addr,
		shutdownTimeout: opts.ShutdownTimeout,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.addr == "" {
		s.addr = domain.DefaultAddr
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = domain.DefaultShutdownTimeout
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(s.logger))
	router.HandleMethodNotAllowed = true

	for path, res := range s.resources() {
		s.register(router.Group(path), res)
	}
	router.GET("/epics/:id/subtask", s.handleEpicSubtasks)
	router.GET("/history", s.handleHistory)
	router.GET("/prioritized", s.handlePrioritized)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found"})
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("shut down gracefully")
	return nil
}
