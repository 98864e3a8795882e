package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/config"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
)

// Server runs the annotation API over a standard http.Server so timeouts
// and graceful shutdown stay under our control.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the server around an already-constructed handler.
// cfg.Mode selects gin's runtime mode; callers set it before building the
// router.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		logger: logger.Named("server"),
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// SetMode applies the configured gin mode process-wide.  Call once at
// startup before NewRouter.
func SetMode(mode string) {
	switch mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

// Start serves until Stop or a listener error.  http.ErrServerClosed is
// returned on graceful shutdown; callers treat it as a clean exit.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }
