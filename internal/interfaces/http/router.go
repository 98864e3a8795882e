// Package http wires the gin route tree and the HTTP server for the
// annotation API.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/http/handlers"
	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the dependencies of the route tree.  Metrics,
// MetricsHandler, and rate limiting are optional; nil/zero disables them.
type RouterConfig struct {
	Service annotator.Service
	Logger  logging.Logger

	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = cfg.RateLimitRPS
		}
		limiter := middleware.NewTokenBucketLimiter(float64(cfg.RateLimitRPS), burst, 5*time.Minute)
		r.Use(middleware.RateLimit(limiter, middleware.DefaultRateLimitConfig()))
	}

	annotateHandler := handlers.NewAnnotateHandler(cfg.Service)
	healthHandler := handlers.NewHealthHandler(cfg.Service)

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	{
		api.POST("/annotate", annotateHandler.Annotate)
		api.POST("/extract", annotateHandler.Extract)
		api.GET("/domains", annotateHandler.Domains)
	}

	return r
}
