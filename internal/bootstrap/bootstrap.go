// Package bootstrap assembles the annotation service from configuration.
// Both the API server binary and the CLI's serve command build the same
// component graph through it, so wiring decisions live in exactly one place.
package bootstrap

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
	"github.com/turtacn/BioTerm-Annotator/internal/config"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/cache/redis"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/extraction/anthropic"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/lookup"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/lookup/bioportal"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/lookup/ols"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/turtacn/BioTerm-Annotator/internal/interfaces/http"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// App holds the assembled component graph.  Optional components are nil when
// their configuration disables them.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Service annotator.Service

	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler

	cacheClient *redis.Client
	producer    *kafka.Producer
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		ServiceName: cfg.ServiceName,
		OutputPaths: cfg.OutputPaths,
	})
}

// Build wires providers, extractor, annotator, and the optional cache, event
// producer, and metrics into a ready application service.  It validates cfg
// first; a nil logger gets a no-op one.
func Build(cfg *config.Config, logger logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig.WithDetail("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "configuration rejected")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	retry := lookup.RetryPolicy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
		Multiplier:     cfg.Retry.Multiplier,
	}

	primary, err := ols.NewClient(ols.Config{
		BaseURL:    cfg.OLS.BaseURL,
		Timeout:    cfg.OLS.Timeout,
		MaxResults: cfg.OLS.MaxResults,
		Retry:      retry,
	}, logger)
	if err != nil {
		return nil, err
	}

	var fallback annotation.TermProvider
	if cfg.BioPortal.Enabled() {
		bp, err := bioportal.NewClient(bioportal.Config{
			APIKey:     cfg.BioPortal.APIKey,
			BaseURL:    cfg.BioPortal.BaseURL,
			Timeout:    cfg.BioPortal.Timeout,
			MaxResults: cfg.BioPortal.MaxResults,
			Retry:      retry,
		}, logger)
		if err != nil {
			return nil, err
		}
		fallback = bp
	}

	var extractor annotation.Extractor
	if cfg.Anthropic.Enabled() {
		ex, err := anthropic.NewExtractor(anthropic.Config{
			APIKey:    cfg.Anthropic.APIKey,
			BaseURL:   cfg.Anthropic.BaseURL,
			Model:     cfg.Anthropic.Model,
			MaxTokens: cfg.Anthropic.MaxTokens,
			Timeout:   cfg.Anthropic.Timeout,
			Retry:     retry,
		}, logger)
		if err != nil {
			return nil, err
		}
		extractor = ex
	}

	resolver := annotation.NewOntologyResolver(cfg.Annotation.DomainOntologies)
	ann, err := annotation.NewAnnotator(annotation.Config{
		BatchConcurrency: cfg.Annotation.BatchConcurrency,
	}, primary, fallback, extractor, resolver, logger)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}
	var opts []annotator.Option

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.Metrics = prometheus.NewAppMetrics(collector)
		app.MetricsHandler = collector.Handler()
		opts = append(opts, annotator.WithMetrics(app.Metrics))
	}

	if cfg.Cache.Enabled {
		client, err := redis.NewClient(redis.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.cacheClient = client
		cacheOpts := []redis.CacheOption{redis.WithDefaultTTL(cfg.Cache.TTL)}
		if cfg.Cache.KeyPrefix != "" {
			cacheOpts = append(cacheOpts, redis.WithPrefix(strings.TrimSuffix(cfg.Cache.KeyPrefix, ":")+":"))
		}
		opts = append(opts, annotator.WithCache(redis.NewCache(client, logger, cacheOpts...), cfg.Cache.TTL))
	}

	if cfg.Events.Enabled {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		opts = append(opts, annotator.WithEvents(producer))
	}

	app.Service = annotator.NewService(cfg.Annotation, ann, logger, opts...)
	return app, nil
}

// Close releases the optional infrastructure connections.  The first error
// wins; later closers still run.
func (a *App) Close() error {
	var first error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.cacheClient != nil {
		if err := a.cacheClient.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RunServer serves the HTTP API until ctx is canceled or SIGINT/SIGTERM
// arrives, then drains in-flight requests within the shutdown timeout.
func (a *App) RunServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpiface.SetMode(a.Config.Server.Mode)
	router := httpiface.NewRouter(httpiface.RouterConfig{
		Service:        a.Service,
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		MetricsHandler: a.MetricsHandler,
		RateLimitRPS:   a.Config.Server.RateLimitRPS,
		RateLimitBurst: a.Config.Server.RateLimitBurst,
	})
	server := httpiface.NewServer(a.Config.Server, router, a.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})
	return g.Wait()
}
