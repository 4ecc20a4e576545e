// Package app assembles the HTTP service from configuration and runs it under startup ordering.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/services/reconcile"
	"github.com/Ramsey-B/fern/pkg/embedding"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/routes/dateformats"
	formularoutes "github.com/Ramsey-B/fern/pkg/routes/formula"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/recommendation"
	reconcileroutes "github.com/Ramsey-B/fern/pkg/routes/reconcile"
	"github.com/Ramsey-B/fern/pkg/server"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg      *config.Config
	logger   ectologger.Logger
	startup  *startup.Startup
	server   *server.Server
	health   *health.Checker
	service  *reconcile.Service
	embedder *embedding.CachedProvider
	redis    *redis.Client
	producer *kafka.Producer
	tracer   *sdktrace.TracerProvider
	serveErr chan error
}

func New(cfg *config.Config, logger ectologger.Logger) (*App, error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		startup:  startup.NewStartup(logger, cfg.StartupMaxAttempts),
		redis:    NewRedisClient(cfg),
		serveErr: make(chan error, 1),
	}

	embedder, err := NewEmbeddingProvider(cfg, logger, a.redis)
	if err != nil {
		return nil, err
	}
	a.embedder = embedder

	producer, err := NewProducer(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.producer = producer

	var publisher reconcile.EventPublisher
	if producer != nil {
		publisher = producer
	}
	a.service = NewReconcileService(cfg, logger, embedder, publisher)

	checks := []health.Check{}
	if a.redis != nil {
		checks = append(checks, health.Check{
			Name:     "redis",
			Optional: true,
			Ping:     func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
		})
	}
	a.health = health.NewChecker(cfg.Version, checks...)

	a.server = server.New(cfg, logger)
	a.registerRoutes()
	a.registerDependencies()

	return a, nil
}

func (a *App) registerRoutes() {
	e := a.server.Echo()
	api := e.Group("/api/v1")

	a.health.RegisterRoutes(e)
	recommendation.NewHandler(a.service, a.logger).RegisterRoutes(e)
	reconcileroutes.NewHandler(a.service).RegisterRoutes(api)
	formularoutes.NewHandler(a.service).RegisterRoutes(api)
	dateformats.RegisterRoutes(api)
}

func (a *App) registerDependencies() {
	requires := []string{}

	if a.cfg.TracingEnabled {
		requires = append(requires, "tracing")
		a.startup.AddDependency(&startup.Dependency{
			Name: "tracing",
			OnStart: func(ctx context.Context) error {
				otlpCfg := tracing.DefaultOTLPConfig()
				otlpCfg.Endpoint = a.cfg.OTLPEndpoint
				otlpCfg.Protocol = a.cfg.OTLPProtocol
				otlpCfg.Insecure = a.cfg.OTLPInsecure

				exporter, err := tracing.NewOTLPExporter(ctx, otlpCfg)
				if err != nil {
					return err
				}
				a.tracer = tracing.NewProvider(a.cfg.AppName, a.cfg.Version, exporter)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if a.tracer == nil {
					return nil
				}
				return a.tracer.Shutdown(ctx)
			},
		})
	}

	if a.redis != nil {
		requires = append(requires, "redis")
		a.startup.AddDependency(&startup.Dependency{
			Name:    "redis",
			OnStart: func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
			OnStop:  func(context.Context) error { return a.embedder.Close() },
		})
	}

	if a.producer != nil {
		requires = append(requires, "kafka")
		a.startup.AddDependency(&startup.Dependency{
			Name:   "kafka",
			OnStop: func(context.Context) error { return a.producer.Close() },
		})
	}

	a.startup.AddDependency(&startup.Dependency{
		Name:     "http",
		Requires: requires,
		OnStart: func(context.Context) error {
			go func() {
				a.serveErr <- a.server.Start()
			}()
			a.health.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			a.health.SetReady(false)
			return a.server.Shutdown(ctx)
		},
	})
}

func (a *App) Service() *reconcile.Service {
	return a.service
}

func (a *App) Server() *server.Server {
	return a.server
}

// Run starts every dependency and blocks until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		return err
	}
	a.logger.WithContext(ctx).Infof("%s %s started", a.cfg.AppName, a.cfg.Version)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested")
	case runErr = <-a.serveErr:
		if runErr == nil {
			runErr = errors.New("http server stopped unexpectedly")
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, a.startup.Stop(stopCtx))
}
