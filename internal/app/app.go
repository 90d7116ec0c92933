package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/config"
	"github.com/healthconnect/portal/internal/database"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/modules/summary"
	pkgcron "github.com/healthconnect/portal/internal/pkg/cron"
	"github.com/healthconnect/portal/internal/pkg/metrics"
	pkgredis "github.com/healthconnect/portal/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	db       *gorm.DB
	redis    *pkgredis.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	sched    *pkgcron.Scheduler
	summary  *summary.Service
	surfaces *summary.Registry
	cancel   context.CancelFunc
}

// New initializes the application: config → DB → Redis → summarizer → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if cfg.SeedFixtures {
		n, err := database.Seed(context.Background(), db, time.Now())
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("fixtures seeded", zap.Int("inserted", n))
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	m := metrics.New()
	generator, provider, err := summary.NewGenerator(cfg.AI)
	switch {
	case errors.Is(err, summary.ErrNoProvider):
		logger.Warn("no AI provider enabled, summaries will fail until one is configured")
	case err != nil:
		return nil, fmt.Errorf("summary generator: %w", err)
	default:
		logger.Info("summary provider ready",
			zap.String("provider", provider.ID),
			zap.String("type", provider.Type),
			zap.String("model", provider.DefaultModel))
	}
	svc := summary.NewService(generator,
		summary.WithLogger(logger),
		summary.WithTimeout(cfg.AI.Timeout),
		summary.WithMetrics(m))
	surfaces := summary.NewRegistry(svc, logger, m)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(m.Middleware())
	router.Use(newCORS(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New(logger)

	app := &App{
		cfg:      cfg,
		router:   router,
		db:       db,
		redis:    rc,
		logger:   logger,
		metrics:  m,
		sched:    sched,
		summary:  svc,
		surfaces: surfaces,
		cancel:   cancel,
	}
	app.registerCronJobs()
	go sched.Start(ctx)
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cancels in-flight summaries, which also ends their event streams,
// and stops the scheduler.
func (a *App) Shutdown() {
	a.surfaces.CloseAll()
	a.cancel()
}

// Close releases the Redis and database connections. Call it after the HTTP
// server has drained.
func (a *App) Close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("redis close failed", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
}
