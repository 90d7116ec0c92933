package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/database"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/modules/auth"
	"github.com/healthconnect/portal/internal/modules/health"
	"github.com/healthconnect/portal/internal/modules/records"
	"github.com/healthconnect/portal/internal/modules/summary"
	"github.com/healthconnect/portal/internal/pkg/response"
	"github.com/healthconnect/portal/internal/pkg/session"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	api := r.Group(apiPrefix)

	sessions := session.NewRedisStore(a.redis.Raw())
	authMW := middleware.Auth(sessions)
	repo := records.NewRepository(a.db)

	health.RegisterRoutes(api, health.Deps{
		Database: func(context.Context) error { return database.Ping(a.db) },
		Redis:    a.redis.Ping,
		Jobs:     a.sched,
		LogDir:   a.cfg.LogDir(),
	}, authMW)

	auth.NewHandler(auth.NewService(repo, sessions)).RegisterRoutes(api, authMW)
	records.NewHandler(repo).RegisterRoutes(api, authMW)

	limiter := middleware.RateLimit(a.redis.Raw(), "summary", a.cfg.Summary.RateLimitPerMinute)
	summary.NewHandler(a.summary, a.surfaces, repo).RegisterRoutes(api, authMW, limiter)
}
