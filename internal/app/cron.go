package app

import (
	"context"
	"time"

	"github.com/healthconnect/portal/internal/database"
	pkgcron "github.com/healthconnect/portal/internal/pkg/cron"
	"go.uber.org/zap"
)

const evictInterval = time.Minute

func (a *App) registerCronJobs() {
	ttl := a.cfg.Summary.SurfaceTTL
	cronLogger := a.logger.Named("CronService")

	a.sched.Register(pkgcron.Job{
		Name:        "evict_summary_surfaces",
		Description: "Close summary surfaces idle for longer than " + ttl.Round(time.Second).String(),
		Interval:    evictInterval,
		Timeout:     10 * time.Second,
		Fn: func(ctx context.Context) error {
			if n := a.surfaces.EvictIdle(time.Now(), ttl); n > 0 {
				cronLogger.Info("evicted idle summary surfaces", zap.Int("count", n), zap.Int("remaining", a.surfaces.Len()))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "refresh_today_appointments",
		Description: "Re-seed fixture appointments so the demo schedule stays on today",
		Interval:    6 * time.Hour,
		Timeout:     30 * time.Second,
		Fn: func(ctx context.Context) error {
			if !a.cfg.SeedFixtures {
				return nil
			}
			_, err := database.RefreshAppointmentDates(ctx, a.db, time.Now())
			return err
		},
	})
}
