package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/cron"
	"github.com/healthconnect/portal/internal/pkg/response"
)

const pingTimeout = 2 * time.Second

// Probe checks one backing service.
type Probe func(ctx context.Context) error

// Jobs is the scheduler surface exposed to admins.
type Jobs interface {
	List() []cron.ListItem
	Run(ctx context.Context, name string) error
}

type Deps struct {
	Database Probe
	Redis    Probe
	Jobs     Jobs
	LogDir   string
}

type logItem struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
	Created  int64  `json:"created"`
}

func RegisterRoutes(rg *gin.RouterGroup, deps Deps, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		dbOK := probe(ctx, deps.Database)
		redisOK := probe(ctx, deps.Redis)

		status := "ok"
		code := http.StatusOK
		if !dbOK || !redisOK {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":   status,
			"database": dbOK,
			"redis":    redisOK,
		})
	})

	admin := rg.Group("/health", authMW, middleware.RequireRole(models.RoleHospitalAdmin))

	cronGroup := admin.Group("/cron")
	cronGroup.GET("", func(c *gin.Context) {
		response.OK(c, deps.Jobs.List())
	})
	cronGroup.POST("/run/:name", func(c *gin.Context) {
		if err := deps.Jobs.Run(c.Request.Context(), c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"message": "job triggered"})
	})

	admin.GET("/log/list", func(c *gin.Context) {
		items, err := listLogs(deps.LogDir)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, items)
	})
}

func probe(ctx context.Context, p Probe) bool {
	return p != nil && p(ctx) == nil
}

func listLogs(dir string) ([]logItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []logItem{}, nil
		}
		return nil, err
	}
	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Filename: entry.Name(),
			Size:     formatSize(info.Size()),
			Created:  info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Filename > items[j].Filename })
	return items, nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
