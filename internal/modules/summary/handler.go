package summary

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	maxRequestBody   = 1 << 20
	streamBufferSize = 8
)

// Directory looks up the doctor making the request and the patient's record.
type Directory interface {
	FindUser(ctx context.Context, id string) (*models.UserModel, error)
	FindEHRByPatient(ctx context.Context, patientID string) (*models.EHRModel, error)
}

type Handler struct {
	svc      *Service
	registry *Registry
	dir      Directory
}

func NewHandler(svc *Service, registry *Registry, dir Directory) *Handler {
	return &Handler{svc: svc, registry: registry, dir: dir}
}

// RegisterRoutes mounts the summary endpoints. limiter guards the two calls
// that reach the model.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, limiter gin.HandlerFunc) {
	doctorOnly := []gin.HandlerFunc{authMW, middleware.RequireRole(models.RoleDoctor), h.requireVerifiedDoctor}

	rg.POST("/ai/ehr-summary", append(doctorOnly, limiter, h.generate)...)

	g := rg.Group("/patients/:id/summary", doctorOnly...)
	g.POST("", limiter, h.start)
	g.GET("", h.snapshot)
	g.GET("/stream", h.stream)
	g.DELETE("", h.close)
}

func (h *Handler) requireVerifiedDoctor(c *gin.Context) {
	user, err := h.dir.FindUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	if !user.CanSummarize() {
		response.ForbiddenMsg(c, "only verified doctors can generate summaries")
		return
	}
	c.Next()
}

// POST /ai/ehr-summary
// Always answers 200 with {summary} or {error}.
func (h *Handler) generate(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err != nil {
		body = nil
	}
	c.JSON(http.StatusOK, h.svc.GenerateSummaryFromJSON(c.Request.Context(), body))
}

// findRecord loads the patient's record or writes the error response.
func (h *Handler) findRecord(c *gin.Context) (*models.EHRModel, bool) {
	record, err := h.dir.FindEHRByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "no health record for this patient")
			return nil, false
		}
		response.InternalError(c, err)
		return nil, false
	}
	return record, true
}

// POST /patients/:id/summary
func (h *Handler) start(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	orch, err := h.registry.Start(c.Request.Context(), h.surfaceKey(c), record.FullRecord)
	switch {
	case err == nil:
		response.Accepted(c, orch.Snapshot())
	case errors.Is(err, ErrAttemptInFlight):
		response.Conflict(c, err.Error())
	default:
		response.ServiceUnavailable(c, "summary surface was closed, please retry")
	}
}

// GET /patients/:id/summary
func (h *Handler) snapshot(c *gin.Context) {
	orch, ok := h.registry.Get(h.surfaceKey(c))
	if !ok {
		response.OK(c, State{Status: StatusIdle})
		return
	}
	response.OK(c, orch.Snapshot())
}

// GET /patients/:id/summary/stream
// Server-sent events: the current state first, then every transition until
// the client leaves or the surface is closed.
func (h *Handler) stream(c *gin.Context) {
	if _, ok := h.findRecord(c); !ok {
		return
	}
	orch := h.registry.GetOrCreate(h.surfaceKey(c))
	updates, stop := orch.Subscribe(streamBufferSize)
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", orch.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		}
	})
}

// DELETE /patients/:id/summary
func (h *Handler) close(c *gin.Context) {
	h.registry.Remove(h.surfaceKey(c))
	response.NoContent(c)
}

func (h *Handler) surfaceKey(c *gin.Context) string {
	return SurfaceKey(middleware.CurrentUserID(c), c.Param("id"))
}
