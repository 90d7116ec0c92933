package records

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/pagination"
	"github.com/healthconnect/portal/internal/pkg/response"
	"gorm.io/gorm"
)

// Store is what the handler needs from Repository.
type Store interface {
	FindUser(ctx context.Context, id string) (*models.UserModel, error)
	ListUsers(ctx context.Context, role models.Role, q pagination.Query, search string) ([]models.UserModel, response.Pagination, error)
	SetVerification(ctx context.Context, id string, role models.Role, status models.VerificationStatus) (*models.UserModel, error)
	FindEHRByPatient(ctx context.Context, patientID string) (*models.EHRModel, error)
	SetMedicationReminders(ctx context.Context, patientID, medicationID string, enabled bool) (*models.EHRModel, error)
	ListAppointments(ctx context.Context, user *models.UserModel) ([]models.AppointmentModel, error)
}

type VerificationDTO struct {
	Status models.VerificationStatus `json:"status" binding:"required"`
}

type RemindersDTO struct {
	Reminders *bool `json:"reminders" binding:"required"`
}

type Handler struct{ store Store }

func NewHandler(store Store) *Handler { return &Handler{store: store} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	admin := middleware.RequireRole(models.RoleHospitalAdmin)

	rg.GET("/patients", authMW, middleware.RequireRole(models.RoleDoctor, models.RoleHospitalAdmin), h.listUsers(models.RolePatient))
	rg.PATCH("/patients/:id/status", authMW, admin, h.setVerification(models.RolePatient))
	rg.GET("/patients/:id/record", authMW, middleware.RequireRole(models.RoleDoctor, models.RolePatient), h.getRecord)
	rg.PATCH("/patients/:id/record/medications/:medId", authMW, middleware.RequireRole(models.RolePatient), h.setReminders)

	rg.GET("/staff", authMW, admin, h.listUsers(models.RoleDoctor))
	rg.PATCH("/staff/:id/verification", authMW, admin, h.setVerification(models.RoleDoctor))

	rg.GET("/appointments", authMW, h.listAppointments)
}

// GET /patients?page=&size=&q=
// GET /staff?page=&size=&q=
func (h *Handler) listUsers(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, meta, err := h.store.ListUsers(c.Request.Context(), role, pagination.FromContext(c), c.Query("q"))
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Paged(c, users, meta)
	}
}

// PATCH /staff/:id/verification
// PATCH /patients/:id/status
// Only a decision can be recorded; Pending is the state new doctors start in.
func (h *Handler) setVerification(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var dto VerificationDTO
		if err := c.ShouldBindJSON(&dto); err != nil {
			response.BadRequest(c, "status is required")
			return
		}
		if dto.Status != models.VerificationVerified && dto.Status != models.VerificationRejected {
			response.BadRequest(c, "status must be Verified or Rejected")
			return
		}
		user, err := h.store.SetVerification(c.Request.Context(), c.Param("id"), role, dto.Status)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFoundMsg(c, "no "+strings.ToLower(string(role))+" with this id")
				return
			}
			response.InternalError(c, err)
			return
		}
		response.OK(c, user)
	}
}

// PATCH /patients/:id/record/medications/:medId
// Patients manage reminders on their own record only.
func (h *Handler) setReminders(c *gin.Context) {
	patientID := c.Param("id")
	if middleware.CurrentUserID(c) != patientID {
		response.Forbidden(c)
		return
	}
	var dto RemindersDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "reminders is required")
		return
	}
	record, err := h.store.SetMedicationReminders(c.Request.Context(), patientID, c.Param("medId"), *dto.Reminders)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFoundMsg(c, "no health record for this patient")
		case errors.Is(err, ErrMedicationNotFound):
			response.NotFoundMsg(c, "no such medication on this record")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, record)
}

// GET /patients/:id/record
// Patients may only read their own record.
func (h *Handler) getRecord(c *gin.Context) {
	patientID := c.Param("id")
	if middleware.CurrentRole(c) == models.RolePatient && middleware.CurrentUserID(c) != patientID {
		response.Forbidden(c)
		return
	}
	record, err := h.store.FindEHRByPatient(c.Request.Context(), patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundMsg(c, "no health record for this patient")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, record)
}

// GET /appointments
func (h *Handler) listAppointments(c *gin.Context) {
	user, err := h.store.FindUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	appointments, err := h.store.ListAppointments(c.Request.Context(), user)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, appointments)
}
