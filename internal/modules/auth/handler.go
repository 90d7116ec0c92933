package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/middleware"
	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/response"
	"gorm.io/gorm"
)

type LoginDTO struct {
	Role string `json:"role" binding:"required"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.UserModel `json:"user"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/login", h.login)
	a.GET("/me", authMW, h.me)
	a.POST("/logout", authMW, h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "role is required")
		return
	}
	token, user, err := h.svc.Login(c.Request.Context(), dto.Role)
	if err != nil {
		switch {
		case errors.Is(err, errUnknownRole):
			response.BadRequest(c, "role must be Patient, Doctor or Hospital Admin")
		case errors.Is(err, errNoUserInRole):
			response.NotFoundMsg(c, "no account holds this role")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, loginResponse{Token: token, User: user})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, user)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
