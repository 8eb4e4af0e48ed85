package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/internship-auth/internal/api/middleware"
	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

// UserHandler serves the administrative account endpoints.
type UserHandler struct {
	service ports.UserService
	audit   ports.AuditRecorder
}

func NewUserHandler(service ports.UserService, audit ports.AuditRecorder) *UserHandler {
	if audit == nil {
		audit = noopAudit{}
	}
	return &UserHandler{service: service, audit: audit}
}

type listUsersResponse struct {
	Data  []*domain.User `json:"data"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
}

type setStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// List handles GET /users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role   query     string  false  "Filter by role"  Enums(STUDENT, COMPANY, SCHOOL_ADMIN)
// @Param        page   query     int     false  "1-based page"    default(1)
// @Param        limit  query     int     false  "Page size (max 100)"  default(20)
// @Success      200    {object}  listUsersResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	filter := ports.ListUsersFilter{
		Role:  domain.Role(c.QueryParam("role")),
		Page:  page,
		Limit: limit,
	}
	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{Data: res.Users, Page: res.Page, Limit: res.Limit, Total: res.Total})
}

// SetStatus handles PATCH /users/:id/status, which opens or closes the login
// gate of an account.
//
// @Summary      Activate or deactivate an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.SetActive(c.Request().Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}

	actor, _ := middleware.IdentityFrom(c)
	h.audit.Record(domain.AuthEvent{
		Kind:     domain.EventStatusChanged,
		Email:    user.Email,
		UserID:   user.ID,
		Role:     user.Role,
		ActorID:  actor.Subject,
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusOK, userResponse{User: user})
}

// queryInt parses an optional non-negative integer; absent means zero, which
// the service replaces with its default.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
