package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/internship-auth/internal/api/metrics"
	"github.com/campuslink/internship-auth/internal/api/middleware"
	"github.com/campuslink/internship-auth/internal/core/domain"
	"github.com/campuslink/internship-auth/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	audit       ports.AuditRecorder
}

// NewAuthHandler builds the handler. audit may be nil.
func NewAuthHandler(authService ports.AuthService, audit ports.AuditRecorder) *AuthHandler {
	if audit == nil {
		audit = noopAudit{}
	}
	return &AuthHandler{authService: authService, audit: audit}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=STUDENT COMPANY SCHOOL_ADMIN"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type registerResponse struct {
	User *domain.User `json:"user"`
}

// Register creates a new account. It does not log the caller in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Role)).Inc()
	h.audit.Record(domain.AuthEvent{
		Kind:     domain.EventRegistered,
		Email:    user.Email,
		UserID:   user.ID,
		Role:     user.Role,
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusCreated, registerResponse{User: user})
}

// Login authenticates a user and returns a signed access token. The token
// payload carries role and email for the client to read.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	start := time.Now()
	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginDuration.Observe(time.Since(start).Seconds())

	email := domain.NormalizeEmail(req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			h.audit.Record(domain.AuthEvent{Kind: domain.EventLoginFailed, Email: email, RemoteIP: c.RealIP()})
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	h.audit.Record(domain.AuthEvent{
		Kind:     domain.EventLoginSucceeded,
		Email:    email,
		UserID:   res.User.ID,
		Role:     res.User.Role,
		RemoteIP: c.RealIP(),
	})

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.ExpiresAt,
	})
}

// Me returns the identity decoded from the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, identity)
}

type noopAudit struct{}

func (noopAudit) Record(domain.AuthEvent) {}
