package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog/internal/api/metrics"
	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/ports"
)

const (
	LoginPath = "/auth/login"
	IndexPath = "/"
)

// SessionManager binds and clears the authenticated identity of a client.
type SessionManager interface {
	Establish(c echo.Context, userID int64) error
	Clear(c echo.Context) error
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionManager
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions SessionManager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      303   "Redirect to the login page"
// @Failure      400   {object}  formErrorResponse
// @Failure      409   {object}  formErrorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	form := credentialsForm{Username: req.Username}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, formErrorResponse{Error: err.Error(), Form: form})
	}

	_, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, formErrorResponse{Error: ValidationMessage(err), Form: form})
	case errors.Is(err, domain.ErrDuplicateUser):
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return c.JSON(http.StatusConflict, formErrorResponse{
			Error: fmt.Sprintf("User %s is already registered.", req.Username),
			Form:  form,
		})
	default:
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// Login verifies credentials and binds the user to a fresh session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Username and password"
// @Success      303   "Redirect to the index; sets the session cookie"
// @Failure      400   {object}  formErrorResponse
// @Failure      401   {object}  formErrorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	form := credentialsForm{Username: req.Username}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, formErrorResponse{Error: err.Error(), Form: form})
	}

	user, err := h.authService.Verify(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidPassword) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, formErrorResponse{
				Error: "invalid username or password",
				Form:  form,
			})
		}
		return err
	}

	if err := h.sessions.Establish(c, user.ID); err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return c.Redirect(http.StatusSeeOther, IndexPath)
}

// Logout clears the session and redirects to the login page.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "Redirect to the login page; expires the session cookie"
// @Router       /auth/logout [get]
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Clear(c); err != nil {
		h.log.Warn().Err(err).Msg("failed to clear session")
	}
	return c.Redirect(http.StatusSeeOther, LoginPath)
}
