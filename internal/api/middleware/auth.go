package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog/internal/api/metrics"
	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/ports"
)

const userKey = "user"

// SessionReader resolves the user id bound to the request's session. An
// error means the session could not be read at all, not that it is anonymous.
type SessionReader interface {
	CurrentUserID(c echo.Context) (int64, bool, error)
}

// LoadUser runs before every handler and stores the session's user in the
// echo context. A session pointing at a user that no longer exists is treated
// as anonymous. Session or user store failures abort the request.
func LoadUser(sessions SessionReader, users ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok, err := sessions.CurrentUserID(c)
			if err != nil {
				return err
			}
			if !ok {
				return next(c)
			}

			user, err := users.FindByID(c.Request().Context(), id)
			switch {
			case err == nil:
				c.Set(userKey, user)
			case errors.Is(err, domain.ErrUserNotFound):
				log.Debug().Int64("user_id", id).Msg("session bound to unknown user")
			default:
				return err
			}

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// RequireAuth stops anonymous requests before the handler runs. Browsers are
// redirected to loginPath; JSON and XHR clients get a 401.
func RequireAuth(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}

			if wantsJSON(c.Request()) {
				metrics.GuardRejectionsTotal.WithLabelValues("unauthorized").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": domain.ErrAuthRequired.Error()})
			}

			metrics.GuardRejectionsTotal.WithLabelValues("redirect").Inc()
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
