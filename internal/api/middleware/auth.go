package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loqui/chat-system/internal/api/metrics"
	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "chat-auth-token"

const userContextKey = "current_user"

// Auth resolves the session cookie to an account and injects it into
// the request context. A missing, unknown, or expired token is rejected
// with the same 401.
func Auth(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				metrics.SessionVerificationsTotal.WithLabelValues("rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			user, err := sessions.Verify(c.Request().Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidSession) {
					metrics.SessionVerificationsTotal.WithLabelValues("rejected").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			metrics.SessionVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser extracts the account injected by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}
