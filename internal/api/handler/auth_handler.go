package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/loqui/chat-system/internal/api/metrics"
	"github.com/loqui/chat-system/internal/api/middleware"
	"github.com/loqui/chat-system/internal/core/domain"
	"github.com/loqui/chat-system/internal/core/ports"
)

// AuthHandler handles registration, login, current-user lookup, and
// logout. It is the only place the session cookie is written or
// cleared.
type AuthHandler struct {
	sessions ports.SessionService
	ttl      time.Duration
}

func NewAuthHandler(sessions ports.SessionService, ttl time.Duration) *AuthHandler {
	return &AuthHandler{sessions: sessions, ttl: ttl}
}

type registerRequest struct {
	Username string `json:"user_name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,min=5,max=50"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type loginRequest struct {
	LoginText string `json:"login_text" validate:"required,max=255"`
	Password  string `json:"password" validate:"required,max=256"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

// Register creates an account and starts a session.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.sessions.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(c, token)
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates by username, email, or phone and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.sessions.Login(c.Request().Context(), req.LoginText, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, user)
}

// Me returns the account owning the presented session token.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, user)
}

// Logout revokes the presented session token and clears the cookie.
// Logging out without a session is a success, not an error.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}

	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, logoutResponse{Success: true})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func registerResult(err error) string {
	switch err {
	case domain.ErrUsernameTaken, domain.ErrEmailTaken, domain.ErrPhoneTaken:
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	if err == domain.ErrInvalidCredentials {
		return "unauthorized"
	}
	return "error"
}
