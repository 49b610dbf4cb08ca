package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/service"
	"github.com/feastflow/feastflow-api/internal/util"
)

const contextUserKey = "auth.user"

// RequireAuth verifies the bearer token on each request and stashes the
// hydrated account in the request context. A valid token whose account has
// since disappeared is a 404, not a 401.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}

			user, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrUnauthorized):
					return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
				case errors.Is(err, domain.ErrAccountNotFound):
					return c.JSON(http.StatusNotFound, util.Error("not found"))
				default:
					c.Logger().Errorf("authenticate: %v", err)
					return c.JSON(http.StatusInternalServerError, util.Error("server error"))
				}
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the account placed in the context by RequireAuth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}
