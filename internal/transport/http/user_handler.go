package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/feastflow/feastflow-api/internal/domain"
	"github.com/feastflow/feastflow-api/internal/service"
	"github.com/feastflow/feastflow-api/internal/util"
)

type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) Register(e *echo.Echo) {
	g := e.Group("/api/users")
	g.GET("/all", h.list)
	g.GET("/me", h.me, RequireAuth(h.auth))
	g.PUT("/me", h.update, RequireAuth(h.auth))
	g.POST("/me/avatar", h.uploadAvatar, RequireAuth(h.auth))
}

func (h *UserHandler) list(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.users.List(c.Request().Context(), limit, offset)
	if err != nil {
		c.Logger().Errorf("list users: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"users": users, "count": len(users)})
}

func (h *UserHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

func (h *UserHandler) update(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return validationJSON(c, err)
	}
	if req.ResponseTime != nil && !domain.ValidResponseTime(*req.ResponseTime) {
		return validationJSON(c, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "response_time", Message: "must be a valid response-time bucket"},
		}})
	}

	updated, err := h.users.UpdateProfile(c.Request().Context(), user.ID, req.toUpdate())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("not found"))
		}
		c.Logger().Errorf("update profile: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	return c.JSON(http.StatusOK, util.Data("user", updated))
}

func (h *UserHandler) uploadAvatar(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("unauthorized"))
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("avatar file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Logger().Errorf("open avatar upload: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("server error"))
	}
	defer file.Close()

	updated, err := h.users.UploadAvatar(c.Request().Context(), user.ID,
		fileHeader.Filename, fileHeader.Header.Get(echo.HeaderContentType), file, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedImage):
			return c.JSON(http.StatusBadRequest, util.Error("unsupported image format"))
		case errors.Is(err, service.ErrImageTooLarge):
			return c.JSON(http.StatusBadRequest, util.Error("image too large"))
		default:
			c.Logger().Errorf("upload avatar: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("server error"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("user", updated))
}
