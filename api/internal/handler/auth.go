package handler

import (
	"net/http"

	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Login godoc
// @Summary Issue an access token
// @Tags    users
// @Accept  x-www-form-urlencoded,json
// @Produce json
// @Param   username formData string true "username or email"
// @Param   password formData string true "password"
// @Success 200 {object} model.TokenResponse
// @Failure 401,422 {object} echo.HTTPError
// @Router  /users/auth [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.authSvc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusOK, resp)
}
