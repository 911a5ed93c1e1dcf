package handler

import (
	"net/http"

	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/labstack/echo/v4"
)

const userNotFound = "User not found"

// ListUsers godoc
// @Summary  List users
// @Tags     users
// @Security Bearer
// @Produce  json
// @Param    limit         query int    false "page size" default(100)
// @Param    page          query int    false "page number" default(1)
// @Param    username_like query string false "username substring"
// @Param    role          query string false "role" Enums(USER, ADMIN)
// @Success  200 {object} model.ListResponse[model.User]
// @Failure  401,403,422 {object} echo.HTTPError
// @Router   /users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	filters, err := h.filters(c, model.UserFilters)
	if err != nil {
		return err
	}
	resp, err := h.userSvc.List(c.Request().Context(), page, filters)
	if err != nil {
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetUser godoc
// @Summary  Get a user
// @Tags     users
// @Security Bearer
// @Produce  json
// @Param    id path int true "user id"
// @Success  200 {object} model.User
// @Failure  401,403,404,422 {object} echo.HTTPError
// @Router   /users/{id} [get]
func (h *Handler) GetUser(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	user, err := h.userSvc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary  Create a user
// @Tags     users
// @Security Bearer
// @Accept   json
// @Produce  json
// @Param    user body model.UserCreateRequest true "user"
// @Success  201 {object} model.User
// @Failure  401,403,409,422 {object} echo.HTTPError
// @Router   /users [post]
func (h *Handler) CreateUser(c echo.Context) error {
	var req model.UserCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.userSvc.Create(c.Request().Context(), req)
	if err != nil {
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary     Update a user
// @Description Allowed for the user themself or an admin. Only admins may change roles.
// @Tags        users
// @Security    Bearer
// @Accept      json
// @Produce     json
// @Param       id   path int                     true "user id"
// @Param       user body model.UserUpdateRequest true "fields to change"
// @Success     200 {object} model.User
// @Failure     401,403,404,409,422 {object} echo.HTTPError
// @Router      /users/{id} [put]
func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := h.manageable(c)
	if err != nil {
		return err
	}
	var req model.UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if me, _ := caller(c); !me.IsAdmin() && req.Role != nil && *req.Role != me.Role {
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	}
	user, err := h.userSvc.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary     Delete a user
// @Description Allowed for the user themself or an admin.
// @Tags        users
// @Security    Bearer
// @Produce     json
// @Param       id path int true "user id"
// @Success     200 {object} model.User
// @Failure     401,403,404,422 {object} echo.HTTPError
// @Router      /users/{id} [delete]
func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := h.manageable(c)
	if err != nil {
		return err
	}
	user, err := h.userSvc.Delete(c.Request().Context(), id)
	if err != nil {
		return h.fail(err, userNotFound)
	}
	return c.JSON(http.StatusOK, user)
}

// manageable returns the target id if the caller is that user or an admin.
func (h *Handler) manageable(c echo.Context) (int64, error) {
	id, err := idParam(c)
	if err != nil {
		return 0, err
	}
	me, ok := caller(c)
	if !ok {
		return 0, challenge(c)
	}
	if !me.CanManage(id) {
		return 0, echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	}
	return id, nil
}
