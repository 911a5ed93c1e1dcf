package handler

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	AuthorizationHeader = "Authorization"
	Bearer              = "Bearer "

	callerKey = "caller"

	msgUnauthenticated = "Could not validate credentials"
	msgForbidden       = "Unauthorized"
)

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthenticated)
}

// Authenticate resolves the bearer token to a user and stores it on the
// context. Every failure is a 401 carrying WWW-Authenticate.
func (h *Handler) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authorization := c.Request().Header.Get(AuthorizationHeader)
		if len(authorization) <= len(Bearer) || !strings.EqualFold(authorization[:len(Bearer)], Bearer) {
			return challenge(c)
		}
		token := strings.TrimSpace(authorization[len(Bearer):])

		user, err := h.authSvc.Resolve(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return challenge(c)
			}
			return h.fail(err, "")
		}
		c.Set(callerKey, user)
		return next(c)
	}
}

func challenge(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return unauthorized()
}

// RequireRole lets the request through only if the authenticated caller
// holds one of roles. It must run after Authenticate.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := caller(c)
			if !ok {
				return challenge(c)
			}
			if !user.Role.In(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
			}
			return next(c)
		}
	}
}

func caller(c echo.Context) (model.User, bool) {
	user, ok := c.Get(callerKey).(model.User)
	return user, ok
}
