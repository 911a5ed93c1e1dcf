package handler

import (
	"net/http"
	"strconv"

	_ "github.com/Astemirdum/bookshelf/api/docs"
	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	md "github.com/Astemirdum/bookshelf/pkg/middleware"
	"github.com/Astemirdum/bookshelf/pkg/paging"
	"github.com/Astemirdum/bookshelf/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	bookSvc BookService
	userSvc UserService
	authSvc AuthService
	log     *zap.Logger
}

func New(bookSvc BookService, userSvc UserService, authSvc AuthService, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc: bookSvc,
		userSvc: userSvc,
		authSvc: authSvc,
		log:     log.Named("handler"),
	}
}

type RouterConfig struct {
	DisableSwagger bool
	// Session binds a database connection to each API request. Optional.
	Session echo.MiddlewareFunc
}

func (h *Handler) NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Validator = validate.NewCustomValidator()

	if !cfg.DisableSwagger {
		e.GET("/docs/*", echoSwagger.WrapHandler, md.NewRateLimiter(baseRPS))
	}

	mws := []echo.MiddlewareFunc{
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.RequestID(),
		md.NewRateLimiter(apiRPS),
	}
	if cfg.Session != nil {
		mws = append(mws, cfg.Session)
	}
	api := e.Group("/v1", mws...)
	api.GET("/health", h.Health)

	anyone := []echo.MiddlewareFunc{h.Authenticate, RequireRole(model.RoleUser, model.RoleAdmin)}
	admin := []echo.MiddlewareFunc{h.Authenticate, RequireRole(model.RoleAdmin)}

	api.GET("/books", h.ListBooks, anyone...)
	api.GET("/books/:id", h.GetBook, anyone...)
	api.POST("/books", h.CreateBook, admin...)
	api.PUT("/books/:id", h.UpdateBook, admin...)
	api.DELETE("/books/:id", h.DeleteBook, admin...)

	api.POST("/users/auth", h.Login)
	api.GET("/users", h.ListUsers, anyone...)
	api.GET("/users/:id", h.GetUser, anyone...)
	api.POST("/users", h.CreateUser, admin...)
	api.PUT("/users/:id", h.UpdateUser, h.Authenticate)
	api.DELETE("/users/:id", h.DeleteUser, h.Authenticate)

	return e
}

// Health godoc
// @Summary Liveness check
// @Tags    health
// @Produce json
// @Success 200 {object} model.Health
// @Router  /health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Health{Status: "ok"})
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be a positive integer")
	}
	return id, nil
}

// pageParams reads limit and page, defaulting to 100 and 1.
func pageParams(c echo.Context) (model.Page, error) {
	page := model.Page{Limit: model.DefaultLimit, Page: model.DefaultPage}
	for key, dst := range map[string]*int{"limit": &page.Limit, "page": &page.Page} {
		raw := c.QueryParam(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, echo.NewHTTPError(http.StatusUnprocessableEntity, key+" must be an integer")
		}
		*dst = n
	}
	if err := c.Validate(page); err != nil {
		return page, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if !paging.Fits(page.Page, page.Limit) {
		return page, echo.NewHTTPError(http.StatusUnprocessableEntity, "page is out of range")
	}
	return page, nil
}

func (h *Handler) filters(c echo.Context, set filter.Set) (filter.Filters, error) {
	v, _ := c.Echo().Validator.(filter.Validator)
	f, err := set.Parse(c.QueryParams(), v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return f, nil
}

// bind decodes the request body and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, he.Message)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// fail maps service errors onto HTTP errors. notFound names the entity
// in 404 messages.
func (h *Handler) fail(err error, notFound string) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Conflict")
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return unauthorized()
	}
	h.log.Error("internal", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
