package handler

import (
	"net/http"

	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/labstack/echo/v4"
)

const bookNotFound = "Book not found"

// ListBooks godoc
// @Summary  List books
// @Tags     books
// @Security Bearer
// @Produce  json
// @Param    limit       query int    false "page size" default(100)
// @Param    page        query int    false "page number" default(1)
// @Param    title_like  query string false "title substring"
// @Param    author_like query string false "author substring"
// @Param    pages_gt    query int    false "more pages than"
// @Success  200 {object} model.ListResponse[model.Book]
// @Failure  401,403,422 {object} echo.HTTPError
// @Router   /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	filters, err := h.filters(c, model.BookFilters)
	if err != nil {
		return err
	}
	resp, err := h.bookSvc.List(c.Request().Context(), page, filters)
	if err != nil {
		return h.fail(err, bookNotFound)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetBook godoc
// @Summary  Get a book
// @Tags     books
// @Security Bearer
// @Produce  json
// @Param    id path int true "book id"
// @Success  200 {object} model.Book
// @Failure  401,403,404,422 {object} echo.HTTPError
// @Router   /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	book, err := h.bookSvc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(err, bookNotFound)
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBook godoc
// @Summary  Create a book
// @Tags     books
// @Security Bearer
// @Accept   json
// @Produce  json
// @Param    book body model.BookCreate true "book"
// @Success  201 {object} model.Book
// @Failure  401,403,409,422 {object} echo.HTTPError
// @Router   /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.BookCreate
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.bookSvc.Create(c.Request().Context(), req)
	if err != nil {
		return h.fail(err, bookNotFound)
	}
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook godoc
// @Summary  Update a book
// @Tags     books
// @Security Bearer
// @Accept   json
// @Produce  json
// @Param    id   path int              true "book id"
// @Param    book body model.BookUpdate true "fields to change"
// @Success  200 {object} model.Book
// @Failure  401,403,404,409,422 {object} echo.HTTPError
// @Router   /books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.BookUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	book, err := h.bookSvc.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(err, bookNotFound)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary  Delete a book
// @Tags     books
// @Security Bearer
// @Produce  json
// @Param    id path int true "book id"
// @Success  200 {object} model.Book
// @Failure  401,403,404,422 {object} echo.HTTPError
// @Router   /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	book, err := h.bookSvc.Delete(c.Request().Context(), id)
	if err != nil {
		return h.fail(err, bookNotFound)
	}
	return c.JSON(http.StatusOK, book)
}
