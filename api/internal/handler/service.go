package handler

import (
	"context"

	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/api/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	List(ctx context.Context, page model.Page, filters filter.Filters) (model.ListResponse[model.Book], error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Create(ctx context.Context, in model.BookCreate) (model.Book, error)
	Update(ctx context.Context, id int64, in model.BookUpdate) (model.Book, error)
	Delete(ctx context.Context, id int64) (model.Book, error)
}

type UserService interface {
	List(ctx context.Context, page model.Page, filters filter.Filters) (model.ListResponse[model.User], error)
	Get(ctx context.Context, id int64) (model.User, error)
	Create(ctx context.Context, req model.UserCreateRequest) (model.User, error)
	Update(ctx context.Context, id int64, req model.UserUpdateRequest) (model.User, error)
	Delete(ctx context.Context, id int64) (model.User, error)
}

type AuthService interface {
	Login(ctx context.Context, login, password string) (model.TokenResponse, error)
	Resolve(ctx context.Context, token string) (model.User, error)
}

var (
	_ BookService = (*service.Books)(nil)
	_ UserService = (*service.Users)(nil)
	_ AuthService = (*service.Auth)(nil)
)
