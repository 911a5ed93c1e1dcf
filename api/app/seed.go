package app

import (
	"context"

	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/api/internal/service"
)

func seedUsers(ctx context.Context, users *service.Users) error {
	admin := model.RoleAdmin
	return users.Seed(ctx,
		model.UserCreateRequest{Username: "user", Password: "useruser"},
		model.UserCreateRequest{Username: "admin", Password: "adminadmin", Role: &admin},
	)
}
