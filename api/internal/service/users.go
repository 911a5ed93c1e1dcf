package service

import (
	"context"

	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/events"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Repository[model.User, model.UserCreate, model.UserUpdate]
	GetEntityByProperty(ctx context.Context, property string, value any) (model.UserRow, error)
}

type Users struct {
	resource[model.User, model.UserCreate, model.UserUpdate]
	hashCost int
}

type UsersOption func(*Users)

func WithHashCost(cost int) UsersOption {
	return func(u *Users) {
		u.hashCost = cost
	}
}

func NewUsers(repo UserRepository, pub events.Publisher, log *zap.Logger, opts ...UsersOption) *Users {
	u := &Users{
		resource: newResource[model.User, model.UserCreate, model.UserUpdate](
			"user", repo, pub, log,
			func(u model.User) int64 { return u.ID },
		),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create hashes the password and defaults the role to USER.
func (s *Users) Create(ctx context.Context, req model.UserCreateRequest) (model.User, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return model.User{}, err
	}
	role := model.RoleUser
	if req.Role != nil {
		role = *req.Role
	}
	return s.resource.Create(ctx, model.UserCreate{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
}

func (s *Users) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (model.User, error) {
	upd := model.UserUpdate{
		Username:   req.Username,
		Email:      req.Email,
		ClearEmail: req.ClearEmail,
		Role:       req.Role,
	}
	if req.Password != nil {
		hash, err := s.hash(*req.Password)
		if err != nil {
			return model.User{}, err
		}
		upd.PasswordHash = &hash
	}
	return s.resource.Update(ctx, id, upd)
}

// Seed creates the given accounts, skipping those that already exist.
func (s *Users) Seed(ctx context.Context, users ...model.UserCreateRequest) error {
	for _, u := range users {
		_, err := s.Create(ctx, u)
		switch {
		case err == nil:
			s.log.Info("seeded user", zap.String("username", u.Username))
		case errors.Is(err, errs.ErrConflict):
		default:
			return errors.Wrapf(err, "seed %s", u.Username)
		}
	}
	return nil
}

func (s *Users) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(b), nil
}
