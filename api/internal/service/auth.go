package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/auth"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Auth struct {
	users   UserRepository
	tokens  *auth.Tokens
	log     *zap.Logger
	compare func(hash, password []byte) error
}

func NewAuth(users UserRepository, tokens *auth.Tokens, log *zap.Logger) *Auth {
	return &Auth{
		users:   users,
		tokens:  tokens,
		log:     log.Named("auth"),
		compare: bcrypt.CompareHashAndPassword,
	}
}

var (
	unknownOnce sync.Once
	unknownHash []byte
)

// unknownUserHash stands in for the stored hash when no account matches
// the login, so both outcomes pay for one bcrypt comparison.
func unknownUserHash() []byte {
	unknownOnce.Do(func() {
		unknownHash, _ = bcrypt.GenerateFromPassword([]byte("bookshelf:unknown-user"), bcrypt.DefaultCost)
	})
	return unknownHash
}

// Login accepts an email or a username. Every mismatch reports
// auth.ErrInvalidCredentials.
func (s *Auth) Login(ctx context.Context, login, password string) (model.TokenResponse, error) {
	row, err := s.lookup(ctx, login)
	if errors.Is(err, errs.ErrNotFound) {
		_ = s.compare(unknownUserHash(), []byte(password))
		return model.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenResponse{}, err
	}
	if err := s.compare([]byte(row.Password), []byte(password)); err != nil {
		return model.TokenResponse{}, auth.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(strconv.FormatInt(row.ID, 10))
	if err != nil {
		return model.TokenResponse{}, err
	}
	return model.TokenResponse{
		AccessToken: token,
		TokenType:   model.TokenType,
		User:        row.User(),
	}, nil
}

func (s *Auth) lookup(ctx context.Context, login string) (model.UserRow, error) {
	for _, property := range []string{"email", "username"} {
		row, err := s.users.GetEntityByProperty(ctx, property, login)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return model.UserRow{}, err
		}
	}
	return model.UserRow{}, errs.ErrNotFound
}

// Resolve maps a bearer token to the user it was issued for.
func (s *Auth) Resolve(ctx context.Context, token string) (model.User, error) {
	sub, err := s.tokens.Verify(token)
	if err != nil {
		return model.User{}, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return model.User{}, auth.ErrInvalidCredentials
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, auth.ErrInvalidCredentials
		}
		return model.User{}, err
	}
	return user, nil
}
