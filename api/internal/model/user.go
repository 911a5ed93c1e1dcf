package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Astemirdum/bookshelf/api/internal/filter"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserRow is the stored user including the password hash.
type UserRow struct {
	ID       int64   `db:"id"`
	Username string  `db:"username"`
	Email    *string `db:"email"`
	Password string  `db:"password"`
	Role     Role    `db:"role"`
}

func (u UserRow) User() User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Role     Role    `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanManage reports whether u may modify the account with the given id.
func (u User) CanManage(id int64) bool {
	return u.IsAdmin() || u.ID == id
}

var UserFilters = filter.Set{
	filter.Int("id", "gt=0"),
	filter.String("username", "min=1,max=100").Like("max=100"),
	filter.String("email", "min=1,max=100").Like("max=100"),
	filter.String("role", "oneof=USER ADMIN"),
}

type UserCreateRequest struct {
	Username string  `json:"username" validate:"required,min=1,max=100,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=100"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type UserUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=100,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=100"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=USER ADMIN"`
	// ClearEmail is set when the body carries an explicit "email": null.
	ClearEmail bool `json:"-"`
}

func (r *UserUpdateRequest) UnmarshalJSON(data []byte) error {
	type plain UserUpdateRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for k, raw := range keys {
		if strings.EqualFold(k, "email") && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			p.ClearEmail = true
		}
	}
	*r = UserUpdateRequest(p)
	return nil
}

// UserCreate is the storage input; the password is already hashed.
type UserCreate struct {
	Username     string
	Email        *string
	PasswordHash string
	Role         Role
}

func (u UserCreate) InsertMap() map[string]any {
	return map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"password": u.PasswordHash,
		"role":     string(u.Role),
	}
}

// UserUpdate changes the non-nil fields. ClearEmail sets email to NULL
// and is ignored when Email is given.
type UserUpdate struct {
	Username     *string
	Email        *string
	ClearEmail   bool
	PasswordHash *string
	Role         *Role
}

func (u UserUpdate) SetMap() map[string]any {
	m := make(map[string]any, 4)
	if u.Username != nil {
		m["username"] = *u.Username
	}
	switch {
	case u.Email != nil:
		m["email"] = *u.Email
	case u.ClearEmail:
		m["email"] = nil
	}
	if u.PasswordHash != nil {
		m["password"] = *u.PasswordHash
	}
	if u.Role != nil {
		m["role"] = string(*u.Role)
	}
	return m
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}
