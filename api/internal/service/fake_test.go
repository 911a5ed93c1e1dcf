package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/events"
	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/api/internal/model"
)

func ptr[T any](v T) *T { return &v }

// userStore keeps rows in memory and honours username/email uniqueness.
type userStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.UserRow
}

func newUserStore() *userStore {
	return &userStore{rows: make(map[int64]model.UserRow)}
}

func (s *userStore) sorted() []model.UserRow {
	out := make([]model.UserRow, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *userStore) taken(except int64, username string, email *string) bool {
	for _, r := range s.rows {
		if r.ID == except {
			continue
		}
		if r.Username == username || (email != nil && r.Email != nil && *email == *r.Email) {
			return true
		}
	}
	return false
}

func (s *userStore) List(_ context.Context, limit, offset int, _ filter.Filters) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sorted()
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]model.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.User())
	}
	return out, nil
}

func (s *userStore) Count(context.Context, filter.Filters) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows), nil
}

func (s *userStore) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return r.User(), nil
}

func (s *userStore) GetEntityByProperty(_ context.Context, property string, value any) (model.UserRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.sorted() {
		switch property {
		case "username":
			if r.Username == value {
				return r, nil
			}
		case "email":
			if r.Email != nil && *r.Email == value {
				return r, nil
			}
		}
	}
	return model.UserRow{}, errs.ErrNotFound
}

func (s *userStore) Create(_ context.Context, in model.UserCreate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken(0, in.Username, in.Email) {
		return model.User{}, errs.ErrConflict
	}
	s.nextID++
	r := model.UserRow{ID: s.nextID, Username: in.Username, Email: in.Email, Password: in.PasswordHash, Role: in.Role}
	s.rows[r.ID] = r
	return r.User(), nil
}

func (s *userStore) Update(_ context.Context, id int64, in model.UserUpdate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	if in.Username != nil {
		r.Username = *in.Username
	}
	switch {
	case in.Email != nil:
		r.Email = in.Email
	case in.ClearEmail:
		r.Email = nil
	}
	if in.PasswordHash != nil {
		r.Password = *in.PasswordHash
	}
	if in.Role != nil {
		r.Role = *in.Role
	}
	if s.taken(id, r.Username, r.Email) {
		return model.User{}, errs.ErrConflict
	}
	s.rows[id] = r
	return r.User(), nil
}

func (s *userStore) Delete(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	delete(s.rows, id)
	return r.User(), nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}
