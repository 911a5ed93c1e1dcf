package service

import (
	"context"
	"time"

	"github.com/Astemirdum/bookshelf/api/internal/events"
	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/api/internal/model"
	"github.com/Astemirdum/bookshelf/pkg/paging"
	"go.uber.org/zap"
)

type Repository[R, C, U any] interface {
	List(ctx context.Context, limit, offset int, filters filter.Filters) ([]R, error)
	Count(ctx context.Context, filters filter.Filters) (int, error)
	GetByID(ctx context.Context, id int64) (R, error)
	Create(ctx context.Context, in C) (R, error)
	Update(ctx context.Context, id int64, in U) (R, error)
	Delete(ctx context.Context, id int64) (R, error)
}

// resource is the CRUD flow shared by every entity: repository call,
// then a change event on success.
type resource[R, C, U any] struct {
	entity string
	repo   Repository[R, C, U]
	pub    events.Publisher
	log    *zap.Logger
	id     func(R) int64
	now    func() time.Time
}

func newResource[R, C, U any](entity string, repo Repository[R, C, U], pub events.Publisher, log *zap.Logger, id func(R) int64) resource[R, C, U] {
	if pub == nil {
		pub = events.Noop{}
	}
	return resource[R, C, U]{
		entity: entity,
		repo:   repo,
		pub:    pub,
		log:    log.Named("service").With(zap.String("entity", entity)),
		id:     id,
		now:    time.Now,
	}
}

func (s *resource[R, C, U]) List(ctx context.Context, page model.Page, filters filter.Filters) (model.ListResponse[R], error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return model.ListResponse[R]{}, err
	}
	items, err := s.repo.List(ctx, page.Limit, paging.Offset(page.Page, page.Limit), filters)
	if err != nil {
		return model.ListResponse[R]{}, err
	}
	return model.ListResponse[R]{
		Items:      items,
		TotalPages: paging.TotalPages(total, page.Limit),
	}, nil
}

func (s *resource[R, C, U]) Get(ctx context.Context, id int64) (R, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *resource[R, C, U]) Create(ctx context.Context, in C) (R, error) {
	item, err := s.repo.Create(ctx, in)
	if err != nil {
		return item, err
	}
	s.publish(ctx, events.ActionCreated, s.id(item))
	return item, nil
}

func (s *resource[R, C, U]) Update(ctx context.Context, id int64, in U) (R, error) {
	item, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return item, err
	}
	s.publish(ctx, events.ActionUpdated, id)
	return item, nil
}

func (s *resource[R, C, U]) Delete(ctx context.Context, id int64) (R, error) {
	item, err := s.repo.Delete(ctx, id)
	if err != nil {
		return item, err
	}
	s.publish(ctx, events.ActionDeleted, id)
	return item, nil
}

// publish never fails the caller; the change is already committed.
func (s *resource[R, C, U]) publish(ctx context.Context, action events.Action, id int64) {
	err := s.pub.Publish(ctx, events.Event{
		Entity:    s.entity,
		Action:    action,
		ID:        id,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("publish", zap.String("action", string(action)), zap.Int64("id", id), zap.Error(err))
	}
}
