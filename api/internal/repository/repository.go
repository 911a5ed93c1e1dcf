package repository

import (
	"context"
	"strings"

	"github.com/Astemirdum/bookshelf/api/internal/errs"
	"github.com/Astemirdum/bookshelf/api/internal/filter"
	"github.com/Astemirdum/bookshelf/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const idColumn = "id"

type Creatable interface {
	InsertMap() map[string]any
}

type Patchable interface {
	SetMap() map[string]any
}

// Repository implements CRUD over one table. E is the stored row, R what
// callers get back, C and U the create and update inputs.
type Repository[E any, R any, C Creatable, U Patchable] struct {
	db      *pgxpool.Pool
	log     *zap.Logger
	table   string
	columns []string
	fields  filter.Set
	present func(E) R
}

func New[E any, R any, C Creatable, U Patchable](
	db *pgxpool.Pool,
	log *zap.Logger,
	table string,
	columns []string,
	fields filter.Set,
	present func(E) R,
) *Repository[E, R, C, U] {
	return &Repository[E, R, C, U]{
		db:      db,
		log:     log.Named("repo").With(zap.String("table", table)),
		table:   table,
		columns: columns,
		fields:  fields,
		present: present,
	}
}

func (r *Repository[E, R, C, U]) conn(ctx context.Context) postgres.Querier {
	return postgres.Conn(ctx, r.db)
}

func (r *Repository[E, R, C, U]) where(q sq.SelectBuilder, filters filter.Filters) (sq.SelectBuilder, error) {
	cond, err := r.fields.Compile(filters)
	if err != nil {
		return q, err
	}
	if len(cond) > 0 {
		q = q.Where(cond)
	}
	return q, nil
}

// List returns rows matching filters ordered by id. A zero limit means no limit.
func (r *Repository[E, R, C, U]) List(ctx context.Context, limit, offset int, filters filter.Filters) ([]R, error) {
	q, err := r.where(qb.Select(r.columns...).From(r.table), filters)
	if err != nil {
		return nil, err
	}
	q = q.OrderBy(idColumn)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		r.log.Error("List", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return nil, errors.Wrap(err, "list")
	}
	entities, err := pgx.CollectRows(rows, pgx.RowToStructByName[E])
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}
	items := make([]R, 0, len(entities))
	for _, e := range entities {
		items = append(items, r.present(e))
	}
	return items, nil
}

func (r *Repository[E, R, C, U]) Count(ctx context.Context, filters filter.Filters) (int, error) {
	q, err := r.where(qb.Select("count(*)").From(r.table), filters)
	if err != nil {
		return 0, err
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return count, nil
}

// GetEntityByProperty returns the stored row whose column equals value.
// With several matches the lowest id wins.
func (r *Repository[E, R, C, U]) GetEntityByProperty(ctx context.Context, property string, value any) (E, error) {
	var zero E
	if value == nil {
		return zero, errs.ErrNotFound
	}
	f, op, err := r.fields.Lookup(property)
	if err != nil {
		return zero, err
	}
	if op != filter.OpEq {
		return zero, errors.Wrapf(filter.ErrUnknownFilter, "%q", property)
	}
	query, args, err := qb.Select(r.columns...).
		From(r.table).
		Where(sq.Eq{f.Column: value}).
		OrderBy(idColumn).
		Limit(1).
		ToSql()
	if err != nil {
		return zero, err
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return zero, errors.Wrap(err, "get")
	}
	e, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[E])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, errs.ErrNotFound
		}
		return zero, errors.Wrap(err, "get")
	}
	return e, nil
}

func (r *Repository[E, R, C, U]) GetByProperty(ctx context.Context, property string, value any) (R, error) {
	e, err := r.GetEntityByProperty(ctx, property, value)
	if err != nil {
		var zero R
		return zero, err
	}
	return r.present(e), nil
}

func (r *Repository[E, R, C, U]) GetByID(ctx context.Context, id int64) (R, error) {
	return r.GetByProperty(ctx, idColumn, id)
}

func (r *Repository[E, R, C, U]) Create(ctx context.Context, in C) (R, error) {
	var zero R
	query, args, err := qb.Insert(r.table).
		SetMap(in.InsertMap()).
		Suffix(r.returning()).
		ToSql()
	if err != nil {
		return zero, err
	}
	e, err := r.queryOne(ctx, r.conn(ctx), query, args)
	if err != nil {
		if isUniqueViolation(err) {
			return zero, errs.ErrConflict
		}
		r.log.Error("Create", zap.String("q", query), zap.Error(err))
		return zero, errors.Wrap(err, "create")
	}
	return r.present(e), nil
}

// Update locks the row, applies the non-empty change set and commits.
func (r *Repository[E, R, C, U]) Update(ctx context.Context, id int64, in U) (R, error) {
	var zero R
	tx, err := r.conn(ctx).Begin(ctx)
	if err != nil {
		return zero, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := qb.Select(r.columns...).
		From(r.table).
		Where(sq.Eq{idColumn: id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return zero, err
	}
	e, err := r.queryOne(ctx, tx, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, errs.ErrNotFound
		}
		return zero, errors.Wrap(err, "lock")
	}

	changes := in.SetMap()
	delete(changes, idColumn)
	if len(changes) > 0 {
		query, args, err = qb.Update(r.table).
			SetMap(changes).
			Where(sq.Eq{idColumn: id}).
			Suffix(r.returning()).
			ToSql()
		if err != nil {
			return zero, err
		}
		if e, err = r.queryOne(ctx, tx, query, args); err != nil {
			if isUniqueViolation(err) {
				return zero, errs.ErrConflict
			}
			r.log.Error("Update", zap.String("q", query), zap.Error(err))
			return zero, errors.Wrap(err, "update")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, errors.Wrap(err, "commit")
	}
	return r.present(e), nil
}

// Delete removes the row and returns what it held.
func (r *Repository[E, R, C, U]) Delete(ctx context.Context, id int64) (R, error) {
	var zero R
	query, args, err := qb.Delete(r.table).
		Where(sq.Eq{idColumn: id}).
		Suffix(r.returning()).
		ToSql()
	if err != nil {
		return zero, err
	}
	e, err := r.queryOne(ctx, r.conn(ctx), query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, errs.ErrNotFound
		}
		return zero, errors.Wrap(err, "delete")
	}
	return r.present(e), nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository[E, R, C, U]) queryOne(ctx context.Context, db queryer, query string, args []any) (E, error) {
	var zero E
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[E])
}

func (r *Repository[E, R, C, U]) returning() string {
	return "RETURNING " + strings.Join(r.columns, ", ")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
