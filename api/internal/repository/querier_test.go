package repository_test

import (
	"context"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// result is one scripted answer of fakeDB: a row set or a failure.
type result struct {
	columns []string
	rows    [][]any
	err     error
}

type statement struct {
	sql  string
	args []any
}

// fakeDB records every statement and answers them in order from results.
type fakeDB struct {
	results    []result
	statements []statement
	begun      bool
	committed  bool
	rolledBack bool
}

func (db *fakeDB) next(sql string, args []any) result {
	db.statements = append(db.statements, statement{sql: sql, args: args})
	if len(db.results) == 0 {
		return result{}
	}
	res := db.results[0]
	db.results = db.results[1:]
	return res
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, db.next(sql, args).err
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	res := db.next(sql, args)
	return &fakeRows{columns: res.columns, data: res.rows, err: res.err}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	res := db.next(sql, args)
	rows := &fakeRows{columns: res.columns, data: res.rows, err: res.err}
	return &fakeRow{rows: rows}
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.begun = true
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) sqls() []string {
	out := make([]string, 0, len(db.statements))
	for _, s := range db.statements {
		out = append(out, s.sql)
	}
	return out
}

// fakeTx routes queries back to its fakeDB. Methods the repository never
// calls fall through to the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.db.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.db.committed {
		tx.db.rolledBack = true
	}
	return nil
}

type fakeRows struct {
	columns []string
	data    [][]any
	err     error
	pos     int
	closed  bool
}

func (r *fakeRows) Close() { r.closed = true }

func (r *fakeRows) Err() error {
	if r.pos > len(r.data) {
		return r.err
	}
	return nil
}

func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, 0, len(r.columns))
	for _, c := range r.columns {
		fds = append(fds, pgconn.FieldDescription{Name: c})
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		r.pos = len(r.data) + 1
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) == 1 {
		if rs, ok := dest[0].(pgx.RowScanner); ok {
			return rs.ScanRow(r)
		}
	}
	return assign(r.data[r.pos-1], dest)
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

func (r *fakeRows) RawValues() [][]byte { return nil }

func (r *fakeRows) Conn() *pgx.Conn { return nil }

type fakeRow struct {
	rows *fakeRows
}

func (r *fakeRow) Scan(dest ...any) error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

func assign(values []any, dest []any) error {
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		src := reflect.ValueOf(values[i])
		if !src.Type().AssignableTo(target.Type()) {
			src = src.Convert(target.Type())
		}
		target.Set(src)
	}
	return nil
}
