package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type connKey struct{}

// WithConn binds a connection to the request context.
func WithConn(ctx context.Context, conn Querier) context.Context {
	return context.WithValue(ctx, connKey{}, conn)
}

// Conn returns the connection bound by WithConn, or the pool itself.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if conn, ok := ctx.Value(connKey{}).(Querier); ok && conn != nil {
		return conn
	}
	return pool
}

// Session acquires one connection for the lifetime of fn and always releases it.
func Session(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(WithConn(ctx, conn))
}
