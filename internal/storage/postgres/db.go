// Package postgres implements the storage interfaces using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/storage"
)

var (
	_ storage.VersionRepository       = (*VersionRepository)(nil)
	_ storage.PropertyRepository      = (*PropertyRepository)(nil)
	_ storage.StyleRepository         = (*StyleRepository)(nil)
	_ storage.ExampleLinkRepository   = (*ExampleLinkRepository)(nil)
	_ storage.PromptHistoryRepository = (*PromptHistoryRepository)(nil)
)

// DB wraps the PostgreSQL connection pool and provides access to repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL database connection.
func New(ctx context.Context, connString string) (*DB, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes all connections in the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying connection pool.
// Use this sparingly - prefer using repository methods.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Repositories returns all repositories backed by this database.
func (db *DB) Repositories() *storage.Repositories {
	return &storage.Repositories{
		Versions:   NewVersionRepository(db.pool),
		Properties: NewPropertyRepository(db.pool),
		Styles:     NewStyleRepository(db.pool),
		Links:      NewExampleLinkRepository(db.pool),
		History:    NewPromptHistoryRepository(db.pool),
	}
}

// withTransaction executes fn within a database transaction. The
// transaction travels in the context so repository calls made by fn join it.
// A failed result rolls the transaction back. Nested calls reuse the outer
// transaction.
func withTransaction[T any](ctx context.Context, pool *pgxpool.Pool, op string, fn func(ctx context.Context) result.Result[T]) result.Result[T] {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return result.Fail[T](result.Database(op+" (begin)", err))
	}

	// Put the transaction in context so repositories can use it
	txCtx := context.WithValue(ctx, txKey{}, tx)

	r := fn(txCtx)
	if r.IsFailed() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return result.Fail[T](append(r.Errors(), result.Database(op+" (rollback)", rbErr))...)
		}
		return r
	}

	if err := tx.Commit(ctx); err != nil {
		return result.Fail[T](result.Database(op+" (commit)", err))
	}

	return r
}

// txKey is the context key for the transaction.
type txKey struct{}

// DBTX is the interface satisfied by both *pgxpool.Pool and pgx.Tx.
// This allows repositories to work with or without an active transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getDB returns the transaction from context if present, otherwise the pool.
func getDB(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// Error code constants for PostgreSQL
const (
	uniqueViolationCode = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// mapError converts PostgreSQL errors to persistence-layer result errors.
func mapError(op string, err error) result.Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return result.New(result.LayerPersistence, http.StatusConflict,
				fmt.Sprintf("%s: duplicate value violates %s", op, pgErr.ConstraintName))
		case foreignKeyViolation:
			return result.New(result.LayerPersistence, http.StatusConflict,
				fmt.Sprintf("%s: referenced record is missing or still referenced (%s)", op, pgErr.ConstraintName))
		case checkViolation:
			return result.New(result.LayerPersistence, http.StatusBadRequest,
				fmt.Sprintf("%s: value rejected by %s", op, pgErr.ConstraintName))
		}
	}
	return result.Database(op, err)
}

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// exists runs a SELECT EXISTS(...) query.
func exists(ctx context.Context, db DBTX, op, sql string, args ...any) result.Result[bool] {
	var found bool
	if err := db.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return result.Fail[bool](mapError(op, err))
	}
	return result.Ok(found)
}

// collect runs a query and rebuilds every row through scan. Rows that no
// longer pass domain validation are reported instead of silently dropped.
func collect[T any](ctx context.Context, db DBTX, op string, scan func(scannable) result.Result[T], sql string, args ...any) result.Result[[]T] {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return result.Fail[[]T](mapError(op, err))
	}
	defer rows.Close()

	items := []T{}
	var errs []result.Error
	for rows.Next() {
		r := scan(rows)
		if r.IsFailed() {
			errs = append(errs, r.Errors()...)
			continue
		}
		items = append(items, r.Value())
	}
	if err := rows.Err(); err != nil {
		errs = append(errs, mapError(op, err))
	}
	if len(errs) > 0 {
		return result.Fail[[]T](errs...)
	}
	return result.Ok(items)
}

// one runs a single-row query; no rows becomes notFound.
func one[T any](ctx context.Context, db DBTX, op string, scan func(scannable) result.Result[T], notFound result.Error, sql string, args ...any) result.Result[T] {
	r := scan(db.QueryRow(ctx, sql, args...))
	if r.IsFailed() {
		for _, e := range r.Errors() {
			if e.Metadata["no_rows"] == true {
				return result.Fail[T](notFound)
			}
		}
	}
	return r
}

// scanError wraps a Scan failure; pgx.ErrNoRows is tagged so one can
// translate it into the caller's NotFound error.
func scanError(op string, err error) result.Error {
	e := mapError(op, err)
	if errors.Is(err, pgx.ErrNoRows) {
		e = e.WithMetadata("no_rows", true)
	}
	return e
}

// corrupt wraps domain validation errors raised while rebuilding a stored row.
func corrupt(op string, errs []result.Error) []result.Error {
	out := make([]result.Error, len(errs))
	for i, e := range errs {
		out[i] = result.New(result.LayerPersistence, http.StatusInternalServerError,
			fmt.Sprintf("%s: stored row is invalid: %s", op, e.Message))
	}
	return out
}
