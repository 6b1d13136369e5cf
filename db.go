package dbpool

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the contract for collaborators issuing SQL through the pool.
//
// All methods require context.Context so cancellation propagates to
// in-flight database operations. Application code should depend on DB
// rather than *Pool: it stays testable (via TestDB) and decoupled from
// pool operational concerns.
//
// Pool management methods (Stat, Acquire) intentionally live on the
// concrete Pool type. Close is included to support graceful shutdown
// through the interface.
type DB interface {
	// Exec executes a query that does not return rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query that returns rows, typically a SELECT.
	// The caller must close the returned Rows when done (use defer rows.Close()).
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query expected to return at most one row.
	// If no rows match, row.Scan() returns pgx.ErrNoRows.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row

	// Begin starts a transaction with default options.
	// Prefer WithTx for rollback-on-error semantics.
	Begin(ctx context.Context) (pgx.Tx, error)

	// BeginTx starts a transaction with explicit options.
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases all pool resources. Call once during graceful shutdown.
	Close()
}

// Conn is a connection checked out from the pool. The holder owns it
// until Release, which returns it to the pool regardless of outcome.
//
// Prefer Manager.WithConn over holding a Conn directly; it guarantees
// the release on every exit path.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error

	// Release returns the connection to the pool. Call exactly once.
	Release()
}
