// Package dbpool manages a bounded Postgres connection pool with an explicit,
// observable lifecycle, using pgx v5.
//
// Invariants:
//
//   - I1: configuration problems surface at load time, never mid-operation.
//   - I2: at most one native pool exists per Manager, under any concurrency.
//   - I3: every acquired connection is released exactly once, on every exit
//     path of the unit of work, including panic.
//   - I4: lifecycle and connect-path errors are safe to log by default.
//   - I5: TLS is mandatory; plaintext and plaintext-fallback modes are
//     rejected.
//
// The package owns pooling only. SQL execution, schema management, and
// application queries are collaborators consuming the DB and Conn surfaces.
package dbpool
