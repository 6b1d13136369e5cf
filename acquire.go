package dbpool

import (
	"context"
)

// WithConn runs fn with a connection checked out from the managed pool,
// initializing the pool on first use. The connection is released back to
// the pool exactly once on every exit path, including a panic inside fn.
//
// Acquisition waits at most Config.ConnectTimeout for a free connection.
// On timeout, or when the pool is closed concurrently, WithConn returns
// an *AcquireError. Errors returned by fn propagate unwrapped.
func (m *Manager) WithConn(ctx context.Context, fn func(Conn) error) error {
	conn, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return fn(conn)
}

// Acquire checks a connection out of the managed pool, initializing the
// pool on first use. The caller owns the connection until Release.
// Prefer WithConn, which guarantees the release.
func (m *Manager) Acquire(ctx context.Context) (Conn, error) {
	pool, err := m.current(ctx)
	if err != nil {
		return nil, err
	}

	timeout := m.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		return nil, &AcquireError{msg: "dbpool: failed to acquire connection", cause: err}
	}
	return conn, nil
}
