package dbpool

import (
	"context"
	"log/slog"
	"sync"
)

// pooledDB is the manager's view of the native pool: the collaborator
// surface plus connection checkout. It exists so lifecycle and accessor
// logic can be exercised in tests without a live database.
type pooledDB interface {
	DB
	Acquire(ctx context.Context) (Conn, error)
}

type connectFunc func(ctx context.Context, cfg Config, opts ...Option) (pooledDB, error)

// Manager owns at most one connection pool and its lifecycle.
//
// A Manager starts uninitialized, becomes initialized on the first
// Initialize, Pool, or WithConn call, and returns to uninitialized on
// Close. Close is not terminal: a later use re-initializes a fresh pool.
//
// Construct with NewManager and pass the Manager by reference; there is
// no package-level instance. All methods are safe for concurrent use.
type Manager struct {
	cfg    Config
	opts   []Option
	logger *slog.Logger

	// connect is replaced by tests to control pool construction.
	connect connectFunc

	mu   sync.Mutex
	pool pooledDB
}

// NewManager returns an uninitialized Manager for cfg. Nothing is
// validated and no network activity happens until the pool is first
// needed.
func NewManager(cfg Config, opts ...Option) *Manager {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		connect: func(ctx context.Context, cfg Config, opts ...Option) (pooledDB, error) {
			return Connect(ctx, cfg, opts...)
		},
	}
}

// Initialize constructs the pool if it does not exist yet. On an
// initialized Manager it is a no-op; concurrent callers observe exactly
// one construction. On failure the Manager stays uninitialized, so the
// attempt can be retried.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.initLocked(ctx)
	return err
}

func (m *Manager) initLocked(ctx context.Context) (pooledDB, error) {
	if m.pool != nil {
		return m.pool, nil
	}

	pool, err := m.connect(ctx, m.cfg, m.opts...)
	if err != nil {
		return nil, err
	}
	m.pool = pool

	if m.cfg.Debug {
		m.logger.Info("connection pool created",
			"min_conns", m.cfg.MinConns,
			"max_conns", m.cfg.MaxConns)
	}
	return pool, nil
}

// Pool returns the managed pool, initializing it first if needed.
func (m *Manager) Pool(ctx context.Context) (DB, error) {
	pool, err := m.current(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (m *Manager) current(ctx context.Context) (pooledDB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked(ctx)
}

// Close shuts the pool down and resets the Manager to uninitialized.
// It is a no-op when no pool exists and is safe to call repeatedly.
// Acquisitions in flight during Close fail with *AcquireError.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}
	m.pool.Close()
	m.pool = nil

	if m.cfg.Debug {
		m.logger.Info("connection pool closed")
	}
}
