package dbpool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
)

var errFakePoolClosed = errors.New("fake pool is closed")

// fakePool implements pooledDB with a controllable capacity so lifecycle
// and accessor semantics can be tested without a database. Acquire hands
// out TestConns whose Release returns capacity to the pool.
type fakePool struct {
	TestDB

	// queryRow configures the behavior of handed-out connections.
	queryRow func(ctx context.Context, sql string, args ...any) pgx.Row

	mu       sync.Mutex
	tokens   chan struct{}
	closed   bool
	acquired int
	released int
}

func newFakePool(capacity int) *fakePool {
	p := &fakePool{tokens: make(chan struct{}, capacity)}
	for range capacity {
		p.tokens <- struct{}{}
	}
	return p
}

func (p *fakePool) Acquire(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errFakePoolClosed
	}

	select {
	case <-p.tokens:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()

	conn := &TestConn{QueryRowFunc: p.queryRow}
	conn.ReleaseFunc = func() {
		p.mu.Lock()
		p.acquired--
		p.released++
		p.mu.Unlock()
		p.tokens <- struct{}{}
	}
	return conn, nil
}

func (p *fakePool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *fakePool) stats() (acquired, released int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired, p.released
}

// installFakeConnect wires m to construct pool instead of dialing, and
// returns a counter of construction attempts.
func installFakeConnect(m *Manager, pool *fakePool) *int {
	built := new(int)
	m.connect = func(ctx context.Context, cfg Config, opts ...Option) (pooledDB, error) {
		*built++
		return pool, nil
	}
	return built
}

func assertNoCredentialLeak(t *testing.T, s string) {
	t.Helper()

	lower := strings.ToLower(s)
	for _, marker := range []string{"postgres://", "postgresql://", "password=", "supersecret"} {
		if strings.Contains(lower, marker) {
			t.Fatalf("error leaked sensitive marker %q: %q", marker, s)
		}
	}
	if strings.Contains(s, "@") {
		t.Fatalf("error unexpectedly contains '@' authority marker: %q", s)
	}
}

// testConfig is a valid configuration pointing at an unreachable host.
func testConfig(t *testing.T) Config {
	t.Helper()

	return Config{
		User:          "admin",
		Password:      "supersecret",
		DSN:           "db.internal.example:5432/app",
		CredentialDir: t.TempDir(),
		MaxConns:      5,
	}
}
