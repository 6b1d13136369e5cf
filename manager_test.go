package dbpool

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestManager_InitializeIsIdempotent(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(t))
	built := installFakeConnect(m, newFakePool(1))

	ctx := context.Background()
	for range 3 {
		if err := m.Initialize(ctx); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
	}

	if *built != 1 {
		t.Fatalf("pool constructed %d times, want 1", *built)
	}
}

func TestManager_ConcurrentInitializeConstructsOnePool(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(t))
	built := installFakeConnect(m, newFakePool(1))

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = m.Initialize(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Initialize() #%d error = %v", i, err)
		}
	}
	if *built != 1 {
		t.Fatalf("pool constructed %d times, want 1", *built)
	}
}

func TestManager_PoolLazilyInitializes(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(t))
	built := installFakeConnect(m, newFakePool(1))

	db, err := m.Pool(context.Background())
	if err != nil {
		t.Fatalf("Pool() error = %v", err)
	}
	if db == nil {
		t.Fatal("Pool() returned nil DB")
	}
	if *built != 1 {
		t.Fatalf("pool constructed %d times, want 1", *built)
	}
}

func TestManager_CloseThenUseReinitializes(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(t))
	pool := newFakePool(1)
	built := installFakeConnect(m, pool)

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	m.Close()

	pool.mu.Lock()
	closed := pool.closed
	pool.mu.Unlock()
	if !closed {
		t.Fatal("Close() did not close the underlying pool")
	}

	if _, err := m.Pool(ctx); err != nil {
		t.Fatalf("Pool() after Close error = %v", err)
	}
	if *built != 2 {
		t.Fatalf("pool constructed %d times, want 2 after close and reuse", *built)
	}
}

func TestManager_CloseIsIdempotentAndSafeWithoutInit(t *testing.T) {
	t.Parallel()

	m := NewManager(testConfig(t))
	built := installFakeConnect(m, newFakePool(1))

	m.Close()
	m.Close()
	if *built != 0 {
		t.Fatal("Close() constructed a pool")
	}

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	m.Close()
	m.Close()
	if *built != 1 {
		t.Fatalf("pool constructed %d times, want 1", *built)
	}
}

func TestManager_InitFailureLeavesStateRetryable(t *testing.T) {
	t.Parallel()

	errDown := &InitError{msg: "dbpool: failed to create pool (host=db.internal.example)", cause: errors.New("refused")}

	m := NewManager(testConfig(t))
	attempts := 0
	m.connect = func(ctx context.Context, cfg Config, opts ...Option) (pooledDB, error) {
		attempts++
		if attempts == 1 {
			return nil, errDown
		}
		return newFakePool(1), nil
	}

	ctx := context.Background()
	err := m.Initialize(ctx)
	if !errors.Is(err, errDown) {
		t.Fatalf("Initialize() error = %v, want %v", err, errDown)
	}

	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("retry Initialize() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts=%d, want 2", attempts)
	}
}

func TestManager_DebugEmitsStatusLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := testConfig(t)
	cfg.Debug = true

	m := NewManager(cfg, WithLogger(logger))
	installFakeConnect(m, newFakePool(1))

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	m.Close()

	out := buf.String()
	if !strings.Contains(out, "connection pool created") {
		t.Errorf("missing creation status line in %q", out)
	}
	if !strings.Contains(out, "connection pool closed") {
		t.Errorf("missing close status line in %q", out)
	}
	assertNoCredentialLeak(t, out)
}

func TestManager_NoStatusLinesWithoutDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	m := NewManager(testConfig(t), WithLogger(logger))
	installFakeConnect(m, newFakePool(1))

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	m.Close()

	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}
