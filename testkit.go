package dbpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotMocked is returned when a TestDB or TestConn method is called
// without a corresponding Func field set.
var ErrNotMocked = errors.New("dbpool: method not mocked — set the corresponding Func field")

// TestDB is a mock DB implementation for unit tests.
type TestDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginFunc    func(ctx context.Context) (pgx.Tx, error)
	BeginTxFunc  func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	PingFunc     func(ctx context.Context) error
	CloseFunc    func()
}

var _ DB = (*TestDB)(nil)

func (t *TestDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrNotMocked
}

func (t *TestDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.QueryFunc != nil {
		return t.QueryFunc(ctx, sql, args...)
	}
	return &ErrRows{ErrValue: ErrNotMocked}, ErrNotMocked
}

func (t *TestDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return &ErrRow{Err: ErrNotMocked}
}

func (t *TestDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if t.BeginFunc != nil {
		return t.BeginFunc(ctx)
	}
	return nil, ErrNotMocked
}

func (t *TestDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if t.BeginTxFunc != nil {
		return t.BeginTxFunc(ctx, txOptions)
	}
	return nil, ErrNotMocked
}

func (t *TestDB) Ping(ctx context.Context) error {
	if t.PingFunc != nil {
		return t.PingFunc(ctx)
	}
	return nil
}

func (t *TestDB) Close() {
	if t.CloseFunc != nil {
		t.CloseFunc()
	}
}

// TestConn is a mock Conn implementation for unit tests.
// Releases counts Release calls, for release-exactly-once assertions.
type TestConn struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginFunc    func(ctx context.Context) (pgx.Tx, error)
	PingFunc     func(ctx context.Context) error
	ReleaseFunc  func()

	Releases int
}

var _ Conn = (*TestConn)(nil)

func (c *TestConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if c.ExecFunc != nil {
		return c.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, ErrNotMocked
}

func (c *TestConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, sql, args...)
	}
	return &ErrRows{ErrValue: ErrNotMocked}, ErrNotMocked
}

func (c *TestConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if c.QueryRowFunc != nil {
		return c.QueryRowFunc(ctx, sql, args...)
	}
	return &ErrRow{Err: ErrNotMocked}
}

func (c *TestConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if c.BeginFunc != nil {
		return c.BeginFunc(ctx)
	}
	return nil, ErrNotMocked
}

func (c *TestConn) Ping(ctx context.Context) error {
	if c.PingFunc != nil {
		return c.PingFunc(ctx)
	}
	return nil
}

func (c *TestConn) Release() {
	c.Releases++
	if c.ReleaseFunc != nil {
		c.ReleaseFunc()
	}
}

// ErrRow implements pgx.Row. Its Scan always returns Err.
type ErrRow struct {
	Err error
}

func (r *ErrRow) Scan(dest ...any) error {
	return r.Err
}

// NewRow returns a pgx.Row backed by the provided values.
func NewRow(values ...any) pgx.Row {
	return &valueRow{values: values}
}

type valueRow struct {
	values []any
}

func (r *valueRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("dbpool: scan dest count %d != column count %d", len(dest), len(r.values))
	}
	return scanRow("dbpool.valueRow", dest, r.values)
}

// ErrRows implements pgx.Rows and always returns the configured error.
type ErrRows struct {
	// ErrValue is returned by Err(), Scan(), and Values().
	ErrValue error
}

func (r *ErrRows) Close()                                       {}
func (r *ErrRows) Err() error                                   { return r.ErrValue }
func (r *ErrRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *ErrRows) Conn() *pgx.Conn                              { return nil }
func (r *ErrRows) RawValues() [][]byte                          { return nil }
func (r *ErrRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *ErrRows) Next() bool                                   { return false }
func (r *ErrRows) Values() ([]any, error)                       { return nil, r.ErrValue }

func (r *ErrRows) Scan(dest ...any) error {
	if r.ErrValue != nil {
		return r.ErrValue
	}
	return fmt.Errorf("dbpool: ErrRows.Scan called with nil ErrValue")
}

// RowsBuilder builds pgx.Rows backed by in-memory rows.
type RowsBuilder struct {
	columns []string
	rows    [][]any
}

// NewRows creates a new RowsBuilder.
func NewRows(columns []string) *RowsBuilder {
	return &RowsBuilder{columns: columns}
}

// AddRow appends a row. It panics on arity mismatch.
func (b *RowsBuilder) AddRow(values ...any) *RowsBuilder {
	if len(values) != len(b.columns) {
		panic("dbpool: RowsBuilder column count mismatch")
	}
	b.rows = append(b.rows, values)
	return b
}

// Build returns a pgx.Rows cursor for the builder data.
func (b *RowsBuilder) Build() pgx.Rows {
	return &memRows{
		columns: b.columns,
		data:    b.rows,
		idx:     -1,
	}
}

type memRows struct {
	columns []string
	data    [][]any
	idx     int
	closed  bool
	scanErr error
}

func (r *memRows) Close() {
	r.closed = true
}

func (r *memRows) Err() error {
	return r.scanErr
}

func (r *memRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func (r *memRows) Conn() *pgx.Conn {
	return nil
}

func (r *memRows) RawValues() [][]byte {
	return nil
}

func (r *memRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, col := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: col}
	}
	return fields
}

func (r *memRows) Next() bool {
	if r.closed {
		return false
	}

	r.idx++
	if r.idx >= len(r.data) {
		r.closed = true
		return false
	}
	return true
}

func (r *memRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return pgx.ErrNoRows
	}

	row := r.data[r.idx]
	if len(dest) != len(row) {
		err := fmt.Errorf("dbpool: scan dest count %d != column count %d", len(dest), len(row))
		r.scanErr = err
		return err
	}

	if err := scanRow("dbpool.memRows", dest, row); err != nil {
		r.scanErr = err
		return err
	}
	return nil
}

func (r *memRows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.data) {
		return nil, pgx.ErrNoRows
	}
	return r.data[r.idx], nil
}

func scanRow(prefix string, dest []any, values []any) error {
	for i, val := range values {
		if err := assignScanValue(prefix, i, dest[i], val); err != nil {
			return err
		}
	}
	return nil
}

func assignScanValue(prefix string, idx int, dest any, val any) error {
	switch d := dest.(type) {
	case *string:
		v, ok := val.(string)
		if !ok {
			return fmt.Errorf("%s: expected string at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *int:
		v, ok := val.(int)
		if !ok {
			return fmt.Errorf("%s: expected int at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *int64:
		v, ok := val.(int64)
		if !ok {
			return fmt.Errorf("%s: expected int64 at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *bool:
		v, ok := val.(bool)
		if !ok {
			return fmt.Errorf("%s: expected bool at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *float64:
		v, ok := val.(float64)
		if !ok {
			return fmt.Errorf("%s: expected float64 at column %d, got %T", prefix, idx, val)
		}
		*d = v
	case *any:
		*d = val
	default:
		return fmt.Errorf("%s: unsupported scan target type %T at column %d", prefix, dest, idx)
	}

	return nil
}
