package dbpool

import (
	"context"
	"fmt"
)

// sentinelQuery is the liveness probe; the sentinel value must round-trip.
const sentinelQuery = "SELECT 1"

// TestConnection reports whether a liveness query round-trips through the
// pool. Every failure mode collapses to false; this is a diagnostic, not
// a data operation. Use CheckConnection when the cause matters.
func (m *Manager) TestConnection(ctx context.Context) bool {
	_, err := m.CheckConnection(ctx)
	return err == nil
}

// CheckConnection verifies database connectivity through the scoped
// accessor and returns a status suitable for health check endpoints.
func (m *Manager) CheckConnection(ctx context.Context) (*HealthStatus, error) {
	err := m.WithConn(ctx, func(conn Conn) error {
		var sentinel int
		if err := conn.QueryRow(ctx, sentinelQuery).Scan(&sentinel); err != nil {
			return fmt.Errorf("dbpool: liveness query failed: %w", err)
		}
		if sentinel != 1 {
			return fmt.Errorf("dbpool: liveness query returned %d, want 1", sentinel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &HealthStatus{Status: "ok", Database: "postgres"}, nil
}
