package dbpool

// The three lifecycle error types share one discipline: the outer message
// is safe for default production logging, and the underlying driver error
// (which may contain sensitive detail) is reachable only via Unwrap.

// ConfigError reports missing or malformed configuration. It is raised at
// load time, before any pool or network activity.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

// InitError reports a failed pool construction attempt. The manager's
// state remains uninitialized, so a later attempt may succeed.
type InitError struct {
	msg   string
	cause error
}

func (e *InitError) Error() string { return e.msg }
func (e *InitError) Unwrap() error { return e.cause }

// AcquireError reports a failed connection acquisition: the pool was
// exhausted past the configured timeout, or was closed concurrently.
// It never corresponds to a connection left checked out.
type AcquireError struct {
	msg   string
	cause error
}

func (e *AcquireError) Error() string { return e.msg }
func (e *AcquireError) Unwrap() error { return e.cause }
