// Package persistence holds error sentinels shared across the storage
// backends under internal/persistence/sqlite.
package persistence

import "errors"

// ErrDuplicate indicates a unique constraint violation. runlog/connection.go
// maps SQLite's UNIQUE-constraint failure on planning_runs.run_id to this
// sentinel so callers can check errors.Is(err, persistence.ErrDuplicate)
// without depending on the modernc.org/sqlite error type directly.
var ErrDuplicate = errors.New("persistence: duplicate")
