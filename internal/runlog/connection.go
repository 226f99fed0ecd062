// Package runlog is an optional, best-effort audit trail for planning
// invocations: one row per run in a SQLite "planning_runs" table, applied
// through the migration infrastructure in
// internal/persistence/sqlite/migration. It never reads prior runs to
// influence a solve, so it does not introduce incremental re-planning.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/physician-roster/internal/persistence"
	"github.com/example/physician-roster/internal/persistence/sqlite/migration"
)

// connectionPool wraps a *sql.DB opened against the migration package's
// SQLite config. Only a transaction helper is kept here, since runlog
// issues a single insert per run rather than needing a varied
// query/retry surface.
type connectionPool struct {
	db *sql.DB
}

func newConnectionPool(config migration.SQLiteConfig) (*connectionPool, error) {
	connectionManager := migration.NewConnectionManager(config)
	db, err := connectionManager.GetConnection()
	if err != nil {
		return nil, fmt.Errorf("runlog: open connection: %w", err)
	}
	return &connectionPool{db: db}, nil
}

func (cp *connectionPool) Close() error {
	if cp.db == nil {
		return nil
	}
	return cp.db.Close()
}

// withTransaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (cp *connectionPool) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("runlog: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("runlog: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// mapError translates a handful of recognizable SQLite failure strings into
// friendlier errors, covering the cases a single-table insert can hit.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("runlog: run id already recorded: %w", persistence.ErrDuplicate)
	case strings.Contains(msg, "database is locked"):
		return fmt.Errorf("runlog: database locked: %w", err)
	default:
		return err
	}
}
