package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/example/physician-roster/internal/persistence/sqlite/migration"
	"github.com/example/physician-roster/internal/planerr"
)

// migrationDir is resolved relative to this source file with
// runtime.Caller rather than a cwd-relative literal, so RunMigrations
// finds internal/runlog/migrations regardless of the process's working
// directory.
var migrationDir = func() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "migrations")
}()

// Record is one planning_runs row.
type Record struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	InputFingerprint string
	Status           string
	Objective        int
	SessionCount     int
	AssignedCount    int
}

// NewRunID mints a run identifier. Unlike session ids, which are derived
// deterministically from roster input, run ids only need to be unique per
// invocation, so this uses google/uuid rather than a derived scheme.
func NewRunID() string {
	return uuid.NewString()
}

// Store is a migrated SQLite database recording planning_runs rows.
type Store struct {
	pool   *connectionPool
	logger *slog.Logger
}

// Open applies pending migrations to the database at path and returns a
// Store, following the same DefaultSQLiteConfig / DefaultMigrationConfig /
// NewFileScanner / NewSQLiteExecutor / NewMigrationManager wiring the
// teacher's cmd/scheduler/main.go uses for its own application database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	logger = planerr.DefaultLogger(logger)

	sqliteConfig := migration.DefaultSQLiteConfig(path)
	pool, err := newConnectionPool(sqliteConfig)
	if err != nil {
		return nil, err
	}

	migrationConfig := migration.DefaultMigrationConfig(migrationDir)
	if err := migration.ValidateMigrationConfig(migrationConfig); err != nil {
		pool.Close()
		return nil, fmt.Errorf("runlog: invalid migration configuration: %w", err)
	}

	scanner := migration.NewFileScanner()
	executor := migration.NewSQLiteExecutor(pool.db)
	manager := migration.NewMigrationManager(scanner, executor, migrationConfig.MigrationDir)
	if err := manager.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("runlog: apply migrations: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.pool.Close()
}

// RecordRun inserts one planning_runs row. Per spec, a failure here must
// never fail the planning run itself; callers log the returned error as a
// warning and continue rather than propagating it.
func (s *Store) RecordRun(ctx context.Context, rec Record) error {
	return s.pool.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO planning_runs
				(run_id, started_at, finished_at, input_fingerprint, status, objective, session_count, assigned_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.StartedAt, rec.FinishedAt, rec.InputFingerprint,
			rec.Status, rec.Objective, rec.SessionCount, rec.AssignedCount)
		if err != nil {
			return mapError(err)
		}
		return nil
	})
}
