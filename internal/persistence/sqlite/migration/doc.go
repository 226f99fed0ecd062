// Package migration applies versioned SQLite schema changes for
// internal/runlog's single-table planning_runs store. It supports:
//
//   - Sequential migration execution with version tracking
//   - Transactional migration execution with rollback on failure
//   - File-based migration storage with structured naming conventions
//
// Migration files live in internal/runlog/migrations and follow the naming
// convention {version}_{description}.sql (e.g. "001_create_planning_runs.sql").
// A schema_migrations table tracks which versions have been applied so
// RunMigrations is idempotent across repeated CLI invocations.
//
// Example usage:
//
//	manager := NewMigrationManager(scanner, executor, migrationDir)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("apply migrations: %w", err)
//	}
package migration
