package migration

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// migrationManagerImpl implements the MigrationManager interface
type migrationManagerImpl struct {
	scanner      FileScanner
	executor     Executor
	migrationDir string
}

// NewMigrationManager creates a new MigrationManager implementation
func NewMigrationManager(scanner FileScanner, executor Executor, migrationDir string) MigrationManager {
	return &migrationManagerImpl{
		scanner:      scanner,
		executor:     executor,
		migrationDir: migrationDir,
	}
}

// RunMigrations executes all pending migrations in sequential order. Called
// once per runlog.Open, so it must be idempotent against a database that
// already has the planning_runs table from a prior invocation.
func (m *migrationManagerImpl) RunMigrations(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pendingMigrations, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}
	if len(pendingMigrations) == 0 {
		return nil
	}

	for _, migration := range pendingMigrations {
		start := time.Now()

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			return NewMigrationError(migration.Version, migration.FilePath,
				"execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		if err := m.executor.RecordMigration(ctx, migration.Version, time.Since(start)); err != nil {
			return NewMigrationError(migration.Version, migration.FilePath,
				"record migration", fmt.Errorf("failed to record migration: %w", err))
		}
	}

	return nil
}

// GetAppliedVersions returns list of migration versions that have been applied
func (m *migrationManagerImpl) GetAppliedVersions(ctx context.Context) ([]string, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	appliedMigrations, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	versions := make([]string, len(appliedMigrations))
	for i, migration := range appliedMigrations {
		versions[i] = migration.Version
	}
	return versions, nil
}

// GetPendingMigrations returns list of migrations that need to be applied
func (m *migrationManagerImpl) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	availableMigrations, err := m.scanner.ScanMigrations(m.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	appliedVersions, err := m.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	appliedMap := make(map[string]bool, len(appliedVersions))
	for _, version := range appliedVersions {
		appliedMap[version] = true
	}

	var pendingMigrations []Migration
	for _, migration := range availableMigrations {
		if !appliedMap[migration.Version] {
			pendingMigrations = append(pendingMigrations, migration)
		}
	}

	if err := m.validateMigrationSequence(availableMigrations, appliedVersions); err != nil {
		return nil, fmt.Errorf("migration sequence validation failed: %w", err)
	}

	sort.Slice(pendingMigrations, func(i, j int) bool {
		versionI, _ := strconv.Atoi(pendingMigrations[i].Version)
		versionJ, _ := strconv.Atoi(pendingMigrations[j].Version)
		return versionI < versionJ
	})

	return pendingMigrations, nil
}

// validateMigrationSequence ensures there are no gaps in migration version numbers
func (m *migrationManagerImpl) validateMigrationSequence(availableMigrations []Migration, appliedVersions []string) error {
	if len(availableMigrations) == 0 {
		return nil
	}

	var availableVersions []int
	for _, migration := range availableMigrations {
		version, err := strconv.Atoi(migration.Version)
		if err != nil {
			return NewMigrationError(migration.Version, migration.FilePath,
				"validate sequence", fmt.Errorf("%w: version '%s' is not numeric", ErrInvalidVersion, migration.Version))
		}
		availableVersions = append(availableVersions, version)
	}

	var appliedVersionInts []int
	for _, versionStr := range appliedVersions {
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return NewDatabaseError(versionStr, "", "validate sequence",
				fmt.Errorf("%w: applied version '%s' is not numeric", ErrVersionTableCorrupt, versionStr))
		}
		appliedVersionInts = append(appliedVersionInts, version)
	}

	if len(availableVersions) > 0 {
		minVersion := availableVersions[0]
		maxVersion := availableVersions[len(availableVersions)-1]

		versionMap := make(map[int]bool, len(availableVersions))
		for _, version := range availableVersions {
			versionMap[version] = true
		}

		for version := minVersion; version <= maxVersion; version++ {
			if !versionMap[version] {
				return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, version)
			}
		}
	}

	availableMap := make(map[int]bool, len(availableVersions))
	for _, version := range availableVersions {
		availableMap[version] = true
	}

	for _, appliedVersion := range appliedVersionInts {
		if !availableMap[appliedVersion] {
			return fmt.Errorf("%w: applied migration %03d not found in available migrations",
				ErrVersionConflict, appliedVersion)
		}
	}

	return nil
}
