// Package planner wires the pipeline stages into one operation: read
// input, compute eligibility, build the constraint model, solve it, and
// materialize the schedule. It is the collaborator cmd/planner's main.go
// constructs and runs, kept separate from main so it can be exercised
// directly in tests without going through flag parsing or os.Exit.
package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/example/physician-roster/internal/config"
	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/eligibility"
	"github.com/example/physician-roster/internal/input"
	"github.com/example/physician-roster/internal/materialize"
	"github.com/example/physician-roster/internal/model"
	"github.com/example/physician-roster/internal/planerr"
	"github.com/example/physician-roster/internal/solver"
	"github.com/example/physician-roster/internal/solver/bnb"
)

// Outcome is everything main needs to decide an exit code and what to print,
// without main reaching back into solver/materialize internals.
type Outcome struct {
	Schedule    materialize.Schedule
	Status      solver.Status
	Witness     *solver.SaturationWitness
	Warnings    planerr.RowErrors
	Infeasible  []eligibility.Diagnostic
	InputDigest string
}

// Run executes the full pipeline described by spec.md §2 against cfg and
// returns an Outcome plus a classified error. The returned error, when
// non-nil, wraps one of the planerr sentinels so cmd/planner can map it to
// an exit code with errors.Is, exactly as §7 specifies.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) (Outcome, error) {
	logger = planerr.DefaultLogger(logger)

	world, warnings, digest, err := readWorld(ctx, cfg, logger)
	if err != nil {
		return Outcome{Warnings: warnings}, err
	}

	outcome, runErr := RunWorld(ctx, world, cfg, logger)
	outcome.Warnings = mergeRowErrors(warnings, outcome.Warnings)
	outcome.InputDigest = digest
	return outcome, runErr
}

// RunWorld runs the solve-and-materialize portion of the pipeline (spec.md
// §2 steps 3-6) directly against an already-normalized World, skipping
// input I/O entirely. Run uses it after reading files; tests use it
// directly against a testfixtures.SampleRoster-built World to exercise the
// scenarios of spec.md §8 without touching the filesystem.
func RunWorld(ctx context.Context, world *domain.World, cfg config.Config, logger *slog.Logger) (Outcome, error) {
	logger = planerr.DefaultLogger(logger)

	elig := eligibility.Compute(ctx, world, logger)
	if len(elig.Infeasible) > 0 && cfg.InfeasibleSessionPolicy == config.PolicyFail {
		logger.ErrorContext(ctx, "structurally infeasible sessions present under fail policy",
			"infeasible_count", len(elig.Infeasible))
		return Outcome{Infeasible: elig.Infeasible},
			fmt.Errorf("%w: %d session(s) have no eligible physician", planerr.ErrSessionInfeasible, len(elig.Infeasible))
	}

	m := bnb.NewModel()
	vars := model.Build(ctx, world, elig, cfg.DefaultPreferenceScore, m, logger)

	deadline := time.Now().Add(cfg.TimeBudget)
	driver := solver.NewDriver(bnb.NewSolver(), logger)
	result, err := driver.Solve(ctx, m, deadline, cfg.RandomSeed, cfg.WorkerCount, func() *solver.SaturationWitness {
		return solver.ComputeSaturationWitness(world, elig)
	})
	if err != nil {
		return Outcome{Infeasible: elig.Infeasible, Status: solver.Unknown},
			fmt.Errorf("%w: %v", planerr.ErrSolverTimeout, err)
	}

	switch result.Status {
	case solver.Infeasible:
		return Outcome{Infeasible: elig.Infeasible, Status: result.Status, Witness: result.Witness},
			fmt.Errorf("%w: %s", planerr.ErrModelInfeasible, witnessMessage(result.Witness))
	case solver.Unknown:
		return Outcome{Infeasible: elig.Infeasible, Status: result.Status},
			fmt.Errorf("%w: %s", planerr.ErrSolverTimeout, result.Message)
	}

	schedule, err := materialize.Build(ctx, world, elig, vars, result, cfg.DefaultPreferenceScore, logger)
	if err != nil {
		return Outcome{Infeasible: elig.Infeasible, Status: result.Status}, err
	}

	return Outcome{
		Schedule:   schedule,
		Status:     result.Status,
		Witness:    result.Witness,
		Infeasible: elig.Infeasible,
	}, nil
}

// mergeRowErrors concats ancillary-table warnings from input reading with
// any produced later in the pipeline (there currently are none, but Outcome
// keeps the field composable rather than Run overwriting it).
func mergeRowErrors(a, b planerr.RowErrors) planerr.RowErrors {
	if len(b.Errors) == 0 {
		return a
	}
	return planerr.RowErrors{Errors: append(append([]*planerr.RowError(nil), a.Errors...), b.Errors...)}
}

func witnessMessage(w *solver.SaturationWitness) string {
	if w == nil {
		return "no saturation witness available"
	}
	return fmt.Sprintf("%s requires %d but only %d physician-slots are available", w.Scope, w.Required, w.Available)
}

// readWorld dispatches to the CSV or Excel reader per cfg and computes a
// fingerprint of every input file read, used only as the runlog audit key
// (spec SPEC_FULL.md §MODULE EXPANSION 7); it has no bearing on planning.
func readWorld(ctx context.Context, cfg config.Config, logger *slog.Logger) (*domain.World, planerr.RowErrors, string, error) {
	if cfg.ExcelInputPath != "" {
		world, warnings, err := input.ReadExcel(ctx, cfg.ExcelInputPath, logger)
		if err != nil {
			return nil, warnings, "", err
		}
		digest, _ := fingerprint([]string{cfg.ExcelInputPath})
		return world, warnings, digest, nil
	}

	paths := input.Paths{
		Doctors:         cfg.DoctorsPath,
		Locations:       cfg.LocationsPath,
		Rooms:           cfg.RoomsPath,
		Sessions:        cfg.SessionsPath,
		Preferences:     cfg.PreferencesPath,
		TravelTimes:     cfg.TravelTimesPath,
		DoctorWorkdays:  cfg.DoctorWorkdaysPath,
		DoctorWeekRules: cfg.DoctorWeekRulesPath,
	}
	world, warnings, err := input.ReadCSV(ctx, paths, logger)
	if err != nil {
		return nil, warnings, "", err
	}
	digest, _ := fingerprint([]string{
		paths.Doctors, paths.Locations, paths.Rooms, paths.Sessions,
		paths.Preferences, paths.TravelTimes, paths.DoctorWorkdays, paths.DoctorWeekRules,
	})
	return world, warnings, digest, nil
}

// fingerprint hashes the concatenated contents of every non-empty path, in
// sorted order so the digest is independent of flag order.
func fingerprint(paths []string) (string, error) {
	sorted := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			sorted = append(sorted, p)
		}
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ClassifyExitCode maps a Run error to the exit codes of spec.md §6:
// 0 success, 1 invalid input, 2 infeasible, 3 solver timeout with no
// feasible result, 4 internal error.
func ClassifyExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, planerr.ErrInputMalformed), errors.Is(err, planerr.ErrInputInconsistent):
		return 1
	case errors.Is(err, planerr.ErrModelInfeasible), errors.Is(err, planerr.ErrSessionInfeasible):
		return 2
	case errors.Is(err, planerr.ErrSolverTimeout):
		return 3
	default:
		return 4
	}
}
