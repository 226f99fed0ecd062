package solver

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/physician-roster/internal/planerr"
)

// Driver wraps a concrete backend, adding the structured logging every
// pipeline stage carries and computing a SaturationWitness when the
// backend reports Infeasible (spec §4.5: "The driver returns a structured
// diagnostic ... computed greedily from the eligibility sets").
type Driver struct {
	backend Solver
	logger  *slog.Logger
}

// NewDriver constructs a Driver around backend.
func NewDriver(backend Solver, logger *slog.Logger) *Driver {
	return &Driver{backend: backend, logger: planerr.DefaultLogger(logger)}
}

// Solve submits model to the backend and augments an Infeasible result with
// witness, which the caller computes from its own eligibility data (the
// solver package has no notion of sessions or physicians).
func (d *Driver) Solve(ctx context.Context, model Model, deadline time.Time, seed int64, workers int, witness func() *SaturationWitness) (Result, error) {
	logger := planerr.StageLogger(ctx, d.logger, "solver", "Solve",
		"deadline", deadline, "seed", seed, "workers", workers)

	result, err := d.backend.Solve(ctx, model, deadline, seed, workers)
	if err != nil {
		logger.ErrorContext(ctx, "solve failed", "error", err)
		return result, err
	}

	if result.Status == Infeasible && witness != nil {
		result.Witness = witness()
	}

	logger.InfoContext(ctx, "solve complete",
		"status", result.Status.String(), "objective", result.Objective)
	return result, nil
}
