// Command planner is a single "plan" subcommand that reads
// doctors/locations/sessions (plus optional ancillary tables), solves
// the duty-roster constraint model, and writes the materialized
// schedule: construct a logger, load configuration, wire collaborators,
// run, map errors to exit codes, as a one-shot batch pipeline rather
// than an HTTP listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/physician-roster/internal/config"
	"github.com/example/physician-roster/internal/logging"
	"github.com/example/physician-roster/internal/output"
	"github.com/example/physician-roster/internal/planerr"
	"github.com/example/physician-roster/internal/planner"
	"github.com/example/physician-roster/internal/runlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(args) == 0 || args[0] != "plan" {
		fmt.Fprintln(os.Stderr, "usage: planner plan -doctors ... -locations ... -sessions ... -output ...")
		return 1
	}

	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	cfg, err := config.Parse(fs, args[1:])
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPlan(ctx, cfg, logger)
}

func runPlan(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	startedAt := time.Now().UTC()
	runID := runlog.NewRunID()
	logger = logging.RunScoped(logger, runID)
	ctx = logging.ContextWithLogger(ctx, logger)

	var history *runlog.Store
	if cfg.HistoryDBPath != "" {
		store, err := runlog.Open(ctx, cfg.HistoryDBPath, logger)
		if err != nil {
			// Best-effort: run history is an audit trail, never
			// load-bearing for the plan itself.
			logger.Warn("failed to open run history database", "error", err)
		} else {
			history = store
			defer history.Close()
		}
	}

	outcome, runErr := planner.Run(ctx, cfg, logger)
	exitCode := planner.ClassifyExitCode(runErr)

	for _, w := range outcome.Warnings.Errors {
		logger.Warn("row skipped", "source", w.Source, "row", w.Row, "column", w.Column, "reason", w.Reason)
	}
	for _, d := range outcome.Infeasible {
		logger.Warn("session structurally infeasible", "session_id", d.SessionID, "reasons", d.ReasonHistogram)
	}

	if history != nil {
		recordRun(ctx, history, runID, startedAt, outcome, runErr, logger)
	}

	if runErr != nil {
		logger.Error("planning run failed", "error", runErr, "error_kind", planerr.ErrorKind(runErr), "exit_code", exitCode)
		return exitCode
	}

	if cfg.ExcelOutput {
		if err := output.WriteExcel(ctx, cfg.OutputPath, outcome.Schedule, logger); err != nil {
			logger.Error("failed to write schedule", "error", err)
			return planner.ClassifyExitCode(err)
		}
	} else {
		if err := output.WriteCSV(ctx, cfg.OutputPath, outcome.Schedule, logger); err != nil {
			logger.Error("failed to write schedule", "error", err)
			return planner.ClassifyExitCode(err)
		}
	}

	logger.Info("planning run complete",
		"status", outcome.Status.String(),
		"total_score", outcome.Schedule.TotalScore,
		"row_count", len(outcome.Schedule.Rows))
	return 0
}

func recordRun(ctx context.Context, history *runlog.Store, runID string, startedAt time.Time, outcome planner.Outcome, runErr error, logger *slog.Logger) {
	status := "optimal"
	switch {
	case runErr != nil && errors.Is(runErr, planerr.ErrModelInfeasible):
		status = "infeasible"
	case runErr != nil && errors.Is(runErr, planerr.ErrSolverTimeout):
		status = "unknown"
	case runErr != nil:
		status = "error"
	default:
		status = outcome.Status.String()
	}

	assigned := 0
	for _, row := range outcome.Schedule.Rows {
		if row.PhysicianID != "" {
			assigned++
		}
	}

	rec := runlog.Record{
		RunID:            runID,
		StartedAt:        startedAt,
		FinishedAt:       time.Now().UTC(),
		InputFingerprint: outcome.InputDigest,
		Status:           status,
		Objective:        outcome.Schedule.TotalScore,
		SessionCount:     len(outcome.Schedule.Rows),
		AssignedCount:    assigned,
	}
	if err := history.RecordRun(ctx, rec); err != nil {
		logger.Warn("failed to record run history", "error", err)
	}
}
