// Package logging carries the request-scoped logger for one planning
// invocation through context, so every pipeline stage (internal/planerr's
// StageLogger) can pick up the same *slog.Logger cmd/planner built at
// startup without threading it through every function signature.
package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger returns a derived context carrying logger, typically
// called once in cmd/planner's runPlan() with the JSON handler wired to
// os.Stderr before the planning pipeline starts.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger ContextWithLogger attached, or nil if
// none was attached. planerr.StageLogger falls back to a stage's own base
// logger when this returns nil, so a pipeline stage exercised directly in
// tests (bypassing cmd/planner) still logs somewhere.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*slog.Logger)
	return logger
}

// RunScoped attaches a planning run's identifying fields to logger, so
// every log line emitted during that run (stage transitions, warnings,
// the final planning_runs audit record) can be correlated by run id.
func RunScoped(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if runID == "" {
		return logger
	}
	return logger.With("run_id", runID)
}
