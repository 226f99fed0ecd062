package planerr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/physician-roster/internal/logging"
)

// DefaultLogger returns logger, falling back to slog.Default() when nil.
func DefaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// StageLogger returns a logger scoped to one pipeline stage and operation,
// preferring a logger already attached to ctx over the stage's own base
// logger. Every stage package (input, expansion, eligibility, model, solver,
// materialize) calls this at the start of each operation.
func StageLogger(ctx context.Context, base *slog.Logger, stage, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"stage", stage}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps a pipeline error to a stable label suitable for structured
// log fields.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInputMalformed):
		return "input_malformed"
	case errors.Is(err, ErrInputInconsistent):
		return "input_inconsistent"
	case errors.Is(err, ErrSessionInfeasible):
		return "session_infeasible"
	case errors.Is(err, ErrModelInfeasible):
		return "model_infeasible"
	case errors.Is(err, ErrSolverTimeout):
		return "solver_timeout"
	case errors.Is(err, ErrInternal):
		return "internal"
	}

	var rowErr *RowError
	if errors.As(err, &rowErr) {
		return ErrorKind(rowErr.Cause)
	}

	return "unexpected"
}
