package planerr

import (
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := DefaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := DefaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[error]string{
		nil:                   "",
		ErrInputMalformed:     "input_malformed",
		ErrInputInconsistent:  "input_inconsistent",
		ErrSessionInfeasible:  "session_infeasible",
		ErrModelInfeasible:    "model_infeasible",
		ErrSolverTimeout:      "solver_timeout",
		ErrInternal:           "internal",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}

	rowErr := &RowError{Cause: ErrInputInconsistent}
	if got := ErrorKind(rowErr); got != "input_inconsistent" {
		t.Fatalf("ErrorKind(RowError) = %q, want input_inconsistent", got)
	}
}
