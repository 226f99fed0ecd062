// Package solver defines the abstract constraint-model interface the
// builder targets and the result types a backend reports (spec §9 Design
// Note: "Solver abstraction"). Keeping the builder coded against this
// interface, rather than a concrete backend, is what lets it be exercised
// with a fake in tests and swapped for a different backend later.
package solver

import (
	"context"
	"time"
)

// Var identifies a decision variable within a Model. Zero is never a valid
// variable; AddBinaryVar starts numbering at 1 so a zero Var reliably means
// "unset" in caller-side maps.
type Var int

// Model is the write side of the abstraction: a builder adds variables and
// constraints to it without knowing which concrete backend will solve it.
type Model interface {
	// AddBinaryVar registers a new 0/1 variable and returns its handle.
	// label is carried through for diagnostics only.
	AddBinaryVar(label string) Var
	// AddLinearLEQ adds Σ coeff·var ≤ bound.
	AddLinearLEQ(terms map[Var]int, bound int)
	// AddLinearEQ adds Σ coeff·var = bound.
	AddLinearEQ(terms map[Var]int, bound int)
	// SetObjectiveMax sets (overwriting any previous call) the objective
	// Σ coeff·var, to be maximized.
	SetObjectiveMax(terms map[Var]int)
}

// Status classifies a solve outcome (spec §4.5).
type Status int

const (
	// Infeasible means no assignment satisfies the hard constraints.
	Infeasible Status = iota
	// Optimal means the returned assignment is a proven optimum.
	Optimal
	// Feasible means the returned assignment is the best found but not
	// proven optimal (deadline reached with a feasible solution in hand).
	Feasible
	// Unknown means the solver exhausted its resources without producing
	// any feasible assignment, or the run was cancelled.
	Unknown
)

// String renders the status for logs and diagnostics.
func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// SaturationWitness explains an Infeasible result: the tightest
// over-saturated (date-or-horizon, required, available) triple computed
// greedily from the eligibility sets (spec §4.5).
type SaturationWitness struct {
	Scope     string // an ISO date, or "horizon" for the whole-run capacity constraint
	Required  int
	Available int
}

// Result is what Solve returns, regardless of Status: Values and Objective
// are only meaningful for Optimal/Feasible.
type Result struct {
	Status    Status
	Values    map[Var]int // 0 or 1 per variable
	Objective int
	Bound     int // best known upper bound; equals Objective when Optimal
	Witness   *SaturationWitness
	Message   string // populated for Unknown (transport failure or cancellation)
}

// Value reports whether v is set to 1 in the result.
func (r Result) Value(v Var) bool {
	return r.Values[v] == 1
}

// Solver submits a built Model and returns a classified Result. deadline is
// a wall-clock instant, not a duration, so callers can derive it once from
// config and a start time (spec §4.5 settings: time budget, worker count,
// random seed).
type Solver interface {
	Solve(ctx context.Context, model Model, deadline time.Time, seed int64, workers int) (Result, error)
}
