// Package bnb is a branch-and-bound backend for the 0/1 integer program
// described by internal/solver.Model. No CP-SAT binding exists anywhere in
// the retrieval pack or its dependency surface (see the repository's
// DESIGN.md), so this package implements the solver interface directly
// rather than behind a fabricated third-party name.
package bnb

import "github.com/example/physician-roster/internal/solver"

type linearConstraint struct {
	terms map[solver.Var]int
	bound int
}

// Model accumulates variables, linear constraints, and an objective. It
// satisfies solver.Model; Solver type-asserts to this concrete type to read
// back what the builder added.
type Model struct {
	labels    []string
	leq       []linearConstraint
	eq        []linearConstraint
	objective map[solver.Var]int
}

// NewModel constructs an empty Model.
func NewModel() *Model {
	return &Model{}
}

// AddBinaryVar implements solver.Model.
func (m *Model) AddBinaryVar(label string) solver.Var {
	m.labels = append(m.labels, label)
	return solver.Var(len(m.labels))
}

// AddLinearLEQ implements solver.Model.
func (m *Model) AddLinearLEQ(terms map[solver.Var]int, bound int) {
	m.leq = append(m.leq, linearConstraint{terms: cloneTerms(terms), bound: bound})
}

// AddLinearEQ implements solver.Model.
func (m *Model) AddLinearEQ(terms map[solver.Var]int, bound int) {
	m.eq = append(m.eq, linearConstraint{terms: cloneTerms(terms), bound: bound})
}

// SetObjectiveMax implements solver.Model.
func (m *Model) SetObjectiveMax(terms map[solver.Var]int) {
	m.objective = cloneTerms(terms)
}

// VarCount reports how many variables have been registered.
func (m *Model) VarCount() int {
	return len(m.labels)
}

// Label returns the diagnostic label for v.
func (m *Model) Label(v solver.Var) string {
	if int(v) < 1 || int(v) > len(m.labels) {
		return ""
	}
	return m.labels[v-1]
}

func cloneTerms(terms map[solver.Var]int) map[solver.Var]int {
	out := make(map[solver.Var]int, len(terms))
	for k, v := range terms {
		out[k] = v
	}
	return out
}
