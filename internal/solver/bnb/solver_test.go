package bnb

import (
	"context"
	"testing"
	"time"

	"github.com/example/physician-roster/internal/solver"
)

func TestSolver_TrivialFeasible(t *testing.T) {
	t.Parallel()

	m := NewModel()
	v1 := m.AddBinaryVar("a")
	v2 := m.AddBinaryVar("b")
	m.AddLinearEQ(map[solver.Var]int{v1: 1, v2: 1}, 1)
	m.SetObjectiveMax(map[solver.Var]int{v1: 3, v2: 5})

	s := NewSolver()
	result, err := s.Solve(context.Background(), m, time.Now().Add(time.Second), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != solver.Optimal {
		t.Fatalf("expected Optimal, got %v", result.Status)
	}
	if result.Objective != 5 {
		t.Fatalf("expected objective 5 (pick b), got %d", result.Objective)
	}
	if !result.Value(v2) || result.Value(v1) {
		t.Fatalf("expected v2=1, v1=0")
	}
}

func TestSolver_Infeasible(t *testing.T) {
	t.Parallel()

	m := NewModel()
	v1 := m.AddBinaryVar("a")
	// x = 1 and x <= 0 cannot both hold.
	m.AddLinearEQ(map[solver.Var]int{v1: 1}, 1)
	m.AddLinearLEQ(map[solver.Var]int{v1: 1}, 0)
	m.SetObjectiveMax(map[solver.Var]int{v1: 1})

	s := NewSolver()
	result, err := s.Solve(context.Background(), m, time.Now().Add(time.Second), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != solver.Infeasible {
		t.Fatalf("expected Infeasible, got %v", result.Status)
	}
}

func TestSolver_CapacityConstraint(t *testing.T) {
	t.Parallel()

	// Two sessions' exactly-one constraints over one physician's two
	// variables, with that physician capacity-capped at 2: the only feasible
	// combination sets both variables to 1, which the capacity bound of 2
	// admits.
	m := NewModel()
	s1p1 := m.AddBinaryVar("s1-p1")
	s2p1 := m.AddBinaryVar("s2-p1")
	m.AddLinearEQ(map[solver.Var]int{s1p1: 1}, 1)
	m.AddLinearEQ(map[solver.Var]int{s2p1: 1}, 1)
	m.AddLinearLEQ(map[solver.Var]int{s1p1: 1, s2p1: 1}, 2)
	m.SetObjectiveMax(map[solver.Var]int{s1p1: 1, s2p1: 1})

	s := NewSolver()
	result, err := s.Solve(context.Background(), m, time.Now().Add(time.Second), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != solver.Optimal {
		t.Fatalf("expected Optimal, got %v", result.Status)
	}
	if !result.Value(s1p1) || !result.Value(s2p1) {
		t.Fatalf("expected both variables set to 1")
	}
}

func TestSolver_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	build := func() *Model {
		m := NewModel()
		v1 := m.AddBinaryVar("a")
		v2 := m.AddBinaryVar("b")
		v3 := m.AddBinaryVar("c")
		m.AddLinearLEQ(map[solver.Var]int{v1: 1, v2: 1, v3: 1}, 2)
		m.SetObjectiveMax(map[solver.Var]int{v1: 4, v2: 4, v3: 1})
		return m
	}

	s := NewSolver()
	first, err := s.Solve(context.Background(), build(), time.Now().Add(time.Second), 42, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Solve(context.Background(), build(), time.Now().Add(time.Second), 42, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Objective != second.Objective {
		t.Fatalf("expected deterministic objective, got %d and %d", first.Objective, second.Objective)
	}
	for v := solver.Var(1); v <= 3; v++ {
		if first.Value(v) != second.Value(v) {
			t.Fatalf("expected deterministic assignment for var %d", v)
		}
	}
	if first.Objective != 8 {
		t.Fatalf("expected optimal objective 8 (a and b), got %d", first.Objective)
	}
}

func TestSolver_DeadlineExceededWithNoFeasibleSolutionYieldsUnknown(t *testing.T) {
	t.Parallel()

	m := NewModel()
	v1 := m.AddBinaryVar("a")
	m.AddLinearEQ(map[solver.Var]int{v1: 1}, 1)
	m.AddLinearLEQ(map[solver.Var]int{v1: 1}, 0) // infeasible, but pretend deadline fires first
	m.SetObjectiveMax(map[solver.Var]int{v1: 1})

	s := NewSolver()
	result, err := s.Solve(context.Background(), m, time.Now().Add(-time.Second), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != solver.Unknown {
		t.Fatalf("expected Unknown for an already-expired deadline, got %v", result.Status)
	}
}
