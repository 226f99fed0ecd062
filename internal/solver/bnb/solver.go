package bnb

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/example/physician-roster/internal/solver"
)

// Solver is a depth-first branch-and-bound search over the 0/1 variables of
// a Model, pruning on both constraint infeasibility and an optimistic
// objective bound. It honors ctx cancellation and the wall-clock deadline
// exactly as spec §4.5 describes: expiry returns the best feasible solution
// found so far, or Unknown if none was found yet.
type Solver struct{}

// NewSolver constructs a branch-and-bound Solver.
func NewSolver() *Solver {
	return &Solver{}
}

type constraintRef struct {
	eq  bool
	idx int
}

// incumbent is the best feasible assignment found so far, shared across the
// goroutines exploring the two root branches when workers > 1.
type incumbent struct {
	mu        sync.Mutex
	found     bool
	objective int
	assign    []int8
}

func (inc *incumbent) consider(objective int, assign []int8) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if !inc.found || objective > inc.objective {
		inc.found = true
		inc.objective = objective
		inc.assign = append([]int8(nil), assign...)
	}
}

func (inc *incumbent) bound() (int, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.objective, inc.found
}

// Solve implements solver.Solver.
func (s *Solver) Solve(ctx context.Context, model solver.Model, deadline time.Time, seed int64, workers int) (solver.Result, error) {
	bm, ok := model.(*Model)
	if !ok {
		return solver.Result{Status: solver.Unknown, Message: "bnb: model was not built by this backend"}, nil
	}

	n := bm.VarCount()
	if n == 0 {
		return solver.Result{Status: solver.Optimal, Values: map[solver.Var]int{}, Objective: 0, Bound: 0}, nil
	}
	if workers < 1 {
		workers = 1
	}

	varToConstraints := make([][]constraintRef, n+1)
	for idx, c := range bm.leq {
		for v := range c.terms {
			varToConstraints[v] = append(varToConstraints[v], constraintRef{eq: false, idx: idx})
		}
	}
	for idx, c := range bm.eq {
		for v := range c.terms {
			varToConstraints[v] = append(varToConstraints[v], constraintRef{eq: true, idx: idx})
		}
	}

	suffixUpperBound := make([]int, n+2) // suffixUpperBound[i] = sum of positive objective coeffs for vars i..n
	for i := n; i >= 1; i-- {
		coeff := bm.objective[solver.Var(i)]
		add := 0
		if coeff > 0 {
			add = coeff
		}
		suffixUpperBound[i] = suffixUpperBound[i+1] + add
	}

	rng := rand.New(rand.NewSource(seed))
	tryOneFirst := make([]bool, n+1)
	for i := 1; i <= n; i++ {
		tryOneFirst[i] = rng.Intn(2) == 1
	}

	inc := &incumbent{}
	var deadlineHit atomicBool

	explore := func(rootVar, rootVal int) {
		assign := make([]int8, n+1)
		set := make([]bool, n+1)
		if rootVar != 0 {
			assign[rootVar] = int8(rootVal)
			set[rootVar] = true
		}
		startObjective := 0
		if rootVal == 1 {
			startObjective = bm.objective[solver.Var(rootVar)]
		}
		nextIdx := rootVar + 1
		if rootVar == 0 {
			nextIdx = 1
		}

		var search func(idx, currentObjective int)
		search = func(idx, currentObjective int) {
			if deadlineHit.load() {
				return
			}
			if ctx.Err() != nil || !time.Now().Before(deadline) {
				deadlineHit.store(true)
				return
			}

			if idx > n {
				if leafFeasible(bm, assign) {
					inc.consider(currentObjective, assign)
				}
				return
			}

			if best, found := inc.bound(); found && currentObjective+suffixUpperBound[idx] <= best {
				return
			}

			order := [2]int{0, 1}
			if tryOneFirst[idx] {
				order = [2]int{1, 0}
			}
			for _, val := range order {
				assign[idx] = int8(val)
				set[idx] = true
				if partialFeasible(bm, varToConstraints[idx], assign, set) {
					next := currentObjective
					if val == 1 {
						next += bm.objective[solver.Var(idx)]
					}
					search(idx+1, next)
				}
				set[idx] = false
				if deadlineHit.load() {
					return
				}
			}
		}

		search(nextIdx, startObjective)
	}

	if workers >= 2 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); explore(1, 0) }()
		go func() { defer wg.Done(); explore(1, 1) }()
		wg.Wait()
	} else {
		explore(0, 0)
	}

	found, objective, assign := inc.found, inc.objective, inc.assign
	if deadlineHit.load() {
		if found {
			return solver.Result{Status: solver.Feasible, Values: toValues(assign), Objective: objective, Bound: suffixUpperBound[1]}, nil
		}
		return solver.Result{Status: solver.Unknown, Message: "solver deadline exceeded before finding a feasible assignment"}, nil
	}
	if !found {
		return solver.Result{Status: solver.Infeasible}, nil
	}
	return solver.Result{Status: solver.Optimal, Values: toValues(assign), Objective: objective, Bound: objective}, nil
}

func toValues(assign []int8) map[solver.Var]int {
	values := make(map[solver.Var]int, len(assign))
	for v := 1; v < len(assign); v++ {
		values[solver.Var(v)] = int(assign[v])
	}
	return values
}

func sumAssigned(terms map[solver.Var]int, assign []int8) int {
	sum := 0
	for v, coeff := range terms {
		sum += coeff * int(assign[v])
	}
	return sum
}

func minMaxRemaining(terms map[solver.Var]int, set []bool) (minAdd, maxAdd int) {
	for v, coeff := range terms {
		if set[v] {
			continue
		}
		if coeff > 0 {
			maxAdd += coeff
		} else {
			minAdd += coeff
		}
	}
	return minAdd, maxAdd
}

// partialFeasible checks only the constraints touching the variable just
// assigned, pruning a branch as soon as no completion of the remaining
// unassigned variables could satisfy it.
func partialFeasible(bm *Model, refs []constraintRef, assign []int8, set []bool) bool {
	for _, ref := range refs {
		var terms map[solver.Var]int
		var bound int
		if ref.eq {
			terms, bound = bm.eq[ref.idx].terms, bm.eq[ref.idx].bound
		} else {
			terms, bound = bm.leq[ref.idx].terms, bm.leq[ref.idx].bound
		}
		assignedSum := sumAssigned(terms, assign)
		minAdd, maxAdd := minMaxRemaining(terms, set)
		finalMin, finalMax := assignedSum+minAdd, assignedSum+maxAdd
		if ref.eq {
			if bound < finalMin || bound > finalMax {
				return false
			}
		} else if finalMin > bound {
			return false
		}
	}
	return true
}

// leafFeasible re-validates every constraint once all variables are
// assigned, independent of the incremental pruning above.
func leafFeasible(bm *Model, assign []int8) bool {
	for _, c := range bm.leq {
		if sumAssigned(c.terms, assign) > c.bound {
			return false
		}
	}
	for _, c := range bm.eq {
		if sumAssigned(c.terms, assign) != c.bound {
			return false
		}
	}
	return true
}

// atomicBool is a minimal lock-protected bool shared between the two root
// goroutines so either can observe the other's deadline hit.
type atomicBool struct {
	mu  sync.Mutex
	val bool
}

func (a *atomicBool) load() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.val
}

func (a *atomicBool) store(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.val = v
}
