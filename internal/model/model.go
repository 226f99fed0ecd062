// Package model translates a world and its eligibility sets into the
// abstract constraint model defined by internal/solver. The overlap-pair
// constraint generator turns a participant/room overlap check into a
// pairwise "at most one of these two" constraint over decision variables
// instead of a reported conflict list.
package model

import (
	"context"
	"log/slog"
	"sort"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/eligibility"
	"github.com/example/physician-roster/internal/planerr"
	"github.com/example/physician-roster/internal/solver"
)

// VarKey identifies the decision variable for one (session, physician)
// pair by their arena indices.
type VarKey struct {
	SessionIdx   int
	PhysicianIdx int
}

// Build constructs the decision variables, hard constraints, and objective
// for world against m, given a precomputed eligibility result. It returns
// the (session, physician) -> Var mapping the materializer needs to read
// back assignments.
func Build(ctx context.Context, world *domain.World, elig eligibility.Result, defaultPreferenceScore int, m solver.Model, logger *slog.Logger) map[VarKey]solver.Var {
	logger = planerr.StageLogger(ctx, logger, "model", "Build")

	vars := make(map[VarKey]solver.Var)
	byPhysician := make(map[int][]int) // physician idx -> session idx list

	for sIdx, eligible := range elig.BySession {
		session := world.Sessions.Get(sIdx)
		for _, pIdx := range eligible {
			physician := world.Physicians.Get(pIdx)
			v := m.AddBinaryVar(session.ID + "|" + physician.ID)
			key := VarKey{SessionIdx: sIdx, PhysicianIdx: pIdx}
			vars[key] = v
			byPhysician[pIdx] = append(byPhysician[pIdx], sIdx)
		}
	}

	addExactlyOneConstraints(world, elig, vars, m)
	addCapacityConstraints(world, byPhysician, vars, m)
	overlapCount := addOverlapConstraints(world, byPhysician, vars, m)
	addObjective(world, vars, defaultPreferenceScore, m)

	logger.InfoContext(ctx, "model built",
		"variable_count", len(vars),
		"overlap_constraint_count", overlapCount)
	return vars
}

func addExactlyOneConstraints(world *domain.World, elig eligibility.Result, vars map[VarKey]solver.Var, m solver.Model) {
	for sIdx, eligible := range elig.BySession {
		if len(eligible) == 0 {
			continue
		}
		terms := make(map[solver.Var]int, len(eligible))
		for _, pIdx := range eligible {
			terms[vars[VarKey{SessionIdx: sIdx, PhysicianIdx: pIdx}]] = 1
		}
		m.AddLinearEQ(terms, 1)
	}
}

func addCapacityConstraints(world *domain.World, byPhysician map[int][]int, vars map[VarKey]solver.Var, m solver.Model) {
	for pIdx, sessionIdxs := range byPhysician {
		physician := world.Physicians.Get(pIdx)
		terms := make(map[solver.Var]int, len(sessionIdxs))
		for _, sIdx := range sessionIdxs {
			terms[vars[VarKey{SessionIdx: sIdx, PhysicianIdx: pIdx}]] = 1
		}
		m.AddLinearLEQ(terms, physician.MaxSessions)
	}
}

// addOverlapConstraints groups each physician's eligible sessions by date
// and adds x[s1,p]+x[s2,p] <= 1 for every intersecting pair on that date
// (spec §4.4: "for every physician p and every date d ... overlap defined
// as s1.start < s2.end && s2.start < s1.end").
func addOverlapConstraints(world *domain.World, byPhysician map[int][]int, vars map[VarKey]solver.Var, m solver.Model) int {
	count := 0
	for pIdx, sessionIdxs := range byPhysician {
		byDate := make(map[string][]int)
		for _, sIdx := range sessionIdxs {
			date := world.Sessions.Get(sIdx).ISODate()
			byDate[date] = append(byDate[date], sIdx)
		}

		dates := make([]string, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		for _, d := range dates {
			sessionsOnDate := byDate[d]
			sort.Ints(sessionsOnDate)
			for i := 0; i < len(sessionsOnDate); i++ {
				for j := i + 1; j < len(sessionsOnDate); j++ {
					s1 := world.Sessions.Get(sessionsOnDate[i])
					s2 := world.Sessions.Get(sessionsOnDate[j])
					if !s1.Overlaps(s2) {
						continue
					}
					terms := map[solver.Var]int{
						vars[VarKey{SessionIdx: sessionsOnDate[i], PhysicianIdx: pIdx}]: 1,
						vars[VarKey{SessionIdx: sessionsOnDate[j], PhysicianIdx: pIdx}]: 1,
					}
					m.AddLinearLEQ(terms, 1)
					count++
				}
			}
		}
	}
	return count
}

func addObjective(world *domain.World, vars map[VarKey]solver.Var, defaultPreferenceScore int, m solver.Model) {
	terms := make(map[solver.Var]int, len(vars))
	for key, v := range vars {
		session := world.Sessions.Get(key.SessionIdx)
		physician := world.Physicians.Get(key.PhysicianIdx)
		terms[v] = world.PreferenceScore(physician.ID, session.LocationID, defaultPreferenceScore)
	}
	m.SetObjectiveMax(terms)
}
