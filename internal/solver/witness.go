package solver

import (
	"sort"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/eligibility"
)

// ComputeSaturationWitness greedily finds the tightest over-saturated
// (scope, required, available) triple explaining an Infeasible result
// (spec §4.5). It checks the whole-horizon capacity bound first, then each
// calendar date's pigeonhole bound, and returns whichever has the largest
// deficit; ties favor the more specific per-date scope. This is a
// heuristic, not a certificate: the model may be infeasible for reasons
// this greedy scan does not detect, in which case it returns nil and the
// caller reports Infeasible without a witness.
func ComputeSaturationWitness(world *domain.World, elig eligibility.Result) *SaturationWitness {
	var best *SaturationWitness
	bestDeficit := 0

	if w := horizonWitness(world, elig); w != nil {
		deficit := w.Required - w.Available
		if deficit > bestDeficit {
			best, bestDeficit = w, deficit
		}
	}

	for _, w := range perDateWitnesses(world, elig) {
		deficit := w.Required - w.Available
		if deficit > bestDeficit || (deficit == bestDeficit && best != nil && best.Scope == "horizon") {
			best, bestDeficit = w, deficit
		}
	}

	return best
}

func horizonWitness(world *domain.World, elig eligibility.Result) *SaturationWitness {
	required := 0
	for _, eligible := range elig.BySession {
		if len(eligible) > 0 {
			required++
		}
	}

	eligibleSessionCount := make(map[int]int) // physician idx -> count of sessions they're eligible for
	for _, eligible := range elig.BySession {
		for _, pIdx := range eligible {
			eligibleSessionCount[pIdx]++
		}
	}

	available := 0
	for pIdx, count := range eligibleSessionCount {
		physician := world.Physicians.Get(pIdx)
		cap := physician.MaxSessions
		if count < cap {
			cap = count
		}
		available += cap
	}

	if required <= available {
		return nil
	}
	return &SaturationWitness{Scope: "horizon", Required: required, Available: available}
}

func perDateWitnesses(world *domain.World, elig eligibility.Result) []*SaturationWitness {
	requiredByDate := make(map[string]int)
	physiciansByDate := make(map[string]map[int]struct{})

	for sIdx, eligible := range elig.BySession {
		if len(eligible) == 0 {
			continue
		}
		date := world.Sessions.Get(sIdx).ISODate()
		requiredByDate[date]++
		set, ok := physiciansByDate[date]
		if !ok {
			set = make(map[int]struct{})
			physiciansByDate[date] = set
		}
		for _, pIdx := range eligible {
			set[pIdx] = struct{}{}
		}
	}

	dates := make([]string, 0, len(requiredByDate))
	for d := range requiredByDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var witnesses []*SaturationWitness
	for _, d := range dates {
		available := len(physiciansByDate[d])
		required := requiredByDate[d]
		if required > available {
			witnesses = append(witnesses, &SaturationWitness{Scope: d, Required: required, Available: available})
		}
	}
	return witnesses
}
