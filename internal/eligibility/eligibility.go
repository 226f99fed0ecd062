// Package eligibility computes, for every session, the set of physicians
// permitted to work it under four hard pre-variable-elimination rules:
// unavailability, skill match, workday cadence, and week-of-month
// location rules. It gathers the set-membership checks into one
// preprocessing pass shared by every session.
package eligibility

import (
	"context"
	"log/slog"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/planerr"
)

// Reason labels a rule family that removed a physician from a session's
// eligibility set (spec §4.3, §7 taxonomy entry 3).
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonSkill       Reason = "skill_mismatch"
	ReasonWorkday     Reason = "workday_rule"
	ReasonWeekRule    Reason = "week_rule"
)

// Diagnostic reports why a session ended up with an empty eligibility set,
// counting how many candidate physicians each rule family eliminated.
type Diagnostic struct {
	SessionID       string
	ReasonHistogram map[Reason]int
}

// Result holds the eligible physician index set for every session in a
// world, keyed by the session's own arena index, plus diagnostics for
// sessions left with no eligible physician.
type Result struct {
	// BySession maps session arena index to the arena indices of eligible
	// physicians, in physician-arena order.
	BySession [][]int
	// Infeasible lists diagnostics for sessions with an empty eligibility
	// set, in session-arena order.
	Infeasible []Diagnostic
}

// Compute evaluates eligibility for every session in world.
func Compute(ctx context.Context, world *domain.World, logger *slog.Logger) Result {
	logger = planerr.StageLogger(ctx, logger, "eligibility", "Compute",
		"session_count", world.Sessions.Len(), "physician_count", world.Physicians.Len())

	result := Result{BySession: make([][]int, world.Sessions.Len())}

	for sIdx := 0; sIdx < world.Sessions.Len(); sIdx++ {
		session := world.Sessions.Get(sIdx)
		histogram := make(map[Reason]int)
		var eligible []int

		for pIdx := 0; pIdx < world.Physicians.Len(); pIdx++ {
			physician := world.Physicians.Get(pIdx)
			if reason, ok := disqualify(world, physician, session); ok {
				histogram[reason]++
				continue
			}
			eligible = append(eligible, pIdx)
		}

		result.BySession[sIdx] = eligible
		if len(eligible) == 0 {
			result.Infeasible = append(result.Infeasible, Diagnostic{
				SessionID:       session.ID,
				ReasonHistogram: histogram,
			})
		}
	}

	logger.InfoContext(ctx, "eligibility computed",
		"infeasible_session_count", len(result.Infeasible))
	return result
}

// disqualify evaluates the four rules in spec order, returning the first
// rule that excludes the physician, so the histogram attributes exactly one
// reason per eliminated candidate (matching the "which rule removed which
// physicians" contract of §4.3).
func disqualify(world *domain.World, physician domain.Physician, session domain.Session) (Reason, bool) {
	if physician.IsUnavailable(session.ISODate()) {
		return ReasonUnavailable, true
	}
	if !physician.HasSkill(session.RequiredSkill) {
		return ReasonSkill, true
	}
	if allowed, ok := world.WorkdaysByPhysician[physician.ID]; ok {
		if _, permitted := allowed[session.Weekday()]; !permitted {
			return ReasonWorkday, true
		}
	}
	if rules, ok := world.WeekRulesByPhysician[physician.ID]; ok {
		key := [2]int{session.WeekOfMonth(), session.Weekday()}
		if requiredLocation, matched := rules[key]; matched && requiredLocation != session.LocationID {
			return ReasonWeekRule, true
		}
	}
	return "", false
}
