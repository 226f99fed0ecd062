// Package materialize reconstructs the final typed schedule from a solved
// model, per spec §4.6: one row per session (including structurally
// infeasible ones), sorted by (date, start, session id), with the summed
// contribution validated against the solver's reported objective.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/eligibility"
	"github.com/example/physician-roster/internal/model"
	"github.com/example/physician-roster/internal/planerr"
	"github.com/example/physician-roster/internal/solver"
)

// Row is one materialized schedule entry.
type Row struct {
	SessionID         string
	Date              string
	StartMin          int
	EndMin            int
	LocationID        string
	Room              string
	RequiredSkill     string
	PhysicianID       string // empty when unassigned
	PhysicianName     string
	PreferenceScore   int
}

// Schedule is the fully materialized, sorted output plus its validated
// total score.
type Schedule struct {
	Rows       []Row
	TotalScore int
}

// Build reconstructs a Schedule from world, the eligibility computed
// earlier, the variable index the model builder produced, the solver's
// result, and the default preference score used during model building.
// Sessions with no eligible physicians (excluded from the model entirely)
// are still emitted with an empty assignment, per spec §4.6 and the
// SessionInfeasible taxonomy entry.
func Build(ctx context.Context, world *domain.World, elig eligibility.Result, vars map[model.VarKey]solver.Var, result solver.Result, defaultPreferenceScore int, logger *slog.Logger) (Schedule, error) {
	logger = planerr.StageLogger(ctx, logger, "materialize", "Build", "session_count", world.Sessions.Len())

	rows := make([]Row, 0, world.Sessions.Len())
	total := 0

	for sIdx := 0; sIdx < world.Sessions.Len(); sIdx++ {
		session := world.Sessions.Get(sIdx)
		row := Row{
			SessionID:     session.ID,
			Date:          session.ISODate(),
			StartMin:      session.StartMin,
			EndMin:        session.EndMin,
			LocationID:    session.LocationID,
			Room:          session.Room,
			RequiredSkill: session.RequiredSkill,
		}

		for _, pIdx := range elig.BySession[sIdx] {
			v, ok := vars[model.VarKey{SessionIdx: sIdx, PhysicianIdx: pIdx}]
			if !ok || !result.Value(v) {
				continue
			}
			physician := world.Physicians.Get(pIdx)
			score := world.PreferenceScore(physician.ID, session.LocationID, defaultPreferenceScore)
			row.PhysicianID = physician.ID
			row.PhysicianName = physician.Name
			row.PreferenceScore = score
			total += score
			break
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].StartMin != rows[j].StartMin {
			return rows[i].StartMin < rows[j].StartMin
		}
		return rows[i].SessionID < rows[j].SessionID
	})

	if result.Status == solver.Optimal || result.Status == solver.Feasible {
		if total != result.Objective {
			logger.ErrorContext(ctx, "objective mismatch",
				"materialized_total", total, "solver_objective", result.Objective)
			return Schedule{}, fmt.Errorf("%w: materialized total %d does not match solver objective %d",
				planerr.ErrInternal, total, result.Objective)
		}
	}

	logger.InfoContext(ctx, "schedule materialized", "row_count", len(rows), "total_score", total)
	return Schedule{Rows: rows, TotalScore: total}, nil
}
