// Package expansion materializes concrete sessions from weekly templates
// over a date range. It normalizes bounds, walks the calendar day by day,
// and filters by a weekday set, generalized from a single recurring
// schedule to many independently-keyed weekly templates that can each
// produce a session on a matching day.
package expansion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/planerr"
)

// ErrInvalidRange indicates the expansion window is empty or inverted.
var ErrInvalidRange = errors.New("expansion: date range requires to >= from")

// ErrInvalidTemplate indicates a weekly template has a non-positive duration
// or an out-of-range weekday.
var ErrInvalidTemplate = errors.New("expansion: invalid weekly template")

// WeeklyTemplate describes a recurring session slot, keyed by weekday,
// location, time window, and optional required skill / room (spec §4.2).
type WeeklyTemplate struct {
	Weekday       int // 1..7, Monday=1
	LocationID    string
	StartMin      int
	EndMin        int
	RequiredSkill string
	Room          string
}

// Engine expands weekly templates into concrete sessions.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs an expansion Engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: planerr.DefaultLogger(logger)}
}

// Expand produces one session per (template, matching calendar day) pair
// within [from, to] inclusive, ordered by date ascending then template
// input order. Session ids follow the scheme
// YYYYMMDD-<locationId>-<startHHMM>, with "-<n>" (n starting at 2) appended
// on collision. The output is a pure function of its inputs: identical
// templates and range produce a byte-identical sequence of ids.
func (e *Engine) Expand(ctx context.Context, templates []WeeklyTemplate, from, to time.Time) ([]domain.Session, error) {
	logger := planerr.StageLogger(ctx, e.logger, "expansion", "Expand",
		"template_count", len(templates))

	from = normalizeToMidnight(from)
	to = normalizeToMidnight(to)
	if to.Before(from) {
		logger.ErrorContext(ctx, "invalid expansion range", "error", ErrInvalidRange)
		return nil, ErrInvalidRange
	}

	for i, tmpl := range templates {
		if tmpl.Weekday < 1 || tmpl.Weekday > 7 {
			return nil, fmt.Errorf("%w: template %d has weekday %d", ErrInvalidTemplate, i, tmpl.Weekday)
		}
		if tmpl.EndMin <= tmpl.StartMin {
			return nil, fmt.Errorf("%w: template %d has end <= start", ErrInvalidTemplate, i)
		}
	}

	idCounts := make(map[string]int)
	var sessions []domain.Session

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		weekday := toSpecWeekday(day.Weekday())
		for _, tmpl := range templates {
			if tmpl.Weekday != weekday {
				continue
			}
			id := sessionID(day, tmpl.LocationID, tmpl.StartMin, idCounts)
			sessions = append(sessions, domain.Session{
				ID:            id,
				Date:          day,
				LocationID:    tmpl.LocationID,
				StartMin:      tmpl.StartMin,
				EndMin:        tmpl.EndMin,
				RequiredSkill: tmpl.RequiredSkill,
				Room:          tmpl.Room,
			})
		}
	}

	logger.With("session_count", len(sessions)).InfoContext(ctx, "expansion complete")
	return sessions, nil
}

func sessionID(day time.Time, locationID string, startMin int, counts map[string]int) string {
	base := fmt.Sprintf("%s-%s-%02d%02d", day.Format("20060102"), locationID, startMin/60, startMin%60)
	counts[base]++
	n := counts[base]
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

func normalizeToMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// toSpecWeekday converts time.Weekday (Sunday=0) to the spec's 1..7,
// Monday=1 numbering.
func toSpecWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}
