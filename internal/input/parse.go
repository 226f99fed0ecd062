package input

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/planerr"
)

func splitMultiValued(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out
	}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = struct{}{}
		}
	}
	return out
}

func parseClockMinutes(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return h*60 + m, nil
}

func parseISODate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func malformed(source string, row int, column, reason string) *planerr.RowError {
	return &planerr.RowError{Source: source, Row: row, Column: column, Reason: reason, Cause: planerr.ErrInputMalformed}
}

func inconsistent(source string, row int, column, reason string) *planerr.RowError {
	return &planerr.RowError{Source: source, Row: row, Column: column, Reason: reason, Cause: planerr.ErrInputInconsistent}
}

func parseDoctors(t *rawTable, world *domain.World) error {
	if t == nil {
		return nil
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		id := cell(row, idx, "doctor_id")
		if id == "" {
			return malformed(t.source, rowNum, "doctor_id", "must not be empty")
		}
		maxSessionsRaw := cell(row, idx, "max_sessions")
		maxSessions, err := strconv.Atoi(maxSessionsRaw)
		if err != nil || maxSessions < 0 {
			return malformed(t.source, rowNum, "max_sessions", fmt.Sprintf("not a non-negative integer: %q", maxSessionsRaw))
		}
		physician := domain.Physician{
			ID:          id,
			Name:        cell(row, idx, "name"),
			MaxSessions: maxSessions,
			Unavailable: splitMultiValued(cell(row, idx, "unavailable_dates")),
			Skills:      splitMultiValued(cell(row, idx, "skills")),
		}
		if _, err := world.Physicians.Add(id, physician); err != nil {
			return malformed(t.source, rowNum, "doctor_id", err.Error())
		}
	}
	return nil
}

func parseLocations(t *rawTable, world *domain.World) error {
	if t == nil {
		return nil
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		id := cell(row, idx, "location_id")
		if id == "" {
			return malformed(t.source, rowNum, "location_id", "must not be empty")
		}
		startRaw := cell(row, idx, "default_start_time")
		endRaw := cell(row, idx, "default_end_time")
		start, err := parseClockMinutes(startRaw)
		if err != nil {
			return malformed(t.source, rowNum, "default_start_time", err.Error())
		}
		end, err := parseClockMinutes(endRaw)
		if err != nil {
			return malformed(t.source, rowNum, "default_end_time", err.Error())
		}
		loc := domain.Location{ID: id, Name: cell(row, idx, "name"), DefaultStartMin: start, DefaultEndMin: end}
		if _, err := world.Locations.Add(id, loc); err != nil {
			return malformed(t.source, rowNum, "location_id", err.Error())
		}
	}
	return nil
}

// parseRooms resolves each room's location id, skipping (with a warning)
// orphan rooms rather than failing the whole run: Room is not one of the
// tables spec §4.1 names as fatal-on-bad-reference (only Session is), so
// this follows the general ancillary-table recovery policy of §7.
func parseRooms(t *rawTable, world *domain.World, warnings *planerr.RowErrors) error {
	if t == nil {
		return nil
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		id := cell(row, idx, "room_id")
		locationID := cell(row, idx, "location_id")
		if id == "" {
			return malformed(t.source, rowNum, "room_id", "must not be empty")
		}
		if _, ok := world.Locations.Lookup(locationID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "location_id", fmt.Sprintf("unknown location_id %q, row skipped", locationID)))
			continue
		}
		room := domain.Room{ID: id, LocationID: locationID, Name: cell(row, idx, "name")}
		if _, err := world.Rooms.Add(id, room); err != nil {
			warnings.Add(inconsistent(t.source, rowNum, "room_id", err.Error()))
		}
	}
	return nil
}

func parseSessions(t *rawTable, world *domain.World) error {
	if t == nil {
		return nil
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		id := cell(row, idx, "session_id")
		if id == "" {
			return malformed(t.source, rowNum, "session_id", "must not be empty")
		}
		date, err := parseISODate(cell(row, idx, "date"))
		if err != nil {
			return malformed(t.source, rowNum, "date", err.Error())
		}
		locationID := cell(row, idx, "location_id")
		if _, ok := world.Locations.Lookup(locationID); !ok {
			return inconsistent(t.source, rowNum, "location_id", fmt.Sprintf("unresolvable location_id %q", locationID))
		}
		start, err := parseClockMinutes(cell(row, idx, "start_time"))
		if err != nil {
			return malformed(t.source, rowNum, "start_time", err.Error())
		}
		end, err := parseClockMinutes(cell(row, idx, "end_time"))
		if err != nil {
			return malformed(t.source, rowNum, "end_time", err.Error())
		}
		if end <= start {
			return malformed(t.source, rowNum, "end_time", "must be after start_time")
		}
		session := domain.Session{
			ID:            id,
			Date:          date,
			LocationID:    locationID,
			StartMin:      start,
			EndMin:        end,
			RequiredSkill: cell(row, idx, "required_skill"),
			Room:          cell(row, idx, "room"),
		}
		if _, err := world.Sessions.Add(id, session); err != nil {
			return malformed(t.source, rowNum, "session_id", err.Error())
		}
	}
	return nil
}

func parsePreferences(t *rawTable, world *domain.World, warnings *planerr.RowErrors) {
	if t == nil {
		return
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		doctorID := cell(row, idx, "doctor_id")
		locationID := cell(row, idx, "location_id")
		if _, ok := world.Physicians.Lookup(doctorID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "doctor_id", fmt.Sprintf("unknown doctor_id %q, row skipped", doctorID)))
			continue
		}
		if _, ok := world.Locations.Lookup(locationID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "location_id", fmt.Sprintf("unknown location_id %q, row skipped", locationID)))
			continue
		}
		score, err := strconv.Atoi(cell(row, idx, "score"))
		if err != nil {
			warnings.Add(malformed(t.source, rowNum, "score", fmt.Sprintf("not an integer: %q, row skipped", cell(row, idx, "score"))))
			continue
		}
		world.Preferences[domain.PreferenceKey{PhysicianID: doctorID, LocationID: locationID}] = score
	}
}

func parseTravelTimes(t *rawTable, world *domain.World, warnings *planerr.RowErrors) {
	if t == nil {
		return
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		from := cell(row, idx, "from_location_id")
		to := cell(row, idx, "to_location_id")
		if _, ok := world.Locations.Lookup(from); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "from_location_id", fmt.Sprintf("unknown location_id %q, row skipped", from)))
			continue
		}
		if _, ok := world.Locations.Lookup(to); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "to_location_id", fmt.Sprintf("unknown location_id %q, row skipped", to)))
			continue
		}
		minutes, err := strconv.Atoi(cell(row, idx, "minutes"))
		if err != nil || minutes < 0 {
			warnings.Add(malformed(t.source, rowNum, "minutes", fmt.Sprintf("not a non-negative integer: %q, row skipped", cell(row, idx, "minutes"))))
			continue
		}
		world.TravelTimes[domain.TravelTimeKey{FromLocationID: from, ToLocationID: to}] = minutes
	}
}

func parseWorkdays(t *rawTable, world *domain.World, warnings *planerr.RowErrors) {
	if t == nil {
		return
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		doctorID := cell(row, idx, "doctor_id")
		if _, ok := world.Physicians.Lookup(doctorID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "doctor_id", fmt.Sprintf("unknown doctor_id %q, row skipped", doctorID)))
			continue
		}
		weekday, err := domain.ParseWeekday(cell(row, idx, "weekday"))
		if err != nil {
			warnings.Add(malformed(t.source, rowNum, "weekday", err.Error()+", row skipped"))
			continue
		}
		set, ok := world.WorkdaysByPhysician[doctorID]
		if !ok {
			set = make(map[int]struct{})
			world.WorkdaysByPhysician[doctorID] = set
		}
		set[weekday] = struct{}{}
	}
}

func parseWeekRules(t *rawTable, world *domain.World, warnings *planerr.RowErrors) {
	if t == nil {
		return
	}
	idx := t.columnIndex()
	for i, row := range t.rows {
		rowNum := i + 1
		doctorID := cell(row, idx, "doctor_id")
		if _, ok := world.Physicians.Lookup(doctorID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "doctor_id", fmt.Sprintf("unknown doctor_id %q, row skipped", doctorID)))
			continue
		}
		weekOfMonth, err := strconv.Atoi(cell(row, idx, "week_of_month"))
		if err != nil || weekOfMonth < 1 || weekOfMonth > 5 {
			warnings.Add(malformed(t.source, rowNum, "week_of_month", fmt.Sprintf("not an integer 1..5: %q, row skipped", cell(row, idx, "week_of_month"))))
			continue
		}
		weekday, err := domain.ParseWeekday(cell(row, idx, "weekday"))
		if err != nil {
			warnings.Add(malformed(t.source, rowNum, "weekday", err.Error()+", row skipped"))
			continue
		}
		locationID := cell(row, idx, "location_id")
		if _, ok := world.Locations.Lookup(locationID); !ok {
			warnings.Add(inconsistent(t.source, rowNum, "location_id", fmt.Sprintf("unknown location_id %q, row skipped", locationID)))
			continue
		}

		rules, ok := world.WeekRulesByPhysician[doctorID]
		if !ok {
			rules = make(map[[2]int]string)
			world.WeekRulesByPhysician[doctorID] = rules
		}
		key := [2]int{weekOfMonth, weekday}
		// Per spec §9 open question: identical-location duplicates are
		// idempotent; differing-location duplicates are InputInconsistent.
		if existing, exists := rules[key]; exists && existing != locationID {
			warnings.Add(inconsistent(t.source, rowNum, "location_id",
				fmt.Sprintf("conflicting week rule for doctor %q week %d weekday %d: %q vs %q, row skipped",
					doctorID, weekOfMonth, weekday, existing, locationID)))
			continue
		}
		rules[key] = locationID
	}
}
