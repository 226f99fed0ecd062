package input

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/planerr"
)

func readCSVFile(path string) (*rawTable, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", planerr.ErrInputMalformed, path, err)
	}
	if len(records) == 0 {
		return &rawTable{source: path}, nil
	}
	return &rawTable{source: path, header: records[0], rows: records[1:]}, nil
}

// ReadCSV reads the tables named in paths into a domain.World, per spec
// §4.1 and §6. Doctors, Locations, and Sessions are required; the rest are
// optional. It returns non-fatal RowErrors for ancillary-table rows that
// were skipped, and a fatal error (wrapping ErrInputMalformed or
// ErrInputInconsistent) the moment a required table or a session row fails.
func ReadCSV(ctx context.Context, paths Paths, logger *slog.Logger) (*domain.World, planerr.RowErrors, error) {
	logger = planerr.StageLogger(ctx, logger, "input", "ReadCSV")

	tables := map[string]string{
		"doctors":   paths.Doctors,
		"locations": paths.Locations,
		"rooms":     paths.Rooms,
		"sessions":  paths.Sessions,
	}
	for name, path := range tables {
		if path == "" && (name == "doctors" || name == "locations" || name == "sessions") {
			return nil, planerr.RowErrors{}, fmt.Errorf("%w: %s path is required", planerr.ErrInputMalformed, name)
		}
	}

	doctors, err := readCSVFile(paths.Doctors)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	locations, err := readCSVFile(paths.Locations)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	rooms, err := readCSVFile(paths.Rooms)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	sessions, err := readCSVFile(paths.Sessions)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	preferences, err := readCSVFile(paths.Preferences)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	travelTimes, err := readCSVFile(paths.TravelTimes)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	workdays, err := readCSVFile(paths.DoctorWorkdays)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}
	weekRules, err := readCSVFile(paths.DoctorWeekRules)
	if err != nil {
		return nil, planerr.RowErrors{}, err
	}

	world, warnings, buildErr := normalize(doctors, locations, rooms, sessions, preferences, travelTimes, workdays, weekRules)
	if buildErr != nil {
		logger.ErrorContext(ctx, "input normalization failed", "error", buildErr)
		return nil, warnings, buildErr
	}

	logger.InfoContext(ctx, "input normalized",
		"physician_count", world.Physicians.Len(),
		"location_count", world.Locations.Len(),
		"room_count", world.Rooms.Len(),
		"session_count", world.Sessions.Len(),
		"warning_count", len(warnings.Errors))
	return world, warnings, nil
}

// normalize applies the table parsers in dependency order (doctors and
// locations before anything that references them) and is shared by ReadCSV
// and ReadExcel.
func normalize(doctors, locations, rooms, sessions, preferences, travelTimes, workdays, weekRules *rawTable) (*domain.World, planerr.RowErrors, error) {
	world := domain.NewWorld()
	var warnings planerr.RowErrors

	if err := parseDoctors(doctors, world); err != nil {
		return nil, warnings, err
	}
	if err := parseLocations(locations, world); err != nil {
		return nil, warnings, err
	}
	if err := parseRooms(rooms, world, &warnings); err != nil {
		return nil, warnings, err
	}
	if err := parseSessions(sessions, world); err != nil {
		return nil, warnings, err
	}
	parsePreferences(preferences, world, &warnings)
	parseTravelTimes(travelTimes, world, &warnings)
	parseWorkdays(workdays, world, &warnings)
	parseWeekRules(weekRules, world, &warnings)

	return world, warnings, nil
}
