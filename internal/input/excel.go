package input

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/planerr"
)

// excelSheetNames maps each logical table to the workbook tab spec §6
// names: "Doctors, Locations, Rooms, Sessions, Preferences, TravelTimes,
// DoctorWorkdays, DoctorWeekRules".
var excelSheetNames = map[string]string{
	"doctors":         "Doctors",
	"locations":       "Locations",
	"rooms":           "Rooms",
	"sessions":        "Sessions",
	"preferences":     "Preferences",
	"travelTimes":     "TravelTimes",
	"workdays":        "DoctorWorkdays",
	"weekRules":       "DoctorWeekRules",
}

func readExcelSheet(f *excelize.File, sheet string) (*rawTable, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil // sheet absent: treated the same as an unset optional path
	}
	if len(rows) == 0 {
		return &rawTable{source: sheet}, nil
	}
	return &rawTable{source: sheet, header: rows[0], rows: rows[1:]}, nil
}

// ReadExcel reads the same eight tables as ReadCSV from one workbook's
// tabs, per spec §6's Excel variant ("semantics are identical").
func ReadExcel(ctx context.Context, path string, logger *slog.Logger) (*domain.World, planerr.RowErrors, error) {
	logger = planerr.StageLogger(ctx, logger, "input", "ReadExcel")

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, planerr.RowErrors{}, fmt.Errorf("%w: open %s: %v", planerr.ErrInputMalformed, path, err)
	}
	defer f.Close()

	doctors, _ := readExcelSheet(f, excelSheetNames["doctors"])
	locations, _ := readExcelSheet(f, excelSheetNames["locations"])
	rooms, _ := readExcelSheet(f, excelSheetNames["rooms"])
	sessions, _ := readExcelSheet(f, excelSheetNames["sessions"])
	preferences, _ := readExcelSheet(f, excelSheetNames["preferences"])
	travelTimes, _ := readExcelSheet(f, excelSheetNames["travelTimes"])
	workdays, _ := readExcelSheet(f, excelSheetNames["workdays"])
	weekRules, _ := readExcelSheet(f, excelSheetNames["weekRules"])

	if doctors == nil || locations == nil || sessions == nil {
		return nil, planerr.RowErrors{}, fmt.Errorf("%w: workbook must contain Doctors, Locations, and Sessions tabs", planerr.ErrInputMalformed)
	}

	world, warnings, buildErr := normalize(doctors, locations, rooms, sessions, preferences, travelTimes, workdays, weekRules)
	if buildErr != nil {
		logger.ErrorContext(ctx, "input normalization failed", "error", buildErr)
		return nil, warnings, buildErr
	}

	logger.InfoContext(ctx, "input normalized",
		"physician_count", world.Physicians.Len(),
		"location_count", world.Locations.Len(),
		"session_count", world.Sessions.Len(),
		"warning_count", len(warnings.Errors))
	return world, warnings, nil
}
