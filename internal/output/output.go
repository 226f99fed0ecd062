// Package output renders a materialized schedule to CSV or Excel, per spec
// §6's output schema: session_id, date, start_time, end_time, location_id,
// room, required_skill, doctor_id, doctor_name, preference_score.
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/example/physician-roster/internal/materialize"
	"github.com/example/physician-roster/internal/planerr"
)

var header = []string{
	"session_id", "date", "start_time", "end_time", "location_id",
	"room", "required_skill", "doctor_id", "doctor_name", "preference_score",
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func rowFields(r materialize.Row) []string {
	return []string{
		r.SessionID,
		r.Date,
		formatClock(r.StartMin),
		formatClock(r.EndMin),
		r.LocationID,
		r.Room,
		r.RequiredSkill,
		r.PhysicianID,
		r.PhysicianName,
		fmt.Sprintf("%d", r.PreferenceScore),
	}
}

// WriteCSV writes schedule to path as a single CSV file.
func WriteCSV(ctx context.Context, path string, schedule materialize.Schedule, logger *slog.Logger) error {
	logger = planerr.StageLogger(ctx, logger, "output", "WriteCSV", "path", path, "row_count", len(schedule.Rows))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", planerr.ErrInternal, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: write header: %v", planerr.ErrInternal, err)
	}
	for _, row := range schedule.Rows {
		if err := w.Write(rowFields(row)); err != nil {
			return fmt.Errorf("%w: write row %s: %v", planerr.ErrInternal, row.SessionID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush: %v", planerr.ErrInternal, err)
	}

	logger.InfoContext(ctx, "schedule written")
	return nil
}

// WriteExcel writes schedule to path as a single-sheet workbook named
// "Schedule", following the same column order as WriteCSV.
func WriteExcel(ctx context.Context, path string, schedule materialize.Schedule, logger *slog.Logger) error {
	logger = planerr.StageLogger(ctx, logger, "output", "WriteExcel", "path", path, "row_count", len(schedule.Rows))

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, name := range header {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("%w: %v", planerr.ErrInternal, err)
		}
		if err := f.SetCellValue(sheet, cellName, name); err != nil {
			return fmt.Errorf("%w: %v", planerr.ErrInternal, err)
		}
	}

	for i, row := range schedule.Rows {
		excelRow := i + 2 // header occupies row 1
		for col, value := range rowFields(row) {
			cellName, err := excelize.CoordinatesToCellName(col+1, excelRow)
			if err != nil {
				return fmt.Errorf("%w: %v", planerr.ErrInternal, err)
			}
			if err := f.SetCellValue(sheet, cellName, value); err != nil {
				return fmt.Errorf("%w: %v", planerr.ErrInternal, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: save %s: %v", planerr.ErrInternal, path, err)
	}

	logger.InfoContext(ctx, "schedule written")
	return nil
}
