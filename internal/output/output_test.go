package output

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/physician-roster/internal/materialize"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	schedule := materialize.Schedule{
		Rows: []materialize.Row{
			{SessionID: "sess-1", Date: "2026-07-06", StartMin: 540, EndMin: 600, LocationID: "loc-1",
				PhysicianID: "doc-a", PhysicianName: "Dr A", PreferenceScore: 5},
		},
		TotalScore: 5,
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(context.Background(), path, schedule, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse output csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "session_id" {
		t.Fatalf("expected header row, got %v", records[0])
	}
	if records[1][2] != "09:00" || records[1][3] != "10:00" {
		t.Fatalf("expected formatted start/end times, got %v", records[1])
	}
}
