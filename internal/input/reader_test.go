package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/physician-roster/internal/planerr"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

func TestReadCSV_HappyPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	doctors := writeCSV(t, dir, "doctors.csv", "doctor_id,name,max_sessions,unavailable_dates,skills\n"+
		"doc-a,Dr A,5,2026-07-06,algemeen;cardio\n")
	locations := writeCSV(t, dir, "locations.csv", "location_id,name,default_start_time,default_end_time\n"+
		"loc-1,Site One,08:00,17:00\n")
	sessions := writeCSV(t, dir, "sessions.csv", "session_id,date,location_id,start_time,end_time,required_skill,room\n"+
		"sess-1,2026-07-07,loc-1,09:00,10:00,cardio,101\n")

	world, warnings, err := ReadCSV(context.Background(), Paths{
		Doctors: doctors, Locations: locations, Sessions: sessions,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warnings.HasErrors() {
		t.Fatalf("unexpected warnings: %+v", warnings.Errors)
	}
	if world.Physicians.Len() != 1 || world.Locations.Len() != 1 || world.Sessions.Len() != 1 {
		t.Fatalf("unexpected entity counts: physicians=%d locations=%d sessions=%d",
			world.Physicians.Len(), world.Locations.Len(), world.Sessions.Len())
	}
	pIdx, _ := world.Physicians.Lookup("doc-a")
	physician := world.Physicians.Get(pIdx)
	if physician.MaxSessions != 5 {
		t.Fatalf("expected max_sessions 5, got %d", physician.MaxSessions)
	}
	if !physician.HasSkill("cardio") {
		t.Fatalf("expected doc-a to have the cardio skill")
	}
	if !physician.IsUnavailable("2026-07-06") {
		t.Fatalf("expected doc-a to be unavailable on 2026-07-06")
	}
}

func TestReadCSV_SessionWithUnknownLocationIsFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	doctors := writeCSV(t, dir, "doctors.csv", "doctor_id,name,max_sessions,unavailable_dates,skills\ndoc-a,Dr A,5,,\n")
	locations := writeCSV(t, dir, "locations.csv", "location_id,name,default_start_time,default_end_time\nloc-1,Site One,08:00,17:00\n")
	sessions := writeCSV(t, dir, "sessions.csv", "session_id,date,location_id,start_time,end_time,required_skill,room\n"+
		"sess-1,2026-07-07,loc-missing,09:00,10:00,,\n")

	_, _, err := ReadCSV(context.Background(), Paths{Doctors: doctors, Locations: locations, Sessions: sessions}, nil)
	if !errors.Is(err, planerr.ErrInputInconsistent) {
		t.Fatalf("expected ErrInputInconsistent, got %v", err)
	}
}

func TestReadCSV_PreferenceWithUnknownDoctorIsWarningNotFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	doctors := writeCSV(t, dir, "doctors.csv", "doctor_id,name,max_sessions,unavailable_dates,skills\ndoc-a,Dr A,5,,\n")
	locations := writeCSV(t, dir, "locations.csv", "location_id,name,default_start_time,default_end_time\nloc-1,Site One,08:00,17:00\n")
	sessions := writeCSV(t, dir, "sessions.csv", "session_id,date,location_id,start_time,end_time,required_skill,room\n"+
		"sess-1,2026-07-07,loc-1,09:00,10:00,,\n")
	preferences := writeCSV(t, dir, "preferences.csv", "doctor_id,location_id,score\n"+
		"doc-missing,loc-1,5\n")

	world, warnings, err := ReadCSV(context.Background(), Paths{
		Doctors: doctors, Locations: locations, Sessions: sessions, Preferences: preferences,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !warnings.HasErrors() {
		t.Fatalf("expected a warning for the unknown doctor_id")
	}
	if len(world.Preferences) != 0 {
		t.Fatalf("expected the bad preference row to be skipped")
	}
}

func TestReadCSV_MalformedMaxSessionsIsFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	doctors := writeCSV(t, dir, "doctors.csv", "doctor_id,name,max_sessions,unavailable_dates,skills\ndoc-a,Dr A,not-a-number,,\n")
	locations := writeCSV(t, dir, "locations.csv", "location_id,name,default_start_time,default_end_time\nloc-1,Site One,08:00,17:00\n")
	sessions := writeCSV(t, dir, "sessions.csv", "session_id,date,location_id,start_time,end_time,required_skill,room\n")

	_, _, err := ReadCSV(context.Background(), Paths{Doctors: doctors, Locations: locations, Sessions: sessions}, nil)
	if !errors.Is(err, planerr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed, got %v", err)
	}
}

func TestReadCSV_MissingRequiredPath(t *testing.T) {
	t.Parallel()

	_, _, err := ReadCSV(context.Background(), Paths{}, nil)
	if !errors.Is(err, planerr.ErrInputMalformed) {
		t.Fatalf("expected ErrInputMalformed for missing required paths, got %v", err)
	}
}

func TestReadCSV_ConflictingWeekRulesRejected(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	doctors := writeCSV(t, dir, "doctors.csv", "doctor_id,name,max_sessions,unavailable_dates,skills\ndoc-a,Dr A,5,,\n")
	locations := writeCSV(t, dir, "locations.csv", "location_id,name,default_start_time,default_end_time\n"+
		"loc-1,Site One,08:00,17:00\nloc-2,Site Two,08:00,17:00\n")
	sessions := writeCSV(t, dir, "sessions.csv", "session_id,date,location_id,start_time,end_time,required_skill,room\n")
	weekRules := writeCSV(t, dir, "doctor_week_rules.csv", "doctor_id,week_of_month,weekday,location_id\n"+
		"doc-a,2,2,loc-1\n"+
		"doc-a,2,2,loc-2\n")

	world, warnings, err := ReadCSV(context.Background(), Paths{
		Doctors: doctors, Locations: locations, Sessions: sessions, DoctorWeekRules: weekRules,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if !warnings.HasErrors() {
		t.Fatalf("expected a warning for the conflicting week rule")
	}
	if got := world.WeekRulesByPhysician["doc-a"][[2]int{2, 2}]; got != "loc-1" {
		t.Fatalf("expected the first rule to win, got %q", got)
	}
}
