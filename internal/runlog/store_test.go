package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/physician-roster/internal/testfixtures"
)

func TestStore_RecordRun(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("run")

	rec := Record{
		RunID:            ids.Next(),
		StartedAt:        clock.Now(),
		FinishedAt:       clock.Advance(30 * time.Minute),
		InputFingerprint: "deadbeef",
		Status:           "optimal",
		Objective:        5,
		SessionCount:     3,
		AssignedCount:    3,
	}
	if err := store.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	// A second run with a freshly minted id must not collide with the first.
	rec2 := rec
	rec2.RunID = ids.Next()
	if rec2.RunID == rec.RunID {
		t.Fatalf("expected distinct run ids, got %q twice", rec.RunID)
	}
	if err := store.RecordRun(context.Background(), rec2); err != nil {
		t.Fatalf("RecordRun (second row): %v", err)
	}
}

func TestStore_RecordRun_DuplicateRunID(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ids := testfixtures.NewIDGenerator("dup")
	runID := ids.Next()
	rec := Record{
		RunID:            runID,
		StartedAt:        testfixtures.ReferenceTime(),
		FinishedAt:       testfixtures.ReferenceTime(),
		InputFingerprint: "x",
		Status:           "optimal",
	}
	if err := store.RecordRun(context.Background(), rec); err != nil {
		t.Fatalf("first RecordRun: %v", err)
	}
	if err := store.RecordRun(context.Background(), rec); err == nil {
		t.Fatalf("expected an error recording a duplicate run id")
	}
}
