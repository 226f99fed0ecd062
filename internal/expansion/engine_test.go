package expansion

import (
	"context"
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEngine_Expand_WeekdayFiltering(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	templates := []WeeklyTemplate{
		{Weekday: 1, LocationID: "clinic-a", StartMin: 540, EndMin: 600}, // Monday
	}

	// 2026-07-27 is a Monday; 2026-08-02 is the following Sunday.
	sessions, err := e.Expand(context.Background(), templates, date(2026, 7, 27), date(2026, 8, 2))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected exactly 1 session (one Monday in range), got %d", len(sessions))
	}
	if got, want := sessions[0].Weekday(), 1; got != want {
		t.Fatalf("expected weekday %d, got %d", want, got)
	}
}

func TestEngine_Expand_ClipsToRequestedRange(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	templates := []WeeklyTemplate{
		{Weekday: 3, LocationID: "clinic-a", StartMin: 480, EndMin: 540}, // Wednesday
	}

	// Four weeks, Wednesdays only: 2026-07-01, 08, 15, 22, 29 (5 Wednesdays).
	from := date(2026, 7, 1)
	to := date(2026, 7, 29)
	sessions, err := e.Expand(context.Background(), templates, from, to)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(sessions) != 5 {
		t.Fatalf("expected 5 Wednesdays in range, got %d", len(sessions))
	}
	for _, s := range sessions {
		if s.Date.Before(from) || s.Date.After(to) {
			t.Fatalf("session %s outside requested range", s.ID)
		}
	}
	// Narrowing the range by a day on each side must drop the boundary sessions.
	narrower, err := e.Expand(context.Background(), templates, date(2026, 7, 2), date(2026, 7, 28))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(narrower) != 3 {
		t.Fatalf("expected 3 Wednesdays in narrowed range, got %d", len(narrower))
	}
}

func TestEngine_Expand_DeterministicOutput(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	templates := []WeeklyTemplate{
		{Weekday: 2, LocationID: "clinic-a", StartMin: 540, EndMin: 600},
		{Weekday: 2, LocationID: "clinic-b", StartMin: 480, EndMin: 540},
	}
	from, to := date(2026, 7, 1), date(2026, 7, 31)

	first, err := e.Expand(context.Background(), templates, from, to)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	second, err := e.Expand(context.Background(), templates, from, to)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical session counts across runs, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("expected byte-identical ids at index %d, got %q and %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestEngine_Expand_CollisionResolvedIDs(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	// Two templates share a weekday, location, and start time: their ids
	// must collide on the base form and be disambiguated with "-2".
	templates := []WeeklyTemplate{
		{Weekday: 1, LocationID: "clinic-a", StartMin: 540, EndMin: 600, Room: "101"},
		{Weekday: 1, LocationID: "clinic-a", StartMin: 540, EndMin: 600, Room: "102"},
	}
	sessions, err := e.Expand(context.Background(), templates, date(2026, 7, 27), date(2026, 7, 27))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "20260727-clinic-a-0900" {
		t.Fatalf("unexpected first id: %s", sessions[0].ID)
	}
	if sessions[1].ID != "20260727-clinic-a-0900-2" {
		t.Fatalf("unexpected collision-resolved id: %s", sessions[1].ID)
	}
}

func TestEngine_Expand_InvalidRange(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	_, err := e.Expand(context.Background(), nil, date(2026, 7, 10), date(2026, 7, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestEngine_Expand_InvalidTemplate(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)
	templates := []WeeklyTemplate{
		{Weekday: 8, LocationID: "clinic-a", StartMin: 540, EndMin: 600},
	}
	_, err := e.Expand(context.Background(), templates, date(2026, 7, 1), date(2026, 7, 7))
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}

	templates = []WeeklyTemplate{
		{Weekday: 1, LocationID: "clinic-a", StartMin: 600, EndMin: 600},
	}
	_, err = e.Expand(context.Background(), templates, date(2026, 7, 1), date(2026, 7, 7))
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate for zero duration, got %v", err)
	}
}
