package planner

import (
	"context"
	"testing"
	"time"

	"github.com/example/physician-roster/internal/config"
	"github.com/example/physician-roster/internal/domain"
	"github.com/example/physician-roster/internal/solver"
	"github.com/example/physician-roster/internal/testfixtures"
)

func baseConfig() config.Config {
	return config.Config{
		TimeBudget:              30 * time.Second,
		WorkerCount:             1,
		RandomSeed:              1,
		DefaultPreferenceScore:  0,
		InfeasibleSessionPolicy: config.PolicySkip,
	}
}

func mustAdder(t *testing.T) func(error) {
	t.Helper()
	return func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected arena error: %v", err)
		}
	}
}

// Scenario 1 (spec §8): one unconstrained physician, three same-week
// sessions at one location. Expected: three assignments, objective 0.
func TestRunWorld_TrivialFeasible(t *testing.T) {
	t.Parallel()

	world := testfixtures.SampleRoster()
	testfixtures.SampleSessions(world, "loc-a", 3)

	outcome, err := RunWorld(context.Background(), world, baseConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Status != solver.Optimal {
		t.Fatalf("expected Optimal, got %s", outcome.Status)
	}
	if outcome.Schedule.TotalScore != 0 {
		t.Fatalf("expected objective 0, got %d", outcome.Schedule.TotalScore)
	}
	assigned := 0
	for _, row := range outcome.Schedule.Rows {
		if row.PhysicianID != "" {
			assigned++
		}
	}
	if assigned != 3 {
		t.Fatalf("expected 3 assignments, got %d", assigned)
	}
}

// Scenario 2 (spec §8): two physicians capped at 1 session each, three
// sessions on distinct days. Expected: ModelInfeasible with a saturation
// witness reporting 3 required against 2 available.
func TestRunWorld_CapacityBound(t *testing.T) {
	t.Parallel()
	mustAdd := mustAdder(t)

	world := domain.NewWorld()
	_, err := world.Locations.Add("loc-a", domain.Location{ID: "loc-a", Name: "A"})
	mustAdd(err)
	_, err = world.Physicians.Add("doc-a", domain.Physician{ID: "doc-a", MaxSessions: 1})
	mustAdd(err)
	_, err = world.Physicians.Add("doc-b", domain.Physician{ID: "doc-b", MaxSessions: 1})
	mustAdd(err)
	for i := 0; i < 3; i++ {
		day := testfixtures.ReferenceTime().AddDate(0, 0, i)
		id := sessID(i)
		_, err = world.Sessions.Add(id, domain.Session{
			ID: id, Date: day, LocationID: "loc-a", StartMin: 9 * 60, EndMin: 10 * 60,
		})
		mustAdd(err)
	}

	outcome, err := RunWorld(context.Background(), world, baseConfig(), nil)
	if err == nil {
		t.Fatalf("expected ModelInfeasible error")
	}
	if outcome.Witness == nil {
		t.Fatalf("expected a saturation witness")
	}
	if outcome.Witness.Required != 3 || outcome.Witness.Available != 2 {
		t.Fatalf("expected 3 required / 2 available, got %+v", outcome.Witness)
	}
}

// Scenario 3 (spec §8): a session requiring skill cardio; physician A lacks
// it, physician B has it. Expected: B assigned.
func TestRunWorld_SkillFilter(t *testing.T) {
	t.Parallel()
	mustAdd := mustAdder(t)

	world := testfixtures.SampleRoster() // doc-a: algemeen, doc-b: algemeen+cardio
	_, err := world.Sessions.Add("sess-cardio", domain.Session{
		ID: "sess-cardio", Date: testfixtures.ReferenceTime(), LocationID: "loc-a",
		StartMin: 9 * 60, EndMin: 10 * 60, RequiredSkill: "cardio",
	})
	mustAdd(err)

	outcome, err := RunWorld(context.Background(), world, baseConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Schedule.Rows) != 1 || outcome.Schedule.Rows[0].PhysicianID != "doc-b" {
		t.Fatalf("expected doc-b assigned, got %+v", outcome.Schedule.Rows)
	}
}

// Scenario 4 (spec §8): two overlapping same-day sessions, two physicians
// each with capacity 2. Expected: both sessions assigned, to different
// physicians (overlap forbids the same physician on both).
func TestRunWorld_Overlap(t *testing.T) {
	t.Parallel()
	mustAdd := mustAdder(t)

	world := domain.NewWorld()
	_, err := world.Locations.Add("loc-a", domain.Location{ID: "loc-a", Name: "A"})
	mustAdd(err)
	_, err = world.Physicians.Add("doc-a", domain.Physician{ID: "doc-a", MaxSessions: 2})
	mustAdd(err)
	_, err = world.Physicians.Add("doc-b", domain.Physician{ID: "doc-b", MaxSessions: 2})
	mustAdd(err)
	day := testfixtures.ReferenceTime()
	_, err = world.Sessions.Add("sess-1", domain.Session{
		ID: "sess-1", Date: day, LocationID: "loc-a", StartMin: 9 * 60, EndMin: 10 * 60,
	})
	mustAdd(err)
	_, err = world.Sessions.Add("sess-2", domain.Session{
		ID: "sess-2", Date: day, LocationID: "loc-a", StartMin: 9*60 + 30, EndMin: 10*60 + 30,
	})
	mustAdd(err)

	outcome, err := RunWorld(context.Background(), world, baseConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Schedule.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(outcome.Schedule.Rows))
	}
	if outcome.Schedule.Rows[0].PhysicianID == "" || outcome.Schedule.Rows[1].PhysicianID == "" {
		t.Fatalf("expected both sessions assigned, got %+v", outcome.Schedule.Rows)
	}
	if outcome.Schedule.Rows[0].PhysicianID == outcome.Schedule.Rows[1].PhysicianID {
		t.Fatalf("expected distinct physicians for overlapping sessions, got %+v", outcome.Schedule.Rows)
	}
}

// Scenario 6 (spec §8): one session, two equally eligible physicians with
// preferences +5 and -3. Expected: the +5 physician wins, objective 5.
func TestRunWorld_PreferenceMaximization(t *testing.T) {
	t.Parallel()
	mustAdd := mustAdder(t)

	world := testfixtures.SampleRoster()
	_, err := world.Sessions.Add("sess-1", domain.Session{
		ID: "sess-1", Date: testfixtures.ReferenceTime(), LocationID: "loc-a",
		StartMin: 9 * 60, EndMin: 10 * 60,
	})
	mustAdd(err)
	world.Preferences[domain.PreferenceKey{PhysicianID: "doc-a", LocationID: "loc-a"}] = 5
	world.Preferences[domain.PreferenceKey{PhysicianID: "doc-b", LocationID: "loc-a"}] = -3

	outcome, err := RunWorld(context.Background(), world, baseConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Schedule.TotalScore != 5 {
		t.Fatalf("expected objective 5, got %d", outcome.Schedule.TotalScore)
	}
	if outcome.Schedule.Rows[0].PhysicianID != "doc-a" {
		t.Fatalf("expected doc-a assigned, got %+v", outcome.Schedule.Rows[0])
	}
}

// InfeasibleSessionPolicy=fail turns a structurally infeasible session
// (spec §4.3/§7 entry 3) into a fatal run error instead of a skipped row.
func TestRunWorld_InfeasiblePolicyFail(t *testing.T) {
	t.Parallel()
	mustAdd := mustAdder(t)

	world := domain.NewWorld()
	_, err := world.Locations.Add("loc-a", domain.Location{ID: "loc-a", Name: "A"})
	mustAdd(err)
	_, err = world.Physicians.Add("doc-a", domain.Physician{ID: "doc-a", MaxSessions: 5})
	mustAdd(err)
	_, err = world.Sessions.Add("sess-1", domain.Session{
		ID: "sess-1", Date: testfixtures.ReferenceTime(), LocationID: "loc-a",
		StartMin: 9 * 60, EndMin: 10 * 60, RequiredSkill: "cardio",
	})
	mustAdd(err)

	cfg := baseConfig()
	cfg.InfeasibleSessionPolicy = config.PolicyFail
	outcome, err := RunWorld(context.Background(), world, cfg, nil)
	if err == nil {
		t.Fatalf("expected an error under the fail policy")
	}
	if ClassifyExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", ClassifyExitCode(err))
	}
	if len(outcome.Infeasible) != 1 {
		t.Fatalf("expected 1 infeasible session diagnostic, got %d", len(outcome.Infeasible))
	}
}

func sessID(i int) string {
	return "sess-" + string(rune('a'+i))
}
