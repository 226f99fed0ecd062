// Package testfixtures builds deterministic Physician/Location/Session
// graphs, clocks, and id sequences for table-driven tests across the
// planning pipeline and its run-history store.
package testfixtures

import (
	"fmt"
	"time"

	"github.com/example/physician-roster/internal/domain"
)

var referenceTime = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline date used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SampleRoster returns a small, deterministic World with two physicians and
// two locations, no sessions, no preferences, and no cadence rules — the
// common starting point that table-driven tests layer sessions and rules
// onto.
func SampleRoster() *domain.World {
	world := domain.NewWorld()

	_, _ = world.Locations.Add("loc-a", domain.Location{ID: "loc-a", Name: "Location A", DefaultStartMin: 8 * 60, DefaultEndMin: 17 * 60})
	_, _ = world.Locations.Add("loc-b", domain.Location{ID: "loc-b", Name: "Location B", DefaultStartMin: 8 * 60, DefaultEndMin: 17 * 60})

	_, _ = world.Physicians.Add("doc-a", domain.Physician{
		ID: "doc-a", Name: "Dr. A", MaxSessions: 5,
		Unavailable: map[string]struct{}{},
		Skills:      map[string]struct{}{"algemeen": {}},
	})
	_, _ = world.Physicians.Add("doc-b", domain.Physician{
		ID: "doc-b", Name: "Dr. B", MaxSessions: 5,
		Unavailable: map[string]struct{}{},
		Skills:      map[string]struct{}{"algemeen": {}, "cardio": {}},
	})

	return world
}

// SampleSessions appends n sessions at locationID, one per day starting at
// ReferenceTime, each running 09:00-10:00, to world and returns their ids in
// generation order.
func SampleSessions(world *domain.World, locationID string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		date := referenceTime.AddDate(0, 0, i)
		id := fmt.Sprintf("%s-session-%d", locationID, i+1)
		_, _ = world.Sessions.Add(id, domain.Session{
			ID:         id,
			Date:       date,
			LocationID: locationID,
			StartMin:   9 * 60,
			EndMin:     10 * 60,
		})
		ids = append(ids, id)
	}
	return ids
}
