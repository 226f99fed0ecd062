package testfixtures

import "fmt"

// IDGenerator replaces runlog.NewRunID's google/uuid-backed randomness with a
// predictable sequence, so a test asserting on two distinct planning_runs
// rows (or a rejected duplicate run id) doesn't depend on comparing random
// strings for inequality.
type IDGenerator struct {
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields run ids of the form
// "<prefix>-<n>". When prefix is empty, "run" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next id in the sequence, suitable for runlog.Record.RunID.
func (g *IDGenerator) Next() string {
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
