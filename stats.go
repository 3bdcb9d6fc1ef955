package forestfire

import "time"

// StatSegment records the average time spent in one named phase of a
// simulation step, e.g. "neighbor sums" or "rule kernel". Useful for
// profiling where tick time goes beyond the single aggregate average.
type StatSegment struct {
	Name       string
	AverageDur time.Duration
}

// SimulationStatistics is published on a one-shot channel when a
// [simloop.Loop] stops normally.
type SimulationStatistics struct {
	// AverageStepExecTimeMS is the total in-loop compute time divided by
	// completed ticks.
	AverageStepExecTimeMS float64
	// Segments breaks that average down by phase, when the loop was asked
	// to record them. Empty if segment timing was not enabled.
	Segments []StatSegment
}
