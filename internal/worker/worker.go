// Package worker implements the Part Worker and the Progress Record its
// runs report, aggregated by the Orchestrator into reporter updates.
package worker

// Progress is one Progress Record: a single Part's render state, reported
// after every frame the Part completes. The Orchestrator combines these
// with Aggregate and reports the total every ceil(fps)th frame.
type Progress struct {
	PartIndex      int
	FramesTotal    int
	FramesComplete int
	BytesWritten   int64
}

// Percent returns the completion percentage for this Part, 0 when there
// are no frames to report against.
func (p Progress) Percent() float64 {
	if p.FramesTotal == 0 {
		return 0
	}
	return float64(p.FramesComplete) / float64(p.FramesTotal) * 100
}

// AggregateProgress sums per-part Progress Records into a single overall
// figure, as the Orchestrator reports to the Reporter.
type AggregateProgress struct {
	FramesTotal    int
	FramesComplete int
	BytesWritten   int64
	Parts          []Progress
}

func (a AggregateProgress) Percent() float64 {
	if a.FramesTotal == 0 {
		return 0
	}
	return float64(a.FramesComplete) / float64(a.FramesTotal) * 100
}

// Aggregate combines the latest known Progress for each part into one
// AggregateProgress snapshot.
func Aggregate(parts []Progress) AggregateProgress {
	agg := AggregateProgress{Parts: append([]Progress(nil), parts...)}
	for _, p := range parts {
		agg.FramesTotal += p.FramesTotal
		agg.FramesComplete += p.FramesComplete
		agg.BytesWritten += p.BytesWritten
	}
	return agg
}
