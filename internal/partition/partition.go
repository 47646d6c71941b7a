// Package partition splits a frame range across a fixed number of
// workers, producing the ordered, disjoint, gap-free Parts the rest of
// the pipeline fans out over.
package partition

import "fmt"

// Part is one contiguous, half-open frame range [Start, End) assigned to
// a single Part Worker.
type Part struct {
	Index int
	Start int
	End   int
}

// Frames returns the number of frames in the Part.
func (p Part) Frames() int {
	return p.End - p.Start
}

// ClampConcurrency lowers concurrency to durationFrames when there are
// fewer frames than requested workers, so Partition never needs to
// produce an empty Part.
func ClampConcurrency(concurrency, durationFrames int) int {
	if concurrency > durationFrames {
		return durationFrames
	}
	if concurrency < 1 {
		return 1
	}
	return concurrency
}

// Partition splits [startFrame, startFrame+durationFrames) into
// concurrency ordered, contiguous, non-overlapping Parts. Frames are
// divided evenly; any remainder is absorbed into the last Part so every
// Part but the last has exactly base = durationFrames/concurrency
// frames. The caller is expected to have already clamped concurrency
// with ClampConcurrency so durationFrames >= concurrency.
func Partition(startFrame, durationFrames, concurrency int) ([]Part, error) {
	if durationFrames < 1 {
		return nil, fmt.Errorf("partition: durationFrames must be >= 1, got %d", durationFrames)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("partition: concurrency must be >= 1, got %d", concurrency)
	}
	if concurrency > durationFrames {
		return nil, fmt.Errorf("partition: concurrency %d exceeds durationFrames %d", concurrency, durationFrames)
	}

	base := durationFrames / concurrency
	remainder := durationFrames % concurrency

	parts := make([]Part, concurrency)
	cursor := startFrame
	for i := 0; i < concurrency; i++ {
		size := base
		if i == concurrency-1 {
			size += remainder
		}
		parts[i] = Part{
			Index: i,
			Start: cursor,
			End:   cursor + size,
		}
		cursor += size
	}
	return parts, nil
}
