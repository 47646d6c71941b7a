// Package framehash implements the Frame Hash Map: a shared, concurrently
// written record of each captured frame's content hash, used after a run
// to verify that no two adjacent frames were captured identically (a
// symptom of a Page Driver that advanced without the page actually
// changing).
package framehash

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
)

// Map stores one content hash per frame index. Writes are disjoint by
// frame index (each frame is written by exactly one Part Worker), so a
// single coarse mutex is enough — capture cost dominates the time spent
// holding it, following the same reasoning the teacher's chunk-result
// collector uses for its own shared progress map.
type Map struct {
	mu     sync.Mutex
	hashes map[int][32]byte
}

// New returns an empty Frame Hash Map sized for the given frame count.
func New(capacity int) *Map {
	return &Map{hashes: make(map[int][32]byte, capacity)}
}

// Sum computes the content hash for one frame's raw bytes.
func Sum(frame []byte) [32]byte {
	return sha256.Sum256(frame)
}

// Insert records the hash for frameIndex. Safe for concurrent use as
// long as each frameIndex is inserted by only one goroutine.
func (m *Map) Insert(frameIndex int, hash [32]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[frameIndex] = hash
}

// Len returns the number of recorded frame hashes.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hashes)
}

// DuplicatePair names two adjacent frame indices that hashed identically.
type DuplicatePair struct {
	First  int
	Second int
}

func (d DuplicatePair) Error() string {
	return fmt.Sprintf("duplicate frame content detected at frames (%d,%d)", d.First, d.Second)
}

// FirstDuplicate scans frames startFrame..startFrame+count-1 in order and
// returns the first pair of consecutive frames that hashed identically,
// or nil if every adjacent pair differs. Missing entries (frames that
// were never inserted) are treated as a gap and do not count as a match.
func (m *Map) FirstDuplicate(startFrame, count int) *DuplicatePair {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prevHash [32]byte
	havePrev := false
	prevIdx := 0
	for i := startFrame; i < startFrame+count; i++ {
		h, ok := m.hashes[i]
		if !ok {
			havePrev = false
			continue
		}
		if havePrev && h == prevHash {
			return &DuplicatePair{First: prevIdx, Second: i}
		}
		prevHash = h
		prevIdx = i
		havePrev = true
	}
	return nil
}

// Indices returns the sorted list of frame indices currently recorded,
// mainly useful for tests and diagnostics.
func (m *Map) Indices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.hashes))
	for k := range m.hashes {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
