package framehash

import (
	"sync"
	"testing"
)

func TestNoDuplicatesAmongDistinctFrames(t *testing.T) {
	m := New(6)
	for i := 0; i < 6; i++ {
		m.Insert(i, Sum([]byte{byte(i)}))
	}
	if dup := m.FirstDuplicate(0, 6); dup != nil {
		t.Fatalf("expected no duplicates, got %v", dup)
	}
}

func TestDetectsAdjacentDuplicate(t *testing.T) {
	m := New(8)
	for i := 0; i < 5; i++ {
		m.Insert(i, Sum([]byte{byte(i)}))
	}
	// Frames 5 and 6 captured identically — a stuck Page Driver.
	stuck := Sum([]byte("stuck-frame"))
	m.Insert(5, stuck)
	m.Insert(6, stuck)
	m.Insert(7, Sum([]byte{7}))

	dup := m.FirstDuplicate(0, 8)
	if dup == nil {
		t.Fatal("expected a duplicate to be detected")
	}
	if dup.First != 5 || dup.Second != 6 {
		t.Fatalf("expected pair (5,6), got (%d,%d)", dup.First, dup.Second)
	}
}

func TestNonAdjacentIdenticalFramesAreNotFlagged(t *testing.T) {
	m := New(4)
	same := Sum([]byte("same"))
	m.Insert(0, same)
	m.Insert(1, Sum([]byte("different")))
	m.Insert(2, same)
	if dup := m.FirstDuplicate(0, 3); dup != nil {
		t.Fatalf("expected no adjacent duplicate, got %v", dup)
	}
}

func TestConcurrentDisjointInsert(t *testing.T) {
	m := New(100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Insert(i, Sum([]byte{byte(i)}))
		}(i)
	}
	wg.Wait()
	if m.Len() != 100 {
		t.Fatalf("expected 100 entries, got %d", m.Len())
	}
}
