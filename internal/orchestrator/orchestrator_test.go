package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/framehash"
	"github.com/framecast/framecast/internal/partition"
	"github.com/framecast/framecast/internal/reporter"
	"github.com/framecast/framecast/internal/worker"
)

// fakeDriver renders frames instantly, optionally failing on one frame
// index across the whole run (used to exercise the fail-fast abort path).
type fakeDriver struct {
	failOnFrame int // -1 means never fail
	closed      atomic.Bool
}

func (d *fakeDriver) RenderFrame(ctx context.Context, frameIndex int) ([]byte, error) {
	if frameIndex == d.failOnFrame {
		return nil, fmt.Errorf("simulated render failure at frame %d", frameIndex)
	}
	// A short per-frame delay gives the errgroup's cancellation time to
	// reach the other parts before they run past their own last frame,
	// so the fail-fast assertions below aren't a race against how fast
	// an in-memory fake can iterate.
	select {
	case <-time.After(2 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []byte(fmt.Sprintf("frame-%d", frameIndex)), nil
}

func (d *fakeDriver) Close() { d.closed.Store(true) }

// fakeSink records whether it was killed or ended normally, standing in
// for the real Encoder Sink's subprocess lifecycle.
type fakeSink struct {
	mu     sync.Mutex
	ended  bool
	killed bool
}

func (s *fakeSink) Write(frame []byte) error { return nil }

func (s *fakeSink) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	return nil
}

func (s *fakeSink) Kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killed = true
}

func (s *fakeSink) wasKilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}

func (s *fakeSink) wasEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func TestRenderPartsSucceedsAcrossAllParts(t *testing.T) {
	parts, err := partition.Partition(0, 20, 4)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{FPS: 10}
	hashes := framehash.New(20)

	var mu sync.Mutex
	var sinks []*fakeSink
	factory := func(ctx context.Context, part partition.Part) (worker.FrameDriver, worker.FrameSink, string, error) {
		drv := &fakeDriver{failOnFrame: -1}
		snk := &fakeSink{}
		mu.Lock()
		sinks = append(sinks, snk)
		mu.Unlock()
		return drv, snk, fmt.Sprintf("part-%d.mkv", part.Index), nil
	}

	artifacts, err := renderParts(context.Background(), parts, cfg, hashes, reporter.NullReporter{}, factory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifacts) != len(parts) {
		t.Fatalf("expected %d artifacts, got %d", len(parts), len(artifacts))
	}
	for _, s := range sinks {
		if !s.wasEnded() {
			t.Fatal("expected every sink to be ended normally")
		}
		if s.wasKilled() {
			t.Fatal("no sink should be killed on a fully successful run")
		}
	}
}

// TestRenderPartsFailFastKillsEverySink covers spec.md's fail-fast-abort
// scenario: one of four Part Workers fails partway through, and every
// other worker's Encoder Sink must be killed rather than left running.
func TestRenderPartsFailFastKillsEverySink(t *testing.T) {
	parts, err := partition.Partition(0, 40, 4)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{FPS: 10}
	hashes := framehash.New(40)

	var mu sync.Mutex
	var sinks []*fakeSink
	factory := func(ctx context.Context, part partition.Part) (worker.FrameDriver, worker.FrameSink, string, error) {
		failFrame := -1
		if part.Index == 2 {
			// Fail a couple of frames into this part so the other
			// workers are still mid-render when the abort propagates.
			failFrame = part.Start + 2
		}
		drv := &fakeDriver{failOnFrame: failFrame}
		snk := &fakeSink{}
		mu.Lock()
		sinks = append(sinks, snk)
		mu.Unlock()
		return drv, snk, fmt.Sprintf("part-%d.mkv", part.Index), nil
	}

	_, err = renderParts(context.Background(), parts, cfg, hashes, reporter.NullReporter{}, factory)
	if err == nil {
		t.Fatal("expected renderParts to return the injected failure")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, s := range sinks {
		if !s.wasKilled() {
			t.Fatalf("sink for part %d was not killed after fail-fast abort", i)
		}
		if s.wasEnded() {
			t.Fatalf("sink for part %d was ended normally despite the abort", i)
		}
	}
}

func TestRenderPartsSingleWorkerNoAbortNeeded(t *testing.T) {
	parts, err := partition.Partition(0, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{FPS: 10}
	hashes := framehash.New(10)

	snk := &fakeSink{}
	factory := func(ctx context.Context, part partition.Part) (worker.FrameDriver, worker.FrameSink, string, error) {
		return &fakeDriver{failOnFrame: -1}, snk, "part-0.mkv", nil
	}

	artifacts, err := renderParts(context.Background(), parts, cfg, hashes, reporter.NullReporter{}, factory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if !snk.wasEnded() || snk.wasKilled() {
		t.Fatal("expected the lone worker's sink to end normally")
	}
}

func TestReportInterval(t *testing.T) {
	if reportInterval(30) != 30 {
		t.Fatalf("expected reportInterval(30) == 30")
	}
	if reportInterval(0) != 1 {
		t.Fatalf("expected reportInterval(0) to fall back to 1")
	}
}
