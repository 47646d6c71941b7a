package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/framehash"
	"github.com/framecast/framecast/internal/partition"
)

type fakeDriver struct {
	failOnFrame int // -1 to never fail
	closed      bool
}

func (f *fakeDriver) RenderFrame(ctx context.Context, frameIndex int) ([]byte, error) {
	if frameIndex == f.failOnFrame {
		return nil, fmt.Errorf("simulated render failure at frame %d", frameIndex)
	}
	return []byte(fmt.Sprintf("frame-%d", frameIndex)), nil
}

func (f *fakeDriver) Close() { f.closed = true }

type fakeSink struct {
	mu      sync.Mutex
	written [][]byte
	ended   bool
	killed  bool
}

func (s *fakeSink) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, append([]byte(nil), frame...))
	return nil
}

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

func TestPartWorkerRunsAllFrames(t *testing.T) {
	part := partition.Part{Index: 0, Start: 0, End: 5}
	drv := &fakeDriver{failOnFrame: -1}
	snk := &fakeSink{}
	hashes := framehash.New(5)
	cfg := &config.Config{EnableHashCheck: true}

	var progresses []Progress
	pw := New(part, drv, snk, hashes, cfg, func(p Progress) { progresses = append(progresses, p) })

	if err := pw.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snk.written) != 5 {
		t.Fatalf("expected 5 frames written, got %d", len(snk.written))
	}
	if !snk.ended {
		t.Fatal("expected sink.End() to be called")
	}
	if snk.killed {
		t.Fatal("sink should not be killed on success")
	}
	if !drv.closed {
		t.Fatal("expected driver to be closed")
	}
	if hashes.Len() != 5 {
		t.Fatalf("expected 5 hash entries, got %d", hashes.Len())
	}
	if len(progresses) != 5 || progresses[4].FramesComplete != 5 {
		t.Fatalf("unexpected progress sequence: %+v", progresses)
	}
}

func TestPartWorkerKillsSinkOnFailure(t *testing.T) {
	part := partition.Part{Index: 1, Start: 0, End: 5}
	drv := &fakeDriver{failOnFrame: 2}
	snk := &fakeSink{}
	hashes := framehash.New(5)
	cfg := &config.Config{}

	pw := New(part, drv, snk, hashes, cfg, nil)
	err := pw.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !snk.killed {
		t.Fatal("expected sink to be killed on failure")
	}
	if snk.ended {
		t.Fatal("sink should not have been ended normally after a failure")
	}
	if len(snk.written) != 2 {
		t.Fatalf("expected exactly the 2 successfully-rendered frames written, got %d", len(snk.written))
	}
}

func TestPartWorkerAbortStopsBeforeNextFrame(t *testing.T) {
	part := partition.Part{Index: 2, Start: 0, End: 100}
	drv := &fakeDriver{failOnFrame: -1}
	snk := &fakeSink{}
	hashes := framehash.New(100)
	cfg := &config.Config{}

	pw := New(part, drv, snk, hashes, cfg, nil)
	pw.Abort()

	err := pw.Run(context.Background())
	if err == nil {
		t.Fatal("expected abort to produce an error")
	}
	if !snk.killed {
		t.Fatal("expected sink to be killed after abort")
	}
	if len(snk.written) != 0 {
		t.Fatalf("expected no frames written after immediate abort, got %d", len(snk.written))
	}
}
