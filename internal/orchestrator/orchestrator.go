// Package orchestrator implements the top-level render state machine: it
// launches the browser, fans out Part Workers, fails fast on the first
// error, merges the resulting Part Artifacts, and verifies the result.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/framecast/framecast/internal/browser"
	"github.com/framecast/framecast/internal/capture"
	"github.com/framecast/framecast/internal/concat"
	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/driver"
	"github.com/framecast/framecast/internal/framehash"
	"github.com/framecast/framecast/internal/partition"
	"github.com/framecast/framecast/internal/reporter"
	"github.com/framecast/framecast/internal/sink"
	"github.com/framecast/framecast/internal/util"
	"github.com/framecast/framecast/internal/worker"
)

// Stage names the lifecycle states a run passes through, per spec.md §4.6.
type Stage string

const (
	StageBundling         Stage = "BUNDLING"
	StageServiceStarting  Stage = "SERVICE_STARTING"
	StageBrowserLaunching Stage = "BROWSER_LAUNCHING"
	StageRendering        Stage = "RENDERING"
	StageConcatenating    Stage = "CONCATENATING"
	StageVerifying        Stage = "VERIFYING"
	StageDone             Stage = "DONE"
	StageCleanup          Stage = "CLEANUP"
)

// staleTempFileHours is how long a part artifact can sit in tempDir
// before a later run treats it as debris from a crashed prior run and
// removes it on startup.
const staleTempFileHours = 24

// Result summarizes a completed run.
type Result struct {
	OutputPath  string
	OutputBytes int64
	FramesTotal int
	TotalTime   time.Duration
}

// Run executes one full render: partition, render, concatenate, verify.
func Run(ctx context.Context, cfg *config.Config, rep reporter.Reporter) (Result, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	started := time.Now()

	rep.Hardware(reporter.HardwareSummary{
		Hostname:    hostname(),
		CPUCores:    util.PhysicalCores(),
		AvailableMB: util.AvailableMemoryBytes() / (1024 * 1024),
	})
	rep.RunStarted(reporter.RunSummary{
		SceneEntryPath: cfg.SceneEntryPath,
		OutputFile:     cfg.OutputPath,
		Resolution:     fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		DurationFrames: cfg.DurationFrames,
		FPS:            cfg.FPS,
		CaptureMethod:  string(cfg.CaptureMethod),
	})

	// Bundling and ServiceStarting are no-op transitions in this core:
	// the asset bundler and media service are external collaborators per
	// spec.md §1. They're still named here so a caller wiring those in
	// later has a stage to hook into.
	rep.StageChange(reporter.StageProgress{Stage: string(StageBundling)})
	rep.StageChange(reporter.StageProgress{Stage: string(StageServiceStarting)})

	if err := util.EnsureDirectory(cfg.GetTempDir()); err != nil {
		return Result{}, fmt.Errorf("orchestrator: failed to create temp dir: %w", err)
	}
	if n, err := util.CleanupStaleTempFiles(cfg.GetTempDir(), "part", staleTempFileHours); err == nil && n > 0 {
		rep.Warning(fmt.Sprintf("removed %d stale part artifact(s) left over from a previous run", n))
	}
	util.CheckDiskSpace(cfg.GetTempDir(), func(format string, args ...any) {
		rep.Warning(fmt.Sprintf(format, args...))
	})

	cfg.ClampConcurrency()
	parts, err := partition.Partition(cfg.StartFrame, cfg.DurationFrames, cfg.Concurrency)
	if err != nil {
		return Result{}, err
	}

	secret := uuid.NewString()

	rep.StageChange(reporter.StageProgress{Stage: string(StageBrowserLaunching)})
	br, err := browser.Launch(ctx, browser.Options{
		Headless:      cfg.Headless,
		ExtensionPath: cfg.ExtensionPath,
		Width:         cfg.Width,
		Height:        cfg.Height,
	})
	if err != nil {
		return Result{}, err
	}
	defer br.Close()

	rep.StageChange(reporter.StageProgress{Stage: string(StageRendering)})
	rep.RenderStarted(cfg.DurationFrames)

	hashes := framehash.New(cfg.DurationFrames)
	factory := func(fctx context.Context, part partition.Part) (worker.FrameDriver, worker.FrameSink, string, error) {
		cap, err := capture.New(cfg.CaptureMethod, cfg.ImageFormat, cfg.JPEGQuality)
		if err != nil {
			return nil, nil, "", err
		}
		drv, err := driver.New(fctx, br, cap, cfg, secret, part.Index, part.Start)
		if err != nil {
			return nil, nil, "", err
		}
		artifactPath := filepath.Join(cfg.GetTempDir(), fmt.Sprintf("part_%04d-%d-%d.mkv", part.Index, part.Start, part.End))
		snk, err := sink.Open(fctx, artifactPath, cfg.FPS, cfg.ImageFormat)
		if err != nil {
			drv.Close()
			return nil, nil, "", err
		}
		return drv, snk, artifactPath, nil
	}

	artifacts, err := renderParts(ctx, parts, cfg, hashes, rep, factory)
	if err != nil {
		rep.Error(reporter.ReporterError{
			Title:   "render failed",
			Message: err.Error(),
		})
		return Result{}, err
	}

	rep.StageChange(reporter.StageProgress{Stage: string(StageConcatenating)})
	if err := concat.Concat(ctx, cfg.GetTempDir(), artifacts, cfg.OutputPath, cfg); err != nil {
		return Result{}, err
	}

	rep.StageChange(reporter.StageProgress{Stage: string(StageVerifying)})
	steps := verify(ctx, cfg, hashes)
	passed := true
	for _, s := range steps {
		if !s.Passed {
			passed = false
		}
	}
	rep.VerificationComplete(reporter.VerificationSummary{Passed: passed, Steps: steps})
	if !passed {
		return Result{}, fmt.Errorf("orchestrator: verification failed")
	}

	rep.StageChange(reporter.StageProgress{Stage: string(StageDone)})

	outBytes := util.GetFileSize(cfg.OutputPath)
	elapsed := time.Since(started)
	result := Result{
		OutputPath:  cfg.OutputPath,
		OutputBytes: outBytes,
		FramesTotal: cfg.DurationFrames,
		TotalTime:   elapsed,
	}
	rep.RenderComplete(reporter.RenderOutcome{
		OutputPath:  result.OutputPath,
		OutputBytes: result.OutputBytes,
		FramesTotal: result.FramesTotal,
		TotalTime:   elapsed,
		AverageFPS:  float64(cfg.DurationFrames) / elapsed.Seconds(),
	})
	return result, nil
}

// partWorkerFactory builds the Page Driver and Encoder Sink for one Part.
// Pulled out of renderParts so tests can substitute fakes without a real
// browser or ffmpeg subprocess.
type partWorkerFactory func(ctx context.Context, part partition.Part) (worker.FrameDriver, worker.FrameSink, string, error)

// renderParts fans out one Part Worker per Part via errgroup.WithContext,
// so the first worker error cancels every peer's context and the call
// blocks until all of them have returned — guaranteeing no Encoder Sink
// subprocess is ever leaked on an aborted run.
func renderParts(ctx context.Context, parts []partition.Part, cfg *config.Config, hashes *framehash.Map, rep reporter.Reporter, factory partWorkerFactory) ([]concat.Artifact, error) {
	g, gctx := errgroup.WithContext(ctx)

	artifacts := make([]concat.Artifact, len(parts))
	progress := make([]worker.Progress, len(parts))
	var progressMu sync.Mutex
	reportEvery := reportInterval(cfg.FPS)
	var frameCounter int
	renderStart := time.Now()

	// workers holds every constructed Part Worker so the fail-fast path
	// below can call Abort() on each of a failing Part's peers, per
	// spec.md §4.6/§9 — gctx cancellation alone stops a peer between
	// errgroup.Go calls, but Abort() is the worker-level signal the
	// spec names, checked inside the frame loop independent of how the
	// surrounding context plumbing is wired.
	workers := make([]*worker.PartWorker, len(parts))
	var workersMu sync.Mutex

	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			drv, snk, artifactPath, err := factory(gctx, part)
			if err != nil {
				return err
			}

			pw := worker.New(part, drv, snk, hashes, cfg, func(p worker.Progress) {
				progressMu.Lock()
				progress[i] = p
				frameCounter++
				emit := frameCounter%reportEvery == 0
				snapshot := append([]worker.Progress(nil), progress...)
				progressMu.Unlock()

				if emit {
					agg := worker.Aggregate(snapshot)
					var fps float64
					if elapsed := time.Since(renderStart).Seconds(); elapsed > 0 {
						fps = float64(agg.FramesComplete) / elapsed
					}
					rep.RenderProgress(reporter.PartProgress{
						PartsTotal:     len(parts),
						FramesTotal:    agg.FramesTotal,
						FramesComplete: agg.FramesComplete,
						FPS:            fps,
					})
				}
			})

			workersMu.Lock()
			workers[i] = pw
			workersMu.Unlock()

			if err := pw.Run(gctx); err != nil {
				abortPeers(workers, &workersMu, i)
				return err
			}

			artifacts[i] = concat.Artifact{PartIndex: part.Index, Path: artifactPath}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// abortPeers calls Abort() on every constructed Part Worker other than
// the one at failedIdx, including ones whose factory hasn't populated
// workers[i] yet — those simply have nothing to abort and are skipped.
func abortPeers(workers []*worker.PartWorker, mu *sync.Mutex, failedIdx int) {
	mu.Lock()
	defer mu.Unlock()
	for i, pw := range workers {
		if i == failedIdx || pw == nil {
			continue
		}
		pw.Abort()
	}
}

// reportInterval returns the aggregate-progress cadence spec.md §4.6
// calls for: every Nth frame across all parts, N = ceil(fps).
func reportInterval(fps int) int {
	if fps < 1 {
		return 1
	}
	return fps
}

func verify(ctx context.Context, cfg *config.Config, hashes *framehash.Map) []reporter.VerificationStep {
	var steps []reporter.VerificationStep

	if cfg.EnableFrameCountCheck {
		err := concat.VerifyFrameCount(ctx, cfg.OutputPath, cfg.DurationFrames)
		steps = append(steps, reporter.VerificationStep{
			Name:    "Frame count",
			Passed:  err == nil,
			Details: detailOrOK(err),
		})
	}

	if cfg.EnableHashCheck {
		err := concat.VerifyHashUniqueness(hashes, cfg.StartFrame, cfg.DurationFrames)
		steps = append(steps, reporter.VerificationStep{
			Name:    "Hash uniqueness",
			Passed:  err == nil,
			Details: detailOrOK(err),
		})
	}

	return steps
}

func detailOrOK(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
