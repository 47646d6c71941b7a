// Package framecast provides a Go library for rendering a video, frame by
// frame, from a browser-driven scene: a headless Chromium instance renders
// each frame on cue, and a pool of subprocess encoders assembles the result.
//
// Basic usage:
//
//	r, err := framecast.New("scene/index.html", "out.mkv",
//	    framecast.WithFrameRange(0, 300, 30),
//	    framecast.WithConcurrency(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := framecast.Render(ctx, r, framecast.NewTerminalReporter())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Rendered: %s (%d frames in %s)\n",
//	    result.OutputPath, result.FramesTotal, result.TotalTime)
package framecast

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/orchestrator"
	"github.com/framecast/framecast/internal/reporter"
	"github.com/framecast/framecast/internal/util"
)

// Option configures a Run.
type Option = config.Option

var (
	WithFrameRange        = config.WithFrameRange
	WithViewport          = config.WithViewport
	WithConcurrency       = config.WithConcurrency
	WithCaptureMethod     = config.WithCaptureMethod
	WithExtension         = config.WithExtension
	WithImageFormat       = config.WithImageFormat
	WithFrameRenderTimeout = config.WithFrameRenderTimeout
	WithSettleDelay       = config.WithSettleDelay
	WithRawOutput         = config.WithRawOutput
	WithFailOnPageErrors  = config.WithFailOnPageErrors
	WithVerification      = config.WithVerification
	WithUserData          = config.WithUserData
	WithVerbose           = config.WithVerbose
	WithSceneRuntime      = config.WithSceneRuntime
)

// Capture methods and image formats, re-exported for callers building a Run.
const (
	CaptureScreencast = config.CaptureScreencast
	CaptureExtension  = config.CaptureExtension
	CaptureScreenshot = config.CaptureScreenshot

	ImageJPEG = config.ImageJPEG
	ImagePNG  = config.ImagePNG
)

// Run is one configured, not-yet-started render.
type Run struct {
	config *config.Config
}

// Result is a completed render's outcome.
type Result struct {
	OutputPath  string
	OutputBytes int64
	FramesTotal int
	TotalTime   string
}

// New builds a Run for the given scene entry point and output path, with
// framecast's defaults applied before opts. An empty outputPath derives
// one from sceneEntryPath using the default-output-extension rule
// (spec.md §6), once opts have settled the frame range, image format and
// raw-output choice it depends on.
func New(sceneEntryPath, outputPath string, opts ...Option) (*Run, error) {
	cfg := config.NewConfig(sceneEntryPath, outputPath, "")
	cfg.Apply(opts...)
	if cfg.OutputPath == "" {
		ext := filepath.Ext(sceneEntryPath)
		base := sceneEntryPath[:len(sceneEntryPath)-len(ext)]
		cfg.OutputPath = cfg.DefaultOutputPath(base)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Run{config: cfg}, nil
}

// WithTempDir overrides the scratch directory a Run uses for Part
// Artifacts and the concat descriptor.
func WithTempDir(dir string) Option {
	return func(c *config.Config) {
		// config.Config has no dedicated option for this since it's set
		// directly at construction in NewConfig; applied here as a plain
		// field assignment so it still composes with the other options.
		c.TempDir = dir
	}
}

// Render runs a Run to completion using rep for progress reporting. A nil
// rep discards all events.
func Render(ctx context.Context, r *Run, rep Reporter) (*Result, error) {
	out, err := orchestrator.Run(ctx, r.config, rep)
	if err != nil {
		return nil, err
	}
	return &Result{
		OutputPath:  out.OutputPath,
		OutputBytes: out.OutputBytes,
		FramesTotal: out.FramesTotal,
		TotalTime:   util.FormatDuration(out.TotalTime),
	}, nil
}

// RenderWithEvents runs a Run to completion, delivering events to handler
// instead of a Reporter. Use this when embedding framecast behind another
// process's own event stream, mirroring the EventHandler bridge this
// library's CLI does not need but a host application does. Hardware,
// RunStarted and Verbose reports are not delivered, and stage-change
// events carry only their type and timestamp, not the stage name.
func RenderWithEvents(ctx context.Context, r *Run, handler EventHandler) (*Result, error) {
	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler)
	}
	out, err := orchestrator.Run(ctx, r.config, rep)
	if err != nil {
		return nil, err
	}
	return &Result{
		OutputPath:  out.OutputPath,
		OutputBytes: out.OutputBytes,
		FramesTotal: out.FramesTotal,
		TotalTime:   util.FormatDuration(out.TotalTime),
	}, nil
}

// String renders a human-readable one-line summary of the Result.
func (r *Result) String() string {
	return fmt.Sprintf("%s (%d frames, %s, %d bytes)", r.OutputPath, r.FramesTotal, r.TotalTime, r.OutputBytes)
}
