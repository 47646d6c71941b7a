// Package reporter defines the Reporter interface the Orchestrator
// drives as a render progresses, plus its terminal, log-file, composite
// and null implementations.
package reporter

import "time"

// HardwareSummary is printed once at startup.
type HardwareSummary struct {
	Hostname    string
	CPUCores    int
	AvailableMB uint64
}

// RunSummary describes the Run Configuration for the initial banner.
type RunSummary struct {
	SceneEntryPath string
	OutputFile     string
	Resolution     string
	DurationFrames int
	FPS            int
	CaptureMethod  string
}

// StageProgress reports a named lifecycle-stage transition (Bundling,
// BrowserLaunching, Rendering, Concatenating, Verifying, ...).
type StageProgress struct {
	Stage   string
	Message string
}

// PartProgress is the per-part render progress snapshot the Orchestrator
// aggregates and reports on every ceil(fps)th frame.
type PartProgress struct {
	PartsTotal     int
	FramesTotal    int
	FramesComplete int
	FPS            float64
	ETA            time.Duration
}

// VerificationStep names one check performed by the Concatenator &
// Verifier and whether it passed.
type VerificationStep struct {
	Name    string
	Passed  bool
	Details string
}

// VerificationSummary is reported once verification finishes.
type VerificationSummary struct {
	Passed bool
	Steps  []VerificationStep
}

// RenderOutcome is reported once the whole run finishes successfully.
type RenderOutcome struct {
	OutputPath   string
	OutputBytes  int64
	FramesTotal  int
	TotalTime    time.Duration
	AverageFPS   float64
}

// ReporterError carries a human-facing description of a fatal error.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// Reporter receives every user-facing event the Orchestrator produces
// over the course of a run. Implementations must be safe for concurrent
// use, since progress updates arrive from multiple Part Workers.
type Reporter interface {
	Hardware(HardwareSummary)
	RunStarted(RunSummary)
	StageChange(StageProgress)
	RenderStarted(totalFrames int)
	RenderProgress(PartProgress)
	VerificationComplete(VerificationSummary)
	RenderComplete(RenderOutcome)
	Warning(message string)
	Error(ReporterError)
	Verbose(message string)
}
