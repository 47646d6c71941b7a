// This file re-exports the internal Reporter interface and associated
// types so callers can receive every render event directly, or build
// their own Reporter implementation without importing internal/reporter.
package framecast

import (
	"io"

	"github.com/framecast/framecast/internal/reporter"
)

// Reporter receives every user-facing event a Run produces.
type Reporter = reporter.Reporter

// NullReporter discards all events.
type NullReporter = reporter.NullReporter

// HardwareSummary is reported once at startup.
type HardwareSummary = reporter.HardwareSummary

// RunSummary describes the Run Configuration for the initial banner.
type RunSummary = reporter.RunSummary

// StageProgress reports a named lifecycle-stage transition.
type StageProgress = reporter.StageProgress

// PartProgress is the aggregate render-progress snapshot reported
// periodically while a Run is rendering.
type PartProgress = reporter.PartProgress

// VerificationStep names one check performed after rendering completes.
type VerificationStep = reporter.VerificationStep

// VerificationSummary is reported once verification finishes.
type VerificationSummary = reporter.VerificationSummary

// RenderOutcome is reported once a Run finishes successfully.
type RenderOutcome = reporter.RenderOutcome

// ReporterError carries a human-facing description of a fatal error.
type ReporterError = reporter.ReporterError

// NewTerminalReporter returns the default colored terminal Reporter.
func NewTerminalReporter() Reporter {
	return reporter.NewTerminalReporter()
}

// NewTerminalReporterVerbose returns a terminal Reporter with Verbose
// messages enabled.
func NewTerminalReporterVerbose(verbose bool) Reporter {
	return reporter.NewTerminalReporterVerbose(verbose)
}

// NewLogReporter returns a Reporter that writes timestamped lines, used
// to mirror terminal output into a run's log file.
func NewLogReporter(w io.Writer) Reporter {
	return reporter.NewLogReporter(w)
}

// NewCompositeReporter fans every event out to each of reps in order.
func NewCompositeReporter(reps ...Reporter) Reporter {
	return reporter.NewCompositeReporter(reps...)
}
