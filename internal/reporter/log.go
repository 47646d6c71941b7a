package reporter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// LogReporter writes plain timestamped lines to an io.Writer, typically
// the run's log file.
type LogReporter struct {
	w                  io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
}

// NewLogReporter returns a LogReporter writing to w.
func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{w: w, lastProgressBucket: -1}
}

func (r *LogReporter) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(r.w, "%s [%s] %s\n", timestamp, level, fmt.Sprintf(format, args...))
}

func (r *LogReporter) Hardware(summary HardwareSummary) {
	r.log("INFO", "hardware: host=%s cores=%d available_mb=%d", summary.Hostname, summary.CPUCores, summary.AvailableMB)
}

func (r *LogReporter) RunStarted(summary RunSummary) {
	r.log("INFO", "run started: scene=%s output=%s resolution=%s frames=%d fps=%d capture=%s",
		summary.SceneEntryPath, summary.OutputFile, summary.Resolution, summary.DurationFrames, summary.FPS, summary.CaptureMethod)
}

func (r *LogReporter) StageChange(update StageProgress) {
	r.log("INFO", "stage=%s %s", update.Stage, update.Message)
}

func (r *LogReporter) RenderStarted(totalFrames int) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.mu.Unlock()
	r.log("INFO", "render started: total_frames=%d", totalFrames)
}

func (r *LogReporter) RenderProgress(p PartProgress) {
	var pct int
	if p.FramesTotal > 0 {
		pct = int(float64(p.FramesComplete) / float64(p.FramesTotal) * 100)
	}
	bucket := pct / int(ProgressLogIntervalPercent)

	r.mu.Lock()
	last := r.lastProgressBucket
	if bucket != last {
		r.lastProgressBucket = bucket
	}
	r.mu.Unlock()

	if bucket == last {
		return
	}
	r.log("INFO", "progress: %d%% frames=%d/%d fps=%.1f eta=%s", pct, p.FramesComplete, p.FramesTotal, p.FPS, p.ETA)
}

func (r *LogReporter) VerificationComplete(summary VerificationSummary) {
	r.log("INFO", "verification passed=%t", summary.Passed)
	for _, step := range summary.Steps {
		r.log("INFO", "  %s: passed=%t %s", step.Name, step.Passed, step.Details)
	}
}

func (r *LogReporter) RenderComplete(summary RenderOutcome) {
	r.log("INFO", "render complete: output=%s bytes=%d frames=%d time=%s avg_fps=%.1f",
		summary.OutputPath, summary.OutputBytes, summary.FramesTotal, summary.TotalTime, summary.AverageFPS)
}

func (r *LogReporter) Warning(message string) {
	r.log("WARN", "%s", message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log("ERROR", "%s: %s (context=%s suggestion=%s)", err.Title, err.Message, err.Context, err.Suggestion)
}

func (r *LogReporter) Verbose(message string) {
	r.log("DEBUG", "%s", message)
}

// ProgressLogIntervalPercent matches config.ProgressLogIntervalPercent;
// it is a separate plain-int copy, kept equal by hand.
const ProgressLogIntervalPercent = 5
