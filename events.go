// Package framecast provides a Go library for rendering a video, frame by
// frame, from a browser-driven scene.
package framecast

import (
	"time"

	"github.com/framecast/framecast/internal/reporter"
)

// Event types for host-process integration.
const (
	EventTypeHardware             = "hardware"
	EventTypeRunStarted           = "run_started"
	EventTypeStageChange          = "stage_change"
	EventTypeRenderStarted        = "render_started"
	EventTypeRenderProgress       = "render_progress"
	EventTypeVerificationComplete = "verification_complete"
	EventTypeRenderComplete       = "render_complete"
	EventTypeWarning              = "warning"
	EventTypeError                = "error"
)

// Event is the interface every framecast event satisfies.
type Event interface {
	Type() string
	Timestamp() int64
}

// BaseEvent contains the fields every Event shares.
type BaseEvent struct {
	EventType string `json:"type"`
	Time      int64  `json:"timestamp"`
}

func (e BaseEvent) Type() string     { return e.EventType }
func (e BaseEvent) Timestamp() int64 { return e.Time }

// RenderStartedEvent marks the first frame of rendering beginning.
type RenderStartedEvent struct {
	BaseEvent
	TotalFrames int `json:"total_frames"`
}

// RenderProgressEvent reports aggregate render progress.
type RenderProgressEvent struct {
	BaseEvent
	PartsTotal     int     `json:"parts_total"`
	FramesTotal    int     `json:"frames_total"`
	FramesComplete int     `json:"frames_complete"`
	FPS            float64 `json:"fps"`
	ETASeconds     int64   `json:"eta_seconds"`
}

// VerificationStepEvent is one check reported as part of a
// VerificationCompleteEvent.
type VerificationStepEvent struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details"`
}

// VerificationCompleteEvent represents the Concatenator & Verifier's
// finished check run.
type VerificationCompleteEvent struct {
	BaseEvent
	Passed bool                     `json:"passed"`
	Steps  []VerificationStepEvent  `json:"steps"`
}

// RenderCompleteEvent represents a successfully finished Run.
type RenderCompleteEvent struct {
	BaseEvent
	OutputPath  string  `json:"output_path"`
	OutputBytes int64   `json:"output_bytes"`
	FramesTotal int     `json:"frames_total"`
	TotalMillis int64   `json:"total_millis"`
	AverageFPS  float64 `json:"average_fps"`
}

// WarningEvent represents a non-fatal warning.
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// ErrorEvent represents a fatal error.
type ErrorEvent struct {
	BaseEvent
	Title      string `json:"title"`
	Message    string `json:"message"`
	Context    string `json:"context"`
	Suggestion string `json:"suggestion"`
}

// EventHandler receives events during a Run, an alternative surface to
// Reporter for host processes that already have their own event bus.
type EventHandler func(Event) error

// NewTimestamp returns the current Unix timestamp.
func NewTimestamp() int64 {
	return time.Now().Unix()
}

// eventReporter adapts an EventHandler to the Reporter interface.
type eventReporter struct {
	handler EventHandler
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler}
}

func (r *eventReporter) Hardware(reporter.HardwareSummary) {}
func (r *eventReporter) RunStarted(reporter.RunSummary)    {}

func (r *eventReporter) StageChange(reporter.StageProgress) {
	_ = r.handler(BaseEvent{EventType: EventTypeStageChange, Time: NewTimestamp()})
}

func (r *eventReporter) RenderStarted(totalFrames int) {
	_ = r.handler(RenderStartedEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeRenderStarted, Time: NewTimestamp()},
		TotalFrames: totalFrames,
	})
}

func (r *eventReporter) RenderProgress(p reporter.PartProgress) {
	_ = r.handler(RenderProgressEvent{
		BaseEvent:      BaseEvent{EventType: EventTypeRenderProgress, Time: NewTimestamp()},
		PartsTotal:     p.PartsTotal,
		FramesTotal:    p.FramesTotal,
		FramesComplete: p.FramesComplete,
		FPS:            p.FPS,
		ETASeconds:     int64(p.ETA.Seconds()),
	})
}

func (r *eventReporter) VerificationComplete(s reporter.VerificationSummary) {
	steps := make([]VerificationStepEvent, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = VerificationStepEvent{Name: step.Name, Passed: step.Passed, Details: step.Details}
	}
	_ = r.handler(VerificationCompleteEvent{
		BaseEvent: BaseEvent{EventType: EventTypeVerificationComplete, Time: NewTimestamp()},
		Passed:    s.Passed,
		Steps:     steps,
	})
}

func (r *eventReporter) RenderComplete(s reporter.RenderOutcome) {
	_ = r.handler(RenderCompleteEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeRenderComplete, Time: NewTimestamp()},
		OutputPath:  s.OutputPath,
		OutputBytes: s.OutputBytes,
		FramesTotal: s.FramesTotal,
		TotalMillis: s.TotalTime.Milliseconds(),
		AverageFPS:  s.AverageFPS,
	})
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{
		BaseEvent: BaseEvent{EventType: EventTypeWarning, Time: NewTimestamp()},
		Message:   message,
	})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeError, Time: NewTimestamp()},
		Title:      e.Title,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

func (r *eventReporter) Verbose(string) {}
