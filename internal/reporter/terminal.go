package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/framecast/framecast/internal/util"
	"github.com/schollz/progressbar/v3"
)

// labelWidth is the global width for all labels to keep output aligned.
const labelWidth = 16

// TerminalReporter outputs human-friendly colored text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	verbose    bool
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	dim        *color.Color
}

// NewTerminalReporter creates a terminal reporter with verbose mode disabled.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterVerbose(false)
}

// NewTerminalReporterVerbose creates a terminal reporter with configurable verbose mode.
func NewTerminalReporterVerbose(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
}

func (r *TerminalReporter) printLabel(label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", labelWidth, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel("Hostname:", summary.Hostname)
	r.printLabel("CPU cores:", fmt.Sprintf("%d", summary.CPUCores))
	r.printLabel("Available mem:", util.FormatBytesReadable(int64(summary.AvailableMB)*1024*1024))
}

func (r *TerminalReporter) RunStarted(summary RunSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("RENDER")
	r.printLabel("Scene:", summary.SceneEntryPath)
	r.printLabel("Output:", summary.OutputFile)
	r.printLabel("Resolution:", summary.Resolution)
	r.printLabel("Frames:", fmt.Sprintf("%d @ %dfps", summary.DurationFrames, summary.FPS))
	r.printLabel("Capture:", summary.CaptureMethod)
}

func (r *TerminalReporter) StageChange(update StageProgress) {
	fmt.Println()
	_, _ = r.cyan.Println(update.Stage)
	if update.Message != "" {
		fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
	}
}

func (r *TerminalReporter) RenderStarted(totalFrames int) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Rendering [",
			BarEnd:        "]",
		}),
	)
	_ = totalFrames
}

func (r *TerminalReporter) RenderProgress(p PartProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	var pct float64
	if p.FramesTotal > 0 {
		pct = float64(p.FramesComplete) / float64(p.FramesTotal) * 100
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	if pct >= r.maxPercent {
		r.maxPercent = pct
		_ = r.progress.Set64(int64(pct))
	}

	desc := fmt.Sprintf("frames %d/%d, %d parts, fps %.1f, eta %s",
		p.FramesComplete, p.FramesTotal, p.PartsTotal, p.FPS,
		util.FormatDurationFromSecs(p.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) VerificationComplete(summary VerificationSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("VERIFICATION")

	if summary.Passed {
		r.printLabel("Status:", fmt.Sprintf("%s %s", r.green.Sprint("✓"), r.green.Add(color.Bold).Sprint("All checks passed")))
	} else {
		r.printLabel("Status:", fmt.Sprintf("%s %s", r.red.Sprint("✗"), r.red.Sprint("Verification failed")))
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		r.printLabel(step.Name+":", fmt.Sprintf("%s %s", status, step.Details))
	}
}

func (r *TerminalReporter) RenderComplete(summary RenderOutcome) {
	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	r.printLabel("Output:", summary.OutputPath)
	r.printLabel("Size:", util.FormatBytesReadable(summary.OutputBytes))
	r.printLabel("Frames:", fmt.Sprintf("%d", summary.FramesTotal))
	r.printLabel("Time:", fmt.Sprintf("%s (avg %.1f fps)",
		util.FormatDurationFromSecs(summary.TotalTime.Seconds()), summary.AverageFPS))
	r.printLabel("Saved to:", r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s %s\n", r.dim.Sprint("›"), r.dim.Sprint(message))
}
