// Package main provides the CLI entry point for framecast.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/logging"
	"github.com/framecast/framecast/internal/orchestrator"
	"github.com/framecast/framecast/internal/reporter"
)

const (
	appName    = "framecast"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "render":
		if err := runRender(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, appVersion)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - browser-driven frame-by-frame video renderer

Usage:
  %s <command> [options]

Commands:
  render    Render a scene to a video file
  version   Print version information
  help      Show this help message

Run '%s render --help' for render command options.
`, appName, appName, appName)
}

// renderArgs holds the parsed arguments for the render command.
type renderArgs struct {
	scenePath  string
	outputPath string
	logDir     string
	verbose    bool
	noLog      bool

	start      int
	duration   int
	fps        int
	width      int
	height     int
	workers    int
	captureStr string
	extension  string
	headless   bool

	imageFormatStr string
	jpegQuality    int
	rawOutput      bool

	failOnPageErrors bool
	verifyFrames     bool
	verifyHash       bool
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Render a scene to a video file.

Usage:
  %s render [options]

Required:
  -s, --scene <PATH>     Path to the scene's HTML entry point

Output:
  -o, --output <PATH>    Output video file path. Default: derived from the
                           scene's directory and the frame range/format, per
                           the default-output-extension rule

Frame Range:
  --start <N>            First frame index to render. Default: 0
  --duration <N>         Number of frames to render (required)
  --fps <N>              Frames per second of the output video. Default: %d

Viewport:
  --width <N>            Viewport width in pixels. Default: %d
  --height <N>           Viewport height in pixels. Default: %d

Parallelism:
  --workers <N>          Number of parallel Part Workers. Default: %d (auto)

Capture:
  --capture-method <M>   screencast, extension, or screenshot. Default: %s
  --extension <PATH>     Unpacked extension directory (requires --capture-method extension,
                           and headless must be disabled)
  --headless             Run Chromium headless. Default: true (disable for extension capture)

Still Image:
  --image-format <F>     jpeg or png. Default: %s
  --jpeg-quality <N>     JPEG quality 1-100. Default: %d
  --raw-output           Remux parts with -c copy instead of transcoding. Default: true

Verification:
  --fail-on-page-errors  Abort a Part when the scene reports a runtime error. Default: true
  --verify-frames        Check the output's frame count after rendering. Default: true
  --verify-hash          Check for adjacent duplicate frames after rendering. Default: true

Logging:
  -l, --log-dir <PATH>   Log directory (defaults to ~/.local/state/framecast/logs)
  -v, --verbose          Enable verbose output for troubleshooting
  --no-log               Disable log file creation
`, appName, config.DefaultFPS, config.DefaultWidth, config.DefaultHeight, config.AutoParallelConfig(),
			config.CaptureScreenshot, config.ImageJPEG, config.DefaultJPEGQuality)
	}

	var ra renderArgs
	ra.headless = true
	ra.rawOutput = true
	ra.failOnPageErrors = true
	ra.verifyFrames = true
	ra.verifyHash = true

	fs.StringVar(&ra.scenePath, "s", "", "Scene entry point")
	fs.StringVar(&ra.scenePath, "scene", "", "Scene entry point")
	fs.StringVar(&ra.outputPath, "o", "", "Output video file")
	fs.StringVar(&ra.outputPath, "output", "", "Output video file")

	fs.StringVar(&ra.logDir, "l", "", "Log directory")
	fs.StringVar(&ra.logDir, "log-dir", "", "Log directory")
	fs.BoolVar(&ra.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ra.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ra.noLog, "no-log", false, "Disable log file creation")

	fs.IntVar(&ra.start, "start", 0, "First frame index")
	fs.IntVar(&ra.duration, "duration", 0, "Number of frames to render")
	fs.IntVar(&ra.fps, "fps", config.DefaultFPS, "Output frames per second")
	fs.IntVar(&ra.width, "width", config.DefaultWidth, "Viewport width")
	fs.IntVar(&ra.height, "height", config.DefaultHeight, "Viewport height")
	fs.IntVar(&ra.workers, "workers", config.AutoParallelConfig(), "Number of Part Workers")

	fs.StringVar(&ra.captureStr, "capture-method", string(config.CaptureScreenshot), "Frame capture strategy")
	fs.StringVar(&ra.extension, "extension", "", "Unpacked extension directory")
	fs.BoolVar(&ra.headless, "headless", true, "Run Chromium headless")

	fs.StringVar(&ra.imageFormatStr, "image-format", string(config.ImageJPEG), "Still image format")
	fs.IntVar(&ra.jpegQuality, "jpeg-quality", config.DefaultJPEGQuality, "JPEG quality")
	fs.BoolVar(&ra.rawOutput, "raw-output", true, "Remux parts instead of transcoding")

	fs.BoolVar(&ra.failOnPageErrors, "fail-on-page-errors", true, "Abort a Part on a scene runtime error")
	fs.BoolVar(&ra.verifyFrames, "verify-frames", true, "Check output frame count")
	fs.BoolVar(&ra.verifyHash, "verify-hash", true, "Check for adjacent duplicate frames")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if ra.scenePath == "" {
		return fmt.Errorf("scene entry point is required (-s/--scene)")
	}
	if ra.duration < 1 {
		return fmt.Errorf("--duration is required and must be >= 1")
	}

	return executeRender(ra)
}

func executeRender(ra renderArgs) error {
	scenePath, err := filepath.Abs(ra.scenePath)
	if err != nil {
		return fmt.Errorf("invalid scene path: %w", err)
	}
	if _, err := os.Stat(scenePath); err != nil {
		return fmt.Errorf("scene entry point does not exist: %s", scenePath)
	}

	logDir := ra.logDir
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	logger, err := logging.Setup(logDir, ra.verbose, ra.noLog, os.Args)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	cfg := config.NewConfig(scenePath, "", "")
	cfg.Apply(
		config.WithFrameRange(ra.start, ra.duration, ra.fps),
		config.WithViewport(ra.width, ra.height),
		config.WithConcurrency(ra.workers),
		config.WithCaptureMethod(config.CaptureMethod(ra.captureStr)),
		config.WithImageFormat(config.ImageFormat(ra.imageFormatStr), ra.jpegQuality),
		config.WithRawOutput(ra.rawOutput),
		config.WithFailOnPageErrors(ra.failOnPageErrors),
		config.WithVerification(ra.verifyFrames, ra.verifyHash),
		config.WithVerbose(ra.verbose),
	)
	cfg.Headless = ra.headless
	if ra.extension != "" {
		extPath, err := filepath.Abs(ra.extension)
		if err != nil {
			return fmt.Errorf("invalid extension path: %w", err)
		}
		cfg.ExtensionPath = extPath
	}

	outputPath := ra.outputPath
	if outputPath == "" {
		ext := filepath.Ext(scenePath)
		base := scenePath[:len(scenePath)-len(ext)]
		outputPath = cfg.DefaultOutputPath(base)
	}
	outputPath, err = filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	cfg.OutputPath = outputPath

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logger != nil {
		logger.Info("Scene: %s", scenePath)
		logger.Info("Output: %s", outputPath)
		logger.Info("Frame range: start=%d duration=%d fps=%d", cfg.StartFrame, cfg.DurationFrames, cfg.FPS)
		logger.Info("Viewport: %dx%d", cfg.Width, cfg.Height)
		logger.Info("Capture method: %s, workers=%d", cfg.CaptureMethod, cfg.Concurrency)
	}

	termRep := reporter.NewTerminalReporterVerbose(ra.verbose)
	var rep reporter.Reporter = termRep
	if logger != nil {
		logRep := reporter.NewLogReporter(logger.Writer())
		rep = reporter.NewCompositeReporter(termRep, logRep)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	_, err = orchestrator.Run(ctx, cfg, rep)
	return err
}
