// Package config provides the Run Configuration type for framecast and
// the defaults and validation rules a render needs before it starts.
package config

import (
	"fmt"
	"time"
)

// CaptureMethod selects which Frame Capturer strategy a run uses. The
// method is selected once per run, never switched mid-flight.
type CaptureMethod string

const (
	CaptureScreencast CaptureMethod = "screencast"
	CaptureExtension  CaptureMethod = "extension"
	CaptureScreenshot CaptureMethod = "screenshot"
)

// ImageFormat selects the still-image codec each captured frame is
// encoded as before it reaches the Encoder Sink.
type ImageFormat string

const (
	ImageJPEG ImageFormat = "jpeg"
	ImagePNG  ImageFormat = "png"
)

// Default constants.
const (
	DefaultFrameRenderTimeout = 30 * time.Second
	DefaultSettleDelay        = 250 * time.Millisecond
	DefaultJPEGQuality        = 90
	DefaultWidth              = 1920
	DefaultHeight             = 1080
	DefaultFPS                = 30
	MinJPEGQuality            = 1
	MaxJPEGQuality            = 100

	// ProgressLogIntervalPercent is the completion-percentage step at
	// which the log reporter writes a progress line.
	ProgressLogIntervalPercent uint8 = 5
)

// AutoParallelConfig returns the default concurrency for a run before
// ClampConcurrency lowers it to the frame count. Framecast parts are full
// browser tabs rather than CPU-bound encoder workers, so the default sits
// much lower than a pure-CPU encoder pool would use.
func AutoParallelConfig() int {
	return 4
}

// Config is the Run Configuration: everything the Orchestrator needs to
// partition, render, encode and verify one video.
type Config struct {
	// Frame range
	StartFrame     int
	DurationFrames int
	FPS            int

	// Viewport
	Width  int
	Height int

	// Parallelism
	Concurrency int

	// Capture
	CaptureMethod CaptureMethod
	Headless      bool
	ExtensionPath string // required when CaptureMethod == CaptureExtension

	// Scene runtime wiring, forwarded into the init record (spec.md §4.4
	// step 5) but otherwise opaque to framecast — the Media Service and
	// scene bundler are external collaborators (spec.md §1, §6).
	ServerPort         int
	VideoComponentType string
	DevMode            bool

	// Per-frame still image
	ImageFormat ImageFormat
	JPEGQuality int

	// Readiness ladder timing
	FrameRenderTimeout time.Duration
	SettleDelay        time.Duration

	// Output handling
	RawOutput             bool // true: remux parts with -c copy; false: transcode on concat
	FailOnPageErrors      bool
	EnableFrameCountCheck bool
	EnableHashCheck       bool

	// Scene
	SceneEntryPath string
	UserData       map[string]any

	// Filesystem
	TempDir    string
	OutputPath string

	Verbose bool
}

// NewConfig creates a new Config with default values for the given scene
// entry point, output path and scratch directory.
func NewConfig(sceneEntryPath, outputPath, tempDir string) *Config {
	return &Config{
		StartFrame:            0,
		FPS:                   DefaultFPS,
		Width:                 DefaultWidth,
		Height:                DefaultHeight,
		Concurrency:           AutoParallelConfig(),
		CaptureMethod:         CaptureScreenshot,
		Headless:              true,
		ImageFormat:           ImageJPEG,
		JPEGQuality:           DefaultJPEGQuality,
		FrameRenderTimeout:    DefaultFrameRenderTimeout,
		SettleDelay:           DefaultSettleDelay,
		RawOutput:             true,
		FailOnPageErrors:      true,
		EnableFrameCountCheck: true,
		EnableHashCheck:       true,
		SceneEntryPath:        sceneEntryPath,
		OutputPath:            outputPath,
		TempDir:               tempDir,
	}
}

// Option mutates a Config at construction time.
type Option func(*Config)

func WithFrameRange(start, duration, fps int) Option {
	return func(c *Config) {
		c.StartFrame = start
		c.DurationFrames = duration
		c.FPS = fps
	}
}

func WithViewport(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

func WithConcurrency(n int) Option {
	return func(c *Config) { c.Concurrency = n }
}

func WithCaptureMethod(m CaptureMethod) Option {
	return func(c *Config) { c.CaptureMethod = m }
}

func WithExtension(path string) Option {
	return func(c *Config) {
		c.CaptureMethod = CaptureExtension
		c.ExtensionPath = path
	}
}

func WithImageFormat(f ImageFormat, jpegQuality int) Option {
	return func(c *Config) {
		c.ImageFormat = f
		c.JPEGQuality = jpegQuality
	}
}

func WithFrameRenderTimeout(d time.Duration) Option {
	return func(c *Config) { c.FrameRenderTimeout = d }
}

func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) { c.SettleDelay = d }
}

func WithRawOutput(raw bool) Option {
	return func(c *Config) { c.RawOutput = raw }
}

func WithFailOnPageErrors(fail bool) Option {
	return func(c *Config) { c.FailOnPageErrors = fail }
}

func WithVerification(frameCount, hash bool) Option {
	return func(c *Config) {
		c.EnableFrameCountCheck = frameCount
		c.EnableHashCheck = hash
	}
}

func WithUserData(data map[string]any) Option {
	return func(c *Config) { c.UserData = data }
}

// WithSceneRuntime sets the fields forwarded into the init record that
// tell the scene runtime how to reach the Media Service and which
// component to mount: port, component type and dev-mode flag.
func WithSceneRuntime(serverPort int, videoComponentType string, devMode bool) Option {
	return func(c *Config) {
		c.ServerPort = serverPort
		c.VideoComponentType = videoComponentType
		c.DevMode = devMode
	}
}

func WithVerbose(v bool) Option {
	return func(c *Config) { c.Verbose = v }
}

// Apply runs the given options against c in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks the Run Configuration for the failures spec.md
// classifies as Configuration errors, including the headless+extension
// incompatibility and the frameRenderTimeout=0 boundary case. A zero
// timeout is rejected here rather than handed to context.WithTimeout,
// since a zero-duration context is indistinguishable from one that has
// already expired.
func (c *Config) Validate() error {
	if c.DurationFrames < 1 {
		return fmt.Errorf("durationFrames must be >= 1, got %d", c.DurationFrames)
	}
	if c.StartFrame < 0 {
		return fmt.Errorf("startFrame must be >= 0, got %d", c.StartFrame)
	}
	if c.FPS < 1 {
		return fmt.Errorf("fps must be >= 1, got %d", c.FPS)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.FrameRenderTimeout <= 0 {
		return fmt.Errorf("frameRenderTimeout must be > 0, got %s", c.FrameRenderTimeout)
	}
	if c.ImageFormat == ImageJPEG && (c.JPEGQuality < MinJPEGQuality || c.JPEGQuality > MaxJPEGQuality) {
		return fmt.Errorf("jpegQuality must be in [%d,%d], got %d", MinJPEGQuality, MaxJPEGQuality, c.JPEGQuality)
	}
	if c.CaptureMethod == CaptureExtension {
		if c.Headless {
			return fmt.Errorf("capture method %q is incompatible with headless mode", CaptureExtension)
		}
		if c.ExtensionPath == "" {
			return fmt.Errorf("capture method %q requires an extension path", CaptureExtension)
		}
	}
	if c.SceneEntryPath == "" {
		return fmt.Errorf("sceneEntryPath is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("outputPath is required")
	}
	return nil
}

// ClampConcurrency lowers Concurrency to DurationFrames when there would
// otherwise be more workers than frames to hand them, so the Partitioner
// never produces an empty Part.
func (c *Config) ClampConcurrency() {
	if c.Concurrency > c.DurationFrames {
		c.Concurrency = c.DurationFrames
	}
}

// GetTempDir returns the scratch directory, defaulting to "framecast-tmp"
// relative to the working directory when not set explicitly.
func (c *Config) GetTempDir() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return "framecast-tmp"
}

// DefaultOutputPath derives an output file path from a base name when
// the caller didn't specify one, per spec.md §6's three-way rule: a
// single-frame run is a photo, not a video, so it takes the still-image
// extension directly; a multi-frame raw (remuxed) run takes a container
// that can hold its per-frame codec as-is (mjpeg frames remux losslessly
// into a QuickTime .mov, png frames into Matroska); a multi-frame
// transcoded run is always h264 in .mp4 regardless of capture format.
func (c *Config) DefaultOutputPath(base string) string {
	if c.DurationFrames == 1 {
		if c.ImageFormat == ImagePNG {
			return base + ".png"
		}
		return base + ".jpg"
	}
	if c.RawOutput {
		if c.ImageFormat == ImagePNG {
			return base + ".mkv"
		}
		return base + ".mov"
	}
	return base + ".mp4"
}
