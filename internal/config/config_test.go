package config

import "testing"

func baseConfig() *Config {
	c := NewConfig("/tmp/scene/index.html", "/tmp/out.mkv", "/tmp/work")
	c.DurationFrames = 10
	return c
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := baseConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsZeroDuration(t *testing.T) {
	c := baseConfig()
	c.DurationFrames = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for durationFrames=0")
	}
}

func TestValidateAcceptsSingleFrame(t *testing.T) {
	// durationFrames=1 is a documented boundary case, not a failure.
	c := baseConfig()
	c.DurationFrames = 1
	if err := c.Validate(); err != nil {
		t.Fatalf("durationFrames=1 must be accepted, got %v", err)
	}
}

func TestValidateRejectsZeroFrameRenderTimeout(t *testing.T) {
	c := baseConfig()
	c.FrameRenderTimeout = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for frameRenderTimeout=0")
	}
}

func TestValidateRejectsExtensionUnderHeadless(t *testing.T) {
	c := baseConfig()
	c.CaptureMethod = CaptureExtension
	c.ExtensionPath = "/tmp/ext"
	c.Headless = true
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for extension capture under headless")
	}
}

func TestValidateAcceptsExtensionWithoutHeadless(t *testing.T) {
	c := baseConfig()
	c.CaptureMethod = CaptureExtension
	c.ExtensionPath = "/tmp/ext"
	c.Headless = false
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadJPEGQuality(t *testing.T) {
	c := baseConfig()
	c.ImageFormat = ImageJPEG
	c.JPEGQuality = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for jpegQuality=0")
	}
}

func TestClampConcurrency(t *testing.T) {
	c := baseConfig()
	c.DurationFrames = 3
	c.Concurrency = 8
	c.ClampConcurrency()
	if c.Concurrency != 3 {
		t.Fatalf("expected concurrency clamped to 3, got %d", c.Concurrency)
	}
}

func TestClampConcurrencyNoOpWhenBelowDuration(t *testing.T) {
	c := baseConfig()
	c.DurationFrames = 10
	c.Concurrency = 1
	c.ClampConcurrency()
	if c.Concurrency != 1 {
		t.Fatalf("expected concurrency to stay 1, got %d", c.Concurrency)
	}
}

func TestDefaultOutputPathMultiFrameTranscoded(t *testing.T) {
	c := baseConfig()
	c.RawOutput = false
	if got := c.DefaultOutputPath("video"); got != "video.mp4" {
		t.Fatalf("expected video.mp4, got %s", got)
	}
}

func TestDefaultOutputPathMultiFrameRawJPEG(t *testing.T) {
	c := baseConfig()
	c.RawOutput = true
	c.ImageFormat = ImageJPEG
	if got := c.DefaultOutputPath("video"); got != "video.mov" {
		t.Fatalf("expected video.mov for raw mjpeg output, got %s", got)
	}
}

func TestDefaultOutputPathMultiFrameRawPNG(t *testing.T) {
	c := baseConfig()
	c.RawOutput = true
	c.ImageFormat = ImagePNG
	if got := c.DefaultOutputPath("video"); got != "video.mkv" {
		t.Fatalf("expected video.mkv for raw mpng output, got %s", got)
	}
}

// TestDefaultOutputPathSingleFrame covers the durationFrames=1 boundary
// case named in spec.md §8: a single-frame run is a photo and takes the
// still-image extension directly, independent of rawOutput.
func TestDefaultOutputPathSingleFrame(t *testing.T) {
	c := baseConfig()
	c.DurationFrames = 1
	c.ImageFormat = ImageJPEG
	if got := c.DefaultOutputPath("frame"); got != "frame.jpg" {
		t.Fatalf("expected frame.jpg, got %s", got)
	}
	c.ImageFormat = ImagePNG
	if got := c.DefaultOutputPath("frame"); got != "frame.png" {
		t.Fatalf("expected frame.png, got %s", got)
	}
}
