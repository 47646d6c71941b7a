// Package capture implements the three Frame Capturer strategies: the
// strategy is selected once per run, and each Part's Page Driver gets its
// own Capturer instance of that strategy.
package capture

import (
	"context"
	"fmt"

	"github.com/framecast/framecast/internal/config"
)

// Capturer captures one frame's raw image bytes from a live page.
type Capturer interface {
	// CaptureFrame returns the encoded image bytes (JPEG or PNG,
	// depending on the Run Configuration) for the page's current state.
	CaptureFrame(ctx context.Context, pageCtx context.Context) ([]byte, error)

	// Close releases any capture-session resources the strategy holds.
	// Safe to call even if CaptureFrame was never called. No strategy
	// stops a running screencast here; it ends when the page is closed.
	Close()
}

// New selects and constructs the Capturer named by method.
func New(method config.CaptureMethod, format config.ImageFormat, jpegQuality int) (Capturer, error) {
	switch method {
	case config.CaptureScreencast:
		return newScreencastCapturer(format, jpegQuality), nil
	case config.CaptureExtension:
		return newExtensionCapturer(format, jpegQuality), nil
	case config.CaptureScreenshot:
		return newScreenshotCapturer(format, jpegQuality), nil
	default:
		return nil, fmt.Errorf("capture: unknown method %q", method)
	}
}
