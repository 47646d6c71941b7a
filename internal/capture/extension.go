package capture

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/framecast/framecast/internal/config"
)

// extensionBridgeFunc is the global a pre-loaded capture extension must
// inject into every page, per the External Interfaces contract in
// spec.md §6. It returns a base64 data URL ("data:<mime>;base64,<data>")
// of the visible tab using
// chrome.tabs.captureVisibleTab, a privilege unavailable to page script
// and only reachable through an extension content script.
const extensionBridgeFunc = "window.__framecastCaptureTab"

// extensionCapturer delegates capture to a pre-loaded browser extension,
// the only strategy able to capture chrome-level compositing the page
// itself cannot see (e.g. video elements under compositor-only paths).
// Unusable under headless Chromium, which cannot load extensions —
// rejected at config.Validate() time rather than here.
type extensionCapturer struct {
	format  config.ImageFormat
	quality int
}

func newExtensionCapturer(format config.ImageFormat, quality int) *extensionCapturer {
	return &extensionCapturer{format: format, quality: quality}
}

// CaptureFrame runs the bridge call on ctx, not the page's own unbounded
// pageCtx, so a bridge call that never returns is bounded by the Page
// Driver's per-frame timeout instead of hanging forever.
func (c *extensionCapturer) CaptureFrame(ctx context.Context, pageCtx context.Context) ([]byte, error) {
	var dataURL string
	expr := fmt.Sprintf("%s(%q, %d)", extensionBridgeFunc, string(c.format), c.quality)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &dataURL)); err != nil {
		return nil, fmt.Errorf("capture: extension bridge call failed: %w", err)
	}
	idx := indexOfComma(dataURL)
	if idx < 0 {
		return nil, fmt.Errorf("capture: extension bridge returned no data URL")
	}
	return base64.StdEncoding.DecodeString(dataURL[idx+1:])
}

func (c *extensionCapturer) Close() {}

func indexOfComma(s string) int {
	for i, r := range s {
		if r == ',' {
			return i
		}
	}
	return -1
}
