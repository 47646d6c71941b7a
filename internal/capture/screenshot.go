package capture

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/framecast/framecast/internal/config"
)

// screenshotCapturer captures each frame with a single CDP
// Page.captureScreenshot call, the simplest and slowest strategy since
// it round-trips once per frame instead of streaming.
type screenshotCapturer struct {
	format  config.ImageFormat
	quality int
}

func newScreenshotCapturer(format config.ImageFormat, quality int) *screenshotCapturer {
	return &screenshotCapturer{format: format, quality: quality}
}

// CaptureFrame runs the CDP call on ctx rather than the page's own
// unbounded pageCtx, so a hung screenshot call is bounded by the Page
// Driver's per-frame timeout instead of hanging forever.
func (c *screenshotCapturer) CaptureFrame(ctx context.Context, pageCtx context.Context) ([]byte, error) {
	var buf []byte
	action := page.CaptureScreenshot().WithFormat(cdpFormat(c.format))
	if c.format == config.ImageJPEG {
		action = action.WithQuality(int64(c.quality))
	}
	if err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = action.Do(ctx)
		return err
	})); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *screenshotCapturer) Close() {}

func cdpFormat(f config.ImageFormat) page.CaptureScreenshotFormat {
	if f == config.ImagePNG {
		return page.CaptureScreenshotFormatPng
	}
	return page.CaptureScreenshotFormatJpeg
}
