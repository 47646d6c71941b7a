package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/framecast/framecast/internal/config"
)

// screencastCapturer drives Page.startScreencast and pulls the most
// recent pushed frame on each CaptureFrame call. Grounded directly in
// vincent99-velocipi's runScreencastLoop: frames are acked immediately in
// a background goroutine so Chromium keeps pushing regardless of how
// quickly the caller consumes them.
type screencastCapturer struct {
	format  config.ImageFormat
	quality int

	mu      sync.Mutex
	started bool
	latest  []byte
	updated chan struct{}
}

func newScreencastCapturer(format config.ImageFormat, quality int) *screencastCapturer {
	return &screencastCapturer{
		format:  format,
		quality: quality,
		updated: make(chan struct{}, 1),
	}
}

func (c *screencastCapturer) ensureStarted(pageCtx context.Context) error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		return nil
	}

	chromedp.ListenTarget(pageCtx, func(ev any) {
		frame, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		go func() {
			_ = chromedp.Run(pageCtx, page.ScreencastFrameAck(frame.SessionID))
		}()

		buf, err := base64.StdEncoding.DecodeString(frame.Data)
		if err != nil {
			return
		}

		c.mu.Lock()
		c.latest = buf
		c.mu.Unlock()
		select {
		case c.updated <- struct{}{}:
		default:
		}
	})

	start := page.StartScreencast().WithFormat(cdpScreencastFormat(c.format))
	if c.format == config.ImageJPEG {
		start = start.WithQuality(int64(c.quality))
	}
	if err := chromedp.Run(pageCtx, start); err != nil {
		return fmt.Errorf("capture: failed to start screencast: %w", err)
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	return nil
}

// CaptureFrame blocks until the next screencast frame arrives after the
// call started, returning its bytes. The Page Driver has already driven
// the page to its settled state before calling this, so the next pushed
// frame reflects that state.
func (c *screencastCapturer) CaptureFrame(ctx context.Context, pageCtx context.Context) ([]byte, error) {
	if err := c.ensureStarted(pageCtx); err != nil {
		return nil, err
	}

	// Drain any stale pending notification so we wait for a frame pushed
	// after this call began, not one left over from the previous frame.
	select {
	case <-c.updated:
	default:
	}

	select {
	case <-c.updated:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, nil
}

func (c *screencastCapturer) Close() {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return
	}
	// Best effort; the page context may already be torn down by the time
	// Close is called on an aborted Part.
}

func cdpScreencastFormat(f config.ImageFormat) page.ScreencastFormat {
	if f == config.ImagePNG {
		return page.ScreencastFormatPng
	}
	return page.ScreencastFormatJpeg
}
