// Package driver implements the Page Driver: the component that owns one
// browser page per Part and walks it through the five-stage readiness
// ladder for every frame spec.md §4.4 describes.
package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/framecast/framecast/internal/browser"
	"github.com/framecast/framecast/internal/capture"
	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/framerr"
)

// pollInterval is how often the readiness ladder re-checks a predicate
// between frame-render calls.
const pollInterval = 5 * time.Millisecond

// initRecord is the JSON payload passed to window.__framecastInit, per
// spec.md §4.4 step 5: everything the scene runtime needs to reach the
// Media Service and match the Encoder Sink's expected per-frame format.
type initRecord struct {
	RenderID           int            `json:"renderId"`
	Secret             string         `json:"secret"`
	ServerPort         int            `json:"serverPort"`
	Width              int            `json:"width"`
	Height             int            `json:"height"`
	FPS                int            `json:"fps"`
	DurationFrames     int            `json:"durationFrames"`
	VideoComponentType string         `json:"videoComponentType,omitempty"`
	DevMode            bool           `json:"devMode,omitempty"`
	ImageFormat        string         `json:"imageFormat"`
	JPEGQuality        int            `json:"jpegQuality,omitempty"`
	UserData           map[string]any `json:"userData,omitempty"`
}

// Driver owns one Page for the duration of one Part.
type Driver struct {
	page     *browser.Page
	capturer capture.Capturer
	cfg      *config.Config
	secret   string
	partIdx  int
}

// New sets up a Page Driver for one Part: creates the page, navigates to
// the scene entry point, verifies the init contract exists, and calls it.
func New(ctx context.Context, br *browser.Browser, cap capture.Capturer, cfg *config.Config, secret string, partIdx, partStart int) (*Driver, error) {
	page, err := br.NewPage(cfg.Width, cfg.Height)
	if err != nil {
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, err)
	}

	if err := page.Navigate("file://" + cfg.SceneEntryPath); err != nil {
		page.Close()
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, err)
	}

	setupCtx, cancel := boundedContext(ctx, page.Ctx, cfg.FrameRenderTimeout)
	defer cancel()

	var hasInit bool
	if err := chromedp.Run(setupCtx, chromedp.Evaluate(jsHasInit, &hasInit)); err != nil {
		page.Close()
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, err)
	}
	if !hasInit {
		page.Close()
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, fmt.Errorf("scene entry point does not expose window.__framecastInit"))
	}

	rec := initRecord{
		RenderID:           partStart,
		Secret:             secret,
		ServerPort:         cfg.ServerPort,
		Width:              cfg.Width,
		Height:             cfg.Height,
		FPS:                cfg.FPS,
		DurationFrames:     cfg.DurationFrames,
		VideoComponentType: cfg.VideoComponentType,
		DevMode:            cfg.DevMode,
		ImageFormat:        string(cfg.ImageFormat),
		JPEGQuality:        cfg.JPEGQuality,
		UserData:           cfg.UserData,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		page.Close()
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, err)
	}

	var initResult any
	expr := fmt.Sprintf(jsInitCall, string(payload))
	if err := chromedp.Run(setupCtx, chromedp.Evaluate(expr, &initResult)); err != nil {
		page.Close()
		return nil, framerr.NewPart(framerr.KindPageLoad, partIdx, err)
	}

	return &Driver{page: page, capturer: cap, cfg: cfg, secret: secret, partIdx: partIdx}, nil
}

// Close releases the page and capturer.
func (d *Driver) Close() {
	d.capturer.Close()
	d.page.Close()
}

// RenderFrame drives the full per-frame readiness ladder for frameIndex
// and returns the captured frame bytes. The whole sequence, including
// every individual CDP call it makes, is bounded by frameRenderTimeout —
// a single hung Evaluate is exactly the failure mode the timeout exists
// to catch, per spec.md §9. failOnPageErrors controls whether a
// scene-reported runtime error aborts the Part.
func (d *Driver) RenderFrame(ctx context.Context, frameIndex int) ([]byte, error) {
	runCtx, cancel := boundedContext(ctx, d.page.Ctx, d.cfg.FrameRenderTimeout)
	defer cancel()

	if err := d.callRenderFrame(runCtx, frameIndex); err != nil {
		return nil, framerr.NewPart(framerr.KindPageError, d.partIdx, err)
	}

	if err := d.pollUntilTrue(runCtx, jsFontsReadyPoll); err != nil {
		return nil, framerr.NewPart(framerr.KindTimeout, d.partIdx, fmt.Errorf("fonts never became ready: %w", err))
	}

	markerExpr := fmt.Sprintf(jsFrameMarkerPoll, frameIndex)
	if err := d.pollUntilTrue(runCtx, markerExpr); err != nil {
		return nil, framerr.NewPart(framerr.KindTimeout, d.partIdx, fmt.Errorf("frame marker for frame %d never appeared: %w", frameIndex, err))
	}

	if err := d.pollUntilTrue(runCtx, jsSettledPoll); err != nil {
		return nil, framerr.NewPart(framerr.KindTimeout, d.partIdx, fmt.Errorf("scene never settled: %w", err))
	}

	if d.cfg.SettleDelay > 0 {
		select {
		case <-time.After(d.cfg.SettleDelay):
		case <-runCtx.Done():
			return nil, framerr.NewPart(framerr.KindTimeout, d.partIdx, runCtx.Err())
		}
	}

	frame, err := d.capturer.CaptureFrame(runCtx, d.page.Ctx)
	if err != nil {
		return nil, framerr.NewPart(framerr.KindTimeout, d.partIdx, fmt.Errorf("capture failed: %w", err))
	}
	return frame, nil
}

// boundedContext derives a context from pageCtx — preserving chromedp's
// target-scoped values, which a plain context.WithTimeout(parent, ...)
// would not carry — that also cancels when parent does, so a single CDP
// call can be hung up by either the per-frame timeout or an Orchestrator
// abort.
func boundedContext(parent, pageCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(pageCtx, timeout)
	stop := context.AfterFunc(parent, cancel)
	return runCtx, func() { stop(); cancel() }
}

func (d *Driver) callRenderFrame(ctx context.Context, frameIndex int) error {
	expr := fmt.Sprintf(jsRenderFrameCall, frameIndex)
	var result any
	err := chromedp.Run(ctx, chromedp.Evaluate(expr, &result))
	if err != nil && d.cfg.FailOnPageErrors {
		return err
	}
	return nil
}

func (d *Driver) pollUntilTrue(ctx context.Context, expr string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var ready bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ready)); err != nil {
			return err
		}
		if ready {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
