// Package browser launches and drives the headless Chromium instance a
// render run captures frames from.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Options configures how the Orchestrator launches Chromium.
type Options struct {
	Headless      bool
	ExtensionPath string // loaded as an unpacked extension when set
	Width         int
	Height        int
}

// Browser owns the top-level allocator context every Part's page is
// created from.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// Launch starts Chromium with the given options, grounded in the flag set
// used to drive chromedp from a long-running host process rather than a
// one-shot CLI invocation.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	flags := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	}
	if opts.Headless {
		flags = append(flags, chromedp.Headless)
	} else {
		flags = append(flags, chromedp.Flag("headless", false))
	}
	if opts.ExtensionPath != "" {
		flags = append(flags,
			chromedp.Flag("load-extension", opts.ExtensionPath),
			chromedp.Flag("disable-extensions-except", opts.ExtensionPath),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, flags...)

	// Force allocator startup now so Launch fails fast if Chromium can't
	// be found, rather than deferring the error to the first Part's page
	// creation.
	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(probeCtx); err != nil {
		probeCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: launch failed: %w", err)
	}
	probeCancel()

	return &Browser{allocCtx: allocCtx, cancel: allocCancel}, nil
}

// Close shuts down the browser process and every page created from it.
func (b *Browser) Close() {
	b.cancel()
}

// Page is a single Chromium target (tab), owned by one Part Worker for
// the lifetime of its Part.
type Page struct {
	Ctx    context.Context
	cancel context.CancelFunc
}

// NewPage creates a new target under the browser and forces its viewport
// to the configured dimensions with a device scale factor of 1, per
// spec.md's requirement that captured frames are never implicitly scaled.
func (b *Browser) NewPage(width, height int) (*Page, error) {
	pageCtx, cancel := chromedp.NewContext(b.allocCtx)
	if err := chromedp.Run(pageCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		page.SetLifecycleEventsEnabled(true),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: failed to create page: %w", err)
	}
	return &Page{Ctx: pageCtx, cancel: cancel}, nil
}

// Close releases the page's target.
func (p *Page) Close() {
	p.cancel()
}

// Navigate loads the scene entry point, blocking until the page's load
// event fires.
func (p *Page) Navigate(fileURL string) error {
	return chromedp.Run(p.Ctx, chromedp.Navigate(fileURL))
}

// WaitNetworkIdle blocks until Chromium's lifecycle events report
// "networkIdle" for the page, or ctx is cancelled first. Grounded in
// vincent99-velocipi's navigateTo pattern of listening for lifecycle
// events via chromedp.ListenTarget rather than polling.
func WaitNetworkIdle(ctx context.Context, pageCtx context.Context) error {
	idleCh := make(chan struct{}, 1)
	chromedp.ListenTarget(pageCtx, func(ev any) {
		if lifecycle, ok := ev.(*page.EventLifecycleEvent); ok && lifecycle.Name == "networkIdle" {
			select {
			case idleCh <- struct{}{}:
			default:
			}
		}
	})

	select {
	case <-idleCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
