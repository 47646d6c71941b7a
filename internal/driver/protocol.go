package driver

// The Scene Page contract: the small set of globals a scene's HTML entry
// point must expose for the Page Driver to drive it frame by frame. This
// mirrors spec.md §6's External Interfaces section.
const (
	jsHasInit          = `typeof window.__framecastInit === 'function'`
	jsInitCall         = `window.__framecastInit(%s)`
	jsRenderFrameCall  = `window.__framecastRenderFrame(%d)`
	jsFontsReadyPoll   = `(typeof window.__framecastFontsReady !== 'function') || window.__framecastFontsReady()`
	jsFrameMarkerPoll  = `document.querySelector('[data-framecast-frame="' + %d + '"]') !== null`
	jsSettledPoll      = `(typeof window.__framecastSettled !== 'function') || window.__framecastSettled()`
)

// frameMarkerAttribute is the DOM attribute the scene page must set on
// some element once a frame's content has actually been painted.
const frameMarkerAttribute = "data-framecast-frame"
