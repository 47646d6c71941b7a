package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/framehash"
	"github.com/framecast/framecast/internal/framerr"
	"github.com/framecast/framecast/internal/partition"
)

// FrameDriver is the subset of the Page Driver a Part Worker depends on,
// narrowed to an interface so tests can substitute a fake that fails on
// a specific frame without a real browser.
type FrameDriver interface {
	RenderFrame(ctx context.Context, frameIndex int) ([]byte, error)
	Close()
}

// FrameSink is the subset of the Encoder Sink a Part Worker depends on.
type FrameSink interface {
	Write(frame []byte) error
	End() error
	Kill()
}

// PartWorker composes one Page Driver with one Encoder Sink to render and
// encode exactly one Part, per spec.md §4.5.
type PartWorker struct {
	part       partition.Part
	driver     FrameDriver
	sink       FrameSink
	hashes     *framehash.Map
	enableHash bool
	progressCb func(Progress)

	aborted atomic.Bool
}

// New builds a Part Worker for part, wired to drv and snk.
func New(part partition.Part, drv FrameDriver, snk FrameSink, hashes *framehash.Map, cfg *config.Config, progressCb func(Progress)) *PartWorker {
	return &PartWorker{
		part:       part,
		driver:     drv,
		sink:       snk,
		hashes:     hashes,
		enableHash: cfg.EnableHashCheck,
		progressCb: progressCb,
	}
}

// Abort requests the worker stop at the next between-frame checkpoint.
// Idempotent and safe to call concurrently with Run.
func (w *PartWorker) Abort() {
	w.aborted.Store(true)
}

// Run renders and encodes every frame in the Part in order, returning the
// first error encountered. On any error (including abort) the Encoder
// Sink is always killed before Run returns, so no subprocess outlives a
// failed Part.
func (w *PartWorker) Run(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			w.sink.Kill()
		} else {
			err = w.sink.End()
		}
		w.driver.Close()
	}()

	total := w.part.Frames()
	complete := 0
	var bytesWritten int64

	for frame := w.part.Start; frame < w.part.End; frame++ {
		if w.aborted.Load() {
			return framerr.NewPart(framerr.KindTimeout, w.part.Index, fmt.Errorf("aborted"))
		}
		if err := ctx.Err(); err != nil {
			return framerr.NewPart(framerr.KindTimeout, w.part.Index, err)
		}

		bytes, err := w.driver.RenderFrame(ctx, frame)
		if err != nil {
			return err
		}

		if w.enableHash {
			w.hashes.Insert(frame, framehash.Sum(bytes))
		}

		if err := w.sink.Write(bytes); err != nil {
			return framerr.NewPart(framerr.KindEncoder, w.part.Index, err)
		}

		complete++
		bytesWritten += int64(len(bytes))
		if w.progressCb != nil {
			w.progressCb(Progress{
				PartIndex:      w.part.Index,
				FramesTotal:    total,
				FramesComplete: complete,
				BytesWritten:   bytesWritten,
			})
		}
	}

	return nil
}
