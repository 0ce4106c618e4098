// Package nozzle renders nozzle levels into firing pulses.
//
// A Head runs the whole device in one cooperative loop. Each Tick drains the
// bytes that have already arrived into a protocol.Decoder, then renders one
// step from the decoder's levels:
//
//	src := &nozzle.Ring{}
//	head, _ := nozzle.NewHead(src, sink, nil)
//	for {
//		head.Tick()
//	}
//
// Rendering never waits for data. Levels persist until the next frame
// overwrites them, so a stalled host keeps the last picture firing.
package nozzle

import (
	"context"
	"errors"
	"fmt"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// StatsEvery is the number of steps between two debug stats lines in Run.
const StatsEvery = 8192

// errorLogEvery is the number of failed steps per logged error in Run.
const errorLogEvery = 1000

// Opts configures a Head.
type Opts struct {
	// Atomic publishes frames only when complete. See protocol.Opts.
	Atomic bool
	// Waiter replaces the busy-wait clock, mainly for tests.
	Waiter Waiter
}

// Head ties a byte source, a decoder and a renderer together.
type Head struct {
	src Source
	dec *protocol.Decoder
	r   *Renderer

	readErrs, fireErrs uint64
	failedTicks        uint64
}

// NewHead returns a head reading src and firing through sink. opts can be nil.
func NewHead(src Source, sink Sink, opts *Opts) (*Head, error) {
	if src == nil {
		return nil, errors.New("nozzle: source is required")
	}
	if sink == nil {
		return nil, errors.New("nozzle: sink is required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	return &Head{
		src: src,
		dec: protocol.NewDecoder(&protocol.Opts{Atomic: opts.Atomic}),
		r:   NewRenderer(sink, opts.Waiter),
	}, nil
}

// Drain feeds every byte the source already holds to the decoder and returns
// how many were consumed.
func (h *Head) Drain() (int, error) {
	n := 0
	for h.src.Available() {
		b, err := h.src.ReadByte()
		if err != nil {
			h.readErrs++
			return n, err
		}
		h.dec.Feed(b)
		n++
	}
	return n, nil
}

// Tick drains the source and renders exactly one step. The step is rendered
// even when the source fails.
func (h *Head) Tick() (uint16, error) {
	_, readErr := h.Drain()
	mask, fireErr := h.r.Step(h.dec.Levels())
	if fireErr != nil {
		h.fireErrs++
	}
	if readErr != nil || fireErr != nil {
		h.failedTicks++
	}
	return mask, errors.Join(readErr, fireErr)
}

// Run ticks until ctx is done. Errors are logged and never stop the loop.
// ctx is checked between steps only; a step in progress always completes.
func (h *Head) Run(ctx context.Context) error {
	logInternal.LogMessage(logInternal.INFO, "head running")
	for {
		select {
		case <-ctx.Done():
			logInternal.LogMessage(logInternal.INFO, h.String())
			return ctx.Err()
		default:
		}

		if _, err := h.Tick(); err != nil {
			// только первая ошибка каждой тысячи, иначе лог забьётся
			if h.failedTicks%errorLogEvery == 1 {
				logInternal.Errlog.Printf("step %d: %v (%d failed steps)", h.r.StepCount(), err, h.failedTicks)
			}
		}
		if h.r.StepCount()%StatsEvery == 0 {
			logInternal.Debugf("%s", h)
		}
	}
}

// Levels returns the levels the next step will render.
func (h *Head) Levels() protocol.Buffer {
	return *h.dec.Levels()
}

// Decoder returns the head's decoder.
func (h *Head) Decoder() *protocol.Decoder {
	return h.dec
}

// Renderer returns the head's renderer.
func (h *Head) Renderer() *Renderer {
	return h.r
}

// String summarises the head's counters.
func (h *Head) String() string {
	s := h.dec.Stats()
	return fmt.Sprintf("nozzle.Head{steps: %d, pulses: %d, bytes: %d, frames: %d, overruns: %d, read errors: %d, fire errors: %d, failed steps: %d}",
		h.r.StepCount(), h.r.Pulses(), s.Bytes, s.Frames, s.Overruns, h.readErrs, h.fireErrs, h.failedTicks)
}
