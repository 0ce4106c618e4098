package nozzle

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/AlexStarov/inkshield-GoLang-lib/grayscale"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// Renderer turns nozzle levels into pulses, one step at a time.
type Renderer struct {
	sink Sink
	wait Waiter

	step   uint32
	pulses uint64
}

// NewRenderer returns a renderer driving sink. A nil wait busy-waits on the
// real clock.
func NewRenderer(sink Sink, wait Waiter) *Renderer {
	if wait == nil {
		wait = NewSpinner(nil)
	}
	return &Renderer{sink: sink, wait: wait}
}

// Mask returns the nozzles that fire on the current step, nozzle i in bit i.
func (r *Renderer) Mask(levels *protocol.Buffer) uint16 {
	var mask uint16
	for i, l := range levels {
		if grayscale.Fires(l, r.step) {
			mask |= 1 << i
		}
	}
	return mask
}

// Fire pulses every nozzle in mask, lowest address first. On a sink error it
// stops, leaving the pulse line low, and returns the error.
func (r *Renderer) Fire(mask uint16) error {
	for n := 0; n < protocol.Nozzles; n++ {
		if mask&(1<<n) == 0 {
			continue
		}
		if err := r.fireOne(n); err != nil {
			return fmt.Errorf("nozzle: fire %d: %w", n, err)
		}
		r.pulses++
	}
	return nil
}

func (r *Renderer) fireOne(n int) error {
	if err := r.sink.Address(n); err != nil {
		return err
	}
	r.wait.Wait(AddressSettle)
	if err := r.sink.Pulse(gpio.High); err != nil {
		return errors.Join(err, r.sink.Pulse(gpio.Low), r.sink.Release())
	}
	r.wait.Wait(PulseWidth)
	return errors.Join(r.sink.Pulse(gpio.Low), r.sink.Release())
}

// Step renders one time-step: it fires the current mask, waits StepDelay and
// advances the step counter. The counter and the delay happen even when the
// sink fails.
func (r *Renderer) Step(levels *protocol.Buffer) (uint16, error) {
	mask := r.Mask(levels)
	err := r.Fire(mask)
	r.wait.Wait(StepDelay)
	r.step++
	return mask, err
}

// StepCount returns the step counter. Only its value mod grayscale.Period
// affects rendering.
func (r *Renderer) StepCount() uint32 {
	return r.step
}

// Pulses returns how many nozzle pulses have completed.
func (r *Renderer) Pulses() uint64 {
	return r.pulses
}
