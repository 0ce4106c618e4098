package protocol

import (
	"github.com/AlexStarov/inkshield-GoLang-lib/grayscale"
	"github.com/AlexStarov/inkshield-GoLang-lib/util"
)

// Opts configures a Decoder.
type Opts struct {
	// Atomic makes the decoder write into a staging buffer and publish it
	// only when the sixth byte of a frame arrives. Without it, Levels can
	// show a frame that is half old and half new.
	Atomic bool
}

// Stats counts what a Decoder has seen since it was created or Reset.
type Stats struct {
	Bytes    uint64 // bytes fed
	Markers  uint64 // frame-start markers
	Frames   uint64 // sixth slots written
	Overruns uint64 // payload bytes that followed a full frame without a marker
}

// Decoder rebuilds nozzle levels from a byte stream. It never fails: a
// marker byte realigns it, and a frame that runs past six bytes wraps back
// onto nozzles 0 and 1.
//
// A Decoder is not safe for concurrent use. It is meant to be fed and read
// from the same loop.
type Decoder struct {
	cursor  int
	wrapped bool
	atomic  bool

	live    Buffer
	staging Buffer

	stats Stats
}

// NewDecoder returns a decoder with every nozzle at level 0. opts can be nil.
func NewDecoder(opts *Opts) *Decoder {
	d := &Decoder{}
	if opts != nil {
		d.atomic = opts.Atomic
	}
	return d
}

// Feed consumes one byte.
func (d *Decoder) Feed(b byte) {
	d.stats.Bytes++
	if IsMarker(b) {
		d.cursor = 0
		d.stats.Markers++
	} else if d.wrapped {
		d.stats.Overruns++
	}
	d.wrapped = false

	dst := &d.live
	if d.atomic {
		dst = &d.staging
	}
	hi, lo := util.Unpack3(b)
	dst[2*d.cursor] = grayscale.Clamp(hi)
	dst[2*d.cursor+1] = grayscale.Clamp(lo)

	d.cursor++
	if d.cursor > FrameLen-1 {
		d.cursor = 0
		d.wrapped = true
		d.stats.Frames++
		if d.atomic {
			d.live = d.staging
		}
	}
}

// Write feeds every byte of p. It always consumes all of p.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.Feed(b)
	}
	return len(p), nil
}

// Levels returns the buffer the renderer should read. The pointer stays
// valid for the life of the decoder; callers must not modify it.
func (d *Decoder) Levels() *Buffer {
	return &d.live
}

// Cursor returns the slot the next payload byte will be written to.
func (d *Decoder) Cursor() int {
	return d.cursor
}

// Stats returns the counters accumulated so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Reset turns every nozzle off and realigns to slot 0.
func (d *Decoder) Reset() {
	*d = Decoder{atomic: d.atomic}
}
