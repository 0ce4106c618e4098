// Package protocol implements the nozzle command stream.
//
// A frame is six bytes carrying twelve 3-bit intensities:
//
//	byte:  [S S H H H L L L]
//	S S    frame-start marker, both set on the first byte only
//	H H H  level of nozzle 2*slot
//	L L L  level of nozzle 2*slot+1
//
// There is no length, checksum or acknowledgment. A receiver that joins
// mid-stream, or loses a byte, realigns on the next marker.
package protocol

import (
	"github.com/AlexStarov/inkshield-GoLang-lib/grayscale"
	"github.com/AlexStarov/inkshield-GoLang-lib/util"
)

const (
	// Nozzles is the number of nozzles addressed by one frame.
	Nozzles = 12
	// FrameLen is the number of bytes in a frame.
	FrameLen = Nozzles / 2
	// Marker is the bit pattern that starts a frame.
	Marker byte = 0xC0
)

// Buffer holds one level per nozzle, indexed by nozzle address.
type Buffer [Nozzles]grayscale.Level

// Frame is one encoded command.
type Frame [FrameLen]byte

// Blank is the frame that turns every nozzle off.
var Blank = Encode(Buffer{})

// IsMarker reports whether b starts a frame.
func IsMarker(b byte) bool {
	return b&Marker == Marker
}

// Encode packs levels into a frame. Levels above grayscale.MaxLevel are
// clamped before packing.
func Encode(levels Buffer) Frame {
	var f Frame
	for i := range f {
		hi := grayscale.Clamp(uint8(levels[2*i]))
		lo := grayscale.Clamp(uint8(levels[2*i+1]))
		f[i] = util.Pack3(uint8(hi), uint8(lo))
	}
	f[0] |= Marker
	return f
}

// Bytes returns the frame as a slice for writing to a transport.
func (f Frame) Bytes() []byte {
	return f[:]
}
