// Package grayscale maps nozzle intensity levels to firing patterns.
//
// A pattern is a 32-bit word sampled one bit per render step. A nozzle whose
// pattern has k set bits fires on k of every 32 steps, which the eye reads as
// a k/32 gray.
package grayscale

import (
	"math/bits"

	"github.com/AlexStarov/inkshield-GoLang-lib/util"
)

// Level is a nozzle intensity, 0 (off) to MaxLevel (full saturation).
type Level uint8

const (
	// MaxLevel is the darkest defined level.
	MaxLevel Level = 4
	// Levels is the number of defined levels.
	Levels = int(MaxLevel) + 1
	// Period is the number of steps after which every pattern repeats.
	Period = 32
)

// table has a slot for every 3-bit wire value. Values above MaxLevel share
// the full pattern, so a lookup with any decoded value stays in bounds.
var table = [8]uint32{
	0x00000000, // 0: never fires
	0x11111111, // 1: 8/32
	0x55555555, // 2: 16/32
	0x77777777, // 3: 24/32
	0xFFFFFFFF, // 4: every step
	0xFFFFFFFF,
	0xFFFFFFFF,
	0xFFFFFFFF,
}

// Pattern returns the firing pattern for l.
func Pattern(l Level) uint32 {
	return table[Clamp(uint8(l))]
}

// Fires reports whether a nozzle at level l fires on the given step.
func Fires(l Level, step uint32) bool {
	return util.Bit(Pattern(l), step)
}

// Density returns how many of Period steps fire at level l.
func Density(l Level) int {
	return bits.OnesCount32(Pattern(l))
}

// Clamp converts a decoded value to a defined level. Anything above MaxLevel
// becomes MaxLevel.
func Clamp(v uint8) Level {
	if v > uint8(MaxLevel) {
		return MaxLevel
	}
	return Level(v)
}

// FromGray quantizes an 8-bit luminance (0 black, 255 white) to a level.
// Each level covers 48 gray values; everything darker than 63 is MaxLevel.
func FromGray(y uint8) Level {
	return Clamp(uint8(min(int(MaxLevel), (255-int(y))/48)))
}
