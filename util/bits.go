package util

// Pack3 packs two 3-bit values into the low six bits of a byte, hi in bits
// [5:3] and lo in bits [2:0]. Bits above the third of each value are dropped.
func Pack3(hi, lo uint8) byte {
	return (hi&0x07)<<3 | lo&0x07
}

// Unpack3 is the inverse of Pack3. Bits 7:6 of b are ignored.
func Unpack3(b byte) (hi, lo uint8) {
	return (b >> 3) & 0x07, b & 0x07
}

// Bit reports whether bit n (mod 32) of v is set.
func Bit(v uint32, n uint32) bool {
	return v>>(n&31)&1 == 1
}
