package nozzle

import "io"

// Source is the incoming byte stream. Available must not block.
type Source interface {
	Available() bool
	ReadByte() (byte, error)
}

// RingSize is the capacity of a Ring, matching a small UART receive buffer.
const RingSize = 64

// Ring is a fixed-size byte queue. Bytes pushed while it is full are dropped
// and counted, as a UART would lose them.
type Ring struct {
	buf        [RingSize]byte
	head, size int
	dropped    uint64
}

// Push queues p, dropping whatever does not fit. It returns the number of
// bytes queued.
func (r *Ring) Push(p []byte) int {
	n := 0
	for _, b := range p {
		if r.size == RingSize {
			r.dropped++
			continue
		}
		r.buf[(r.head+r.size)%RingSize] = b
		r.size++
		n++
	}
	return n
}

// Write implements io.Writer over Push. It never fails.
func (r *Ring) Write(p []byte) (int, error) {
	r.Push(p)
	return len(p), nil
}

// Available implements Source.
func (r *Ring) Available() bool {
	return r.size > 0
}

// ReadByte implements Source. It returns io.EOF when the ring is empty.
func (r *Ring) ReadByte() (byte, error) {
	if r.size == 0 {
		return 0, io.EOF
	}
	b := r.buf[r.head]
	r.head = (r.head + 1) % RingSize
	r.size--
	return b, nil
}

// Len returns the number of queued bytes.
func (r *Ring) Len() int {
	return r.size
}

// Dropped returns the number of bytes lost to overflow.
func (r *Ring) Dropped() uint64 {
	return r.dropped
}
