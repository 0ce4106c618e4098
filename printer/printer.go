package printer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// ErrClosed is returned by a Printer after CloseConnection.
var ErrClosed = errors.New("printer: connection closed")

// Printer sends nozzle frames to an InkShield head.
type Printer struct {
	t Transport

	frames uint64
	last   protocol.Frame
	closed bool

	sync.Mutex
}

// NewPrinter creates a new printer using the specified writer.
func NewPrinter(w io.Writer) (*Printer, error) {
	if w == nil {
		return nil, errors.New("printer: nil writer")
	}

	var transport Transport
	switch c := w.(type) {
	case net.Conn:
		// сетевое соединение, например ser2net перед головкой
		transport = &RawTransport{conn: c, deadline: c.SetWriteDeadline}
	case io.WriteCloser:
		transport = &RawTransport{conn: c}
	default:
		// любой io.Writer (например, bytes.Buffer) оборачиваем в nopCloser
		transport = &RawTransport{conn: nopCloser{w}}
	}

	return &Printer{t: transport}, nil
}

// Write writes buf to the head unchanged.
func (p *Printer) Write(buf []byte) (int, error) {
	p.Lock()
	defer p.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	return p.t.Write(buf)
}

// Init turns every nozzle off. The blank frame also realigns a head that
// joined the stream mid-frame.
func (p *Printer) Init() error {
	return p.Clear()
}

// Fire sends one frame carrying levels.
func (p *Printer) Fire(levels protocol.Buffer) error {
	f := protocol.Encode(levels)

	p.Lock()
	defer p.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := writeAll(p.t, f.Bytes()); err != nil {
		return fmt.Errorf("printer: frame %d: %w", p.frames, err)
	}
	p.frames++
	p.last = f
	return nil
}

// Clear sends a blank frame.
func (p *Printer) Clear() error {
	return p.Fire(protocol.Buffer{})
}

// Frames returns the number of frames sent.
func (p *Printer) Frames() uint64 {
	p.Lock()
	defer p.Unlock()
	return p.frames
}

// Last returns the most recent frame sent.
func (p *Printer) Last() protocol.Frame {
	p.Lock()
	defer p.Unlock()
	return p.last
}

// CloseConnection turns the nozzles off and closes the transport.
func (p *Printer) CloseConnection() error {
	clearErr := p.Clear()
	if errors.Is(clearErr, ErrClosed) {
		return nil
	}

	p.Lock()
	defer p.Unlock()
	p.closed = true
	logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("printer closed after %d frames", p.frames))
	return errors.Join(clearErr, p.t.Close())
}

// writeAll keeps writing until b is sent. A head has no flow control, so a
// short write would leave the stream misaligned until the next marker.
func writeAll(t Transport, b []byte) error {
	sent := 0
	for sent < len(b) {
		n, err := t.Write(b[sent:])
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		sent += n
	}
	return nil
}
