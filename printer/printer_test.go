package printer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	imgInternal "github.com/AlexStarov/inkshield-GoLang-lib/image"
	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

func TestMain(m *testing.M) {
	logInternal.Dir = ""
	os.Exit(m.Run())
}

// stubConn accepts at most limit bytes per Write and records Close.
type stubConn struct {
	bytes.Buffer
	limit  int
	err    error
	closed bool
}

func (c *stubConn) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.limit > 0 && len(b) > c.limit {
		b = b[:c.limit]
	}
	return c.Buffer.Write(b)
}

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

func TestFireEncodesFrame(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf)
	if err != nil {
		t.Fatal(err)
	}

	levels := protocol.Buffer{4, 0, 1, 2, 3, 4, 0, 0, 0, 0, 2, 2}
	if err := p.Fire(levels); err != nil {
		t.Fatal(err)
	}

	want := []byte{0xC0 | 4<<3, 1<<3 | 2, 3<<3 | 4, 0, 0, 2<<3 | 2}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("frame = % x, want % x", buf.Bytes(), want)
	}
	if p.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", p.Frames())
	}
	if p.Last() != protocol.Encode(levels) {
		t.Errorf("Last = % x", p.Last())
	}
}

func TestClearSendsBlank(t *testing.T) {
	var buf bytes.Buffer
	p, _ := NewPrinter(&buf)

	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), protocol.Blank.Bytes()) {
		t.Errorf("init = % x, want blank frame", buf.Bytes())
	}
}

func TestFireRetriesShortWrites(t *testing.T) {
	conn := &stubConn{limit: 4}
	p, _ := NewPrinter(conn)

	if err := p.Fire(protocol.Buffer{1}); err != nil {
		t.Fatal(err)
	}
	if got := conn.Len(); got != protocol.FrameLen {
		t.Errorf("sent %d bytes, want %d", got, protocol.FrameLen)
	}
}

func TestFireZeroWrite(t *testing.T) {
	p, _ := NewPrinter(zeroConn{})

	err := p.Fire(protocol.Buffer{})
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("err = %v, want io.ErrShortWrite", err)
	}
	if p.Frames() != 0 {
		t.Error("failed frame should not be counted")
	}
}

type zeroConn struct{}

func (zeroConn) Write([]byte) (int, error) { return 0, nil }
func (zeroConn) Close() error              { return nil }

func TestFireTransportError(t *testing.T) {
	boom := errors.New("cable pulled")
	p, _ := NewPrinter(&stubConn{err: boom})

	if err := p.Fire(protocol.Buffer{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestCloseConnection(t *testing.T) {
	conn := &stubConn{}
	p, _ := NewPrinter(conn)
	_ = p.Fire(protocol.Buffer{4, 4})

	if err := p.CloseConnection(); err != nil {
		t.Fatal(err)
	}
	if !conn.closed {
		t.Error("transport not closed")
	}
	if tail := conn.Bytes()[conn.Len()-protocol.FrameLen:]; !bytes.Equal(tail, protocol.Blank.Bytes()) {
		t.Errorf("last frame = % x, want blank", tail)
	}
	if err := p.Fire(protocol.Buffer{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Fire after close = %v, want ErrClosed", err)
	}
	if _, err := p.Write([]byte{0}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after close = %v, want ErrClosed", err)
	}
	if err := p.CloseConnection(); err != nil {
		t.Errorf("second close = %v, want nil", err)
	}
}

func TestNewPrinterNil(t *testing.T) {
	if _, err := NewPrinter(nil); err == nil {
		t.Error("nil writer should fail")
	}
}

func TestPrintImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.White)

	path := filepath.Join(t.TempDir(), "dot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var buf bytes.Buffer
	p, _ := NewPrinter(&buf)
	conv := &imgInternal.Converter{Opts: imgInternal.Opts{WidthIn: 3, HeightIn: 12, DPI: 1}}

	if err := p.PrintImage(path, conv); err != nil {
		t.Fatal(err)
	}
	// 3 columns and the closing blank frame
	if p.Frames() != 4 {
		t.Fatalf("Frames = %d, want 4", p.Frames())
	}
	first := protocol.Encode(protocol.Buffer{4, 4})
	if !bytes.Equal(buf.Bytes()[:protocol.FrameLen], first.Bytes()) {
		t.Errorf("first frame = % x, want % x", buf.Bytes()[:protocol.FrameLen], first.Bytes())
	}
	second := protocol.Encode(protocol.Buffer{4, 0})
	if !bytes.Equal(buf.Bytes()[protocol.FrameLen:2*protocol.FrameLen], second.Bytes()) {
		t.Errorf("second frame = % x, want % x", buf.Bytes()[protocol.FrameLen:2*protocol.FrameLen], second.Bytes())
	}
}

func TestPrintImageMissingFile(t *testing.T) {
	p, _ := NewPrinter(&bytes.Buffer{})
	conv := &imgInternal.Converter{Opts: imgInternal.Opts{WidthIn: 1, HeightIn: 1}}
	if err := p.PrintImage(filepath.Join(t.TempDir(), "none.png"), conv); err == nil {
		t.Error("missing file should fail")
	}
}

func TestRawTransportDeadlineError(t *testing.T) {
	boom := errors.New("deadline not supported")
	conn := &stubConn{}
	p, _ := NewPrinter(conn)
	p.t = &RawTransport{conn: conn, deadline: func(time.Time) error { return boom }}

	if err := p.Fire(protocol.Buffer{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if conn.Len() != 0 {
		t.Errorf("%d bytes written after a failed deadline", conn.Len())
	}
}

func TestNewPrinterSetsDeadlineOnNetConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	go io.Copy(io.Discard, server)

	p, err := NewPrinter(client)
	if err != nil {
		t.Fatal(err)
	}
	if rt, ok := p.t.(*RawTransport); !ok || rt.deadline == nil {
		t.Fatal("net.Conn should get a write deadline")
	}
	if err := p.Fire(protocol.Buffer{1}); err != nil {
		t.Fatal(err)
	}
	if err := p.CloseConnection(); err != nil {
		t.Fatal(err)
	}
}
