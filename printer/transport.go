package printer

import (
	"fmt"
	"io"
	"net"
	"time"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
)

// writeTimeout bounds a single network write.
const writeTimeout = 2 * time.Second

type Transport interface {
	Write([]byte) (int, error)
	Close() error
}

// -------------------- RAW --------------------

// RawTransport passes frames straight through to conn.
type RawTransport struct {
	conn     io.WriteCloser
	deadline func(time.Time) error
}

func (r *RawTransport) Write(b []byte) (int, error) {
	if r.deadline != nil {
		if err := r.deadline(time.Now().Add(writeTimeout)); err != nil {
			return 0, fmt.Errorf("set write deadline: %w", err)
		}
	}
	return r.conn.Write(b)
}

func (r *RawTransport) Close() error { return r.conn.Close() }

// -------------------- TCP --------------------

// NewTCPPrinter connects to a head exposed over TCP, for example a serial
// port shared with ser2net.
func NewTCPPrinter(addr string) (*Printer, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	logInternal.Stdlog.Printf("Соединение с %s установлено", addr)

	printer, err := NewPrinter(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := printer.Init(); err != nil {
		conn.Close()
		return nil, err
	}
	return printer, nil
}

// -------------------- helpers --------------------

type nopCloser struct {
	io.Writer
}

func (n nopCloser) Close() error { return nil }
