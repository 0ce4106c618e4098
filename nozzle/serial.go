package nozzle

import (
	"fmt"

	"go.bug.st/serial"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
)

// SerialSource reads the command stream from a serial port without blocking.
// Each poll moves whatever the driver has into a Ring.
type SerialSource struct {
	port serial.Port
	ring Ring
	buf  [RingSize]byte
	err  error
}

// OpenSerialSource opens portName at baudRate, 8N1.
func OpenSerialSource(portName string, baudRate int) (*SerialSource, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	logInternal.Debugf("available ports: %v", ports)

	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	src, err := NewSerialSource(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	logInternal.Stdlog.Printf("Порт %s открыт, %d бод", portName, baudRate)
	return src, nil
}

// NewSerialSource wraps an already open port. The port's read timeout is set
// to zero so a poll returns at once when nothing has arrived.
func NewSerialSource(port serial.Port) (*SerialSource, error) {
	if err := port.SetReadTimeout(0); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return &SerialSource{port: port}, nil
}

// Available implements Source. When the ring is empty it polls the port once.
// A read error is kept and reported by the next ReadByte.
func (s *SerialSource) Available() bool {
	if s.ring.Available() || s.err != nil {
		return true
	}
	n, err := s.port.Read(s.buf[:])
	if n > 0 {
		s.ring.Push(s.buf[:n])
	}
	if err != nil {
		s.err = err
		return true
	}
	return s.ring.Available()
}

// ReadByte implements Source.
func (s *SerialSource) ReadByte() (byte, error) {
	if s.ring.Available() {
		return s.ring.ReadByte()
	}
	if err := s.err; err != nil {
		s.err = nil
		return 0, fmt.Errorf("serial read: %w", err)
	}
	return s.ring.ReadByte()
}

// Dropped returns bytes lost because the ring was full.
func (s *SerialSource) Dropped() uint64 {
	return s.ring.Dropped()
}

// Close closes the port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
