package nozzle

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// AddressLines is the number of binary address lines needed for 12 nozzles.
const AddressLines = 4

// GPIOSink drives the cartridge through periph.io output pins: four address
// lines holding the nozzle number in binary (A0 least significant) and one
// pulse line.
type GPIOSink struct {
	addr  [AddressLines]gpio.PinOut
	pulse gpio.PinOut
}

// NewGPIOSink returns a sink over addr (A0 first) and pulse. All lines are
// driven low before it returns.
func NewGPIOSink(addr []gpio.PinOut, pulse gpio.PinOut) (*GPIOSink, error) {
	if len(addr) != AddressLines {
		return nil, fmt.Errorf("nozzle: need %d address pins, got %d", AddressLines, len(addr))
	}
	if pulse == nil {
		return nil, errors.New("nozzle: pulse pin is required")
	}
	s := &GPIOSink{pulse: pulse}
	for i, p := range addr {
		if p == nil {
			return nil, fmt.Errorf("nozzle: address pin A%d is nil", i)
		}
		s.addr[i] = p
	}
	if err := s.Halt(); err != nil {
		return nil, err
	}
	return s, nil
}

// Address implements Sink.
func (s *GPIOSink) Address(n int) error {
	if n < 0 || n >= protocol.Nozzles {
		return fmt.Errorf("nozzle: address %d out of range", n)
	}
	for i, p := range s.addr {
		if err := p.Out(gpio.Level(n>>i&1 == 1)); err != nil {
			return fmt.Errorf("nozzle: A%d: %w", i, err)
		}
	}
	return nil
}

// Pulse implements Sink.
func (s *GPIOSink) Pulse(l gpio.Level) error {
	if err := s.pulse.Out(l); err != nil {
		return fmt.Errorf("nozzle: pulse: %w", err)
	}
	return nil
}

// Release implements Sink.
func (s *GPIOSink) Release() error {
	for i, p := range s.addr {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("nozzle: A%d: %w", i, err)
		}
	}
	return nil
}

// Halt drives the pulse line and every address line low.
func (s *GPIOSink) Halt() error {
	return errors.Join(s.Pulse(gpio.Low), s.Release())
}

// String returns a description of the pins in use.
func (s *GPIOSink) String() string {
	return fmt.Sprintf("nozzle.GPIOSink{A0-3: %s %s %s %s, pulse: %s}",
		s.addr[0], s.addr[1], s.addr[2], s.addr[3], s.pulse)
}
