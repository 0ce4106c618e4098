package nozzle

import "periph.io/x/conn/v3/gpio"

// Sink drives the cartridge lines.
type Sink interface {
	// Address puts nozzle n (0-11) on the address lines.
	Address(n int) error
	// Pulse sets the firing line.
	Pulse(l gpio.Level) error
	// Release de-asserts the address lines.
	Release() error
}
