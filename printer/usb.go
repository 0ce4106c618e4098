package printer

import (
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// USBOpts selects the bulk OUT endpoint frames are written to. Zero values
// pick config 1, interface 0, alternate 0, endpoint 1.
type USBOpts struct {
	Config    int
	Interface int
	Alternate int
	Endpoint  int
}

type usbConn struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint
}

// NewUSBPrinter opens the head by vendor and product ID. opts can be nil.
func NewUSBPrinter(vendorID, productID gousb.ID, opts *USBOpts) (*Printer, error) {
	o := USBOpts{Config: 1, Endpoint: 1}
	if opts != nil {
		o = *opts
		if o.Config == 0 {
			o.Config = 1
		}
		if o.Endpoint == 0 {
			o.Endpoint = 1
		}
	}

	ctx := gousb.NewContext()
	conn := &usbConn{ctx: ctx}

	dev, err := findUSBDevice(ctx, vendorID, productID)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.dev = dev

	dev.SetAutoDetach(true)
	if conn.cfg, err = dev.Config(o.Config); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb config %d: %w", o.Config, err)
	}
	if conn.intf, err = conn.cfg.Interface(o.Interface, o.Alternate); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb interface %d/%d: %w", o.Interface, o.Alternate, err)
	}
	if conn.out, err = conn.intf.OutEndpoint(o.Endpoint); err != nil {
		conn.Close()
		return nil, fmt.Errorf("usb endpoint %d: %w", o.Endpoint, err)
	}

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

func findUSBDevice(ctx *gousb.Context, vendorID, productID gousb.ID) (*gousb.Device, error) {
	dev, err := ctx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		if dev != nil {
			dev.Close()
		}
		return nil, fmt.Errorf("usb %s:%s: %w", vendorID, productID, err)
	}
	if dev == nil {
		return nil, fmt.Errorf("usb %s:%s: %w", vendorID, productID, errNoDevice)
	}
	return dev, nil
}

var errNoDevice = errors.New("device not found")

func (u *usbConn) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

func (u *usbConn) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	var err error
	if u.cfg != nil {
		err = u.cfg.Close()
	}
	if u.dev != nil {
		err = errors.Join(err, u.dev.Close())
	}
	if u.ctx != nil {
		err = errors.Join(err, u.ctx.Close())
	}
	return err
}
