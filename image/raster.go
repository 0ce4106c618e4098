package image

import (
	"fmt"
	"image"
	"time"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// Sweep paints the whole canvas without tracking: the head is assumed to walk
// each 12-row band left to right, one dot per frame. every paces the frames
// so the cartridge renders each column before the next one arrives. A blank
// frame is always sent last.
func Sweep(c *Canvas, t Target, every time.Duration) (err error) {
	bounds := c.Bounds()
	defer func() {
		if cerr := t.Fire(protocol.Buffer{}); err == nil {
			err = cerr
		}
	}()

	for y := bounds.Min.Y; y < bounds.Max.Y; y += protocol.Nozzles {
		logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("sweep --->>> band: %d, height: %d, remaining: %d", y, bounds.Dy(), c.Remaining()))

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if err := t.Fire(c.Brush(image.Pt(x, y), 1)); err != nil {
				return fmt.Errorf("image: sweep at %d,%d: %w", x, y, err)
			}
			if every > 0 {
				time.Sleep(every)
			}
		}
	}
	return nil
}

// Converter fits images to a canvas and sweeps them to a Target.
type Converter struct {
	Opts

	// Delay between frames
	Every time.Duration
}

// Print sweeps img to t.
func (c *Converter) Print(img image.Image, t Target) error {
	canvas, err := NewCanvas(img, &c.Opts)
	if err != nil {
		return err
	}
	return Sweep(canvas, t, c.Every)
}
