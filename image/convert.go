// Package image turns pictures into nozzle levels.
//
// A Canvas holds the picture as 8-bit luminance at the cartridge resolution.
// The brush reads a 12-dot column under the head, one row per nozzle, and
// whitens what it has read so nothing is painted twice.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"

	"github.com/AlexStarov/inkshield-GoLang-lib/grayscale"
	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// DefaultDPI is the dot pitch of the cartridge.
const DefaultDPI = 96

// Opts sizes a canvas.
type Opts struct {
	// Canvas size in inches
	WidthIn, HeightIn float64

	// Dots per inch, DefaultDPI when zero
	DPI int
}

// Canvas is the picture still to be painted.
type Canvas struct {
	gray *image.Gray
}

// NewCanvas shrinks src to fit the canvas described by opts, keeping its
// aspect ratio, and places it in the top-left corner of a white canvas.
func NewCanvas(src image.Image, opts *Opts) (*Canvas, error) {
	if src == nil {
		return nil, errors.New("image: nil source")
	}
	if opts == nil {
		return nil, errors.New("image: canvas size is required")
	}
	dpi := opts.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	w, h := int(opts.WidthIn*float64(dpi)), int(opts.HeightIn*float64(dpi))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image: canvas %.2fx%.2f in is empty", opts.WidthIn, opts.HeightIn)
	}

	fitted := fit(src, w, h)
	sz := fitted.Bounds().Size()
	logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("canvas %dx%d dots, image %dx%d", w, h, sz.X, sz.Y))

	c := &Canvas{gray: image.NewGray(image.Rect(0, 0, w, h))}
	draw.Draw(c.gray, c.gray.Rect, image.White, image.Point{}, draw.Src)
	origin := fitted.Bounds().Min
	for y := 0; y < sz.Y; y++ {
		for x := 0; x < sz.X; x++ {
			c.gray.SetGray(x, y, color.Gray{Y: lightness(fitted.At(origin.X+x, origin.Y+y))})
		}
	}
	return c, nil
}

// fit scales src down to fit in w x h. Smaller images are left as they are.
func fit(src image.Image, w, h int) image.Image {
	return resize.Thumbnail(uint(w), uint(h), src, resize.Lanczos3)
}

const lumR, lumG, lumB = 30, 59, 11

// lightness returns the luminance of c, 0 black to 255 white. Transparent
// pixels read as white paper.
func lightness(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 255
	}
	// blend onto white
	r += 0xffff - a
	g += 0xffff - a
	b += 0xffff - a
	return uint8((lumR*r + lumG*g + lumB*b) / (lumR + lumG + lumB) >> 8)
}

// Bounds returns the canvas size in dots.
func (c *Canvas) Bounds() image.Rectangle {
	return c.gray.Rect
}

// Gray returns the canvas pixels. Painted areas are white.
func (c *Canvas) Gray() *image.Gray {
	return c.gray
}

// Brush returns the levels for the head at p moving dx dots since the last
// sample, and whitens the area it covered. Nozzle i reads row p.Y+i averaged
// over max(1, |dx|) dots from p.X. The head only paints moving right: a
// negative dx returns all zeros and leaves the canvas untouched.
func (c *Canvas) Brush(p image.Point, dx int) protocol.Buffer {
	var levels protocol.Buffer
	if dx < 0 {
		return levels
	}
	width := max(1, dx)

	area := image.Rect(p.X, p.Y, p.X+width, p.Y+protocol.Nozzles).Intersect(c.gray.Rect)
	if area.Empty() {
		return levels
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		levels[y-p.Y] = grayscale.FromGray(c.average(image.Rect(area.Min.X, y, area.Max.X, y+1)))
	}
	draw.Draw(c.gray, area, image.White, image.Point{}, draw.Src)
	return levels
}

// average returns the mean luminance over r, which must lie in the canvas.
func (c *Canvas) average(r image.Rectangle) uint8 {
	sum, n := 0, 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.gray.Pix[c.gray.PixOffset(r.Min.X, y):c.gray.PixOffset(r.Max.X, y)]
		for _, v := range row {
			sum += int(v)
		}
		n += len(row)
	}
	if n == 0 {
		return 255
	}
	return uint8(sum / n)
}

// Remaining returns the number of dots that are not yet white.
func (c *Canvas) Remaining() int {
	n := 0
	for _, v := range c.gray.Pix {
		if v != 255 {
			n++
		}
	}
	return n
}
