package image

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/AlexStarov/inkshield-GoLang-lib/grayscale"
	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

func TestMain(m *testing.M) {
	logInternal.Dir = ""
	os.Exit(m.Run())
}

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func grayCanvas(w, h int, y uint8) *Canvas {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = y
	}
	return &Canvas{gray: g}
}

func TestLightness(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"black", color.Black, 0},
		{"white", color.White, 255},
		{"transparent", color.Transparent, 255},
		{"gray", color.Gray{Y: 128}, 128},
		{"red", color.RGBA{R: 255, A: 255}, 76},
		{"green", color.RGBA{G: 255, A: 255}, 151},
		{"blue", color.RGBA{B: 255, A: 255}, 28},
	}
	for _, tt := range tests {
		if got := lightness(tt.c); got != tt.want {
			t.Errorf("%s: lightness = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNewCanvasSize(t *testing.T) {
	c, err := NewCanvas(uniform(10, 10, color.Black), &Opts{WidthIn: 1, HeightIn: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Bounds(); got != image.Rect(0, 0, 96, 48) {
		t.Fatalf("bounds = %v, want 96x48", got)
	}
	// a small image is placed top-left and not enlarged
	if c.Gray().GrayAt(9, 9).Y != 0 {
		t.Error("image pixel should be black")
	}
	if c.Gray().GrayAt(10, 10).Y != 255 {
		t.Error("canvas outside the image should be white")
	}
	if got := c.Remaining(); got != 100 {
		t.Errorf("Remaining = %d, want 100", got)
	}
}

func TestNewCanvasShrinksKeepingAspect(t *testing.T) {
	c, err := NewCanvas(uniform(400, 100, color.Black), &Opts{WidthIn: 2, HeightIn: 2, DPI: 50})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Bounds(); got != image.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds = %v, want 100x100", got)
	}
	if c.Gray().GrayAt(99, 0).Y > 10 {
		t.Errorf("right edge of the image = %d, want dark", c.Gray().GrayAt(99, 0).Y)
	}
	if c.Gray().GrayAt(50, 30).Y != 255 {
		t.Error("below the shrunk image should be white")
	}
}

func TestNewCanvasErrors(t *testing.T) {
	if _, err := NewCanvas(nil, &Opts{WidthIn: 1, HeightIn: 1}); err == nil {
		t.Error("nil image should fail")
	}
	if _, err := NewCanvas(uniform(1, 1, color.Black), nil); err == nil {
		t.Error("nil opts should fail")
	}
	if _, err := NewCanvas(uniform(1, 1, color.Black), &Opts{WidthIn: 0, HeightIn: 1}); err == nil {
		t.Error("empty canvas should fail")
	}
}

func TestBrushReadsAndClears(t *testing.T) {
	c := grayCanvas(20, 20, 0)
	levels := c.Brush(image.Pt(2, 3), 4)

	for i, l := range levels {
		if l != grayscale.MaxLevel {
			t.Errorf("nozzle %d = %d, want %d", i, l, grayscale.MaxLevel)
		}
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			inside := x >= 2 && x < 6 && y >= 3 && y < 15
			v := c.Gray().GrayAt(x, y).Y
			if inside && v != 255 {
				t.Fatalf("(%d,%d) = %d, want cleared", x, y, v)
			}
			if !inside && v != 0 {
				t.Fatalf("(%d,%d) = %d, want untouched", x, y, v)
			}
		}
	}

	if again := c.Brush(image.Pt(2, 3), 4); again != (protocol.Buffer{}) {
		t.Errorf("second pass = %v, want nothing", again)
	}
}

func TestBrushAveragesWindow(t *testing.T) {
	c := grayCanvas(4, 12, 255)
	// row 0: two black and two white dots average to 127, level 2
	c.Gray().SetGray(0, 0, color.Gray{})
	c.Gray().SetGray(1, 0, color.Gray{})

	levels := c.Brush(image.Pt(0, 0), 4)
	if levels[0] != 2 {
		t.Errorf("nozzle 0 = %d, want 2", levels[0])
	}
	for i := 1; i < protocol.Nozzles; i++ {
		if levels[i] != 0 {
			t.Errorf("nozzle %d = %d, want 0", i, levels[i])
		}
	}
}

func TestBrushMovingLeft(t *testing.T) {
	c := grayCanvas(10, 12, 0)
	if got := c.Brush(image.Pt(5, 0), -3); got != (protocol.Buffer{}) {
		t.Errorf("moving left = %v, want nothing", got)
	}
	if c.Remaining() != 120 {
		t.Error("moving left should not clear the canvas")
	}
}

func TestBrushZeroDx(t *testing.T) {
	c := grayCanvas(10, 12, 0)
	c.Brush(image.Pt(5, 0), 0)
	if got := c.Remaining(); got != 120-12 {
		t.Errorf("Remaining = %d, want one column cleared", got)
	}
}

func TestBrushClipsAtEdges(t *testing.T) {
	c := grayCanvas(10, 8, 0)
	levels := c.Brush(image.Pt(8, 2), 5)
	for i := 0; i < 6; i++ {
		if levels[i] != grayscale.MaxLevel {
			t.Errorf("nozzle %d = %d, want %d", i, levels[i], grayscale.MaxLevel)
		}
	}
	for i := 6; i < protocol.Nozzles; i++ {
		if levels[i] != 0 {
			t.Errorf("nozzle %d below the canvas = %d, want 0", i, levels[i])
		}
	}
	if got := c.Brush(image.Pt(40, 40), 1); got != (protocol.Buffer{}) {
		t.Errorf("outside the canvas = %v, want nothing", got)
	}
}
