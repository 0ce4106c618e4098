package tracking

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	imgInternal "github.com/AlexStarov/inkshield-GoLang-lib/image"
	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
	"github.com/AlexStarov/inkshield-GoLang-lib/protocol"
)

// Rate is how many frames per second a Session sends.
const Rate = 30

// Interval is the time between two session ticks.
const Interval = time.Second / Rate

// Session paints a canvas with a hand-held head. Every tick it looks up the
// head position, brushes under it when painting, and sends one frame. Frames
// are sent even when nothing fires so the head keeps its nozzles off.
type Session struct {
	canvas *imgInternal.Canvas
	h      Homography
	src    PointSource
	t      imgInternal.Target
	clock  clockwork.Clock

	mu       sync.Mutex
	painting bool
	point    Point
	onCanvas bool
	dx       float64
}

// NewSession creates a stopped session. A nil clock means the real clock.
func NewSession(canvas *imgInternal.Canvas, h Homography, src PointSource, t imgInternal.Target, clock clockwork.Clock) (*Session, error) {
	if canvas == nil || src == nil || t == nil {
		return nil, errors.New("tracking: session needs a canvas, a point source and a target")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Session{canvas: canvas, h: h, src: src, t: t, clock: clock}, nil
}

// Toggle starts or stops painting and returns the new state.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.painting = !s.painting
	logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("Toggled paintbrush to %t", s.painting))
	return s.painting
}

// Painting reports whether the session is painting.
func (s *Session) Painting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.painting
}

// Position returns the head position on the canvas. ok is false while the
// head is out of sight or off the canvas.
func (s *Session) Position() (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.point, s.onCanvas
}

// locate moves the head to the latest camera point.
func (s *Session) locate() {
	c, ok := s.src.Latest()
	if !ok {
		s.onCanvas = false
		return
	}
	p := s.h.Apply(c)
	b := s.canvas.Bounds()
	if !(p.X >= float64(b.Min.X) && p.X < float64(b.Max.X) && p.Y >= float64(b.Min.Y) && p.Y < float64(b.Max.Y)) {
		s.onCanvas = false
		return
	}
	if s.onCanvas {
		s.dx = p.X - s.point.X
	} else {
		s.dx = 0
	}
	s.point, s.onCanvas = p, true
}

// Tick runs one cycle and returns the levels sent.
func (s *Session) Tick() (protocol.Buffer, error) {
	s.mu.Lock()
	s.locate()
	var levels protocol.Buffer
	if s.painting && s.onCanvas {
		at := image.Pt(int(s.point.X), int(s.point.Y))
		levels = s.canvas.Brush(at, int(math.Floor(s.dx)))
	}
	s.mu.Unlock()

	return levels, s.t.Fire(levels)
}

// Run ticks at Rate until ctx is done, then turns the nozzles off. A failed
// frame ends the session.
func (s *Session) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.t.Fire(protocol.Buffer{}); err != nil {
				logInternal.PrintIfErr("tracking: final blank frame", &err)
			}
			logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("session stopped, %d dots left", s.canvas.Remaining()))
			return ctx.Err()
		case <-ticker.Chan():
			if _, err := s.Tick(); err != nil {
				return fmt.Errorf("tracking: %w", err)
			}
		}
	}
}
