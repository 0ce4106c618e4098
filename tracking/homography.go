// Package tracking maps camera coordinates of the brush head onto the canvas
// and drives a hand-held paint session from them.
package tracking

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotCalibrated is returned by Calculate with fewer than 4 point pairs.
	ErrNotCalibrated = errors.New("tracking: need 4 points to calculate transform")

	// ErrDegenerate is returned by Calculate when the points do not span a plane.
	ErrDegenerate = errors.New("tracking: calibration points are degenerate")
)

// Corners is the number of point pairs a Perspective needs.
const Corners = 4

// Point is a position in camera or canvas coordinates.
type Point struct {
	X, Y float64
}

// Homography is a 3x3 projective transform in row-major order.
type Homography [9]float64

// Identity leaves points unchanged.
var Identity = Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Apply maps a camera point to the canvas. A point on the horizon comes back
// with infinite or NaN coordinates.
func (h Homography) Apply(p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// Calibration collects matching canvas and camera points and turns them into
// a Homography.
type Calibration interface {
	// NextPoint returns the canvas point to move the head to next. ok is
	// false once enough points are known.
	NextPoint() (pt Point, ok bool)

	// AddPoint records where the camera saw the head while it sat on canvas.
	// It reports whether more points are needed.
	AddPoint(canvas, camera Point) bool

	// Calculate solves for the camera to canvas transform.
	Calculate() (Homography, error)

	// Reset forgets all recorded points.
	Reset()
}

// pairs holds recorded point pairs.
type pairs struct {
	canvas []Point
	camera []Point
}

func (p *pairs) add(canvas, camera Point) {
	p.canvas = append(p.canvas, canvas)
	p.camera = append(p.camera, camera)
}

func (p *pairs) Reset() {
	p.canvas, p.camera = p.canvas[:0], p.camera[:0]
}

// Calculate fits the transform from camera to canvas coordinates with the
// bottom-right coefficient fixed at 1. Four pairs give an exact solution,
// more are fitted in the least squares sense.
func (p *pairs) Calculate() (Homography, error) {
	n := len(p.canvas)
	if n < Corners {
		return Homography{}, ErrNotCalibrated
	}

	// two rows per pair:
	// x' = (h0 x + h1 y + h2) / (h6 x + h7 y + 1)
	// y' = (h3 x + h4 y + h5) / (h6 x + h7 y + 1)
	a := mat.NewDense(2*n, 8, nil)
	b := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		c, d := p.camera[i], p.canvas[i]
		a.SetRow(2*i, []float64{c.X, c.Y, 1, 0, 0, 0, -c.X * d.X, -c.Y * d.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, c.X, c.Y, 1, -c.X * d.Y, -c.Y * d.Y})
		b.SetVec(2*i, d.X)
		b.SetVec(2*i+1, d.Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return Homography{}, fmt.Errorf("%w (condition number %g)", ErrDegenerate, float64(cond))
		}
		return Homography{}, err
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = x.AtVec(i)
	}
	h[8] = 1
	return h, nil
}

// Perspective calibrates from the four canvas corners.
type Perspective struct {
	pairs
	size Point
}

// NewPerspective calibrates a canvas of w x h dots.
func NewPerspective(w, h float64) *Perspective {
	return &Perspective{size: Point{w, h}}
}

// NextPoint returns top-left, top-right, bottom-left then bottom-right.
func (p *Perspective) NextPoint() (pt Point, ok bool) {
	switch len(p.canvas) {
	case 0:
		return Point{0, 0}, true
	case 1:
		return Point{p.size.X, 0}, true
	case 2:
		return Point{0, p.size.Y}, true
	case 3:
		return p.size, true
	}
	return Point{}, false
}

// AddPoint records a corner. Points past the fourth are ignored.
func (p *Perspective) AddPoint(canvas, camera Point) bool {
	if len(p.canvas) < Corners {
		p.add(canvas, camera)
	}
	return len(p.canvas) != Corners
}

// LeastSquares calibrates from any number of random canvas points, at least
// four. More points average out where the camera saw the head.
type LeastSquares struct {
	pairs
	size   Point
	points int
	rng    *rand.Rand
}

// NewLeastSquares asks for points random positions on a canvas of w x h dots.
// points below Corners is raised to Corners. A nil rng uses a time seed.
func NewLeastSquares(w, h float64, points int, rng *rand.Rand) *LeastSquares {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LeastSquares{size: Point{w, h}, points: max(points, Corners), rng: rng}
}

// NextPoint returns a random whole-dot position on the canvas, edges
// included.
func (l *LeastSquares) NextPoint() (pt Point, ok bool) {
	if len(l.canvas) >= l.points {
		return Point{}, false
	}
	return Point{
		X: float64(l.rng.Intn(int(l.size.X) + 1)),
		Y: float64(l.rng.Intn(int(l.size.Y) + 1)),
	}, true
}

// AddPoint records a pair. Pairs past the requested count are kept too.
func (l *LeastSquares) AddPoint(canvas, camera Point) bool {
	l.add(canvas, camera)
	return len(l.canvas) < l.points
}
