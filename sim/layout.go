package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyLayout is returned when a layout has no targets.
var ErrEmptyLayout = errors.New("layout has no targets")

// Point is a 2-D observation or location in screen coordinates.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Target is one fixed location of the layout.
// Scanning targets are traced with a waveform rather than fixated.
type Target struct {
	Index    int
	Name     string
	Pos      Point
	Scanning bool
}

// Layout is an immutable, index-ordered table of targets.
// Target indices are exactly {0, ..., Len()-1}.
type Layout struct {
	targets []Target
}

// NewLayout validates and builds a Layout. Targets may be given in any order;
// the resulting layout is ordered by index.
func NewLayout(targets []Target) (*Layout, error) {
	if len(targets) == 0 {
		return nil, ErrEmptyLayout
	}
	ordered := make([]Target, len(targets))
	seen := make([]bool, len(targets))
	for i, t := range targets {
		if t.Index < 0 || t.Index >= len(targets) {
			return nil, fmt.Errorf("target[%d]: index %d out of range [0, %d)", i, t.Index, len(targets))
		}
		if seen[t.Index] {
			return nil, fmt.Errorf("target[%d]: duplicate index %d", i, t.Index)
		}
		if math.IsNaN(t.Pos.X) || math.IsNaN(t.Pos.Y) || math.IsInf(t.Pos.X, 0) || math.IsInf(t.Pos.Y, 0) {
			return nil, fmt.Errorf("target[%d]: position must be finite, got %v", i, t.Pos)
		}
		seen[t.Index] = true
		ordered[t.Index] = t
	}
	return &Layout{targets: ordered}, nil
}

// ReferenceLayout returns the standard 4x3 twelve-lead ECG print layout.
// Leads II, V5 and V6 are the rhythm strips that get a full horizontal scan.
func ReferenceLayout() *Layout {
	l, err := NewLayout([]Target{
		{Index: 0, Name: "I", Pos: Point{100, 400}},
		{Index: 1, Name: "II", Pos: Point{100, 250}, Scanning: true},
		{Index: 2, Name: "III", Pos: Point{100, 100}},
		{Index: 3, Name: "aVR", Pos: Point{350, 400}},
		{Index: 4, Name: "aVL", Pos: Point{350, 250}},
		{Index: 5, Name: "aVF", Pos: Point{350, 100}},
		{Index: 6, Name: "V1", Pos: Point{600, 400}},
		{Index: 7, Name: "V2", Pos: Point{600, 250}},
		{Index: 8, Name: "V3", Pos: Point{600, 100}},
		{Index: 9, Name: "V4", Pos: Point{850, 400}},
		{Index: 10, Name: "V5", Pos: Point{850, 250}, Scanning: true},
		{Index: 11, Name: "V6", Pos: Point{850, 100}, Scanning: true},
	})
	if err != nil {
		panic(err) // static table
	}
	return l
}

// Len returns the number of targets K.
func (l *Layout) Len() int {
	return len(l.targets)
}

// Target returns the target with index i.
func (l *Layout) Target(i int) Target {
	return l.targets[i]
}

// Targets returns a copy of the ordered targets.
func (l *Layout) Targets() []Target {
	out := make([]Target, len(l.targets))
	copy(out, l.targets)
	return out
}

// Positions returns the target coordinates in index order.
func (l *Layout) Positions() []Point {
	out := make([]Point, len(l.targets))
	for i, t := range l.targets {
		out[i] = t.Pos
	}
	return out
}

// Nearest returns the index of the target closest to p.
// Ties resolve to the lowest index. A non-finite p is closer to nothing and
// returns 0; check Point.IsFinite first.
func (l *Layout) Nearest(p Point) int {
	best := 0
	bestDist := math.Inf(1)
	for _, t := range l.targets {
		if d := p.Dist(t.Pos); d < bestDist {
			best, bestDist = t.Index, d
		}
	}
	return best
}
