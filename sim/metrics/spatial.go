package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bio-saliency/gazesim/sim"
)

var (
	// ErrEmptyCenters is returned when no estimated centers are given.
	ErrEmptyCenters = errors.New("estimated center set is empty")
	// ErrEmptyTruth is returned when the ground-truth set is empty.
	ErrEmptyTruth = errors.New("ground-truth center set is empty")
)

// SpatialError returns the mean, over estimated centers, of the distance to
// the nearest ground-truth location.
//
// Asymmetric: spurious or misplaced estimates are penalised, missing targets
// are not. Order of either set does not matter.
func SpatialError(estimated, truth []sim.Point) (float64, error) {
	if len(estimated) == 0 {
		return 0, ErrEmptyCenters
	}
	if len(truth) == 0 {
		return 0, ErrEmptyTruth
	}
	mins := make([]float64, len(estimated))
	for i, c := range estimated {
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			return 0, fmt.Errorf("estimated center %d is NaN", i)
		}
		best := math.Inf(1)
		for _, g := range truth {
			if d := c.Dist(g); d < best {
				best = d
			}
		}
		mins[i] = best
	}
	return stat.Mean(mins, nil), nil
}

// LayoutError is SpatialError against a layout's target positions.
func LayoutError(estimated []sim.Point, layout *sim.Layout) (float64, error) {
	return SpatialError(estimated, layout.Positions())
}
