package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
)

// ErrNonFiniteObservation is returned when an observation has a NaN or
// infinite coordinate and so has no nearest target.
var ErrNonFiniteObservation = errors.New("observation is not finite")

// Discretize maps every observation to the index of its nearest target.
func Discretize(tr sim.Trajectory, layout *sim.Layout) ([]int, error) {
	labels := make([]int, len(tr))
	for i, p := range tr {
		if !p.IsFinite() {
			return nil, fmt.Errorf("step %d %v: %w", i, p, ErrNonFiniteObservation)
		}
		labels[i] = layout.Nearest(p)
	}
	return labels, nil
}

// TransitionCounts returns the raw K×K count table of consecutive
// discretized observation pairs across all trajectories.
func TransitionCounts(trajectories []sim.Trajectory, layout *sim.Layout) (*mat.Dense, error) {
	k := layout.Len()
	counts := mat.NewDense(k, k, nil)
	for n, tr := range trajectories {
		labels, err := Discretize(tr, layout)
		if err != nil {
			return nil, fmt.Errorf("trajectory %d: %w", n, err)
		}
		for t := 0; t+1 < len(labels); t++ {
			from, to := labels[t], labels[t+1]
			counts.Set(from, to, counts.At(from, to)+1)
		}
	}
	return counts, nil
}

// TrainMarkov builds the first-order Markov baseline: transition counts
// normalised per row. Rows with no observed outgoing transition stay all
// zero; that is a valid unvisited/terminal state, not an error.
func TrainMarkov(trajectories []sim.Trajectory, layout *sim.Layout) (*mat.Dense, error) {
	m, err := TransitionCounts(trajectories, layout)
	if err != nil {
		return nil, err
	}
	k, _ := m.Dims()
	empty := 0
	for i := 0; i < k; i++ {
		row := m.RawRowView(i)
		sum := floats.Sum(row)
		if sum == 0 {
			empty++
			continue
		}
		floats.Scale(1/sum, row)
	}
	if empty > 0 {
		logrus.Debugf("markov baseline: %d of %d targets have no outgoing transitions", empty, k)
	}
	return m, nil
}

// IsRowStochastic checks that m is square and every row sums to 1 or 0
// within tol, with no negative or non-finite entries.
func IsRowStochastic(m mat.Matrix, tol float64) error {
	r, c := m.Dims()
	if r != c {
		return fmt.Errorf("transition matrix must be square, got %dx%d", r, c)
	}
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: entry %d is %v", i, j, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > tol && math.Abs(sum) > tol {
			return fmt.Errorf("row %d sums to %v, want 1 or 0", i, sum)
		}
	}
	return nil
}
