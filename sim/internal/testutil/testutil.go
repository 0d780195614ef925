// Package testutil provides shared test infrastructure for the gazesim packages.
// It consolidates matrix fixtures and assertion helpers used by the
// sim/metrics/ and sim/experiment/ test packages.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
)

// StrategyMatrix returns a k×k matrix with probability 1 on every expected
// edge of s and 0 elsewhere.
func StrategyMatrix(k int, s sim.Strategy) *mat.Dense {
	m := mat.NewDense(k, k, nil)
	for _, e := range s.Edges() {
		m.Set(e.From, e.To, 1)
	}
	return m
}

// AssertRowsSumToOneOrZero fails the test if any row of m sums to something
// other than 1 or 0 within tol.
func AssertRowsSumToOneOrZero(t *testing.T, m mat.Matrix, tol float64) {
	t.Helper()
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += m.At(i, j)
		}
		if math.Abs(sum-1) > tol && math.Abs(sum) > tol {
			t.Errorf("row %d sums to %v, want 1 or 0", i, sum)
		}
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
