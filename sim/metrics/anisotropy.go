package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotPositiveDefinite is returned for covariances with a non-positive eigenvalue.
var ErrNotPositiveDefinite = errors.New("covariance is not positive definite")

// AnisotropyRatio returns sqrt(lambda_max)/sqrt(lambda_min) of a covariance
// matrix: the ratio of the principal standard deviations. Close to 1 for
// point fixations, large for targets traced along a sweep.
func AnisotropyRatio(cov mat.Symmetric) (float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(cov, false); !ok {
		return 0, errors.New("eigen-decomposition of covariance failed")
	}
	vals := es.Values(nil) // ascending
	lo, hi := vals[0], vals[len(vals)-1]
	if lo <= 0 {
		return 0, ErrNotPositiveDefinite
	}
	return math.Sqrt(hi) / math.Sqrt(lo), nil
}

// IsotropicCovariances returns n copies of variance*I (2×2). Used as the
// fitter's prior covariance initialisation.
func IsotropicCovariances(n int, variance float64) []*mat.SymDense {
	out := make([]*mat.SymDense, n)
	for i := range out {
		out[i] = mat.NewSymDense(2, []float64{variance, 0, 0, variance})
	}
	return out
}
