// Package model declares the collaborators the validation pipeline depends on
// but does not implement: a sequence-model fitter (a Gaussian-emission hidden
// Markov model in the reference experiment) and a spatial clusterer.
//
// Only the clusterer has an in-tree implementation (KMeans). Fitters are
// supplied by the caller; experiment sections that need one are skipped when
// none is given.
package model

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
)

// ErrEmptyTrajectory is returned when scoring a zero-length trajectory.
var ErrEmptyTrajectory = errors.New("cannot score an empty trajectory")

// SequenceModel is a fitted latent-state model with one 2-D Gaussian
// emission per state.
type SequenceModel interface {
	// Means returns one emission mean per latent state.
	Means() []sim.Point
	// Covariances returns one 2×2 emission covariance per latent state.
	Covariances() []*mat.SymDense
	// Transitions returns the fitted state transition matrix.
	Transitions() mat.Matrix
	// Score returns the total log-likelihood of a trajectory.
	Score(tr sim.Trajectory) (float64, error)
}

// FitConfig parameterises one fit.
type FitConfig struct {
	States           int
	MaxIter          int
	PriorMeans       []sim.Point
	PriorCovariances []*mat.SymDense
}

// Validate checks the prior shapes against the number of states.
func (c FitConfig) Validate() error {
	if c.States <= 0 {
		return fmt.Errorf("states must be positive, got %d", c.States)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive, got %d", c.MaxIter)
	}
	if c.PriorMeans != nil && len(c.PriorMeans) != c.States {
		return fmt.Errorf("prior means: got %d, want %d", len(c.PriorMeans), c.States)
	}
	if c.PriorCovariances != nil {
		if len(c.PriorCovariances) != c.States {
			return fmt.Errorf("prior covariances: got %d, want %d", len(c.PriorCovariances), c.States)
		}
		for i, cov := range c.PriorCovariances {
			if cov == nil || cov.SymmetricDim() != 2 {
				return fmt.Errorf("prior covariance[%d] must be 2×2", i)
			}
		}
	}
	return nil
}

// ReferenceFitConfig seeds one state per layout target: prior means at the
// target positions and isotropic priorVariance·I covariances.
func ReferenceFitConfig(layout *sim.Layout, maxIter int, priorVariance float64) FitConfig {
	k := layout.Len()
	covs := make([]*mat.SymDense, k)
	for i := range covs {
		covs[i] = mat.NewSymDense(2, []float64{priorVariance, 0, 0, priorVariance})
	}
	return FitConfig{
		States:           k,
		MaxIter:          maxIter,
		PriorMeans:       layout.Positions(),
		PriorCovariances: covs,
	}
}

// Fitter trains a SequenceModel on concatenated observations. lengths gives
// the size of each sequence in points, in order; it sums to len(points).
type Fitter interface {
	Fit(ctx context.Context, points []sim.Point, lengths []int, cfg FitConfig) (SequenceModel, error)
}

// Clusterer partitions points into k groups and returns the group centers.
type Clusterer interface {
	Cluster(points []sim.Point, k int) ([]sim.Point, error)
}

// FitTrajectories flattens trajectories and fits them.
func FitTrajectories(ctx context.Context, f Fitter, trs []sim.Trajectory, cfg FitConfig) (SequenceModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fit config: %w", err)
	}
	points, lengths := sim.Flatten(trs)
	if len(points) == 0 {
		return nil, errors.New("no observations to fit")
	}
	return f.Fit(ctx, points, lengths, cfg)
}

// NormalizedScores returns each trajectory's log-likelihood divided by its
// length, so sequences of different lengths are comparable.
func NormalizedScores(m SequenceModel, trs []sim.Trajectory) ([]float64, error) {
	out := make([]float64, len(trs))
	for i, tr := range trs {
		if len(tr) == 0 {
			return nil, fmt.Errorf("trajectory[%d]: %w", i, ErrEmptyTrajectory)
		}
		ll, err := m.Score(tr)
		if err != nil {
			return nil, fmt.Errorf("trajectory[%d]: %w", i, err)
		}
		out[i] = ll / float64(len(tr))
	}
	return out, nil
}
