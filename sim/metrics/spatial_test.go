package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-saliency/gazesim/sim"
)

func TestSpatialError_LayoutAgainstItselfIsZero(t *testing.T) {
	l := sim.ReferenceLayout()
	got, err := LayoutError(l.Positions(), l)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestSpatialError_PermutedLayoutIsZero(t *testing.T) {
	pos := sim.ReferenceLayout().Positions()
	permuted := make([]sim.Point, len(pos))
	for i := range pos {
		permuted[i] = pos[(i*5+3)%len(pos)] // 5 is coprime with 12
	}
	got, err := SpatialError(permuted, pos)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestSpatialError_IsAsymmetric(t *testing.T) {
	truth := []sim.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0}}

	// GIVEN an estimate that finds only one target
	got, err := SpatialError([]sim.Point{{X: 0, Y: 0}}, truth)
	require.NoError(t, err)
	// THEN missing targets are not penalised
	assert.Equal(t, 0.0, got)

	// GIVEN the full truth plus one spurious center 30 units off
	got, err = SpatialError(append(append([]sim.Point{}, truth...), sim.Point{X: 100, Y: 30}), truth)
	require.NoError(t, err)
	// THEN the spurious center contributes its distance to the mean
	assert.InDelta(t, 30.0/4, got, 1e-12)
}

func TestSpatialError_MeanOfNearestDistances(t *testing.T) {
	truth := []sim.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	est := []sim.Point{{X: 3, Y: 4}, {X: 10, Y: 1}}
	got, err := SpatialError(est, truth)
	require.NoError(t, err)
	assert.InDelta(t, (5.0+1.0)/2, got, 1e-12)
}

func TestSpatialError_MalformedInput(t *testing.T) {
	truth := sim.ReferenceLayout().Positions()

	_, err := SpatialError(nil, truth)
	assert.True(t, errors.Is(err, ErrEmptyCenters))

	_, err = SpatialError([]sim.Point{{X: 1, Y: 1}}, nil)
	assert.True(t, errors.Is(err, ErrEmptyTruth))

	_, err = SpatialError([]sim.Point{{X: math.NaN(), Y: 1}}, truth)
	assert.Error(t, err)
}
