package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTopology_DropsSelfLoopsAndRenormalises(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		0.9, 0.1, 0,
		0, 0.5, 0.5,
		0.5, 0.5, 0,
	})
	got, err := Topology(m, DefaultTopologyMinProb)
	require.NoError(t, err)
	assert.Equal(t, []WeightedEdge{
		{From: 0, To: 1, Prob: 1},
		{From: 1, To: 2, Prob: 1},
		{From: 2, To: 0, Prob: 0.5},
		{From: 2, To: 1, Prob: 0.5},
	}, got)
}

func TestTopology_CutoffIsStrict(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		0.5, 0.375, 0.125,
		0, 1, 0,
		0, 0, 0,
	})
	got, err := Topology(m, 0.25)
	require.NoError(t, err)
	// 0->2 renormalises to exactly 0.25 and is dropped; rows 1 and 2 have no
	// off-diagonal mass
	assert.Equal(t, []WeightedEdge{{From: 0, To: 1, Prob: 0.75}}, got)
}

func TestTopology_NonSquare(t *testing.T) {
	_, err := Topology(mat.NewDense(2, 3, nil), DefaultTopologyMinProb)
	assert.Error(t, err)
}
