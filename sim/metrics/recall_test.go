package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/internal/testutil"
)

func TestStructuralRecall_PerfectPathIsOne(t *testing.T) {
	table := sim.ReferenceStrategies()
	for _, name := range table.Names() {
		s, err := table.Lookup(name)
		require.NoError(t, err)
		got, err := StructuralRecall(testutil.StrategyMatrix(12, s), s)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got, name)
	}
}

func TestStructuralRecall_ZeroMatrixIsZero(t *testing.T) {
	got, err := RecallByName(mat.NewDense(12, 12, nil), sim.ReferenceStrategies(), sim.StrategyClassic)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestStructuralRecall_PartialOverlap(t *testing.T) {
	// GIVEN the Technician path matrix
	table := sim.ReferenceStrategies()
	tech, err := table.Lookup(sim.StrategyTechnician)
	require.NoError(t, err)
	m := testutil.StrategyMatrix(12, tech)

	// WHEN scored against Classic
	got, err := RecallByName(m, table, sim.StrategyClassic)
	require.NoError(t, err)

	// THEN only the shared edges count: 1->2, 3->4, 6->7 .. 10->11, 11->0
	assert.InDelta(t, 8.0/12, got, 1e-12)
}

func TestStructuralRecall_RotationsShareEdges(t *testing.T) {
	// Acute visits the same cycle as Classic from a different start, so both
	// expected edge sets coincide and any matrix scores them identically.
	table := sim.ReferenceStrategies()
	tech, err := table.Lookup(sim.StrategyTechnician)
	require.NoError(t, err)
	m := testutil.StrategyMatrix(12, tech)
	m.Set(0, 1, 0.3)
	m.Set(5, 6, 0.7)

	classic, err := RecallByName(m, table, sim.StrategyClassic)
	require.NoError(t, err)
	acute, err := RecallByName(m, table, sim.StrategyAcute)
	require.NoError(t, err)
	assert.InDelta(t, classic, acute, 1e-12)
}

func TestStructuralRecall_Errors(t *testing.T) {
	table := sim.ReferenceStrategies()

	_, err := RecallByName(mat.NewDense(12, 12, nil), table, sim.StrategyHybrid)
	assert.True(t, errors.Is(err, sim.ErrUnknownStrategy))

	_, err = RecallByName(mat.NewDense(12, 11, nil), table, sim.StrategyClassic)
	assert.Error(t, err, "non-square")

	_, err = RecallByName(mat.NewDense(6, 6, nil), table, sim.StrategyClassic)
	assert.Error(t, err, "too small")
}

func TestRecallAll(t *testing.T) {
	table := sim.ReferenceStrategies()
	classic, err := table.Lookup(sim.StrategyClassic)
	require.NoError(t, err)
	got, err := RecallAll(testutil.StrategyMatrix(12, classic), table)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 1.0, got[sim.StrategyClassic])
	assert.Equal(t, 1.0, got[sim.StrategyAcute])
	assert.InDelta(t, 8.0/12, got[sim.StrategyTechnician], 1e-12)
}

func TestStructuralRecall_ClassicCohortPrefersClassic(t *testing.T) {
	// GIVEN 50 Classic trajectories of 600 steps at expert noise
	g := sim.NewReferenceGenerator()
	key := sim.NewSimulationKey(42)
	trs := make([]sim.Trajectory, 50)
	for i := range trs {
		tr, err := g.Generate(sim.NewTrajectoryRNG(key, "expert", sim.StrategyClassic, i), sim.StrategyClassic, 600, sim.DefaultNoise)
		require.NoError(t, err)
		trs[i] = tr
	}

	// WHEN the Markov baseline is trained and scored
	m, err := TrainMarkov(trs, g.Layout())
	require.NoError(t, err)
	table := g.Strategies()
	classic, err := RecallByName(m, table, sim.StrategyClassic)
	require.NoError(t, err)
	tech, err := RecallByName(m, table, sim.StrategyTechnician)
	require.NoError(t, err)
	acute, err := RecallByName(m, table, sim.StrategyAcute)
	require.NoError(t, err)

	// THEN the generating order scores above a strategy with different edges,
	// and equal to its own rotation
	assert.Greater(t, classic, tech)
	assert.InDelta(t, classic, acute, 1e-12)
	assert.Greater(t, classic, 0.0)
	assert.LessOrEqual(t, classic, 1.0)
}
