package cmd

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/cohort"
	"github.com/bio-saliency/gazesim/sim/experiment"
)

func overrideFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int64("seed", 42, "")
	fs.Int("workers", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func smallCohort(t *testing.T, seed int64) sim.Cohort {
	t.Helper()
	c, err := cohort.Generate(context.Background(), sim.NewReferenceGenerator(),
		cohort.Spec{Name: "expert", Strategy: sim.StrategyClassic, Count: 3, Steps: 50, Noise: 5},
		sim.NewSimulationKey(seed), 1)
	require.NoError(t, err)
	return c
}

// TestSeedOverride_YAMLSeedPreserved_WhenCLINotSpecified: an unset --seed
// never replaces the YAML seed, even though the flag default differs.
func TestSeedOverride_YAMLSeedPreserved_WhenCLINotSpecified(t *testing.T) {
	// GIVEN a spec with YAML seed 7
	spec := experiment.DefaultSpec()
	spec.Seed = 7
	spec.Workers = 3

	// WHEN no flags are passed
	require.NoError(t, applyOverrides(overrideFlags(t), &spec))

	// THEN the YAML values govern
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 3, spec.Workers)
}

func TestSeedOverride_CLIWins_WhenSpecified(t *testing.T) {
	spec := experiment.DefaultSpec()
	spec.Seed = 7
	require.NoError(t, applyOverrides(overrideFlags(t, "--seed", "100", "--workers", "2"), &spec))
	assert.Equal(t, int64(100), spec.Seed)
	assert.Equal(t, 2, spec.Workers)
}

func TestSeedOverride_DifferentSeeds_DifferentCohorts(t *testing.T) {
	a, b := smallCohort(t, 100), smallCohort(t, 200)
	assert.NotEqual(t, a.Trajectories[0][0], b.Trajectories[0][0])
}

func TestSeedOverride_SameSeed_IdenticalCohorts(t *testing.T) {
	assert.Equal(t, smallCohort(t, 123), smallCohort(t, 123))
}

func TestLoadExperimentSpec_EmptyPathIsReference(t *testing.T) {
	spec, err := loadExperimentSpec("")
	require.NoError(t, err)
	assert.Equal(t, experiment.DefaultSpec(), *spec)
}
