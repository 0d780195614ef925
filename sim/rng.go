package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible experiment run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical trajectories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemSubjects is the RNG subsystem for held-out test subjects
	// scored against a calibrated threshold.
	SubsystemSubjects = "subjects"

	// SubsystemKMeans seeds the k-means baseline's initial centers.
	SubsystemKMeans = "kmeans"
)

// SubsystemCohort returns the subsystem name for a cohort member group.
// Cohorts that share a name but differ in strategy get separate streams.
func SubsystemCohort(name, strategy string) string {
	return fmt.Sprintf("cohort_%s_%s", name, strategy)
}

// === Seed derivation ===

// DeriveSeed returns masterSeed XOR fnv1a64(subsystem). Order-independent:
// the seed of one subsystem never depends on which others were derived first.
func DeriveSeed(key SimulationKey, subsystem string) int64 {
	return int64(key) ^ fnv1a64(subsystem)
}

// TrajectorySeed derives the seed of the index-th trajectory of a cohort
// group. Knuth multiplicative hash spreads entropy across neighbouring
// indices and avoids the XOR collision (seed=1^2 == seed=2^1).
func TrajectorySeed(key SimulationKey, cohort, strategy string, index int) int64 {
	return DeriveSeed(key, SubsystemCohort(cohort, strategy))*2654435761 + int64(index)
}

// NewTrajectoryRNG returns a fresh random source owned by one trajectory.
func NewTrajectoryRNG(key SimulationKey, cohort, strategy string, index int) *rand.Rand {
	return rand.New(rand.NewSource(TrajectorySeed(key, cohort, strategy, index)))
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(DeriveSeed(p.key, name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
