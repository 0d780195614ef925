// Package sim provides the synthetic gaze-trajectory generator.
//
// # Reading Guide
//
// Start with these files to understand the generator:
//   - layout.go: the fixed set of 2-D targets (the state space)
//   - strategy.go: named visiting orders over the targets
//   - schedule.go: time-triggered strategy switches (Hybrid)
//   - generator.go: the per-step emission and dwell/transition loop
//
// # Architecture
//
// The sim package holds the data model and the generator; evaluation and
// orchestration live in sub-packages:
//   - sim/metrics/: spatial error, Markov baseline, structural recall, competency
//   - sim/model/: interfaces for the external sequence-model fitter and clusterer
//   - sim/cohort/: seeded, parallel generation of trajectory batches
//   - sim/trace/: latent visit recording
//   - sim/store/: SQLite persistence of generated cohorts
//   - sim/experiment/: end-to-end reproduction of the validation tables
//
// # Randomness
//
// The generator owns no random state. Every Generate call takes a *rand.Rand;
// rng.go derives independent seeds per cohort and per trajectory so that
// generation order and worker count never change the output.
package sim
