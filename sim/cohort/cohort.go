// Package cohort expands cohort descriptions into synthetic trajectory sets.
//
// Generation is a pure function of (generator, spec, key): every trajectory
// owns a random source seeded from the key, the cohort name, the strategy and
// its index, so the output does not depend on the worker count or on the
// order in which workers finish.
package cohort

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/trace"
)

// Spec describes one homogeneous group of simulated readers.
type Spec struct {
	Name     string  `yaml:"name"`
	Strategy string  `yaml:"strategy"`
	Count    int     `yaml:"count"`
	Steps    int     `yaml:"steps,omitempty"`
	Noise    float64 `yaml:"noise"`
}

// Validate checks the cohort spec against the generator's strategy table.
// Unknown strategies are rejected here rather than silently falling back.
func (s Spec) Validate(table *sim.StrategyTable) error {
	if s.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if s.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", s.Count)
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", s.Steps)
	}
	if s.Noise < 0 || math.IsNaN(s.Noise) || math.IsInf(s.Noise, 0) {
		return fmt.Errorf("noise must be a finite non-negative number, got %f", s.Noise)
	}
	if _, err := sim.ResolveSchedule(table, s.Strategy, s.Steps); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	return nil
}

// Generate produces the cohort's trajectories using up to workers
// goroutines (workers <= 0 uses GOMAXPROCS). Cancelling ctx stops
// outstanding work and returns the context error.
func Generate(ctx context.Context, gen *sim.Generator, spec Spec, key sim.SimulationKey, workers int) (sim.Cohort, error) {
	if err := spec.Validate(gen.Strategies()); err != nil {
		return sim.Cohort{}, fmt.Errorf("cohort %q: %w", spec.Name, err)
	}
	sched, err := sim.ResolveSchedule(gen.Strategies(), spec.Strategy, spec.Steps)
	if err != nil {
		return sim.Cohort{}, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]sim.Trajectory, spec.Count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < spec.Count; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr, err := member(gen, sched, spec, key, i, nil)
			if err != nil {
				return fmt.Errorf("cohort %q trajectory %d: %w", spec.Name, i, err)
			}
			out[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sim.Cohort{}, err
	}
	if err := ctx.Err(); err != nil {
		return sim.Cohort{}, err
	}

	logrus.Debugf("cohort %s/%s: generated %d trajectories of %d steps (noise %.1f, %d workers)",
		spec.Name, spec.Strategy, spec.Count, spec.Steps, spec.Noise, workers)
	return sim.Cohort{Name: spec.Name, Trajectories: out}, nil
}

// Trace regenerates the index-th trajectory of the cohort with its latent
// visits recorded. The trajectory equals the one Generate returns at index.
func Trace(gen *sim.Generator, spec Spec, key sim.SimulationKey, index int) (sim.Trajectory, *trace.ScanTrace, error) {
	if err := spec.Validate(gen.Strategies()); err != nil {
		return nil, nil, fmt.Errorf("cohort %q: %w", spec.Name, err)
	}
	if index < 0 || index >= spec.Count {
		return nil, nil, fmt.Errorf("cohort %q: index %d out of range [0, %d)", spec.Name, index, spec.Count)
	}
	sched, err := sim.ResolveSchedule(gen.Strategies(), spec.Strategy, spec.Steps)
	if err != nil {
		return nil, nil, err
	}
	st := trace.NewScanTrace()
	tr, err := member(gen, sched, spec, key, index, st)
	if err != nil {
		return nil, nil, fmt.Errorf("cohort %q trajectory %d: %w", spec.Name, index, err)
	}
	return tr, st, nil
}

func member(gen *sim.Generator, sched sim.Schedule, spec Spec, key sim.SimulationKey, index int, st *trace.ScanTrace) (sim.Trajectory, error) {
	rng := sim.NewTrajectoryRNG(key, spec.Name, spec.Strategy, index)
	return gen.GenerateSchedule(rng, sched, spec.Steps, spec.Noise, st)
}

// GenerateAll generates every spec in order and merges groups that share a
// name, preserving first-appearance order of names.
func GenerateAll(ctx context.Context, gen *sim.Generator, specs []Spec, key sim.SimulationKey, workers int) ([]sim.Cohort, error) {
	parts := make([]sim.Cohort, 0, len(specs))
	for i, s := range specs {
		c, err := Generate(ctx, gen, s, key, workers)
		if err != nil {
			return nil, fmt.Errorf("cohorts[%d]: %w", i, err)
		}
		parts = append(parts, c)
	}
	return Merge(parts...), nil
}

// Merge concatenates cohorts that share a name. The result keeps the order
// in which each name first appears; trajectories keep their input order.
func Merge(cohorts ...sim.Cohort) []sim.Cohort {
	var out []sim.Cohort
	pos := make(map[string]int)
	for _, c := range cohorts {
		i, ok := pos[c.Name]
		if !ok {
			pos[c.Name] = len(out)
			out = append(out, sim.Cohort{Name: c.Name, Trajectories: append([]sim.Trajectory(nil), c.Trajectories...)})
			continue
		}
		out[i].Trajectories = append(out[i].Trajectories, c.Trajectories...)
	}
	return out
}

// Find returns the cohort with the given name.
func Find(cohorts []sim.Cohort, name string) (sim.Cohort, bool) {
	for _, c := range cohorts {
		if c.Name == name {
			return c, true
		}
	}
	return sim.Cohort{}, false
}
