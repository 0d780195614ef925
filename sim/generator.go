package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/bio-saliency/gazesim/sim/trace"
)

// Reference generation parameters.
const (
	DefaultSteps = 600
	DefaultNoise = 5.0

	// DefaultStayProbability is the per-step probability of remaining on the
	// current target; mean dwell is 1/(1-stay) = 25 steps.
	DefaultStayProbability = 0.96
)

var (
	// ErrInvalidSteps is returned for negative step counts.
	ErrInvalidSteps = errors.New("step count must be non-negative")
	// ErrInvalidNoise is returned for negative or non-finite noise levels.
	ErrInvalidNoise = errors.New("noise level must be a finite non-negative number")
)

// GeneratorConfig holds the parameters shared by every trajectory a
// Generator emits.
type GeneratorConfig struct {
	StayProbability float64  `yaml:"stay_probability"`
	Waveform        Waveform `yaml:"waveform"`
}

// DefaultGeneratorConfig returns the reference configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		StayProbability: DefaultStayProbability,
		Waveform:        DefaultWaveform(),
	}
}

// Validate checks the configuration.
func (c GeneratorConfig) Validate() error {
	if math.IsNaN(c.StayProbability) || c.StayProbability < 0 || c.StayProbability > 1 {
		return fmt.Errorf("stay_probability must be in [0, 1], got %f", c.StayProbability)
	}
	return c.Waveform.Validate()
}

// Generator emits gaze trajectories over a fixed layout and strategy table.
// It holds only read-only state and is safe for concurrent use as long as
// each call gets its own *rand.Rand.
type Generator struct {
	layout     *Layout
	strategies *StrategyTable
	config     GeneratorConfig
}

// NewGenerator validates that the strategy table matches the layout and
// builds a Generator.
func NewGenerator(layout *Layout, strategies *StrategyTable, config GeneratorConfig) (*Generator, error) {
	if layout == nil || strategies == nil {
		return nil, fmt.Errorf("generator requires a layout and a strategy table")
	}
	if strategies.Size() != layout.Len() {
		return nil, fmt.Errorf("strategy table permutes %d targets, layout has %d", strategies.Size(), layout.Len())
	}
	if len(strategies.Names()) == 0 {
		return nil, fmt.Errorf("strategy table is empty")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("generator config: %w", err)
	}
	return &Generator{layout: layout, strategies: strategies, config: config}, nil
}

// NewReferenceGenerator returns a generator over the reference layout and
// strategies with the reference configuration.
func NewReferenceGenerator() *Generator {
	g, err := NewGenerator(ReferenceLayout(), ReferenceStrategies(), DefaultGeneratorConfig())
	if err != nil {
		panic(err) // static tables
	}
	return g
}

// Layout returns the generator's layout.
func (g *Generator) Layout() *Layout {
	return g.layout
}

// Strategies returns the generator's strategy table.
func (g *Generator) Strategies() *StrategyTable {
	return g.strategies
}

// Config returns the generator's configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// ExpectedDwell is the mean number of steps spent on a target before
// leaving, 1/(1-StayProbability). It is +Inf when the generator never leaves.
func (c GeneratorConfig) ExpectedDwell() float64 {
	if c.StayProbability >= 1 {
		return math.Inf(1)
	}
	return 1 / (1 - c.StayProbability)
}

// Generate emits one trajectory of exactly steps observations for the named
// strategy ("Hybrid" expands to HybridSchedule). Unknown names fall back to
// DefaultStrategy with a warning; use ResolveSchedule and GenerateSchedule
// for strict handling.
func (g *Generator) Generate(rng *rand.Rand, strategy string, steps int, noise float64) (Trajectory, error) {
	sched, err := ResolveSchedule(g.strategies, strategy, steps)
	if err != nil {
		fallback := DefaultStrategy
		if !g.strategies.Has(fallback) {
			fallback = g.strategies.Names()[0]
		}
		logrus.Warnf("unknown strategy %q, falling back to %q", strategy, fallback)
		sched = FixedSchedule(fallback)
	}
	return g.GenerateSchedule(rng, sched, steps, noise, nil)
}

// GenerateSchedule emits one trajectory following sched. When st is non-nil
// the latent visit sequence is recorded into it.
//
// Each step draws two normal variates (x then y noise) and one uniform
// variate for the transition, in that order.
func (g *Generator) GenerateSchedule(rng *rand.Rand, sched Schedule, steps int, noise float64, st *trace.ScanTrace) (Trajectory, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSteps, steps)
	}
	if noise < 0 || math.IsNaN(noise) || math.IsInf(noise, 0) {
		return nil, fmt.Errorf("%w, got %f", ErrInvalidNoise, noise)
	}
	if err := sched.Validate(g.strategies); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("generator requires a random source")
	}

	active, _ := g.strategies.Lookup(sched.Initial)
	switches := sched.sorted()
	next := 0
	currIdx := 0

	out := make(Trajectory, steps)
	for t := 0; t < steps; t++ {
		for next < len(switches) && switches[next].Step == t {
			active, _ = g.strategies.Lookup(switches[next].Strategy)
			currIdx = 0
			st.RecordSwitch(trace.SwitchRecord{Step: t, Strategy: active.Name})
			next++
		}

		target := g.layout.Target(active.Order[currIdx])
		obs := target.Pos
		if target.Scanning {
			delta := g.config.Waveform.Offset(t)
			obs.X += delta.X
			obs.Y += delta.Y
		}
		obs.X += rng.NormFloat64() * noise
		obs.Y += rng.NormFloat64() * noise
		out[t] = obs
		st.Observe(t, target.Index, active.Name)

		if rng.Float64() > g.config.StayProbability {
			currIdx = (currIdx + 1) % len(active.Order)
		}
	}
	return out, nil
}
