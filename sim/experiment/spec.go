package experiment

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/cohort"
	"github.com/bio-saliency/gazesim/sim/metrics"
)

// Spec is the full description of one validation experiment.
type Spec struct {
	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers,omitempty"`
	// Steps is the default trajectory length for cohorts and subjects that
	// do not set their own.
	Steps   int           `yaml:"steps"`
	Cohorts []cohort.Spec `yaml:"cohorts"`

	// TrainCohort names the cohort the structure-recovery baselines learn from.
	TrainCohort    string          `yaml:"train_cohort"`
	RecallStrategy string          `yaml:"recall_strategy"`
	Calibration    CalibrationSpec `yaml:"calibration"`
	Model          ModelSpec       `yaml:"model"`
	Subjects       []SubjectSpec   `yaml:"subjects,omitempty"`
}

// CalibrationSpec selects the normal-behaviour sample for the threshold.
type CalibrationSpec struct {
	Cohort string  `yaml:"cohort"`
	Size   int     `yaml:"size"` // first Size trajectories; 0 uses the whole cohort
	K      float64 `yaml:"k"`
}

// ModelSpec parameterises the external sequence-model fit.
type ModelSpec struct {
	MaxIter       int     `yaml:"max_iter"`
	PriorVariance float64 `yaml:"prior_variance"`
}

// SubjectSpec is one held-out reader scored against the threshold.
type SubjectSpec struct {
	Name     string  `yaml:"name"`
	Strategy string  `yaml:"strategy"`
	Noise    float64 `yaml:"noise"`
	Steps    int     `yaml:"steps,omitempty"`
}

// DefaultSpec returns the reference experiment: four expert strategies and
// one novice cohort of 500 readers each, 600-step trajectories, a threshold
// calibrated on the first 200 expert sequences, and three test subjects.
func DefaultSpec() Spec {
	const count = 500
	s := Spec{
		Seed:    42,
		Workers: 0,
		Steps:   sim.DefaultSteps,
		Cohorts: []cohort.Spec{
			{Name: "expert", Strategy: sim.StrategyClassic, Count: count, Noise: 5},
			{Name: "expert", Strategy: sim.StrategyAcute, Count: count, Noise: 5},
			{Name: "expert", Strategy: sim.StrategyTechnician, Count: count, Noise: 5},
			{Name: "expert", Strategy: sim.StrategyHybrid, Count: count, Noise: 5},
			{Name: "novice", Strategy: sim.StrategyClassic, Count: count, Noise: 25},
		},
		TrainCohort:    "expert",
		RecallStrategy: sim.StrategyClassic,
		Calibration:    CalibrationSpec{Cohort: "expert", Size: 200, K: metrics.DefaultThresholdK},
		Model:          ModelSpec{MaxIter: 20, PriorVariance: 200},
		Subjects: []SubjectSpec{
			{Name: "expert-classic", Strategy: sim.StrategyClassic, Noise: 5},
			{Name: "expert-hybrid", Strategy: sim.StrategyHybrid, Noise: 5},
			{Name: "novice-classic", Strategy: sim.StrategyClassic, Noise: 25},
		},
	}
	s.applyDefaults()
	return s
}

// LoadSpec reads a YAML experiment file. Unknown fields are errors.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec decodes YAML into a Spec and fills per-cohort defaults.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing experiment spec: %w", err)
	}
	spec.applyDefaults()
	return &spec, nil
}

// applyDefaults propagates the top-level step count into cohorts and
// subjects that leave it unset.
func (s *Spec) applyDefaults() {
	if s.Steps == 0 {
		s.Steps = sim.DefaultSteps
	}
	for i := range s.Cohorts {
		if s.Cohorts[i].Steps == 0 {
			s.Cohorts[i].Steps = s.Steps
		}
	}
	for i := range s.Subjects {
		if s.Subjects[i].Steps == 0 {
			s.Subjects[i].Steps = s.Steps
		}
	}
	if s.Calibration.K == 0 {
		s.Calibration.K = metrics.DefaultThresholdK
	}
}

// Validate checks the experiment spec against a strategy table. Strategy names are
// resolved strictly: a typo is an error, not a silent fallback.
func (s *Spec) Validate(table *sim.StrategyTable) error {
	if s.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", s.Steps)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	if len(s.Cohorts) == 0 {
		return fmt.Errorf("at least one cohort required")
	}
	names := make(map[string]bool)
	for i, c := range s.Cohorts {
		if err := c.Validate(table); err != nil {
			return fmt.Errorf("cohorts[%d]: %w", i, err)
		}
		names[c.Name] = true
	}
	if !names[s.TrainCohort] {
		return fmt.Errorf("train_cohort %q does not name a cohort", s.TrainCohort)
	}
	if _, err := table.Lookup(s.RecallStrategy); err != nil {
		return fmt.Errorf("recall_strategy: %w", err)
	}
	if !names[s.Calibration.Cohort] {
		return fmt.Errorf("calibration.cohort %q does not name a cohort", s.Calibration.Cohort)
	}
	if s.Calibration.Size < 0 {
		return fmt.Errorf("calibration.size must be non-negative, got %d", s.Calibration.Size)
	}
	if s.Calibration.K < 0 || math.IsNaN(s.Calibration.K) || math.IsInf(s.Calibration.K, 0) {
		return fmt.Errorf("calibration.k must be finite and non-negative, got %f", s.Calibration.K)
	}
	if s.Model.MaxIter <= 0 {
		return fmt.Errorf("model.max_iter must be positive, got %d", s.Model.MaxIter)
	}
	if s.Model.PriorVariance <= 0 || math.IsInf(s.Model.PriorVariance, 0) {
		return fmt.Errorf("model.prior_variance must be finite and positive, got %f", s.Model.PriorVariance)
	}
	for i, sub := range s.Subjects {
		cs := cohort.Spec{Name: sub.Name, Strategy: sub.Strategy, Count: 1, Steps: sub.Steps, Noise: sub.Noise}
		if err := cs.Validate(table); err != nil {
			return fmt.Errorf("subjects[%d]: %w", i, err)
		}
	}
	return nil
}

// TotalTrajectories is the number of trajectories the cohorts will generate.
func (s *Spec) TotalTrajectories() int {
	n := 0
	for _, c := range s.Cohorts {
		n += c.Count
	}
	return n
}
