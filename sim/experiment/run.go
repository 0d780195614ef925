package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/cohort"
	"github.com/bio-saliency/gazesim/sim/metrics"
	"github.com/bio-saliency/gazesim/sim/model"
	"github.com/bio-saliency/gazesim/sim/trace"
)

// Deps are the collaborators of a run. A nil Generator uses the reference
// generator; a nil Fitter or Clusterer skips the sections that need it.
type Deps struct {
	Generator *sim.Generator
	Fitter    model.Fitter
	Clusterer model.Clusterer
}

// Section names recorded in Report.Skipped.
const (
	SectionKMeans     = "kmeans"
	SectionModel      = "sequence_model"
	SectionCompetency = "competency"
)

// transitionTolerance bounds how far a fitted row may sum from 1.
const transitionTolerance = 1e-6

// Run executes the experiment. The result depends only on the experiment spec and the
// deps: cohorts and subjects are seeded from spec.Seed.
func Run(ctx context.Context, spec Spec, deps Deps) (*Report, error) {
	gen := deps.Generator
	if gen == nil {
		gen = sim.NewReferenceGenerator()
	}
	if err := spec.Validate(gen.Strategies()); err != nil {
		return nil, fmt.Errorf("invalid experiment spec: %w", err)
	}
	key := sim.NewSimulationKey(spec.Seed)
	layout := gen.Layout()
	table := gen.Strategies()

	logrus.Infof("experiment: generating %d trajectories (seed %d)", spec.TotalTrajectories(), spec.Seed)
	cohorts, err := cohort.GenerateAll(ctx, gen, spec.Cohorts, key, spec.Workers)
	if err != nil {
		return nil, err
	}

	report := &Report{Seed: spec.Seed}
	for _, c := range cohorts {
		points, _ := sim.Flatten(c.Trajectories)
		report.Cohorts = append(report.Cohorts, CohortInfo{Name: c.Name, Trajectories: c.Len(), Observations: len(points)})
	}
	dwell, err := dwellOf(gen, spec.Cohorts, key)
	if err != nil {
		return nil, err
	}
	report.Dwell = dwell

	train, _ := cohort.Find(cohorts, spec.TrainCohort)
	report.Structure.TrainCohort = train.Name
	report.Structure.RecallStrategy = spec.RecallStrategy

	// Spatial baseline.
	if deps.Clusterer == nil {
		logrus.Warnf("experiment: no clusterer configured, skipping spatial baseline")
		report.Skipped = append(report.Skipped, SectionKMeans)
	} else {
		points, _ := sim.Flatten(train.Trajectories)
		centers, err := deps.Clusterer.Cluster(points, layout.Len())
		if err != nil {
			return nil, fmt.Errorf("clustering %s: %w", train.Name, err)
		}
		e, err := metrics.LayoutError(centers, layout)
		if err != nil {
			return nil, fmt.Errorf("clustering %s: %w", train.Name, err)
		}
		report.Structure.KMeans = &SpatialResult{Centers: centers, Error: e}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Sequential baseline.
	markov, err := metrics.TrainMarkov(train.Trajectories, layout)
	if err != nil {
		return nil, fmt.Errorf("markov baseline: %w", err)
	}
	mr, err := structureOf(markov, table, spec.RecallStrategy)
	if err != nil {
		return nil, fmt.Errorf("markov baseline: %w", err)
	}
	report.Structure.Markov = mr

	if deps.Fitter == nil {
		logrus.Warnf("experiment: no sequence-model fitter configured, skipping model recovery and competency")
		report.Skipped = append(report.Skipped, SectionModel, SectionCompetency)
		return report, nil
	}

	cfg := model.ReferenceFitConfig(layout, spec.Model.MaxIter, spec.Model.PriorVariance)
	logrus.Infof("experiment: fitting %d-state sequence model on %d trajectories", cfg.States, train.Len())
	fitted, err := model.FitTrajectories(ctx, deps.Fitter, train.Trajectories, cfg)
	if err != nil {
		return nil, fmt.Errorf("fitting sequence model: %w", err)
	}
	mres, err := modelResult(fitted, layout, table, spec.RecallStrategy)
	if err != nil {
		return nil, err
	}
	report.Structure.Model = mres
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comp, err := competency(ctx, spec, gen, key, fitted, cohorts)
	if err != nil {
		return nil, err
	}
	report.Competency = comp
	return report, nil
}

// dwellOf traces the first member of every cohort group and compares its
// mean dwell with the generator's expected dwell.
func dwellOf(gen *sim.Generator, specs []cohort.Spec, key sim.SimulationKey) ([]DwellResult, error) {
	expected := gen.Config().ExpectedDwell()
	if math.IsInf(expected, 0) {
		expected = 0
	}
	var out []DwellResult
	for _, cs := range specs {
		if cs.Count == 0 || cs.Steps == 0 {
			continue
		}
		_, st, err := cohort.Trace(gen, cs, key, 0)
		if err != nil {
			return nil, err
		}
		summary := trace.Summarize(st)
		out = append(out, DwellResult{
			Cohort:        cs.Name,
			Strategy:      cs.Strategy,
			Visits:        summary.VisitCount,
			Switches:      summary.SwitchCount,
			MeanDwell:     summary.MeanDwell,
			MaxDwell:      summary.MaxDwell,
			ExpectedDwell: expected,
		})
	}
	return out, nil
}

// structureOf scores a transition matrix against every strategy and
// extracts its between-target topology.
func structureOf(m mat.Matrix, table *sim.StrategyTable, recall string) (StructureResult, error) {
	all, err := metrics.RecallAll(m, table)
	if err != nil {
		return StructureResult{}, err
	}
	edges, err := metrics.Topology(m, metrics.DefaultTopologyMinProb)
	if err != nil {
		return StructureResult{}, err
	}
	return StructureResult{Recall: all[recall], RecallByStrategy: all, Topology: edges}, nil
}

// modelResult evaluates a fitted sequence model. State i is read as target
// i, which holds because the fit is seeded with one prior mean per target.
func modelResult(fitted model.SequenceModel, layout *sim.Layout, table *sim.StrategyTable, recall string) (*ModelResult, error) {
	k := layout.Len()
	means := fitted.Means()
	covs := fitted.Covariances()
	trans := fitted.Transitions()
	if len(means) != k || len(covs) != k {
		return nil, fmt.Errorf("fitted model has %d means and %d covariances, want %d each", len(means), len(covs), k)
	}
	if r, c := trans.Dims(); r != k || c != k {
		return nil, fmt.Errorf("fitted transition matrix is %dx%d, want %dx%d", r, c, k, k)
	}

	if err := metrics.IsRowStochastic(trans, transitionTolerance); err != nil {
		return nil, fmt.Errorf("fitted transitions: %w", err)
	}

	spatial, err := metrics.LayoutError(means, layout)
	if err != nil {
		return nil, fmt.Errorf("model spatial error: %w", err)
	}
	structure, err := structureOf(trans, table, recall)
	if err != nil {
		return nil, fmt.Errorf("model structure: %w", err)
	}
	res := &ModelResult{SpatialError: spatial, Structure: structure}

	for i, cov := range covs {
		t := layout.Target(i)
		ta := TargetAnisotropy{Target: t.Name, Scanning: t.Scanning}
		ratio, err := metrics.AnisotropyRatio(cov)
		if err != nil {
			logrus.Warnf("experiment: anisotropy of state %d (%s): %v", i, t.Name, err)
		} else {
			ta.Ratio, ta.Valid = ratio, true
		}
		res.Anisotropy = append(res.Anisotropy, ta)
	}

	for _, name := range table.Names() {
		s, err := table.Lookup(name)
		if err != nil {
			return nil, err
		}
		from := 0
		to := successor(s, from)
		res.Branching = append(res.Branching, Branch{
			Strategy: name,
			From:     layout.Target(from).Name,
			To:       layout.Target(to).Name,
			Prob:     trans.At(from, to),
		})
	}
	return res, nil
}

// successor returns the target visited after from in the strategy's cycle.
func successor(s sim.Strategy, from int) int {
	for i, idx := range s.Order {
		if idx == from {
			return s.Order[(i+1)%len(s.Order)]
		}
	}
	return from
}

// competency calibrates the threshold on the head of the calibration cohort,
// summarises every cohort's scores, and classifies fresh subjects.
func competency(ctx context.Context, spec Spec, gen *sim.Generator, key sim.SimulationKey, fitted model.SequenceModel, cohorts []sim.Cohort) (*CompetencyReport, error) {
	calib, _ := cohort.Find(cohorts, spec.Calibration.Cohort)
	if spec.Calibration.Size > 0 {
		calib = calib.Head(spec.Calibration.Size)
	}
	calibScores, err := model.NormalizedScores(fitted, calib.Trajectories)
	if err != nil {
		return nil, fmt.Errorf("scoring calibration cohort: %w", err)
	}
	th, err := metrics.Calibrate(calibScores, spec.Calibration.K)
	if err != nil {
		return nil, fmt.Errorf("calibrating on %s: %w", calib.Name, err)
	}
	logrus.Infof("experiment: threshold %.4f (mean %.4f, std %.4f, n=%d)", th.Value, th.Mean, th.StdDev, th.N)

	out := &CompetencyReport{Threshold: th}
	byName := make(map[string][]float64, len(cohorts))
	for _, c := range cohorts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := model.NormalizedScores(fitted, c.Trajectories)
		if err != nil {
			return nil, fmt.Errorf("scoring cohort %s: %w", c.Name, err)
		}
		if len(scores) == 0 {
			continue
		}
		byName[c.Name] = scores
		summary, err := metrics.SummarizeScores(scores)
		if err != nil {
			return nil, err
		}
		out.Cohorts = append(out.Cohorts, CohortScores{
			Name:     c.Name,
			Summary:  summary,
			PassRate: metrics.PassRate(metrics.ClassifyAll(scores, th)),
		})
	}

	// Separation of every other cohort from the calibration cohort.
	if ref, ok := byName[spec.Calibration.Cohort]; ok {
		for _, c := range cohorts {
			scores, ok := byName[c.Name]
			if !ok || c.Name == spec.Calibration.Cohort {
				continue
			}
			gap, err := metrics.CompetencyGap(ref, scores)
			if err != nil {
				return nil, err
			}
			cg := CohortGap{Reference: spec.Calibration.Cohort, Cohort: c.Name}
			if math.IsInf(gap, 0) {
				logrus.Warnf("experiment: %s and %s scores have zero variance, gap is unbounded", cg.Reference, cg.Cohort)
			} else {
				cg.Gap = &gap
			}
			out.Gaps = append(out.Gaps, cg)
		}
	}

	// Subjects draw sequentially from one stream so adding a subject never
	// changes the ones before it.
	rng := sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemSubjects)
	for _, sub := range spec.Subjects {
		tr, err := gen.Generate(rng, sub.Strategy, sub.Steps, sub.Noise)
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", sub.Name, err)
		}
		scores, err := model.NormalizedScores(fitted, []sim.Trajectory{tr})
		if err != nil {
			return nil, fmt.Errorf("subject %s: %w", sub.Name, err)
		}
		out.Subjects = append(out.Subjects, SubjectResult{
			Name:     sub.Name,
			Strategy: sub.Strategy,
			Noise:    sub.Noise,
			Score:    scores[0],
			Verdict:  metrics.Classify(scores[0], th),
		})
	}
	return out, nil
}
