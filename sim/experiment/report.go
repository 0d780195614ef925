package experiment

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/metrics"
)

// Report is the outcome of one experiment run.
type Report struct {
	Seed       int64             `json:"seed"`
	Cohorts    []CohortInfo      `json:"cohorts"`
	Dwell      []DwellResult     `json:"dwell"`
	Structure  StructureReport   `json:"structure"`
	Competency *CompetencyReport `json:"competency,omitempty"`
	Skipped    []string          `json:"skipped,omitempty"`
}

// CohortInfo describes a generated cohort.
type CohortInfo struct {
	Name         string `json:"name"`
	Trajectories int    `json:"trajectories"`
	Observations int    `json:"observations"`
}

// DwellResult compares the traced dwell of one cohort group's first member
// with the generator's expected dwell, 1/(1-stay probability). ExpectedDwell
// is 0 when the generator never leaves a target.
type DwellResult struct {
	Cohort        string  `json:"cohort"`
	Strategy      string  `json:"strategy"`
	Visits        int     `json:"visits"`
	Switches      int     `json:"switches"`
	MeanDwell     float64 `json:"mean_dwell"`
	MaxDwell      int     `json:"max_dwell"`
	ExpectedDwell float64 `json:"expected_dwell"`
}

// StructureReport compares the baselines' recovery of layout and order.
type StructureReport struct {
	TrainCohort    string          `json:"train_cohort"`
	RecallStrategy string          `json:"recall_strategy"`
	KMeans         *SpatialResult  `json:"kmeans,omitempty"`
	Markov         StructureResult `json:"markov"`
	Model          *ModelResult    `json:"model,omitempty"`
}

// SpatialResult is a spatial-only baseline's estimate.
type SpatialResult struct {
	Centers []sim.Point `json:"centers"`
	Error   float64     `json:"error"`
}

// StructureResult is what a transition matrix says about visiting order.
type StructureResult struct {
	Recall           float64                `json:"recall"`
	RecallByStrategy map[string]float64     `json:"recall_by_strategy"`
	Topology         []metrics.WeightedEdge `json:"topology"`
}

// ModelResult evaluates a fitted sequence model.
type ModelResult struct {
	SpatialError float64            `json:"spatial_error"`
	Structure    StructureResult    `json:"structure"`
	Anisotropy   []TargetAnisotropy `json:"anisotropy"`
	Branching    []Branch           `json:"branching"`
}

// TargetAnisotropy is the emission-covariance shape of one target's state.
// Valid is false when the covariance was not positive definite.
type TargetAnisotropy struct {
	Target   string  `json:"target"`
	Scanning bool    `json:"scanning"`
	Ratio    float64 `json:"ratio"`
	Valid    bool    `json:"valid"`
}

// Branch is the fitted probability of one strategy's step out of a target.
type Branch struct {
	Strategy string  `json:"strategy"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Prob     float64 `json:"prob"`
}

// CompetencyReport holds the calibrated threshold and the verdicts.
type CompetencyReport struct {
	Threshold metrics.Threshold `json:"threshold"`
	Cohorts   []CohortScores    `json:"cohorts"`
	Gaps      []CohortGap       `json:"gaps"`
	Subjects  []SubjectResult   `json:"subjects"`
}

// CohortGap is the separation of a cohort's scores from the reference
// (calibration) cohort in pooled standard deviations. Gap is nil when both
// cohorts have zero variance and the separation is unbounded.
type CohortGap struct {
	Reference string   `json:"reference"`
	Cohort    string   `json:"cohort"`
	Gap       *float64 `json:"gap,omitempty"`
}

// CohortScores summarises one cohort's normalised scores.
type CohortScores struct {
	Name     string               `json:"name"`
	Summary  metrics.ScoreSummary `json:"summary"`
	PassRate float64              `json:"pass_rate"`
}

// SubjectResult is the verdict for one held-out subject.
type SubjectResult struct {
	Name     string          `json:"name"`
	Strategy string          `json:"strategy"`
	Noise    float64         `json:"noise"`
	Score    float64         `json:"score"`
	Verdict  metrics.Verdict `json:"verdict"`
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Experiment (seed %d) ===\n", r.Seed)
	for _, c := range r.Cohorts {
		fmt.Fprintf(w, "Cohort %-10s : %d trajectories, %d observations\n", c.Name, c.Trajectories, c.Observations)
	}

	if len(r.Dwell) > 0 {
		fmt.Fprintf(w, "\nDwell (first member of each group):\n")
		for _, d := range r.Dwell {
			fmt.Fprintf(w, "  %-10s %-11s visits %4d  switches %d  mean %.2f (expected %.2f)  max %d\n",
				d.Cohort, d.Strategy, d.Visits, d.Switches, d.MeanDwell, d.ExpectedDwell, d.MaxDwell)
		}
	}

	s := r.Structure
	fmt.Fprintf(w, "\n=== Structure recovery (trained on %s) ===\n", s.TrainCohort)
	fmt.Fprintf(w, "%-16s %14s %14s\n", "Method", "Spatial error", "SRS("+s.RecallStrategy+")")
	if s.KMeans != nil {
		fmt.Fprintf(w, "%-16s %14.2f %14s\n", "k-means", s.KMeans.Error, "n/a")
	}
	fmt.Fprintf(w, "%-16s %14s %14.4f\n", "Markov", "n/a", s.Markov.Recall)
	if s.Model != nil {
		fmt.Fprintf(w, "%-16s %14.2f %14.4f\n", "Sequence model", s.Model.SpatialError, s.Model.Structure.Recall)
	}
	printRecall(w, "Markov", s.Markov.RecallByStrategy)
	if s.Model != nil {
		printRecall(w, "Sequence model", s.Model.Structure.RecallByStrategy)

		fmt.Fprintf(w, "\nAnisotropy (sqrt(lambda_max)/sqrt(lambda_min)):\n")
		for _, a := range s.Model.Anisotropy {
			kind := "fixation"
			if a.Scanning {
				kind = "scanning"
			}
			if !a.Valid {
				fmt.Fprintf(w, "  %-4s %-9s undefined\n", a.Target, kind)
				continue
			}
			fmt.Fprintf(w, "  %-4s %-9s %.2f\n", a.Target, kind, a.Ratio)
		}
		fmt.Fprintf(w, "\nBranching:\n")
		for _, b := range s.Model.Branching {
			fmt.Fprintf(w, "  %-11s %s -> %-4s %.4f\n", b.Strategy, b.From, b.To, b.Prob)
		}
	}

	if c := r.Competency; c != nil {
		th := c.Threshold
		fmt.Fprintf(w, "\n=== Competency ===\n")
		fmt.Fprintf(w, "Threshold            : %.4f (mean %.4f - %.1f x std %.4f, n=%d)\n", th.Value, th.Mean, th.K, th.StdDev, th.N)
		for _, cs := range c.Cohorts {
			fmt.Fprintf(w, "Cohort %-10s : mean %.4f  p10 %.4f  p50 %.4f  p90 %.4f  pass %.1f%%\n",
				cs.Name, cs.Summary.Mean, cs.Summary.P10, cs.Summary.P50, cs.Summary.P90, 100*cs.PassRate)
		}
		for _, g := range c.Gaps {
			if g.Gap == nil {
				fmt.Fprintf(w, "Gap %s vs %-10s : unbounded\n", g.Reference, g.Cohort)
				continue
			}
			fmt.Fprintf(w, "Gap %s vs %-10s : %.2f std\n", g.Reference, g.Cohort, *g.Gap)
		}
		for _, sub := range c.Subjects {
			fmt.Fprintf(w, "Subject %-16s (%s, noise %.0f): %.4f -> %s\n", sub.Name, sub.Strategy, sub.Noise, sub.Score, sub.Verdict)
		}
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped: %s\n", strings.Join(r.Skipped, ", "))
	}
}

func printRecall(w io.Writer, label string, recall map[string]float64) {
	names := make([]string, 0, len(recall))
	for n := range recall {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "\nSRS by strategy (%s):\n", label)
	for _, n := range names {
		fmt.Fprintf(w, "  %-11s %.4f\n", n, recall[n])
	}
}
