package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// DefaultThresholdK is the reference number of standard deviations below the
// calibration mean at which a sequence fails.
const DefaultThresholdK = 2.5

// ErrEmptyCohort is returned when calibrating on no scores.
var ErrEmptyCohort = errors.New("calibration cohort is empty")

// Verdict is the outcome of a competency check.
type Verdict string

const (
	Pass Verdict = "PASS"
	Fail Verdict = "FAIL"
)

// Threshold is a calibrated one-sided lower bound on normalised sequence
// scores: Value = Mean - K*StdDev.
type Threshold struct {
	Mean   float64
	StdDev float64 // population standard deviation
	K      float64
	Value  float64
	N      int

	// Degenerate is set when the cohort has zero variance; Value == Mean.
	Degenerate bool
}

// Calibrate computes the threshold from the scores of the cohort that
// defines normal behaviour. Scores are per-sequence log-likelihoods already
// divided by sequence length.
func Calibrate(scores []float64, k float64) (Threshold, error) {
	if len(scores) == 0 {
		return Threshold{}, ErrEmptyCohort
	}
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return Threshold{}, fmt.Errorf("threshold multiplier must be finite and non-negative, got %f", k)
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Threshold{}, fmt.Errorf("score[%d] must be finite, got %f", i, s)
		}
	}
	mean, std := stat.PopMeanStdDev(scores, nil)
	th := Threshold{
		Mean:   mean,
		StdDev: std,
		K:      k,
		Value:  mean - k*std,
		N:      len(scores),
	}
	if std == 0 {
		th.Degenerate = true
		logrus.Warnf("calibration cohort of %d scores has zero variance; threshold equals the mean %.4f", len(scores), mean)
	}
	return th, nil
}

// Classify returns Pass when score is strictly above the threshold.
// There is no upper bound.
func Classify(score float64, th Threshold) Verdict {
	if score > th.Value {
		return Pass
	}
	return Fail
}

// ClassifyAll classifies every score.
func ClassifyAll(scores []float64, th Threshold) []Verdict {
	out := make([]Verdict, len(scores))
	for i, s := range scores {
		out[i] = Classify(s, th)
	}
	return out
}

// PassRate returns the fraction of Pass verdicts (0 for none).
func PassRate(verdicts []Verdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	n := 0
	for _, v := range verdicts {
		if v == Pass {
			n++
		}
	}
	return float64(n) / float64(len(verdicts))
}

// ScoreSummary describes the distribution of one cohort's scores.
type ScoreSummary struct {
	N             int
	Mean, StdDev  float64
	P10, P50, P90 float64
}

// SummarizeScores computes a ScoreSummary. Percentiles use linear
// interpolation between order statistics.
func SummarizeScores(scores []float64) (ScoreSummary, error) {
	if len(scores) == 0 {
		return ScoreSummary{}, ErrEmptyCohort
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return ScoreSummary{
		N:      len(sorted),
		Mean:   mean,
		StdDev: std,
		P10:    stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:    stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:    stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}, nil
}

// CompetencyGap is the separation between two score cohorts in pooled
// standard deviations: (mean(a) - mean(b)) / sqrt((var(a)+var(b))/2).
// Returns +Inf when both cohorts have zero variance and different means.
func CompetencyGap(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyCohort
	}
	ma, va := stat.PopMeanVariance(a, nil)
	mb, vb := stat.PopMeanVariance(b, nil)
	pooled := math.Sqrt((va + vb) / 2)
	if pooled == 0 {
		switch {
		case ma > mb:
			return math.Inf(1), nil
		case ma < mb:
			return math.Inf(-1), nil
		}
		return 0, nil
	}
	return (ma - mb) / pooled, nil
}
