package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bio-saliency/gazesim/sim/metrics"
)

var (
	scoresPath      string  // Scores YAML
	calibrateCohort string  // Normal-behaviour cohort
	calibrateSize   int     // Head of the calibration cohort to use
	thresholdK      float64 // Threshold multiplier
)

// ScoreFile holds length-normalised log-likelihoods computed outside gazesim.
//
//	cohorts:
//	  expert: [-5.91, -6.02, ...]
//	  novice: [-9.40, ...]
//	subjects:
//	  - {name: reader-17, score: -6.4}
type ScoreFile struct {
	Cohorts  map[string][]float64 `yaml:"cohorts"`
	Subjects []SubjectScore       `yaml:"subjects"`
}

// SubjectScore is one held-out reader's normalised score.
type SubjectScore struct {
	Name  string  `yaml:"name"`
	Score float64 `yaml:"score"`
}

// assessCmd calibrates the competency threshold and classifies scores
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Calibrate the competency threshold and classify scored readers",
	Run: func(cmd *cobra.Command, args []string) {
		if scoresPath == "" {
			logrus.Fatalf("--scores is required")
		}
		sf, err := loadScoreFile(scoresPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := assess(sf, calibrateCohort, calibrateSize, thresholdK, os.Stdout); err != nil {
			logrus.Fatalf("assess: %v", err)
		}
	},
}

func loadScoreFile(path string) (*ScoreFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scores: %w", err)
	}
	var sf ScoreFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("parsing scores: %w", err)
	}
	return &sf, nil
}

func assess(sf *ScoreFile, calibrate string, size int, k float64, w io.Writer) error {
	calib, ok := sf.Cohorts[calibrate]
	if !ok {
		return fmt.Errorf("calibration cohort %q not in scores file", calibrate)
	}
	if size > 0 && size < len(calib) {
		calib = calib[:size]
	}
	th, err := metrics.Calibrate(calib, k)
	if err != nil {
		return fmt.Errorf("calibrating on %s: %w", calibrate, err)
	}

	fmt.Fprintf(w, "Threshold            : %.4f (mean %.4f - %.1f x std %.4f, n=%d)\n", th.Value, th.Mean, th.K, th.StdDev, th.N)
	if th.Degenerate {
		fmt.Fprintf(w, "Warning              : calibration scores have zero variance\n")
	}

	names := make([]string, 0, len(sf.Cohorts))
	for n := range sf.Cohorts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		scores := sf.Cohorts[n]
		if len(scores) == 0 {
			continue
		}
		rate := metrics.PassRate(metrics.ClassifyAll(scores, th))
		fmt.Fprintf(w, "Cohort %-13s : %d scores, pass %.1f%%\n", n, len(scores), 100*rate)
	}
	for _, s := range sf.Subjects {
		fmt.Fprintf(w, "Subject %-12s : %.4f -> %s\n", s.Name, s.Score, metrics.Classify(s.Score, th))
	}
	return nil
}
