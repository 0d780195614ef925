package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/experiment"
	"github.com/bio-saliency/gazesim/sim/model"
)

var experimentOutput string // JSON report path

// experimentCmd runs the end-to-end validation experiment
var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run the validation experiment (k-means and Markov baselines)",
	Long: `Runs the validation experiment with the built-in k-means clusterer.
No sequence-model fitter ships with gazesim, so model recovery and the
competency tables are skipped; use "gazesim assess" with externally
computed scores for those.`,
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadExperimentSpec(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := applyOverrides(cmd.Flags(), spec); err != nil {
			logrus.Fatalf("%v", err)
		}

		startTime := time.Now()
		deps := experiment.Deps{Clusterer: newKMeans(spec.Seed)}
		if err := runExperiment(cmd.Context(), *spec, deps, experimentOutput, os.Stdout); err != nil {
			logrus.Fatalf("experiment: %v", err)
		}
		logrus.Infof("Experiment complete (%.1fs)", time.Since(startTime).Seconds())
	},
}

// newKMeans seeds the k-means baseline from its own subsystem of the
// experiment seed.
func newKMeans(seed int64) model.KMeans {
	return model.KMeans{Seed: sim.DeriveSeed(sim.NewSimulationKey(seed), sim.SubsystemKMeans)}
}

func runExperiment(ctx context.Context, spec experiment.Spec, deps experiment.Deps, output string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := experiment.Run(ctx, spec, deps)
	if err != nil {
		return err
	}
	report.Print(w)

	if output == "" {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logrus.Infof("Report written to %s", output)
	return nil
}
