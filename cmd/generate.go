package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/cohort"
	"github.com/bio-saliency/gazesim/sim/experiment"
	"github.com/bio-saliency/gazesim/sim/store"
)

// generateCmd generates every cohort of an experiment and stores them as a new run
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate cohorts and store them in the database",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadExperimentSpec(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := applyOverrides(cmd.Flags(), spec); err != nil {
			logrus.Fatalf("%v", err)
		}

		startTime := time.Now()
		runID, err := generateRun(cmd.Context(), spec, dbPath, os.Stdout)
		if err != nil {
			logrus.Fatalf("generate: %v", err)
		}
		logrus.Infof("Run %s stored in %s (%.1fs)", runID, dbPath, time.Since(startTime).Seconds())
	},
}

// generateRun validates spec, generates its cohorts and stores them under a
// new run. Returns the run ID.
func generateRun(ctx context.Context, spec *experiment.Spec, path string, w io.Writer) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	gen := sim.NewReferenceGenerator()
	if err := spec.Validate(gen.Strategies()); err != nil {
		return "", fmt.Errorf("invalid experiment spec: %w", err)
	}
	cohorts, err := cohort.GenerateAll(ctx, gen, spec.Cohorts, sim.NewSimulationKey(spec.Seed), spec.Workers)
	if err != nil {
		return "", err
	}

	config, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encoding run config: %w", err)
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	runID, err := st.CreateRun(ctx, spec.Seed, string(config))
	if err != nil {
		return "", err
	}
	for _, c := range cohorts {
		if err := st.SaveCohort(ctx, runID, c); err != nil {
			return "", fmt.Errorf("saving cohort %s: %w", c.Name, err)
		}
		fmt.Fprintf(w, "Cohort %-10s : %d trajectories\n", c.Name, c.Len())
	}
	fmt.Fprintf(w, "Run ID               : %s\n", runID)
	return runID, nil
}
