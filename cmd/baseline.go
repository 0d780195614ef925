package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bio-saliency/gazesim/sim"
	"github.com/bio-saliency/gazesim/sim/metrics"
	"github.com/bio-saliency/gazesim/sim/store"
)

var (
	baselineRun     string  // Run ID; empty picks the newest
	baselineCohort  string  // Cohort to train on
	baselineMinProb float64 // Topology cutoff
)

// baselineCmd trains the first-order Markov baseline on a stored cohort
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Train the Markov baseline on a stored cohort and report structural recall",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBaseline(cmd.Context(), dbPath, baselineRun, baselineCohort, baselineMinProb, os.Stdout); err != nil {
			logrus.Fatalf("baseline: %v", err)
		}
	},
}

// runsCmd lists stored runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List generation runs stored in the database",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRuns(cmd.Context(), dbPath, os.Stdout); err != nil {
			logrus.Fatalf("runs: %v", err)
		}
	},
}

func runBaseline(ctx context.Context, path, runID, cohortName string, minProb float64, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	if runID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs in %s; run `gazesim generate` first", path)
		}
		runID = runs[0].ID
		logrus.Infof("Using most recent run %s", runID)
	}
	c, err := st.LoadCohort(ctx, runID, cohortName)
	if err != nil {
		return err
	}

	gen := sim.NewReferenceGenerator()
	layout := gen.Layout()
	m, err := metrics.TrainMarkov(c.Trajectories, layout)
	if err != nil {
		return err
	}
	recall, err := metrics.RecallAll(m, gen.Strategies())
	if err != nil {
		return err
	}
	edges, err := metrics.Topology(m, minProb)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Markov baseline (run %s, cohort %s, %d trajectories) ===\n", runID, c.Name, c.Len())
	for _, name := range gen.Strategies().Names() {
		fmt.Fprintf(w, "SRS %-11s : %.4f\n", name, recall[name])
	}
	fmt.Fprintf(w, "\nTopology (p > %.2f, self loops removed):\n", minProb)
	for _, e := range edges {
		fmt.Fprintf(w, "  %-4s -> %-4s %.3f\n", layout.Target(e.From).Name, layout.Target(e.To).Name, e.Prob)
	}
	return nil
}

func listRuns(ctx context.Context, path string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		cohorts, err := st.ListCohorts(ctx, r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  seed=%-6d %s  %v\n", r.ID, r.Seed, r.CreatedAt.Format("2006-01-02 15:04:05"), cohorts)
	}
	return nil
}
