package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string // Log verbosity level

	// Shared by generate and experiment
	configPath string // Experiment YAML; empty uses the reference experiment
	seed       int64  // Overrides the YAML seed when set
	workers    int    // Overrides the YAML worker count when set

	// Shared by generate, baseline and runs
	dbPath string // SQLite database path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "gazesim",
	Short: "Synthetic gaze trajectories for ECG reading and the metrics that validate them",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	generateCmd.Flags().StringVar(&configPath, "config", "", "Experiment YAML (default: reference experiment)")
	generateCmd.Flags().StringVar(&dbPath, "db", "gazesim.db", "SQLite database path")
	generateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for trajectory generation (overrides YAML seed when set)")
	generateCmd.Flags().IntVar(&workers, "workers", 0, "Parallel generation workers (0 = GOMAXPROCS)")

	baselineCmd.Flags().StringVar(&dbPath, "db", "gazesim.db", "SQLite database path")
	baselineCmd.Flags().StringVar(&baselineRun, "run", "", "Run ID (default: most recent run)")
	baselineCmd.Flags().StringVar(&baselineCohort, "cohort", "expert", "Cohort to train the Markov baseline on")
	baselineCmd.Flags().Float64Var(&baselineMinProb, "min-prob", 0.01, "Edge visibility cutoff for the printed topology")

	runsCmd.Flags().StringVar(&dbPath, "db", "gazesim.db", "SQLite database path")

	assessCmd.Flags().StringVar(&scoresPath, "scores", "", "YAML file of normalised scores per cohort")
	assessCmd.Flags().StringVar(&calibrateCohort, "calibrate", "expert", "Cohort that defines normal behaviour")
	assessCmd.Flags().IntVar(&calibrateSize, "size", 200, "Use the first N calibration scores (0 = all)")
	assessCmd.Flags().Float64Var(&thresholdK, "k", 2.5, "Threshold multiplier: mean - k*std")

	experimentCmd.Flags().StringVar(&configPath, "config", "", "Experiment YAML (default: reference experiment)")
	experimentCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for trajectory generation (overrides YAML seed when set)")
	experimentCmd.Flags().IntVar(&workers, "workers", 0, "Parallel generation workers (0 = GOMAXPROCS)")
	experimentCmd.Flags().StringVar(&experimentOutput, "output", "", "Write the JSON report to this file")

	rootCmd.AddCommand(generateCmd, baselineCmd, runsCmd, assessCmd, experimentCmd)
}
