package cmd

import (
	"github.com/spf13/pflag"

	"github.com/bio-saliency/gazesim/sim/experiment"
)

// loadExperimentSpec reads the experiment YAML, or returns the reference
// experiment when path is empty.
func loadExperimentSpec(path string) (*experiment.Spec, error) {
	if path == "" {
		spec := experiment.DefaultSpec()
		return &spec, nil
	}
	return experiment.LoadSpec(path)
}

// applyOverrides copies --seed and --workers into the experiment spec, but only when
// the user passed them: an unset flag never clobbers the YAML value.
func applyOverrides(flags *pflag.FlagSet, spec *experiment.Spec) error {
	if flags.Changed("seed") {
		v, err := flags.GetInt64("seed")
		if err != nil {
			return err
		}
		spec.Seed = v
	}
	if flags.Changed("workers") {
		v, err := flags.GetInt("workers")
		if err != nil {
			return err
		}
		spec.Workers = v
	}
	return nil
}
