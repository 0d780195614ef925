package sim

import (
	"fmt"
	"sort"
)

// Switch replaces the active strategy at Step and resets the pointer to the
// first target of the new strategy.
type Switch struct {
	Step     int
	Strategy string
}

// Schedule is the strategy plan for one trajectory: an initial strategy and
// an ordered list of time-triggered switches.
type Schedule struct {
	Initial  string
	Switches []Switch
}

// FixedSchedule runs a single strategy for the whole trajectory.
func FixedSchedule(name string) Schedule {
	return Schedule{Initial: name}
}

// HybridSchedule starts on Classic and switches to Acute at steps/2.
func HybridSchedule(steps int) Schedule {
	return Schedule{
		Initial:  StrategyClassic,
		Switches: []Switch{{Step: steps / 2, Strategy: StrategyAcute}},
	}
}

// ResolveSchedule maps a strategy name to its schedule. Hybrid expands to
// HybridSchedule; any other name must be registered in the table.
func ResolveSchedule(table *StrategyTable, name string, steps int) (Schedule, error) {
	if name == StrategyHybrid {
		s := HybridSchedule(steps)
		if err := s.Validate(table); err != nil {
			return Schedule{}, err
		}
		return s, nil
	}
	if !table.Has(name) {
		_, err := table.Lookup(name)
		return Schedule{}, err
	}
	return FixedSchedule(name), nil
}

// Validate checks that every strategy is registered and switch steps are
// non-negative. Switches need not be sorted.
func (s Schedule) Validate(table *StrategyTable) error {
	if _, err := table.Lookup(s.Initial); err != nil {
		return fmt.Errorf("initial: %w", err)
	}
	for i, sw := range s.Switches {
		if sw.Step < 0 {
			return fmt.Errorf("switch[%d]: step must be non-negative, got %d", i, sw.Step)
		}
		if _, err := table.Lookup(sw.Strategy); err != nil {
			return fmt.Errorf("switch[%d]: %w", i, err)
		}
	}
	return nil
}

// sorted returns the switches in step order. Stable, so two switches at the
// same step apply in declaration order and the last one wins.
func (s Schedule) sorted() []Switch {
	out := make([]Switch, len(s.Switches))
	copy(out, s.Switches)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}
