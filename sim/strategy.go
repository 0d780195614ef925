package sim

import (
	"errors"
	"fmt"
	"sort"
)

// Reference strategy names.
const (
	StrategyClassic    = "Classic"
	StrategyTechnician = "Technician"
	StrategyAcute      = "Acute"

	// StrategyHybrid is not a permutation: it names the schedule that starts
	// on Classic and switches to Acute halfway through.
	StrategyHybrid = "Hybrid"

	// DefaultStrategy is used when a generator is asked for an unknown name.
	DefaultStrategy = StrategyClassic
)

// ErrUnknownStrategy is returned by strict lookups of unregistered names.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy is a named permutation of the layout's target indices,
// i.e. one deterministic visiting order.
type Strategy struct {
	Name  string
	Order []int
}

// Validate checks that the order is a bijection over {0, ..., k-1}.
func (s Strategy) Validate(k int) error {
	if s.Name == "" {
		return fmt.Errorf("strategy name must not be empty")
	}
	if len(s.Order) != k {
		return fmt.Errorf("strategy %q: order has %d entries, layout has %d targets", s.Name, len(s.Order), k)
	}
	seen := make([]bool, k)
	for pos, idx := range s.Order {
		if idx < 0 || idx >= k {
			return fmt.Errorf("strategy %q: order[%d]=%d out of range [0, %d)", s.Name, pos, idx, k)
		}
		if seen[idx] {
			return fmt.Errorf("strategy %q: order[%d]=%d repeats a target", s.Name, pos, idx)
		}
		seen[idx] = true
	}
	return nil
}

// Edge is a directed transition between two target indices.
type Edge struct {
	From, To int
}

// Edges returns the strategy's expected directed edges: each consecutive pair
// plus the wraparound edge from the last target back to the first.
func (s Strategy) Edges() []Edge {
	n := len(s.Order)
	if n == 0 {
		return nil
	}
	edges := make([]Edge, 0, n)
	for k := 0; k < n-1; k++ {
		edges = append(edges, Edge{From: s.Order[k], To: s.Order[k+1]})
	}
	return append(edges, Edge{From: s.Order[n-1], To: s.Order[0]})
}

// StrategyTable holds the validated strategies for one layout.
type StrategyTable struct {
	k          int
	strategies map[string]Strategy
}

// NewStrategyTable validates every strategy against the layout size.
func NewStrategyTable(layout *Layout, strategies ...Strategy) (*StrategyTable, error) {
	t := &StrategyTable{k: layout.Len(), strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		if s.Name == StrategyHybrid {
			return nil, fmt.Errorf("strategy name %q is reserved for the hybrid schedule", StrategyHybrid)
		}
		if err := s.Validate(t.k); err != nil {
			return nil, err
		}
		if _, dup := t.strategies[s.Name]; dup {
			return nil, fmt.Errorf("strategy %q registered twice", s.Name)
		}
		order := make([]int, len(s.Order))
		copy(order, s.Order)
		t.strategies[s.Name] = Strategy{Name: s.Name, Order: order}
	}
	return t, nil
}

// ReferenceStrategies returns the three clinical reading strategies over the
// reference layout: sequential, columnar (limb leads regrouped) and
// precordial-first.
func ReferenceStrategies() *StrategyTable {
	t, err := NewStrategyTable(ReferenceLayout(),
		Strategy{Name: StrategyClassic, Order: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		Strategy{Name: StrategyTechnician, Order: []int{0, 5, 3, 4, 1, 2, 6, 7, 8, 9, 10, 11}},
		Strategy{Name: StrategyAcute, Order: []int{6, 7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5}},
	)
	if err != nil {
		panic(err) // static table
	}
	return t
}

// Lookup returns the named strategy.
func (t *StrategyTable) Lookup(name string) (Strategy, error) {
	s, ok := t.strategies[name]
	if !ok {
		return Strategy{}, fmt.Errorf("%w %q; valid: %v", ErrUnknownStrategy, name, t.Names())
	}
	return s, nil
}

// Has reports whether name is a registered strategy.
func (t *StrategyTable) Has(name string) bool {
	_, ok := t.strategies[name]
	return ok
}

// Names returns the registered strategy names, sorted.
func (t *StrategyTable) Names() []string {
	names := make([]string, 0, len(t.strategies))
	for n := range t.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of targets every strategy permutes.
func (t *StrategyTable) Size() int {
	return t.k
}
