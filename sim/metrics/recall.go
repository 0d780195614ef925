package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/bio-saliency/gazesim/sim"
)

// StructuralRecall returns the mean transition probability the matrix places
// on the strategy's expected edges (consecutive pairs plus wraparound).
// In [0, 1] for a row-stochastic matrix. Not normalised across strategies:
// overlapping strategies can both score high on the same matrix.
func StructuralRecall(m mat.Matrix, s sim.Strategy) (float64, error) {
	r, c := m.Dims()
	if r != c {
		return 0, fmt.Errorf("transition matrix must be square, got %dx%d", r, c)
	}
	edges := s.Edges()
	if len(edges) == 0 {
		return 0, fmt.Errorf("strategy %q has no targets", s.Name)
	}
	sum := 0.0
	for _, e := range edges {
		if e.From < 0 || e.From >= r || e.To < 0 || e.To >= r {
			return 0, fmt.Errorf("strategy %q edge %d->%d outside %dx%d matrix", s.Name, e.From, e.To, r, c)
		}
		sum += m.At(e.From, e.To)
	}
	return sum / float64(len(edges)), nil
}

// RecallByName resolves name in the table and computes its recall.
func RecallByName(m mat.Matrix, table *sim.StrategyTable, name string) (float64, error) {
	s, err := table.Lookup(name)
	if err != nil {
		return 0, err
	}
	return StructuralRecall(m, s)
}

// RecallAll computes the recall of every strategy in the table.
func RecallAll(m mat.Matrix, table *sim.StrategyTable) (map[string]float64, error) {
	out := make(map[string]float64, len(table.Names()))
	for _, name := range table.Names() {
		v, err := RecallByName(m, table, name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
