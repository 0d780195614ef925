package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// DefaultTopologyMinProb is the reference edge-visibility cutoff.
const DefaultTopologyMinProb = 0.01

// WeightedEdge is a directed edge of a recovered topology.
type WeightedEdge struct {
	From, To int
	Prob     float64
}

// Topology extracts the between-target structure of a transition matrix:
// self loops are dropped, each row is renormalised over its remaining mass,
// and edges with probability > minProb are kept. Sorted by (From, To).
func Topology(m mat.Matrix, minProb float64) ([]WeightedEdge, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("transition matrix must be square, got %dx%d", r, c)
	}
	var edges []WeightedEdge
	for i := 0; i < r; i++ {
		off := 0.0
		for j := 0; j < c; j++ {
			if j != i {
				off += m.At(i, j)
			}
		}
		if off <= 0 {
			continue
		}
		for j := 0; j < c; j++ {
			if j == i {
				continue
			}
			if p := m.At(i, j) / off; p > minProb {
				edges = append(edges, WeightedEdge{From: i, To: j, Prob: p})
			}
		}
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].From != edges[b].From {
			return edges[a].From < edges[b].From
		}
		return edges[a].To < edges[b].To
	})
	return edges, nil
}
