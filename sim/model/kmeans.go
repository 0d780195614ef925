package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/muesli/clusters"

	"github.com/bio-saliency/gazesim/sim"
)

const (
	defaultKMeansRestarts = 10
	defaultKMeansMaxIter  = 300
)

// KMeans is the spatial-only clustering baseline. It ignores temporal order.
//
// Initial centers come from k-means++ seeding on a source owned by each call,
// so the same Seed and points always give the same centers. Of Restarts
// independent runs the one with the lowest inertia wins.
type KMeans struct {
	Seed int64
	// Restarts is the number of seeded runs. Zero means 10.
	Restarts int
	// MaxIter caps Lloyd iterations per run. Zero means 300.
	MaxIter int
	// DeltaThreshold stops a run once fewer than this fraction of points
	// change cluster. Zero runs to convergence.
	DeltaThreshold float64
}

// Cluster runs k-means over the points and returns the k centers.
func (c KMeans) Cluster(points []sim.Point, k int) ([]sim.Point, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(points) < k {
		return nil, fmt.Errorf("need at least k=%d points, got %d", k, len(points))
	}
	if c.DeltaThreshold < 0 || c.DeltaThreshold >= 1 {
		return nil, fmt.Errorf("delta threshold must be in [0, 1), got %v", c.DeltaThreshold)
	}
	restarts := c.Restarts
	if restarts <= 0 {
		restarts = defaultKMeansRestarts
	}
	maxIter := c.MaxIter
	if maxIter <= 0 {
		maxIter = defaultKMeansMaxIter
	}

	obs := make(clusters.Observations, len(points))
	for i, p := range points {
		if !p.IsFinite() {
			return nil, fmt.Errorf("point %d is not finite: %v", i, p)
		}
		obs[i] = clusters.Coordinates{p.X, p.Y}
	}

	rng := rand.New(rand.NewSource(c.Seed))
	var (
		best        clusters.Clusters
		bestInertia = math.Inf(1)
	)
	for r := 0; r < restarts; r++ {
		cc := seedPlusPlus(rng, obs, k)
		lloyd(cc, obs, maxIter, c.DeltaThreshold)
		if in := inertia(cc, obs); in < bestInertia {
			best, bestInertia = cc, in
		}
	}

	centers := make([]sim.Point, len(best))
	for i, cl := range best {
		centers[i] = sim.Point{X: cl.Center[0], Y: cl.Center[1]}
	}
	return centers, nil
}

// seedPlusPlus picks k initial centers, each drawn with probability
// proportional to its squared distance from the nearest center so far.
func seedPlusPlus(rng *rand.Rand, obs clusters.Observations, k int) clusters.Clusters {
	cc := make(clusters.Clusters, 0, k)
	cc = append(cc, clusters.Cluster{Center: copyCoords(obs[rng.Intn(len(obs))])})

	d2 := make([]float64, len(obs))
	for len(cc) < k {
		total := 0.0
		for i, o := range obs {
			// Coordinates.Distance is the squared euclidean distance.
			d2[i] = o.Distance(cc[cc.Nearest(o)].Center)
			total += d2[i]
		}
		next := rng.Intn(len(obs))
		if total > 0 {
			u := rng.Float64() * total
			for i, d := range d2 {
				u -= d
				if u < 0 {
					next = i
					break
				}
			}
		}
		cc = append(cc, clusters.Cluster{Center: copyCoords(obs[next])})
	}
	return cc
}

// lloyd refines cc in place. A cluster left empty keeps its previous center.
func lloyd(cc clusters.Clusters, obs clusters.Observations, maxIter int, delta float64) {
	assign := make([]int, len(obs))
	for i := range assign {
		assign[i] = -1
	}
	for it := 0; it < maxIter; it++ {
		cc.Reset()
		changes := 0
		for p, o := range obs {
			ci := cc.Nearest(o)
			cc[ci].Append(o)
			if assign[p] != ci {
				assign[p] = ci
				changes++
			}
		}
		if changes == 0 {
			return
		}
		cc.Recenter()
		if float64(changes) < float64(len(obs))*delta {
			return
		}
	}
}

func inertia(cc clusters.Clusters, obs clusters.Observations) float64 {
	sum := 0.0
	for _, o := range obs {
		sum += o.Distance(cc[cc.Nearest(o)].Center)
	}
	return sum
}

func copyCoords(o clusters.Observation) clusters.Coordinates {
	src := o.Coordinates()
	dst := make(clusters.Coordinates, len(src))
	copy(dst, src)
	return dst
}
