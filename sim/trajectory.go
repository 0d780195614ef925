package sim

// Trajectory is a finite ordered sequence of 2-D observations.
// It carries no provenance; callers keep strategy and noise alongside it.
type Trajectory []Point

// Cohort is a named, ordered collection of trajectories generated under
// one condition (e.g. "expert", "novice").
type Cohort struct {
	Name         string
	Trajectories []Trajectory
}

// Len returns the number of trajectories in the cohort.
func (c Cohort) Len() int {
	return len(c.Trajectories)
}

// Head returns a cohort view with the first n trajectories (all if n <= 0 or
// n exceeds the cohort size).
func (c Cohort) Head(n int) Cohort {
	if n <= 0 || n > len(c.Trajectories) {
		n = len(c.Trajectories)
	}
	return Cohort{Name: c.Name, Trajectories: c.Trajectories[:n]}
}

// Flatten concatenates trajectories into one observation batch plus the
// per-sequence lengths needed to split it back.
func Flatten(trajectories []Trajectory) (points []Point, lengths []int) {
	total := 0
	for _, tr := range trajectories {
		total += len(tr)
	}
	points = make([]Point, 0, total)
	lengths = make([]int, len(trajectories))
	for i, tr := range trajectories {
		points = append(points, tr...)
		lengths[i] = len(tr)
	}
	return points, lengths
}

// Split is the inverse of Flatten. The lengths must sum to len(points).
func Split(points []Point, lengths []int) ([]Trajectory, bool) {
	out := make([]Trajectory, len(lengths))
	offset := 0
	for i, n := range lengths {
		if n < 0 || offset+n > len(points) {
			return nil, false
		}
		out[i] = Trajectory(points[offset : offset+n : offset+n])
		offset += n
	}
	return out, offset == len(points)
}
