package trace

// TraceSummary aggregates dwell statistics from a ScanTrace.
type TraceSummary struct {
	TotalSteps         int
	VisitCount         int
	SwitchCount        int
	MeanDwell          float64
	MaxDwell           int
	UniqueTargets      int
	TargetDistribution map[int]int // target index → number of visits
}

// Summarize computes aggregate statistics from a ScanTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *ScanTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.VisitCount = len(st.Visits)
	summary.SwitchCount = len(st.Switches)
	for _, v := range st.Visits {
		summary.TotalSteps += v.Length
		summary.TargetDistribution[v.Target]++
		if v.Length > summary.MaxDwell {
			summary.MaxDwell = v.Length
		}
	}
	if summary.VisitCount > 0 {
		summary.MeanDwell = float64(summary.TotalSteps) / float64(summary.VisitCount)
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
