package trace

// ScanTrace collects the visit and switch records of one generated trajectory.
type ScanTrace struct {
	Visits   []VisitRecord
	Switches []SwitchRecord
}

// NewScanTrace creates a ScanTrace ready for recording.
func NewScanTrace() *ScanTrace {
	return &ScanTrace{
		Visits:   make([]VisitRecord, 0),
		Switches: make([]SwitchRecord, 0),
	}
}

// Observe records that target was active at step under strategy. Consecutive
// steps on the same target and strategy extend the current visit.
// Safe to call on a nil trace (no-op).
func (st *ScanTrace) Observe(step, target int, strategy string) {
	if st == nil {
		return
	}
	if n := len(st.Visits); n > 0 {
		last := &st.Visits[n-1]
		if last.Target == target && last.Strategy == strategy && last.Start+last.Length == step {
			last.Length++
			return
		}
	}
	st.Visits = append(st.Visits, VisitRecord{Target: target, Strategy: strategy, Start: step, Length: 1})
}

// RecordSwitch appends a strategy switch record. Safe to call on a nil trace.
func (st *ScanTrace) RecordSwitch(record SwitchRecord) {
	if st == nil {
		return
	}
	st.Switches = append(st.Switches, record)
}

// Labels expands the visits into one target index per step.
func (st *ScanTrace) Labels() []int {
	if st == nil {
		return nil
	}
	var labels []int
	for _, v := range st.Visits {
		for i := 0; i < v.Length; i++ {
			labels = append(labels, v.Target)
		}
	}
	return labels
}
