package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewScanTrace()

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalSteps != 0 || summary.VisitCount != 0 || summary.SwitchCount != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.MeanDwell != 0 || summary.MaxDwell != 0 {
		t.Error("expected 0 dwell values")
	}
	if len(summary.TargetDistribution) != 0 {
		t.Error("expected empty target distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil || summary.TargetDistribution == nil {
		t.Fatal("expected non-nil summary with initialized map")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN visits of lengths 2, 4, 6 over two targets and one switch
	st := &ScanTrace{
		Visits: []VisitRecord{
			{Target: 0, Strategy: "Classic", Start: 0, Length: 2},
			{Target: 1, Strategy: "Classic", Start: 2, Length: 4},
			{Target: 0, Strategy: "Acute", Start: 6, Length: 6},
		},
		Switches: []SwitchRecord{{Step: 6, Strategy: "Acute"}},
	}

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts and dwell statistics match
	if summary.TotalSteps != 12 {
		t.Errorf("expected 12 total steps, got %d", summary.TotalSteps)
	}
	if summary.VisitCount != 3 || summary.SwitchCount != 1 {
		t.Errorf("expected 3 visits and 1 switch, got %d and %d", summary.VisitCount, summary.SwitchCount)
	}
	if summary.MeanDwell != 4 {
		t.Errorf("expected mean dwell 4, got %v", summary.MeanDwell)
	}
	if summary.MaxDwell != 6 {
		t.Errorf("expected max dwell 6, got %d", summary.MaxDwell)
	}
	if summary.UniqueTargets != 2 || summary.TargetDistribution[0] != 2 {
		t.Errorf("unexpected target distribution %v", summary.TargetDistribution)
	}
}
