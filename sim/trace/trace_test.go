package trace

import "testing"

func TestObserve_MergesConsecutiveSteps(t *testing.T) {
	// GIVEN three steps on target 1 then two on target 2
	st := NewScanTrace()
	for step := 0; step < 3; step++ {
		st.Observe(step, 1, "Classic")
	}
	st.Observe(3, 2, "Classic")
	st.Observe(4, 2, "Classic")

	// THEN two visits are recorded
	if len(st.Visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(st.Visits))
	}
	if st.Visits[0] != (VisitRecord{Target: 1, Strategy: "Classic", Start: 0, Length: 3}) {
		t.Errorf("first visit = %+v", st.Visits[0])
	}
	if st.Visits[1] != (VisitRecord{Target: 2, Strategy: "Classic", Start: 3, Length: 2}) {
		t.Errorf("second visit = %+v", st.Visits[1])
	}
}

func TestObserve_StrategyChangeStartsNewVisit(t *testing.T) {
	st := NewScanTrace()
	st.Observe(0, 0, "Classic")
	st.Observe(1, 0, "Acute")
	if len(st.Visits) != 2 {
		t.Fatalf("expected 2 visits across a strategy change, got %d", len(st.Visits))
	}
}

func TestObserve_NilTraceIsNoop(t *testing.T) {
	var st *ScanTrace
	st.Observe(0, 0, "Classic")
	st.RecordSwitch(SwitchRecord{Step: 1, Strategy: "Acute"})
	if st.Labels() != nil {
		t.Error("expected nil labels from nil trace")
	}
}

func TestLabels_ExpandsVisits(t *testing.T) {
	st := NewScanTrace()
	st.Observe(0, 4, "s")
	st.Observe(1, 4, "s")
	st.Observe(2, 7, "s")
	got := st.Labels()
	want := []int{4, 4, 7}
	if len(got) != len(want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
