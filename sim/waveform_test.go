package sim

import (
	"math"
	"testing"
)

func TestWaveform_Offset_MatchesReferenceFormula(t *testing.T) {
	w := DefaultWaveform()
	for step := 0; step < 250; step++ {
		got := w.Offset(step)

		wantX := float64(step%100) - 50
		phase := float64(step%50) / 50.0
		wantY := math.Exp(-((phase-0.5)*(phase-0.5))/0.002) * 40

		if got.X != wantX {
			t.Fatalf("Offset(%d).X = %v, want %v", step, got.X, wantX)
		}
		if math.Abs(got.Y-wantY) > 1e-12 {
			t.Fatalf("Offset(%d).Y = %v, want %v", step, got.Y, wantY)
		}
	}
}

func TestWaveform_Offset_PulsePeaksMidCycle(t *testing.T) {
	w := DefaultWaveform()
	if got := w.Offset(25).Y; got != 40 {
		t.Errorf("pulse peak = %v, want 40", got)
	}
	if got := w.Offset(0).Y; got > 1e-40 {
		t.Errorf("pulse at cycle start = %v, want ~0", got)
	}
}

func TestWaveform_Offset_SweepRange(t *testing.T) {
	w := DefaultWaveform()
	if got := w.Offset(0).X; got != -50 {
		t.Errorf("sweep start = %v, want -50", got)
	}
	if got := w.Offset(99).X; got != 49 {
		t.Errorf("sweep end = %v, want 49", got)
	}
	if got := w.Offset(100).X; got != -50 {
		t.Errorf("sweep reset = %v, want -50", got)
	}
}

func TestWaveform_Validate(t *testing.T) {
	bad := []Waveform{
		{SweepPeriod: 0, PulsePeriod: 50, PulseWidth: 0.002},
		{SweepPeriod: 100, PulsePeriod: 0, PulseWidth: 0.002},
		{SweepPeriod: 100, PulsePeriod: 50, PulseWidth: 0},
	}
	for i, w := range bad {
		if err := w.Validate(); err == nil {
			t.Errorf("case %d: expected error for %+v", i, w)
		}
	}
	if err := DefaultWaveform().Validate(); err != nil {
		t.Errorf("default waveform invalid: %v", err)
	}
}
