package sim

import (
	"fmt"
	"math"
)

// Waveform parameterises the deterministic offset applied while a scanning
// target is active: a horizontal sawtooth sweep plus a narrow Gaussian
// vertical pulse (the QRS complex being traced).
type Waveform struct {
	SweepPeriod    int     `yaml:"sweep_period"`
	SweepHalfRange float64 `yaml:"sweep_half_range"`
	PulsePeriod    int     `yaml:"pulse_period"`
	PulseAmplitude float64 `yaml:"pulse_amplitude"`
	PulseWidth     float64 `yaml:"pulse_width"` // denominator of the squared phase distance
}

// DefaultWaveform returns the reference rhythm-strip waveform.
func DefaultWaveform() Waveform {
	return Waveform{
		SweepPeriod:    100,
		SweepHalfRange: 50,
		PulsePeriod:    50,
		PulseAmplitude: 40,
		PulseWidth:     0.002,
	}
}

// Validate checks the waveform periods and width.
func (w Waveform) Validate() error {
	if w.SweepPeriod <= 0 {
		return fmt.Errorf("waveform sweep_period must be positive, got %d", w.SweepPeriod)
	}
	if w.PulsePeriod <= 0 {
		return fmt.Errorf("waveform pulse_period must be positive, got %d", w.PulsePeriod)
	}
	if w.PulseWidth <= 0 || math.IsNaN(w.PulseWidth) {
		return fmt.Errorf("waveform pulse_width must be positive, got %f", w.PulseWidth)
	}
	return nil
}

// Offset returns delta(t). The horizontal component ramps linearly across the
// sweep period from -SweepHalfRange; the vertical component peaks mid-cycle of
// the pulse period.
func (w Waveform) Offset(t int) Point {
	slope := 2 * w.SweepHalfRange / float64(w.SweepPeriod)
	dx := float64(t%w.SweepPeriod)*slope - w.SweepHalfRange

	pulsePhase := float64(t%w.PulsePeriod) / float64(w.PulsePeriod)
	d := pulsePhase - 0.5
	dy := w.PulseAmplitude * math.Exp(-(d*d)/w.PulseWidth)

	return Point{X: dx, Y: dy}
}
