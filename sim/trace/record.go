// Package trace records the latent visit sequence behind a generated
// trajectory. It has no dependency on sim/ and stores plain data types.
package trace

// VisitRecord captures one dwell segment: Length consecutive steps spent on
// Target under Strategy, beginning at step Start.
type VisitRecord struct {
	Target   int
	Strategy string
	Start    int
	Length   int
}

// SwitchRecord captures a time-triggered strategy switch.
type SwitchRecord struct {
	Step     int
	Strategy string
}
