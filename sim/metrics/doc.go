// Package metrics evaluates how well a structure-recovery method infers the
// generator's targets and transition structure.
//
// Transition matrices are gonum matrices: every function accepts a
// mat.Matrix and the Markov baseline returns a *mat.Dense. Rows are source
// targets, columns destination targets.
package metrics
