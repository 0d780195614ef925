// Package experiment runs the end-to-end validation of the gaze simulator:
// generate expert and novice cohorts, measure how well spatial and sequential
// baselines recover the layout and its visiting structure, then calibrate a
// competency threshold and score held-out subjects.
//
// The sequence-model fitter and the clusterer are injected through Deps.
// Sections whose collaborator is nil are skipped and reported as such.
package experiment
