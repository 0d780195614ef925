package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bio-saliency/gazesim/sim/metrics"
)

func writeScores(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestAssess_ClassifiesAgainstCalibratedThreshold(t *testing.T) {
	// GIVEN expert scores with mean -6 and population std 1
	path := writeScores(t, `
cohorts:
  expert: [-5, -7, -5, -7]
  novice: [-12, -11]
subjects:
  - {name: good, score: -6.5}
  - {name: bad, score: -9}
`)
	sf, err := loadScoreFile(path)
	require.NoError(t, err)

	// WHEN assessed with k = 2.5
	var out bytes.Buffer
	require.NoError(t, assess(sf, "expert", 0, 2.5, &out))

	// THEN the threshold is -8.5 and verdicts follow it
	s := out.String()
	assert.Contains(t, s, "Threshold            : -8.5000")
	assert.Contains(t, s, "good         : -6.5000 -> "+string(metrics.Pass))
	assert.Contains(t, s, "bad          : -9.0000 -> "+string(metrics.Fail))
	assert.Contains(t, s, "Cohort expert        : 4 scores, pass 100.0%")
	assert.Contains(t, s, "Cohort novice        : 2 scores, pass 0.0%")
}

func TestAssess_SizeUsesHead(t *testing.T) {
	sf := &ScoreFile{Cohorts: map[string][]float64{"expert": {10, 10, 10, 10, -100}}}
	var out bytes.Buffer
	require.NoError(t, assess(sf, "expert", 4, 2.5, &out))
	assert.Contains(t, out.String(), "Threshold            : 10.0000")
	assert.Contains(t, out.String(), "zero variance")
}

func TestAssess_Errors(t *testing.T) {
	sf := &ScoreFile{Cohorts: map[string][]float64{"expert": {}}}
	assert.Error(t, assess(sf, "missing", 0, 2.5, &bytes.Buffer{}))
	assert.ErrorIs(t, assess(sf, "expert", 0, 2.5, &bytes.Buffer{}), metrics.ErrEmptyCohort)
}

func TestLoadScoreFile_Strict(t *testing.T) {
	_, err := loadScoreFile(writeScores(t, "cohorts: {expert: [1]}\nthreshold: 3\n"))
	assert.Error(t, err)

	_, err = loadScoreFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
