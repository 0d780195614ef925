package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceLayout_TwelveLeadsWithThreeScanning(t *testing.T) {
	l := ReferenceLayout()
	require.Equal(t, 12, l.Len())

	var scanning []string
	for i, tg := range l.Targets() {
		assert.Equal(t, i, tg.Index)
		if tg.Scanning {
			scanning = append(scanning, tg.Name)
		}
	}
	assert.Equal(t, []string{"II", "V5", "V6"}, scanning)
	assert.Equal(t, Point{350, 400}, l.Target(3).Pos)
}

func TestNewLayout_OrdersByIndex(t *testing.T) {
	l, err := NewLayout([]Target{
		{Index: 1, Name: "b", Pos: Point{10, 0}},
		{Index: 0, Name: "a", Pos: Point{0, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", l.Target(0).Name)
	assert.Equal(t, "b", l.Target(1).Name)
}

func TestNewLayout_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		targets []Target
	}{
		{"empty", nil},
		{"gap", []Target{{Index: 0}, {Index: 2}}},
		{"duplicate", []Target{{Index: 0}, {Index: 0}}},
		{"negative", []Target{{Index: -1}}},
		{"NaN position", []Target{{Index: 0, Pos: Point{math.NaN(), 0}}}},
		{"Inf position", []Target{{Index: 0, Pos: Point{0, math.Inf(1)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.targets)
			assert.Error(t, err)
		})
	}
}

func TestLayout_Nearest(t *testing.T) {
	l := ReferenceLayout()
	tests := []struct {
		p    Point
		want int
	}{
		{Point{100, 400}, 0},
		{Point{110, 260}, 1},
		{Point{840, 90}, 11},
		{Point{-1000, -1000}, 2},
		{Point{225, 400}, 0}, // equidistant between I and aVR: lowest index wins
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Nearest(tt.p), "Nearest(%v)", tt.p)
	}
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, Point{1, -2}.IsFinite())
	assert.False(t, Point{math.NaN(), 0}.IsFinite())
	assert.False(t, Point{0, math.Inf(-1)}.IsFinite())
}

func TestLayout_PositionsIsACopy(t *testing.T) {
	l := ReferenceLayout()
	pos := l.Positions()
	pos[0] = Point{-1, -1}
	assert.Equal(t, Point{100, 400}, l.Target(0).Pos)
}
