package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceStrategies_AreBijections(t *testing.T) {
	table := ReferenceStrategies()
	assert.Equal(t, []string{StrategyAcute, StrategyClassic, StrategyTechnician}, table.Names())
	for _, name := range table.Names() {
		s, err := table.Lookup(name)
		require.NoError(t, err)
		assert.NoError(t, s.Validate(12), name)
	}
}

func TestStrategy_Validate_RejectsNonPermutations(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"duplicate", []int{0, 1, 1}},
		{"gap", []int{0, 1, 3}},
		{"too short", []int{0, 1}},
		{"too long", []int{0, 1, 2, 0}},
		{"negative", []int{-1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Strategy{Name: "x", Order: tt.order}.Validate(3)
			assert.Error(t, err)
		})
	}
}

func TestStrategy_Edges_IncludeWraparound(t *testing.T) {
	s := Strategy{Name: "x", Order: []int{2, 0, 1}}
	assert.Equal(t, []Edge{{2, 0}, {0, 1}, {1, 2}}, s.Edges())
}

func TestStrategy_Edges_SingleTargetIsSelfLoop(t *testing.T) {
	s := Strategy{Name: "solo", Order: []int{0}}
	assert.Equal(t, []Edge{{0, 0}}, s.Edges())
}

func TestNewStrategyTable_Errors(t *testing.T) {
	l := ReferenceLayout()
	classic := Strategy{Name: StrategyClassic, Order: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}

	_, err := NewStrategyTable(l, classic, classic)
	assert.Error(t, err, "duplicate name")

	_, err = NewStrategyTable(l, Strategy{Name: StrategyHybrid, Order: classic.Order})
	assert.Error(t, err, "reserved name")

	_, err = NewStrategyTable(l, Strategy{Name: "short", Order: []int{0, 1}})
	assert.Error(t, err, "wrong size")
}

func TestNewStrategyTable_CopiesOrder(t *testing.T) {
	l, err := NewLayout([]Target{{Index: 0}, {Index: 1}})
	require.NoError(t, err)
	order := []int{0, 1}
	table, err := NewStrategyTable(l, Strategy{Name: "s", Order: order})
	require.NoError(t, err)

	order[0] = 1
	s, err := table.Lookup("s")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, s.Order)
}

func TestStrategyTable_Lookup_Unknown(t *testing.T) {
	_, err := ReferenceStrategies().Lookup("Random")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}
