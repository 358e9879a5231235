package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicer/internal/data"
)

func TestBuilderGroupedFacesConsumesBuffers(t *testing.T) {
	b := NewBuilder(data.NewGameContext())

	// 2d( 1d8 + 3 )
	require.NoError(t, b.HowMany(2))
	require.NoError(t, b.DiceSeparator())
	require.NoError(t, b.OpenBracket())
	assert.False(t, b.diceExpected)
	require.NoError(t, b.HowMany(1))
	require.NoError(t, b.DiceSeparator())
	require.NoError(t, b.FacesNumber(8))
	plus, _ := LookupOperator("+")
	require.NoError(t, b.Operator(plus))
	require.NoError(t, b.Number(3))
	require.NoError(t, b.CloseBracket())
	require.NoError(t, b.ResolvingMethod(Aggregate))

	root, err := b.Root()
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	outer := root.Children[0].(*FacedThrow)
	assert.Equal(t, 2, outer.HowMany)
	assert.Same(t, Aggregate, outer.Method)
	require.Len(t, outer.FacesGroup.Children, 3)
	assert.Nil(t, outer.FacesGroup.Children[0].(*FacedThrow).Method)
}

func TestBuilderRejectsUnbalancedStack(t *testing.T) {
	b := NewBuilder(data.NewGameContext())
	assert.Error(t, b.CloseBracket())

	require.NoError(t, b.OpenBracket())
	_, err := b.Root()
	assert.Error(t, err)
}

func TestBuilderMethodNeedsFacedThrow(t *testing.T) {
	b := NewBuilder(data.NewGameContext())
	require.NoError(t, b.Number(3))
	assert.Error(t, b.ResolvingMethod(HighestValue))

	require.NoError(t, b.OpenBracket())
	require.NoError(t, b.Number(1))
	require.NoError(t, b.CloseBracket())
	assert.Error(t, b.ResolvingMethod(Aggregate))
}

func TestBuilderSeparatorNeedsCount(t *testing.T) {
	b := NewBuilder(data.NewGameContext())
	assert.Error(t, b.DiceSeparator())
	assert.Error(t, b.FacesNumber(6))
	assert.Error(t, b.FacesNamed("Force"))
}

func TestMethodsResolve(t *testing.T) {
	rolls := []int{2, 5, 1}

	sum, err := Aggregate.Resolve(rolls)
	require.NoError(t, err)
	assert.Equal(t, 8.0, sum)

	high, err := HighestValue.Resolve(rolls)
	require.NoError(t, err)
	assert.Equal(t, 5.0, high)

	low, err := LowestValue.Resolve(rolls)
	require.NoError(t, err)
	assert.Equal(t, 1.0, low)

	_, err = LowestValue.Resolve(nil)
	assert.ErrorIs(t, err, ErrNoResults)

	for _, token := range []string{"+", "min", "max"} {
		m, ok := LookupMethod(token)
		require.True(t, ok)
		assert.Equal(t, token, m.Token)
	}
	_, ok := LookupMethod("avg")
	assert.False(t, ok)
}

func TestOperatorTable(t *testing.T) {
	tests := []struct {
		symbol     string
		precedence int
		want       float64
	}{
		{"*", PrecedenceFactor, 12},
		{"/", PrecedenceFactor, 3},
		{"+", PrecedenceTerm, 8},
		{"-", PrecedenceTerm, 4},
	}
	for _, tt := range tests {
		op, ok := LookupOperator(tt.symbol)
		require.True(t, ok)
		assert.Equal(t, tt.precedence, op.Precedence)
		assert.Equal(t, tt.want, op.Apply(6, 2))
	}
}
