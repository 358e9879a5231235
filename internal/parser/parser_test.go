package parser_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/parser"
)

func forceGame(t *testing.T) *data.GameContext {
	t.Helper()
	nd, err := data.NewNamedDice("Force", "Star Wars force dice", []string{"Weak", "Strong", "Unpredictable"})
	require.NoError(t, err)
	game := data.NewGameContext()
	game.Register(nd)
	return game
}

func TestParseSimpleThrow(t *testing.T) {
	expr, err := parser.Parse(nil, "3d6")
	require.NoError(t, err)

	assert.Equal(t, "3d6", expr.Signature)
	require.Len(t, expr.Root.Children, 1)
	throw, ok := expr.Root.Children[0].(*parser.FacedThrow)
	require.True(t, ok)
	assert.Equal(t, 3, throw.HowMany)
	assert.Equal(t, 6, throw.Faces)
	assert.Nil(t, throw.FacesGroup)
	assert.Nil(t, throw.Method)
}

func TestParseResolvingSuffixes(t *testing.T) {
	tests := []struct {
		input  string
		method *parser.Method
	}{
		{"3d6+", parser.Aggregate},
		{"3D6max", parser.HighestValue},
		{"3d6min", parser.LowestValue},
		{"(3d6+)", parser.Aggregate},
		{"3d6+ + 2", parser.Aggregate},
		{"3d6++2", parser.Aggregate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.Parse(nil, tt.input)
			require.NoError(t, err)

			var throw *parser.FacedThrow
			switch n := expr.Root.Children[0].(type) {
			case *parser.FacedThrow:
				throw = n
			case *parser.Group:
				throw = n.Children[0].(*parser.FacedThrow)
			}
			require.NotNil(t, throw)
			assert.Same(t, tt.method, throw.Method)
		})
	}
}

func TestParsePlusAfterThrowIsBinaryWhenFollowedByOperand(t *testing.T) {
	expr, err := parser.Parse(nil, "1d6+2")
	require.NoError(t, err)

	require.Len(t, expr.Root.Children, 3)
	throw := expr.Root.Children[0].(*parser.FacedThrow)
	assert.Nil(t, throw.Method)
	op := expr.Root.Children[1].(*parser.Operator)
	assert.Equal(t, "+", op.Symbol)
	assert.Equal(t, 2.0, expr.Root.Children[2].(*parser.Number).Value)
}

func TestParseAggregateBeforeMinus(t *testing.T) {
	expr, err := parser.Parse(nil, "3d6+-2")
	require.NoError(t, err)

	require.Len(t, expr.Root.Children, 3)
	throw := expr.Root.Children[0].(*parser.FacedThrow)
	assert.Same(t, parser.Aggregate, throw.Method)
	op := expr.Root.Children[1].(*parser.Operator)
	assert.Equal(t, "-", op.Symbol)
	assert.Equal(t, 2.0, expr.Root.Children[2].(*parser.Number).Value)
}

func TestParseSpacedSuffixIsNotAMethod(t *testing.T) {
	_, err := parser.Parse(nil, "3d6 max")
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Offset)
}

func TestParseGroupedFaces(t *testing.T) {
	expr, err := parser.Parse(nil, "1d(1d8+3)*2")
	require.NoError(t, err)

	assert.Equal(t, "1d(1d8+3)*2", expr.Signature)
	require.Len(t, expr.Root.Children, 3)
	throw := expr.Root.Children[0].(*parser.FacedThrow)
	assert.Equal(t, 1, throw.HowMany)
	require.NotNil(t, throw.FacesGroup)
	require.Len(t, throw.FacesGroup.Children, 3)

	inner := throw.FacesGroup.Children[0].(*parser.FacedThrow)
	assert.Equal(t, 1, inner.HowMany)
	assert.Equal(t, 8, inner.Faces)
	assert.Equal(t, "*", expr.Root.Children[1].(*parser.Operator).Symbol)
}

func TestParseGroupedFacesKeepsOuterCount(t *testing.T) {
	expr, err := parser.Parse(nil, "4d(2d6max)max")
	require.NoError(t, err)

	throw := expr.Root.Children[0].(*parser.FacedThrow)
	assert.Equal(t, 4, throw.HowMany)
	assert.Same(t, parser.HighestValue, throw.Method)
	inner := throw.FacesGroup.Children[0].(*parser.FacedThrow)
	assert.Equal(t, 2, inner.HowMany)
	assert.Same(t, parser.HighestValue, inner.Method)
}

func TestParseNestedBrackets(t *testing.T) {
	expr, err := parser.Parse(nil, "(23 - 12 * (14 - 8 + 2 * (15 / 2)))")
	require.NoError(t, err)

	assert.Equal(t, "(23-12*(14-8+2*(15/2)))", expr.Signature)
	require.Len(t, expr.Root.Children, 1)
	outer := expr.Root.Children[0].(*parser.Group)
	require.Len(t, outer.Children, 5)
	middle := outer.Children[4].(*parser.Group)
	require.Len(t, middle.Children, 7)
	inner := middle.Children[6].(*parser.Group)
	assert.Len(t, inner.Children, 3)
}

func TestParseSignedNumbers(t *testing.T) {
	expr, err := parser.Parse(nil, "-3 * +2 - -1")
	require.NoError(t, err)

	require.Len(t, expr.Root.Children, 5)
	assert.Equal(t, -3.0, expr.Root.Children[0].(*parser.Number).Value)
	assert.Equal(t, 2.0, expr.Root.Children[2].(*parser.Number).Value)
	assert.Equal(t, "-", expr.Root.Children[3].(*parser.Operator).Symbol)
	assert.Equal(t, -1.0, expr.Root.Children[4].(*parser.Number).Value)
}

func TestParseNamedDice(t *testing.T) {
	expr, err := parser.Parse(forceGame(t), "2dForce")
	require.NoError(t, err)

	throw := expr.Root.Children[0].(*parser.NamedThrow)
	assert.Equal(t, 2, throw.HowMany)
	assert.Equal(t, "Force", throw.Dice.Name())
}

func TestParseStat(t *testing.T) {
	expr, err := parser.Parse(nil, "1d20+ + $dex")
	require.NoError(t, err)

	require.Len(t, expr.Root.Children, 3)
	assert.Equal(t, "dex", expr.Root.Children[2].(*parser.Stat).Name)
}

func TestParseErrors(t *testing.T) {
	game := forceGame(t)

	tests := []struct {
		input  string
		assert func(t *testing.T, err error)
	}{
		{"", isParseError},
		{"   ", isParseError},
		{"1d6 2d8", isParseError},
		{"3d", isParseError},
		{"1D-7", isParseError},
		{"(3+4)D4", isParseError},
		{"(3+4) d6", isParseError},
		{"(1d6", isParseError},
		{"1d6)", isParseError},
		{"1d6 +", isParseError},
		{"(2 *)", isParseError},
		{"2 + * 3", isParseError},
		{"3d6x", isParseError},
		{"2dForce+", isParseError},
		{"2dForcemax", isUnknownNamedDice},
		{"1d6 & 2", isParseError},
		{"0d6", isHowManyOutOfRange},
		{"-1d4", isHowManyOutOfRange},
		{"101d6", isHowManyOutOfRange},
		{"99999999999999999999d6", isHowManyOutOfRange},
		{"1d1", isDiceFacesOutOfRange},
		{"1D0", isDiceFacesOutOfRange},
		{"1d1001", isDiceFacesOutOfRange},
		{"1dSkill", isUnknownNamedDice},
		{"D4", isMacroNotFound},
		{"2 + fireball", isMacroNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.Parse(game, tt.input)
			assert.Nil(t, expr)
			require.Error(t, err)
			tt.assert(t, err)
		})
	}
}

func TestParseRejectsNamedDiceWithoutFaces(t *testing.T) {
	game := data.NewGameContext()
	game.NamedDice["Blank"] = &data.NamedDice{}

	_, err := parser.Parse(game, "1dBlank")
	var faces *parser.DiceFacesOutOfRange
	require.ErrorAs(t, err, &faces)
	assert.Equal(t, 0.0, faces.Value)
}

func TestParseEmptyWrapsSentinel(t *testing.T) {
	_, err := parser.Parse(nil, " \t ")
	assert.ErrorIs(t, err, parser.ErrEmptyExpression)
}

func TestParseWithLimits(t *testing.T) {
	_, err := parser.Parse(nil, "20d6", parser.WithLimits(10, 0))
	var howMany *parser.HowManyOutOfRange
	require.ErrorAs(t, err, &howMany)
	assert.Equal(t, 10, howMany.Max)

	expr, err := parser.Parse(nil, "1d2000", parser.WithLimits(0, 5000))
	require.NoError(t, err)
	assert.Equal(t, 5000, expr.MaxFaces())
}

func TestMapError(t *testing.T) {
	_, err := parser.Parse(nil, "0d6")
	assert.Contains(t, parser.MapError("0d6", err).Error(), "between 1 and 100")

	_, err = parser.Parse(nil, "1dFoo")
	assert.Contains(t, parser.MapError("1dFoo", err).Error(), "no dice named Foo")

	assert.Contains(t, parser.MapError("", err).Error(), "wasn't able to understand")
	assert.NoError(t, parser.MapError("1d6", nil))

	undefined := fmt.Errorf("%w: 1 / 0", parser.ErrUndefinedResult)
	assert.Contains(t, parser.MapError("1d6/0", undefined).Error(), "no numeric result")

	disk := errors.New("failed to append event: disk full")
	assert.Same(t, disk, parser.MapError("1d6", disk))
}

func isParseError(t *testing.T, err error) {
	var target *parser.ParseError
	assert.ErrorAs(t, err, &target)
}

func isHowManyOutOfRange(t *testing.T, err error) {
	var target *parser.HowManyOutOfRange
	assert.ErrorAs(t, err, &target)
}

func isDiceFacesOutOfRange(t *testing.T, err error) {
	var target *parser.DiceFacesOutOfRange
	assert.ErrorAs(t, err, &target)
}

func isUnknownNamedDice(t *testing.T, err error) {
	var target *parser.UnknownNamedDice
	assert.ErrorAs(t, err, &target)
}

func isMacroNotFound(t *testing.T, err error) {
	var target *parser.MacroNotFound
	assert.ErrorAs(t, err, &target)
}
