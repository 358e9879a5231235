package engine

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"

	"github.com/suderio/dicer/internal/parser"
)

// reduce folds alternating operands and operators into one scalar following
// operator precedence, without building a binary tree.
//
// Results live in an append-only arena. Each operand position starts as its own
// arena entry; folding two positions appends the new value and links both previous
// roots to it, so later operators sharing an operand read the latest value.
func reduce(values []float64, ops []*parser.Operator) (float64, error) {
	if len(values) != len(ops)+1 {
		return 0, fmt.Errorf("cannot reduce %d operands with %d operators", len(values), len(ops))
	}
	if len(ops) == 0 {
		if !finite(values[0]) {
			return 0, parser.ErrUndefinedResult
		}
		return values[0], nil
	}

	arena := slices.Clone(values)
	parent := make([]int, len(values))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	tiers := make([]int, 0, 2)
	for _, op := range ops {
		if !slices.Contains(tiers, op.Precedence) {
			tiers = append(tiers, op.Precedence)
		}
	}
	slices.Sort(tiers)

	var last float64
	for _, tier := range tiers {
		for pos, op := range ops {
			if op.Precedence != tier {
				continue
			}
			l, r := find(pos), find(pos+1)
			last = op.Apply(arena[l], arena[r])
			if !finite(last) {
				return 0, fmt.Errorf("%w: %s %s %s", parser.ErrUndefinedResult,
					parser.FormatValue(arena[l]), op.Symbol, parser.FormatValue(arena[r]))
			}
			arena = append(arena, last)
			next := len(arena) - 1
			parent = append(parent, next)
			parent[l] = next
			parent[r] = next
		}
	}
	return last, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
