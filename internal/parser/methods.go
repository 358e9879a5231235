package parser

import "errors"

// ErrNoResults is returned when a resolving method is applied to an empty throw.
var ErrNoResults = errors.New("cannot resolve an empty throw")

// Method reduces the individual results of a throw to one scalar.
type Method struct {
	Token       string
	Description string
	reduce      func(results []int) float64
}

var (
	// Aggregate sums every result ("3d6+").
	Aggregate = &Method{
		Token:       "+",
		Description: "Performs an addition on all the results",
		reduce: func(results []int) float64 {
			sum := 0
			for _, r := range results {
				sum += r
			}
			return float64(sum)
		},
	}

	// HighestValue keeps the best result ("3d6max").
	HighestValue = &Method{
		Token:       "max",
		Description: "Picks the highest value of throw",
		reduce: func(results []int) float64 {
			best := results[0]
			for _, r := range results[1:] {
				if r > best {
					best = r
				}
			}
			return float64(best)
		},
	}

	// LowestValue keeps the worst result ("3d6min").
	LowestValue = &Method{
		Token:       "min",
		Description: "Picks the lowest value of throw",
		reduce: func(results []int) float64 {
			worst := results[0]
			for _, r := range results[1:] {
				if r < worst {
					worst = r
				}
			}
			return float64(worst)
		},
	}
)

// methods indexes the resolving methods by their grammar token.
var methods = map[string]*Method{
	Aggregate.Token:    Aggregate,
	HighestValue.Token: HighestValue,
	LowestValue.Token:  LowestValue,
}

// LookupMethod finds a resolving method by token ("+", "min", "max").
func LookupMethod(token string) (*Method, bool) {
	m, ok := methods[token]
	return m, ok
}

// Resolve reduces a list of face results.
func (m *Method) Resolve(results []int) (float64, error) {
	if len(results) == 0 {
		return 0, ErrNoResults
	}
	return m.reduce(results), nil
}
