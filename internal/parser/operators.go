package parser

// Precedence tiers; a lower number is applied first.
const (
	PrecedenceFactor = 5
	PrecedenceTerm   = 6
)

// operators is the immutable operator table, built once at package init.
var operators = map[string]*Operator{
	"*": {Symbol: "*", Precedence: PrecedenceFactor, apply: func(l, r float64) float64 { return l * r }},
	"/": {Symbol: "/", Precedence: PrecedenceFactor, apply: func(l, r float64) float64 { return l / r }},
	"+": {Symbol: "+", Precedence: PrecedenceTerm, apply: func(l, r float64) float64 { return l + r }},
	"-": {Symbol: "-", Precedence: PrecedenceTerm, apply: func(l, r float64) float64 { return l - r }},
}

// LookupOperator returns the shared operator for a symbol.
// Operators are stateless, so trees may share them.
func LookupOperator(symbol string) (*Operator, bool) {
	op, ok := operators[symbol]
	return op, ok
}
