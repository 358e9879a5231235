package parser

import (
	"github.com/suderio/dicer/internal/data"
)

// Node is a component of a parsed expression. The set of variants is closed:
// *Number, *Stat, *FacedThrow, *NamedThrow, *Group and *Operator.
type Node interface {
	node()
}

// Number is a literal signed number.
type Number struct {
	Value float64
}

// Stat references a value of the player context ("$dex").
type Stat struct {
	Name string
}

// FacedThrow rolls HowMany dice whose face count is either the literal Faces or,
// when FacesGroup is set, the scalar its sub-expression resolves to ("1d(1d8+3)").
type FacedThrow struct {
	HowMany    int
	Faces      int
	FacesGroup *Group
	Method     *Method // nil keeps every individual roll
}

// NamedThrow rolls HowMany dice from the game catalog.
type NamedThrow struct {
	HowMany int
	Dice    *data.NamedDice
}

// Group is a bracketed sub-expression, or the whole expression at the root.
// It exclusively owns its children, alternating operands and operators.
type Group struct {
	Children []Node
}

// Operator is a binary arithmetic operator bound to its precedence.
type Operator struct {
	Symbol     string
	Precedence int
	apply      func(l, r float64) float64
}

func (*Number) node()     {}
func (*Stat) node()       {}
func (*FacedThrow) node() {}
func (*NamedThrow) node() {}
func (*Group) node()      {}
func (*Operator) node()   {}

// Apply runs the operator on two scalars.
func (o *Operator) Apply(l, r float64) float64 {
	return o.apply(l, r)
}

// Expression is the result of a successful parse.
type Expression struct {
	// Signature is the input with every whitespace removed.
	Signature string
	Root      *Group

	maxFaces int
}

// MaxFaces is the face count bound the expression was parsed with. Grouped faces
// are checked against it once resolved.
func (e *Expression) MaxFaces() int {
	if e.maxFaces <= 0 {
		return MaximumDiceFaces
	}
	return e.maxFaces
}
