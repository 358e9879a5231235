package parser

import (
	"fmt"

	"github.com/suderio/dicer/internal/data"
)

// Actions receives the productions recognized by the grammar, in input order.
type Actions interface {
	OpenBracket() error
	CloseBracket() error
	HowMany(n int) error
	DiceSeparator() error
	FacesNumber(faces int) error
	FacesNamed(name string) error
	ResolvingMethod(m *Method) error
	Number(v float64) error
	Stat(name string) error
	Operator(op *Operator) error
	Macro(name string) error
}

// frame is one open group. throw is set when the group is the faces operand of a faced throw.
type frame struct {
	group *Group
	throw *FacedThrow
}

// Builder turns grammar actions into an expression tree. It keeps a stack of open
// groups and the buffers of the dice throw being recognized.
type Builder struct {
	game   *data.GameContext
	limits limits

	stack        []frame
	howMany      int
	diceExpected bool
	lastThrow    *FacedThrow
}

// NewBuilder returns a builder whose root group is already open.
func NewBuilder(game *data.GameContext, opts ...Option) *Builder {
	b := &Builder{game: game, limits: defaultLimits()}
	for _, opt := range opts {
		opt(&b.limits)
	}
	b.stack = []frame{{group: &Group{}}}
	return b
}

func (b *Builder) current() *Group {
	return b.stack[len(b.stack)-1].group
}

func (b *Builder) append(n Node) {
	g := b.current()
	g.Children = append(g.Children, n)
}

func (b *Builder) resetBuffers() {
	b.howMany = 0
	b.diceExpected = false
}

func (b *Builder) OpenBracket() error {
	g := &Group{}
	if b.diceExpected {
		throw := &FacedThrow{HowMany: b.howMany, FacesGroup: g}
		b.append(throw)
		b.resetBuffers()
		b.stack = append(b.stack, frame{group: g, throw: throw})
		b.lastThrow = nil
		return nil
	}
	b.append(g)
	b.stack = append(b.stack, frame{group: g})
	b.lastThrow = nil
	return nil
}

func (b *Builder) CloseBracket() error {
	if len(b.stack) < 2 {
		return fmt.Errorf("closing bracket without an opening one")
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.lastThrow = top.throw
	return nil
}

func (b *Builder) HowMany(n int) error {
	if n < 1 || n > b.limits.howMany {
		return &HowManyOutOfRange{Value: n, Max: b.limits.howMany}
	}
	b.howMany = n
	return nil
}

func (b *Builder) DiceSeparator() error {
	if b.howMany == 0 {
		return fmt.Errorf("dice separator without a number of dices")
	}
	b.diceExpected = true
	return nil
}

func (b *Builder) FacesNumber(faces int) error {
	if !b.diceExpected {
		return fmt.Errorf("dice faces without a dice separator")
	}
	if faces <= 1 || faces > b.limits.faces {
		return &DiceFacesOutOfRange{Value: float64(faces), Max: b.limits.faces}
	}
	throw := &FacedThrow{HowMany: b.howMany, Faces: faces}
	b.append(throw)
	b.resetBuffers()
	b.lastThrow = throw
	return nil
}

func (b *Builder) FacesNamed(name string) error {
	if !b.diceExpected {
		return fmt.Errorf("named dice without a dice separator")
	}
	dice, ok := b.game.Lookup(name)
	if !ok {
		return &UnknownNamedDice{Name: name}
	}
	if dice.FacesCount() < 2 {
		return &DiceFacesOutOfRange{Value: float64(dice.FacesCount()), Max: b.limits.faces}
	}
	b.append(&NamedThrow{HowMany: b.howMany, Dice: dice})
	b.resetBuffers()
	b.lastThrow = nil
	return nil
}

func (b *Builder) ResolvingMethod(m *Method) error {
	if b.lastThrow == nil {
		return fmt.Errorf("resolving method %s must follow a faced dice throw", m.Token)
	}
	b.lastThrow.Method = m
	b.lastThrow = nil
	return nil
}

func (b *Builder) Number(v float64) error {
	b.append(&Number{Value: v})
	b.lastThrow = nil
	return nil
}

func (b *Builder) Stat(name string) error {
	b.append(&Stat{Name: name})
	b.lastThrow = nil
	return nil
}

func (b *Builder) Operator(op *Operator) error {
	b.append(op)
	b.lastThrow = nil
	return nil
}

func (b *Builder) Macro(name string) error {
	return &MacroNotFound{Name: name}
}

// Root returns the finished tree. Every bracket must be closed.
func (b *Builder) Root() (*Group, error) {
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("%d unclosed brackets", len(b.stack)-1)
	}
	if b.diceExpected {
		return nil, fmt.Errorf("dice throw without faces")
	}
	return b.stack[0].group, nil
}
