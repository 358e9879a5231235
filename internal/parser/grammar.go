package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// grammar is a recursive-descent recognizer over the lexed tokens. It validates
// the structure of the expression and reports every production to Actions.
type grammar struct {
	input  string
	tokens []token
	pos    int
	act    Actions
}

func (g *grammar) peek() token {
	return g.tokens[g.pos]
}

func (g *grammar) peekAt(n int) token {
	if i := g.pos + n; i < len(g.tokens) {
		return g.tokens[i]
	}
	return g.tokens[len(g.tokens)-1]
}

func (g *grammar) next() token {
	t := g.tokens[g.pos]
	if !t.eof() {
		g.pos++
	}
	return t
}

func (g *grammar) fail(t token, format string, args ...any) error {
	return &ParseError{Input: g.input, Offset: t.offset, Reason: fmt.Sprintf(format, args...)}
}

// emit keeps typed range errors as they are and turns structural builder errors into parse errors.
func (g *grammar) emit(t token, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ParseError, *HowManyOutOfRange, *DiceFacesOutOfRange, *UnknownNamedDice, *MacroNotFound:
		return err
	}
	return &ParseError{Input: g.input, Offset: t.offset, Reason: err.Error(), Err: err}
}

func (g *grammar) parse() error {
	if g.peek().eof() {
		return &ParseError{Input: g.input, Reason: "empty expression", Err: ErrEmptyExpression}
	}
	if err := g.expression(); err != nil {
		return err
	}
	if t := g.peek(); !t.eof() {
		if t.is(tokPunct, ")") {
			return g.fail(t, "unmatched closing bracket")
		}
		return g.fail(t, "unexpected %q, expected an operator", t.value)
	}
	return nil
}

// expression := atomic (operator atomic)*
func (g *grammar) expression() error {
	if err := g.atomic(); err != nil {
		return err
	}
	for g.peek().kind == tokOperator {
		t := g.next()
		op, ok := LookupOperator(t.value)
		if !ok {
			return g.fail(t, "unknown operator %q", t.value)
		}
		if after := g.peek(); after.eof() || after.is(tokPunct, ")") {
			return g.fail(t, "dangling operator %q", t.value)
		}
		if err := g.emit(t, g.act.Operator(op)); err != nil {
			return err
		}
		if err := g.atomic(); err != nil {
			return err
		}
	}
	return nil
}

// atomic := '(' expression ')' | diceThrow | number | statRef | identifier
func (g *grammar) atomic() error {
	t := g.peek()
	switch {
	case t.is(tokPunct, "("):
		if err := g.bracket(); err != nil {
			return err
		}
		if after := g.peek(); after.kind == tokIdent && strings.ContainsRune("dD", rune(after.value[0])) {
			return g.fail(after, "the number of dices must be a literal number, not a bracketed expression")
		}
		return nil
	case t.kind == tokOperator && (t.value == "+" || t.value == "-"):
		return g.signed()
	case t.kind == tokThrow:
		return g.diceThrow(1)
	case t.kind == tokNumber:
		g.next()
		v, err := strconv.ParseFloat(t.value, 64)
		if err != nil {
			return g.fail(t, "invalid number %q", t.value)
		}
		return g.emit(t, g.act.Number(v))
	case t.kind == tokStat:
		g.next()
		return g.emit(t, g.act.Stat(strings.TrimPrefix(t.value, "$")))
	case t.kind == tokIdent:
		g.next()
		return g.emit(t, g.act.Macro(t.value))
	case t.eof():
		return g.fail(t, "unexpected end of expression")
	}
	return g.fail(t, "unexpected %q", t.value)
}

func (g *grammar) bracket() error {
	open := g.next()
	if err := g.emit(open, g.act.OpenBracket()); err != nil {
		return err
	}
	if err := g.expression(); err != nil {
		return err
	}
	closing := g.peek()
	switch {
	case closing.eof():
		return g.fail(open, "unmatched opening bracket")
	case !closing.is(tokPunct, ")"):
		return g.fail(closing, "unexpected %q, expected an operator or a closing bracket", closing.value)
	}
	g.next()
	return g.emit(closing, g.act.CloseBracket())
}

// signed reads a sign glued to the next number or dice throw.
func (g *grammar) signed() error {
	sign := g.next()
	t := g.peek()
	switch t.kind {
	case tokNumber:
		g.next()
		v, err := strconv.ParseFloat(t.value, 64)
		if err != nil {
			return g.fail(t, "invalid number %q", t.value)
		}
		if sign.value == "-" {
			v = -v
		}
		return g.emit(t, g.act.Number(v))
	case tokThrow:
		if sign.value == "-" {
			return g.diceThrow(-1)
		}
		return g.diceThrow(1)
	}
	return g.fail(sign, "sign %q must be followed by a number", sign.value)
}

// diceThrow := howMany diceSeparator facesPart [resolveSuffix]
func (g *grammar) diceThrow(sign int) error {
	t := g.next()
	howMany := atoi(t.value[:len(t.value)-1]) * sign
	if err := g.emit(t, g.act.HowMany(howMany)); err != nil {
		return err
	}
	if err := g.emit(t, g.act.DiceSeparator()); err != nil {
		return err
	}

	named := false
	f := g.peek()
	switch {
	case f.kind == tokNumber:
		g.next()
		if err := g.emit(f, g.act.FacesNumber(atoi(f.value))); err != nil {
			return err
		}
	case f.kind == tokIdent:
		g.next()
		if err := g.emit(f, g.act.FacesNamed(f.value)); err != nil {
			return err
		}
		named = true
	case f.is(tokPunct, "("):
		if err := g.bracket(); err != nil {
			return err
		}
	case f.eof():
		return g.fail(f, "missing dice faces after %q", t.value)
	default:
		return g.fail(f, "unexpected %q, expected dice faces", f.value)
	}
	return g.suffix(named)
}

// suffix reads a resolving method touching the faces part. A touching '+' is the
// aggregate method only when nothing can be its right operand.
func (g *grammar) suffix(named bool) error {
	s := g.peek()
	if s.spaced || s.eof() {
		return nil
	}

	var m *Method
	switch {
	case s.kind == tokIdent:
		found, ok := LookupMethod(s.value)
		if !ok {
			return g.fail(s, "unrecognized resolving suffix %q", s.value)
		}
		m = found
	case s.is(tokOperator, "+"):
		after := g.peekAt(1)
		if !after.eof() && !after.is(tokPunct, ")") && after.kind != tokOperator {
			return nil
		}
		m = Aggregate
	default:
		return nil
	}

	if named {
		return g.fail(s, "named dices cannot be resolved with %q", m.Token)
	}
	g.next()
	return g.emit(s, g.act.ResolvingMethod(m))
}

// atoi saturates on overflow so that huge counts are reported as out of range.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt32
	}
	return n
}

// lexError converts a lexer failure into a parse error at the offending offset.
func lexError(input string, err error) error {
	offset := 0
	var positioned interface{ Position() lexer.Position }
	if errors.As(err, &positioned) {
		offset = positioned.Position().Offset
	}
	return &ParseError{Input: input, Offset: offset, Reason: "unrecognized character", Err: err}
}
