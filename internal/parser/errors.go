package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyExpression is wrapped by the ParseError of an empty or whitespace-only input.
var ErrEmptyExpression = errors.New("empty expression")

// ErrUndefinedResult is returned when an operation such as a division by zero has no finite result.
var ErrUndefinedResult = errors.New("result is not a finite number")

// ParseError reports malformed input: unmatched brackets, dangling operators,
// unknown suffixes, grouped how-many and stray tokens.
type ParseError struct {
	Input  string
	Offset int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error at offset %d of %q: %s", e.Offset, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// HowManyOutOfRange reports a dice count outside [1, Max].
type HowManyOutOfRange struct {
	Value int
	Max   int
}

func (e *HowManyOutOfRange) Error() string {
	return fmt.Sprintf("number of dices to be thrown should be between 1 and %d, not %d", e.Max, e.Value)
}

// DiceFacesOutOfRange reports a face count <= 1 or above Max, including grouped
// face counts that resolve out of range or do not resolve to a single value.
type DiceFacesOutOfRange struct {
	Value     float64
	Max       int
	NotScalar bool
}

func (e *DiceFacesOutOfRange) Error() string {
	if e.NotScalar {
		return "dice faces expression does not resolve to a single value"
	}
	return fmt.Sprintf("dice faces should be between 2 and %d, not %s", e.Max, FormatValue(e.Value))
}

// UnknownNamedDice reports a faces identifier missing from the game catalog.
type UnknownNamedDice struct {
	Name string
}

func (e *UnknownNamedDice) Error() string {
	return fmt.Sprintf("cannot find associated named dice [%s] in the game context", e.Name)
}

// MacroNotFound reports a bare identifier; macros are not supported.
type MacroNotFound struct {
	Name string
}

func (e *MacroNotFound) Error() string {
	return fmt.Sprintf("macro named [%s] could not be found", e.Name)
}

// UnresolvedStat reports a stat reference missing from the player context.
type UnresolvedStat struct {
	Name   string
	Player string
}

func (e *UnresolvedStat) Error() string {
	return fmt.Sprintf("cannot find associated stat value [%s] in the context of player %s", e.Name, e.Player)
}

// FormatValue renders a scalar the way traces print it: no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MapError takes a raw input and a parse or resolution error, and returns a human-friendly guidance message.
// Errors outside the expression taxonomy, such as storage failures, are returned unchanged.
func MapError(input string, err error) error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("I wasn't able to understand your roll: type an expression such as 2d6+ + 3")
	}

	var (
		howMany *HowManyOutOfRange
		faces   *DiceFacesOutOfRange
		named   *UnknownNamedDice
		macro   *MacroNotFound
		stat    *UnresolvedStat
		parse   *ParseError
	)

	switch {
	case errors.As(err, &howMany):
		return fmt.Errorf("You can throw between 1 and %d dice at once, %d is not allowed", howMany.Max, howMany.Value)
	case errors.As(err, &faces):
		if faces.NotScalar {
			return fmt.Errorf("The faces of a dice must resolve to a single number: add min, max or + to inner throws")
		}
		return fmt.Errorf("A dice must have between 2 and %d faces, %s is not allowed", faces.Max, FormatValue(faces.Value))
	case errors.As(err, &named):
		return fmt.Errorf("There is no dice named %s at this table", named.Name)
	case errors.As(err, &macro):
		return fmt.Errorf("%s is not something I can roll: macros are not supported", macro.Name)
	case errors.As(err, &stat):
		return fmt.Errorf("%s has no stat named %s", stat.Player, stat.Name)
	case errors.Is(err, ErrUndefinedResult):
		return fmt.Errorf("That roll has no numeric result: %v", err)
	case errors.As(err, &parse):
		return fmt.Errorf("The roll must look like: <count>d<faces>[+|min|max] combined with + - * / and brackets (%s)", parse.Reason)
	}

	return err
}
