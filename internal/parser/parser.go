package parser

import (
	"strings"
	"unicode"

	"github.com/suderio/dicer/internal/data"
)

const (
	// MaximumDiceHowMany bounds the number of dices of a single throw.
	MaximumDiceHowMany = 100
	// MaximumDiceFaces bounds the face count of a faced dice.
	MaximumDiceFaces = 1000
)

type limits struct {
	howMany int
	faces   int
}

func defaultLimits() limits {
	return limits{howMany: MaximumDiceHowMany, faces: MaximumDiceFaces}
}

// Option tunes a parse.
type Option func(*limits)

// WithLimits overrides the dice count and face count bounds. Non-positive values keep the defaults.
func WithLimits(howMany, faces int) Option {
	return func(l *limits) {
		if howMany > 0 {
			l.howMany = howMany
		}
		if faces > 0 {
			l.faces = faces
		}
	}
}

// Parse turns a dice expression into a tree. Named dices are looked up in game.
// No tree is returned on failure.
func Parse(game *data.GameContext, text string, opts ...Option) (*Expression, error) {
	if game == nil {
		game = data.NewGameContext()
	}
	tokens, err := tokenize(text)
	if err != nil {
		return nil, lexError(text, err)
	}

	b := NewBuilder(game, opts...)
	g := &grammar{input: text, tokens: tokens, act: b}
	if err := g.parse(); err != nil {
		return nil, err
	}
	root, err := b.Root()
	if err != nil {
		return nil, &ParseError{Input: text, Offset: len(text), Reason: err.Error(), Err: err}
	}
	return &Expression{
		Signature: Signature(text),
		Root:      root,
		maxFaces:  b.limits.faces,
	}, nil
}

// Signature is the expression with every whitespace removed.
func Signature(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}
