package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer maps the raw string tokens of a dice expression.
// A how-many count glued to its dice separator ("3d", "12D") is a single Throw token
// so that identifiers after it are read as named dice, not as separators.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Throw", Pattern: `\d+[dD]`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Stat", Pattern: `\$[a-zA-Z_]\w*`},
	{Name: "Ident", Pattern: `[a-zA-Z]+`},
	{Name: "Operator", Pattern: `[-+*/]`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	tokThrow      = Lexer.Symbols()["Throw"]
	tokNumber     = Lexer.Symbols()["Number"]
	tokStat       = Lexer.Symbols()["Stat"]
	tokIdent      = Lexer.Symbols()["Ident"]
	tokOperator   = Lexer.Symbols()["Operator"]
	tokPunct      = Lexer.Symbols()["Punct"]
	tokWhitespace = Lexer.Symbols()["Whitespace"]
)

// token is a lexed token with whitespace folded into the spaced flag.
type token struct {
	kind   lexer.TokenType
	value  string
	offset int
	spaced bool // preceded by whitespace
}

func (t token) eof() bool { return t.kind == lexer.EOF }

func (t token) is(kind lexer.TokenType, value string) bool {
	return t.kind == kind && t.value == value
}

// tokenize lexes the whole input, dropping whitespace tokens but remembering them.
func tokenize(input string) ([]token, error) {
	lex, err := Lexer.LexString("", input)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	tokens := make([]token, 0, len(raw))
	spaced := false
	for _, t := range raw {
		if t.Type == tokWhitespace {
			spaced = true
			continue
		}
		tokens = append(tokens, token{
			kind:   t.Type,
			value:  t.Value,
			offset: t.Pos.Offset,
			spaced: spaced,
		})
		spaced = false
	}
	return tokens, nil
}
