package session

import (
	"strings"
)

// Verbs understood by ParseInput. Anything else is read as a dice expression.
const (
	CommandRoll    = "roll"
	CommandCheck   = "check"
	CommandSet     = "set"
	CommandDice    = "dice"
	CommandStats   = "stats"
	CommandWeights = "weights"
	CommandHistory = "history"
	CommandHelp    = "help"
)

var verbs = map[string]bool{
	CommandRoll:    true,
	CommandCheck:   true,
	CommandSet:     true,
	CommandDice:    true,
	CommandStats:   true,
	CommandWeights: true,
	CommandHistory: true,
	CommandHelp:    true,
}

// ParsedInput represents the structured result of parsing a raw command line.
// The format is:
//
//	[<verb>] [by: <player>] <arguments>
//
// Expression arguments are kept verbatim because whitespace decides whether a
// suffix belongs to a throw ("3d6max" versus "3d6 max").
type ParsedInput struct {
	Command    string
	Player     string
	Expression string
	Args       []string
}

// ParseInput parses a raw command string into a structured ParsedInput.
//
// Examples:
//
//	"2d6+ + 3" → Command="roll", Expression="2d6+ + 3"
//	"roll by: alice 1d20" → Command="roll", Player="alice", Expression="1d20"
//	"by: bob 3d6max" → Command="roll", Player="bob", Expression="3d6max"
//	"weights by: alice 6" → Command="weights", Player="alice", Args=["6"]
//	"set str 14" → Command="set", Args=["str", "14"]
func ParseInput(input string) ParsedInput {
	var result ParsedInput

	rest := strings.TrimSpace(input)
	if rest == "" {
		return result
	}

	word, tail := splitWord(rest)
	if verbs[strings.ToLower(word)] {
		result.Command = strings.ToLower(word)
		rest = tail
	} else {
		result.Command = CommandRoll
	}

	if word, tail := splitWord(rest); strings.ToLower(word) == "by:" {
		result.Player, rest = splitWord(tail)
	}

	switch result.Command {
	case CommandRoll, CommandCheck:
		result.Expression = rest
	default:
		result.Args = strings.Fields(rest)
	}
	return result
}

// splitWord cuts the first whitespace separated word off s.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, isSpace); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
