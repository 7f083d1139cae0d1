package tcp

import (
	"strings"
)

// Command is one parsed client request: a verb and its ordered arguments
type Command struct {
	Verb string
	Args []string
}

// ParseCommand splits a raw client line into a Command.
// Tokens are separated by whitespace and the first token is the verb; a
// trailing line terminator is ignored. Blank input yields an empty verb.
func ParseCommand(input string) Command {
	tokens := strings.Fields(strings.TrimRight(input, "\r\n"))
	if len(tokens) == 0 {
		return Command{}
	}
	return Command{
		Verb: tokens[0],
		Args: tokens[1:],
	}
}
