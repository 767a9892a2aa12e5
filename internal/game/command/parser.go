package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words, lowercased.
	Args []string
}

// Arg returns the i-th argument, or "" when there are fewer arguments.
func (p ParseResult) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ParseResult{}
	}
	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}
	return ParseResult{
		Command: fields[0],
		Args:    args,
	}
}
