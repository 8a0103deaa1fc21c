package parser

import (
	"fmt"
	"strings"

	"tally/token"
)

type ParseError struct {
	Message string
	Token   token.Token
}

func (e ParseError) Error() string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
	}
	return e.Message
}

// FormatParseErrors joins parse errors into a single display string.
func FormatParseErrors(errs []ParseError) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
