package parser

import (
	"strings"

	"github.com/ava12/pprt"
	"github.com/ava12/pprt/lexer"
)

// Error codes used by parser:
const (
	// UnexpectedTokenError indicates that the initial rule failed or did not consume the whole input.
	UnexpectedTokenError = pprt.SyntaxErrors + iota

	// UnexpectedEoiError is UnexpectedTokenError for the case when the offending token is end-of-input.
	UnexpectedEoiError
)

const (
	// TooDeepError indicates that rule nesting exceeded Options.MaxDepth.
	TooDeepError = pprt.ParserErrors + iota
)

func expectedList(expected []string) string {
	if len(expected) == 0 {
		return ""
	}

	return ", expecting " + strings.Join(expected, " or ")
}

func unexpectedTokenError(t *lexer.Token, expected []string) *pprt.Error {
	var e *pprt.Error
	if t.IsEoi() {
		e = pprt.FormatErrorPos(t, UnexpectedEoiError, "unexpected end of input%s", expectedList(expected))
	} else {
		e = pprt.FormatErrorPos(t, UnexpectedTokenError, "unexpected %s token %q%s", t.Name(), t.Text(), expectedList(expected))
	}
	e.Expected = expected
	return e.WithSubject(t.Name())
}

func tooDeepError(t *lexer.Token, rule string, depth int) *pprt.Error {
	if t == nil {
		return pprt.FormatError(TooDeepError, "rule %s exceeds nesting depth %d", rule, depth).WithSubject(rule)
	}

	return pprt.FormatErrorPos(t, TooDeepError, "rule %s exceeds nesting depth %d", rule, depth).WithSubject(rule)
}
