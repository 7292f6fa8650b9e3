/*
Package pprt is a grammar-driven parsing runtime with backtracking.

Consists of subpackages:
  - cmd/pprt: console utility to tokenize and parse files using a grammar artifact;
  - grammar: defines lexer states, transitions, and the rule table (terminal, concatenation,
    alternation, optional, repetition) used by parser;
  - lexer: multistate lexical analyzer built on combined regular expressions;
  - buffer: seekable token buffer providing save/restore positions for backtracking;
  - parser: reduction engine and parser;
  - source: defines source file;
  - tree: default syntax tree and the builder creating it.

Typical usage is:

1. Describe grammar either with grammar.Builder or as a JSON, YAML, or TOML artifact.

2. Create new parser for the grammar.

3. Parse sources using either tree.Builder or any other parser.Builder implementation
that turns named rules into values.
*/
package pprt

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	ConfigErrors  = 1   // used by grammar and lexer constructors
	LexicalErrors = 101 // used by lexer
	BufferErrors  = 201 // used by buffer
	SyntaxErrors  = 301 // used by parser
	ParserErrors  = 401 // used by parser
)

// Token is a read-only view of a token attached to an error.
// lexer.Token implements this interface.
type Token interface {
	Name() string
	Text() string
	Offset() int
}

// Error is the error type used by pprt subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int

	// Offset contains byte offset in source file or -1.
	Offset int

	// Subject contains the name of lexer state, token type, or rule the error refers to, or empty string.
	Subject string

	// Token contains offending token or nil.
	Token Token

	// Expected contains names of tokens that would have been accepted, if known.
	Expected []string
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos and lexer.Token implement this interface.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{Code: code, Message: msg, SourceName: name, Line: line, Col: col, Offset: -1}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil. If pos is a Token, it is stored in the error along with its offset.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	e := NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
	if t, ok := pos.(Token); ok {
		e.Token = t
		e.Offset = t.Offset()
	}
	return e
}

// WithSubject sets Subject and returns the same error.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}
