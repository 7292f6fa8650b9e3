package pprt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testPos struct {
	name      string
	line, col int
}

func (p testPos) SourceName() string { return p.name }
func (p testPos) Line() int          { return p.line }
func (p testPos) Col() int           { return p.col }

type testToken struct {
	testPos
	text string
	ofs  int
}

func (t testToken) Name() string { return "word" }
func (t testToken) Text() string { return t.text }
func (t testToken) Offset() int  { return t.ofs }

func TestNewError(t *testing.T) {
	e := NewError(SyntaxErrors, "oops", "src", 2, 3)
	assert.Equal(t, "oops in src at line 2 col 3", e.Error())
	assert.Equal(t, -1, e.Offset)

	e = NewError(SyntaxErrors, "oops", "", 2, 3)
	assert.Equal(t, "oops", e.Error())
}

func TestFormatErrorPos(t *testing.T) {
	e := FormatErrorPos(testPos{"src", 1, 5}, LexicalErrors, "bad %q", "x")
	assert.Equal(t, `bad "x" in src at line 1 col 5`, e.Message)
	assert.Nil(t, e.Token)

	tok := testToken{testPos{"src", 1, 5}, "foo", 4}
	e = FormatErrorPos(tok, LexicalErrors, "bad token")
	assert.Equal(t, 4, e.Offset)
	assert.Equal(t, tok, e.Token)
}

func TestErrorIs(t *testing.T) {
	e := fmt.Errorf("wrapped: %w", FormatError(ParserErrors, "too deep"))
	assert.True(t, errors.Is(e, &Error{Code: ParserErrors}))
	assert.False(t, errors.Is(e, &Error{Code: SyntaxErrors}))

	var pe *Error
	assert.True(t, errors.As(e, &pe))
	assert.Equal(t, "too deep", pe.Message)
}
