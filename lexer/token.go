package lexer

import (
	"fmt"

	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/source"
)

// Kind tells how lexer classified a token.
type Kind int

const (
	Regular Kind = iota
	Skip
	Unknown
	Eoi
)

const (
	EoiTokenName     = grammar.EoiToken
	UnknownTokenName = grammar.UnknownToken
)

// Token is an immutable lexeme. Offset is a byte offset in the source, line and column are computed on demand.
type Token struct {
	name   string
	text   string
	offset int
	kind   Kind
	source *source.Source
}

// NewToken creates a token. src may be nil.
func NewToken(name, text string, offset int, kind Kind, src *source.Source) *Token {
	return &Token{name, text, offset, kind, src}
}

// EoiToken creates end-of-input token, offset is the total length of consumed input.
func EoiToken(src *source.Source, offset int) *Token {
	return &Token{name: EoiTokenName, offset: offset, kind: Eoi, source: src}
}

func (t *Token) Name() string {
	return t.name
}

func (t *Token) Text() string {
	return t.text
}

func (t *Token) Offset() int {
	return t.offset
}

// Len returns the length of the token in bytes.
func (t *Token) Len() int {
	return len(t.text)
}

// End returns the offset of the first byte after the token.
func (t *Token) End() int {
	return t.offset + len(t.text)
}

func (t *Token) Kind() Kind {
	return t.kind
}

func (t *Token) IsEoi() bool {
	return t.kind == Eoi
}

func (t *Token) Source() *source.Source {
	return t.source
}

func (t *Token) SourceName() string {
	if t.source == nil {
		return ""
	}

	return t.source.Name()
}

func (t *Token) Pos() source.Pos {
	return source.NewPos(t.source, t.offset)
}

func (t *Token) Line() int {
	return t.Pos().Line()
}

func (t *Token) Col() int {
	return t.Pos().Col()
}

func (t *Token) String() string {
	if t.kind == Eoi {
		return fmt.Sprintf("%s@%d", t.name, t.offset)
	}

	return fmt.Sprintf("%s(%q)@%d", t.name, t.text, t.offset)
}
