// Package source defines source file used by lexer and parser.
package source

import (
	"os"
	"sort"
	"unicode/utf8"
)

// Source is a named immutable piece of input with line index, safe for concurrent use.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates a source. name is used in error messages only.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content, lineStarts: []int{0}}
	for i, b := range content {
		if b == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// FromString creates a source holding a copy of text.
func FromString(name, text string) *Source {
	return New(name, []byte(text))
}

// Open reads the whole file, file name becomes source name.
func Open(name string) (*Source, error) {
	content, e := os.ReadFile(name)
	if e != nil {
		return nil, e
	}

	return New(name, content), nil
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// LineCol converts byte offset to 1-based line and column (in runes).
// Offsets outside of content are clamped.
func (s *Source) LineCol(pos int) (line, col int) {
	pos = max(0, min(pos, len(s.content)))
	i := sort.SearchInts(s.lineStarts, pos+1) - 1
	return i + 1, utf8.RuneCount(s.content[s.lineStarts[i]:pos]) + 1
}

// Pos is a position in particular source, implements pprt.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos computes line and column for given byte offset. src may be nil.
func NewPos(src *Source, pos int) Pos {
	res := Pos{src: src, pos: pos}
	if src != nil {
		res.line, res.col = src.LineCol(pos)
	}
	return res
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}

	return p.src.name
}

func (p Pos) Pos() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}
