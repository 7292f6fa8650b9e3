// Package buffer defines seekable token buffer used by parser for backtracking.
package buffer

import (
	"github.com/ava12/pprt"
	"github.com/ava12/pprt/internal/queue"
	"github.com/ava12/pprt/lexer"
)

// Error codes used by buffer:
const (
	// OutOfRangeError indicates seeking to a negative index or past the last token of exhausted source.
	OutOfRangeError = pprt.BufferErrors + iota

	// EvictedError indicates seeking to a token that has been dropped from bounded buffer.
	EvictedError
)

// Source produces tokens. A nil token with nil error means that the source is exhausted.
// *lexer.Stream implements this interface.
type Source interface {
	Next() (*lexer.Token, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (*lexer.Token, error)

func (f SourceFunc) Next() (*lexer.Token, error) {
	return f()
}

type sliceSource struct {
	tokens []*lexer.Token
	index  int
}

func (s *sliceSource) Next() (*lexer.Token, error) {
	if s.index >= len(s.tokens) {
		return nil, nil
	}

	s.index++
	return s.tokens[s.index-1], nil
}

// Option configures Buffer.
type Option func(*Buffer)

// WithHorizon limits the number of tokens kept behind the cursor, n <= 0 means no limit.
// Seeking to a dropped token fails with EvictedError, so the horizon must exceed
// the longest backtracking distance of the grammar.
func WithHorizon(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.horizon = n
		}
	}
}

// Buffer is a cursor over tokens pulled lazily from a source.
// Realized tokens are kept (all of them by default, see WithHorizon) so that the cursor can move back.
// Buffer is owned by a single parse call and is not safe for concurrent use.
type Buffer struct {
	source    Source
	tokens    *queue.Queue[*lexer.Token]
	base      int
	cursor    int
	horizon   int
	exhausted bool
}

// New creates buffer over the source and realizes the first token.
func New(src Source, opts ...Option) (*Buffer, error) {
	b := &Buffer{
		source: src,
		tokens: queue.New[*lexer.Token](),
	}
	for _, opt := range opts {
		opt(b)
	}

	_, e := b.realize(0)
	if e != nil {
		return nil, e
	}

	return b, nil
}

// FromSlice creates buffer over prepared tokens.
func FromSlice(tokens []*lexer.Token, opts ...Option) (*Buffer, error) {
	return New(&sliceSource{tokens: tokens}, opts...)
}

// FromFunc creates buffer pulling tokens from a function.
func FromFunc(next func() (*lexer.Token, error), opts ...Option) (*Buffer, error) {
	return New(SourceFunc(next), opts...)
}

// realize pulls tokens until index i is available. Returns false if the source is exhausted earlier.
func (b *Buffer) realize(i int) (bool, error) {
	for b.base+b.tokens.Len() <= i {
		if b.exhausted {
			return false, nil
		}

		t, e := b.source.Next()
		if e != nil {
			return false, e
		}
		if t == nil {
			b.exhausted = true
			return false, nil
		}

		b.tokens.Append(t)
	}

	return true, nil
}

func (b *Buffer) evict() {
	if b.horizon == 0 {
		return
	}

	for b.cursor-b.base > b.horizon {
		b.tokens.DropFirst()
		b.base++
	}
}

// Len returns the number of realized tokens including evicted ones.
func (b *Buffer) Len() int {
	return b.base + b.tokens.Len()
}

// Key returns cursor position.
func (b *Buffer) Key() int {
	return b.cursor
}

// Valid tells whether the cursor points to a token. It is false only after moving past the last token.
func (b *Buffer) Valid() bool {
	return b.cursor >= b.base && b.cursor < b.Len()
}

// Current returns the token under cursor or nil if the cursor is past the last token.
func (b *Buffer) Current() *lexer.Token {
	t, _ := b.tokens.At(b.cursor - b.base)
	return t
}

// Next advances cursor by one token. Moving past the last token is allowed once.
func (b *Buffer) Next() error {
	if b.cursor >= b.Len() {
		return b.outOfRangeError(b.cursor + 1)
	}

	b.cursor++
	_, e := b.realize(b.cursor)
	if e != nil {
		return e
	}

	b.evict()
	return nil
}

// Seek moves cursor to i-th token, pulling more tokens if needed.
// Fails if i is negative, the source is exhausted before i-th token, or i-th token is evicted.
// On failure cursor is not changed.
func (b *Buffer) Seek(i int) error {
	if i < 0 {
		return b.outOfRangeError(i)
	}
	if i < b.base {
		return pprt.FormatError(EvictedError, "cannot seek to token #%d, tokens before #%d are dropped", i, b.base)
	}

	found, e := b.realize(i)
	if e != nil {
		return e
	}
	if !found {
		return b.outOfRangeError(i)
	}

	b.cursor = i
	b.evict()
	return nil
}

// Rewind moves cursor to the first token.
func (b *Buffer) Rewind() error {
	return b.Seek(0)
}

func (b *Buffer) outOfRangeError(i int) *pprt.Error {
	return pprt.FormatError(OutOfRangeError, "token index %d is out of range [0, %d)", i, b.Len())
}
