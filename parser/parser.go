// Package parser defines the reduction engine and the parser driving it over lexer output.
package parser

import (
	"context"
	"log/slog"
	"time"

	"github.com/ava12/pprt/buffer"
	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/lexer"
	"github.com/ava12/pprt/source"
)

// Options configure parser, zero value is usable.
type Options struct {
	// MaxDepth limits rule nesting, default is DefaultMaxDepth.
	MaxDepth int

	// Horizon limits the number of tokens kept behind the buffer cursor, zero means keep all tokens.
	// See buffer.WithHorizon.
	Horizon int

	// InitialState is the name of the initial lexer state, default is the first state.
	InitialState string

	// MatchTimeout limits a single token pattern match, zero means no limit.
	MatchTimeout time.Duration

	// Logger receives lexer transitions and rule reductions at debug level, default discards everything.
	Logger *slog.Logger
}

// Parser is immutable and may be used concurrently, every parse call gets its own buffer.
type Parser struct {
	grammar *grammar.Grammar
	lexer   *lexer.Lexer
	opts    Options
}

// New validates the grammar and compiles lexer states. opts may be nil.
func New(g *grammar.Grammar, opts *Options) (*Parser, error) {
	p := &Parser{grammar: g}
	if opts != nil {
		p.opts = *opts
	}

	e := g.Validate()
	if e != nil {
		return nil, e
	}

	p.lexer, e = lexer.New(g, &lexer.Options{
		InitialState: p.opts.InitialState,
		MatchTimeout: p.opts.MatchTimeout,
		Logger:       p.opts.Logger,
	})
	if e != nil {
		return nil, e
	}

	return p, nil
}

func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

func (p *Parser) Lexer() *lexer.Lexer {
	return p.lexer
}

// Parse tokenizes and parses the source.
// Result is the value built for the initial rule or []any children if the initial rule is anonymous,
// b is nil, or b returned nil for it.
func (p *Parser) Parse(ctx context.Context, src *source.Source, b Builder) (any, error) {
	buf, e := buffer.New(p.lexer.Lex(src), buffer.WithHorizon(p.opts.Horizon))
	if e != nil {
		return nil, e
	}

	return p.parse(ctx, buf, b)
}

// ParseString parses text, name is used in error messages.
func (p *Parser) ParseString(ctx context.Context, name, text string, b Builder) (any, error) {
	return p.Parse(ctx, source.FromString(name, text), b)
}

// ParseTokens parses prepared tokens, the last one must be end-of-input token.
func (p *Parser) ParseTokens(ctx context.Context, tokens []*lexer.Token, b Builder) (any, error) {
	buf, e := buffer.FromSlice(tokens, buffer.WithHorizon(p.opts.Horizon))
	if e != nil {
		return nil, e
	}

	return p.parse(ctx, buf, b)
}

func (p *Parser) parse(ctx context.Context, buf *buffer.Buffer, b Builder) (any, error) {
	if e := ctx.Err(); e != nil {
		return nil, e
	}

	en := NewEngine(p.grammar, b, &p.opts)
	r := en.newReduction(ctx, buf)
	initial := p.grammar.Initial
	token := buf.Current()

	children, ok, e := r.match(initial, buf.Key())
	if e != nil {
		return nil, e
	}
	if !ok || !atEnd(buf) {
		return nil, r.syntaxError()
	}

	node, e := r.build(initial, token, children)
	if e != nil {
		return nil, e
	}
	if node != nil {
		return node, nil
	}

	return []any(children), nil
}

// atEnd tells whether all tokens but end-of-input are consumed.
func atEnd(buf *buffer.Buffer) bool {
	t := buf.Current()
	return t == nil || t.IsEoi()
}

func (r *reduction) syntaxError() error {
	t := r.buf.Current()
	expected := []string(nil)
	if r.token != nil && r.farthest >= r.buf.Key() {
		t = r.token
		expected = r.expectedTokens()
	}
	if t == nil {
		t = lexer.EoiToken(nil, 0)
	}

	return unexpectedTokenError(t, expected)
}
