package grammar

import (
	"github.com/ava12/pprt"
)

// Builder assembles a Grammar in Go code.
// Rule constructors return rule indexes to be used as items of other rules.
// A named rule may be referenced with Ref before it is defined, this is how recursive rules are made.
// The first error is kept and returned by Grammar, later calls do nothing.
type Builder struct {
	g       Grammar
	names   map[string]int
	defined map[int]bool
	terms   map[string]int
	lexemes map[string]int
	initial string
	first   int
	err     error
}

func NewBuilder() *Builder {
	return &Builder{
		names:   make(map[string]int),
		defined: make(map[int]bool),
		terms:   make(map[string]int),
		lexemes: make(map[string]int),
		first:   -1,
	}
}

// Token appends token pattern to lexer state, the state is created on first use.
func (b *Builder) Token(state, name, re string) *Builder {
	if b.err != nil {
		return b
	}

	i, found := b.g.StateIndex(state)
	if !found {
		i = len(b.g.States)
		b.g.States = append(b.g.States, State{Name: state})
	}
	b.g.States[i].Tokens = append(b.g.States[i].Tokens, Token{name, re})
	return b
}

// Skip marks tokens as insignificant.
func (b *Builder) Skip(names ...string) *Builder {
	b.g.Skip = append(b.g.Skip, names...)
	return b
}

// Transition switches lexer from one state to another after a token.
func (b *Builder) Transition(from, token, to string) *Builder {
	if b.g.Transitions == nil {
		b.g.Transitions = make(map[string]map[string]string)
	}
	ts := b.g.Transitions[from]
	if ts == nil {
		ts = make(map[string]string)
		b.g.Transitions[from] = ts
	}
	ts[token] = to
	return b
}

// Initial sets the root rule name, default is the first defined named rule.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// Ref returns the index of a named rule, reserving it if not defined yet.
func (b *Builder) Ref(name string) int {
	i, found := b.names[name]
	if !found {
		i = len(b.g.Rules)
		b.g.Rules = append(b.g.Rules, Rule{Name: name})
		b.names[name] = i
	}
	return i
}

// Term creates terminal that keeps matched token. Terminals for the same token are shared.
func (b *Builder) Term(token string) int {
	return b.terminal(token, true, b.terms)
}

// Lexeme creates terminal that matches a token but drops it from the result.
func (b *Builder) Lexeme(token string) int {
	return b.terminal(token, false, b.lexemes)
}

func (b *Builder) terminal(token string, keep bool, cache map[string]int) int {
	if i, found := cache[token]; found {
		return i
	}

	i := b.define("", Rule{Kind: Terminal, Token: token, Keep: keep})
	cache[token] = i
	return i
}

// Concat defines concatenation rule, name may be empty for anonymous rules.
func (b *Builder) Concat(name string, refs ...int) int {
	return b.define(name, Rule{Kind: Concatenation, Refs: refs})
}

// Alt defines alternation rule, items are tried in given order.
func (b *Builder) Alt(name string, refs ...int) int {
	return b.define(name, Rule{Kind: Alternation, Refs: refs})
}

// Opt defines optional rule.
func (b *Builder) Opt(name string, ref int) int {
	return b.define(name, Rule{Kind: Optional, Refs: []int{ref}})
}

// Repeat defines repetition rule, max may be Inf.
func (b *Builder) Repeat(name string, ref, min, max int) int {
	return b.define(name, Rule{Kind: Repetition, Refs: []int{ref}, Min: min, Max: max})
}

func (b *Builder) define(name string, r Rule) int {
	r.Name = name
	if name == "" {
		b.g.Rules = append(b.g.Rules, r)
		return len(b.g.Rules) - 1
	}

	i := b.Ref(name)
	if b.defined[i] {
		if b.err == nil {
			b.err = pprt.FormatError(DuplicateRuleError, "rule %q is already defined", name).WithSubject(name)
		}
		return i
	}

	b.defined[i] = true
	b.g.Rules[i] = r
	if b.first < 0 {
		b.first = i
	}
	return i
}

// Grammar validates and returns built grammar. Builder must not be used afterwards.
func (b *Builder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}

	for name, i := range b.names {
		if !b.defined[i] {
			return nil, pprt.FormatError(UndefinedRuleError, "rule %q is referenced but not defined", name).WithSubject(name)
		}
	}

	g := b.g
	g.Initial = b.first
	if b.initial != "" {
		i, found := b.names[b.initial]
		if !found {
			return nil, pprt.FormatError(UndefinedRuleError, "initial rule %q is not defined", b.initial).WithSubject(b.initial)
		}
		g.Initial = i
	}

	e := g.Validate()
	if e != nil {
		return nil, e
	}

	return &g, nil
}
