package parser

import (
	"context"
	"log/slog"

	"github.com/ava12/pprt/buffer"
	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/internal/ints"
	"github.com/ava12/pprt/lexer"
)

// DefaultMaxDepth is the rule nesting limit used when Options.MaxDepth is not set.
const DefaultMaxDepth = 4096

// ctx is polled once per this many reductions.
const cancelCheckInterval = 64

// Fragment is the result of a successful reduction: kept tokens (*lexer.Token) and builder results.
type Fragment = []any

// Builder turns matched named rules into values.
// token is the token at the position where the rule started, it is nil if the rule started past end-of-input.
// children contain kept tokens and results of nested rules, anonymous rules are already flattened.
// A nil result with nil error makes the engine use children as is.
// Builder may be called for a rule that is later discarded by backtracking, so it must not rely on side effects.
type Builder interface {
	Build(rule string, token *lexer.Token, children []any) (any, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(rule string, token *lexer.Token, children []any) (any, error)

func (f BuilderFunc) Build(rule string, token *lexer.Token, children []any) (any, error) {
	return f(rule, token, children)
}

// Engine reduces grammar rules against a token buffer.
// Engine is immutable, all per-call state lives in reductions.
type Engine struct {
	grammar  *grammar.Grammar
	builder  Builder
	maxDepth int
	logger   *slog.Logger
}

// NewEngine creates reduction engine. The grammar must be valid, b may be nil.
func NewEngine(g *grammar.Grammar, b Builder, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}

	en := &Engine{
		grammar:  g,
		builder:  b,
		maxDepth: opts.MaxDepth,
		logger:   opts.Logger,
	}
	if en.maxDepth <= 0 {
		en.maxDepth = DefaultMaxDepth
	}
	if en.logger == nil {
		en.logger = slog.New(slog.DiscardHandler)
	}
	return en
}

// Reduce matches a rule starting at the buffer cursor.
// On success the cursor is moved past the matched tokens. On mismatch ok is false and the cursor is not moved.
// err is returned only for failures that cannot be handled by backtracking: buffer or lexer errors,
// builder errors, exceeded nesting depth, or cancelled ctx.
func (en *Engine) Reduce(ctx context.Context, rule int, buf *buffer.Buffer) (result Fragment, ok bool, err error) {
	return en.newReduction(ctx, buf).reduce(rule)
}

type reduction struct {
	*Engine
	ctx      context.Context
	buf      *buffer.Buffer
	depth    int
	steps    int
	trace    bool
	farthest int
	token    *lexer.Token
	expected *ints.Set
}

func (en *Engine) newReduction(ctx context.Context, buf *buffer.Buffer) *reduction {
	return &reduction{
		Engine:   en,
		ctx:      ctx,
		buf:      buf,
		trace:    en.logger.Enabled(ctx, slog.LevelDebug),
		farthest: -1,
		expected: ints.NewSet(),
	}
}

func (r *reduction) reduce(index int) (Fragment, bool, error) {
	if r.steps%cancelCheckInterval == 0 {
		if e := r.ctx.Err(); e != nil {
			return nil, false, e
		}
	}
	r.steps++

	if r.depth >= r.maxDepth {
		return nil, false, tooDeepError(r.buf.Current(), r.grammar.RuleName(index), r.maxDepth)
	}
	r.depth++
	defer func() { r.depth-- }()

	start := r.buf.Key()
	token := r.buf.Current()
	children, ok, e := r.match(index, start)
	if e != nil || !ok {
		if r.trace && e == nil && r.grammar.Rules[index].Name != "" {
			r.logger.Debug("rule failed", "rule", r.grammar.Rules[index].Name, "pos", start)
		}
		return nil, false, e
	}

	node, e := r.build(index, token, children)
	if e != nil {
		return nil, false, e
	}
	if node != nil {
		return Fragment{node}, true, nil
	}

	return children, true, nil
}

func (r *reduction) build(index int, token *lexer.Token, children Fragment) (any, error) {
	rule := &r.grammar.Rules[index]
	if rule.Kind == grammar.Terminal || rule.Name == "" {
		return nil, nil
	}

	if r.trace {
		r.logger.Debug("rule matched", "rule", rule.Name, "from", r.tokenPos(token), "to", r.buf.Key(), "children", len(children))
	}
	if r.builder == nil {
		return nil, nil
	}

	return r.builder.Build(rule.Name, token, children)
}

func (r *reduction) tokenPos(t *lexer.Token) int {
	if t == nil {
		return -1
	}
	return t.Offset()
}

func (r *reduction) match(index, start int) (Fragment, bool, error) {
	rule := &r.grammar.Rules[index]
	switch rule.Kind {
	case grammar.Terminal:
		return r.matchTerminal(index, rule)

	case grammar.Concatenation:
		children := Fragment{}
		for _, ref := range rule.Refs {
			f, ok, e := r.reduce(ref)
			if e != nil {
				return nil, false, e
			}
			if !ok {
				return nil, false, r.restore(start)
			}
			children = append(children, f...)
		}
		return children, true, nil

	case grammar.Alternation:
		for _, ref := range rule.Refs {
			f, ok, e := r.reduce(ref)
			if e != nil {
				return nil, false, e
			}
			if ok {
				return f, true, nil
			}
			if e = r.restore(start); e != nil {
				return nil, false, e
			}
		}
		return nil, false, nil

	case grammar.Optional:
		f, ok, e := r.reduce(rule.Refs[0])
		if e != nil {
			return nil, false, e
		}
		if !ok {
			return Fragment{}, true, r.restore(start)
		}
		return f, true, nil

	case grammar.Repetition:
		return r.matchRepetition(rule, start)
	}

	return nil, false, nil
}

func (r *reduction) matchTerminal(index int, rule *grammar.Rule) (Fragment, bool, error) {
	t := r.buf.Current()
	if t == nil || t.Name() != rule.Token {
		r.fail(index)
		return nil, false, nil
	}

	if e := r.buf.Next(); e != nil {
		return nil, false, e
	}
	if rule.Keep {
		return Fragment{t}, true, nil
	}

	return Fragment{}, true, nil
}

func (r *reduction) matchRepetition(rule *grammar.Rule, start int) (Fragment, bool, error) {
	children := Fragment{}
	count := 0
	for {
		pos := r.buf.Key()
		f, ok, e := r.reduce(rule.Refs[0])
		if e != nil {
			return nil, false, e
		}
		if !ok {
			if e = r.restore(pos); e != nil {
				return nil, false, e
			}
			break
		}

		children = append(children, f...)
		count++

		// an item matching no tokens would match forever, it may stand for any number of items
		if r.buf.Key() == pos {
			count = max(count-1, rule.Min)
			break
		}
	}

	// items beyond Max are consumed too, so too many items fail the whole rule
	if count < rule.Min || (rule.Max != grammar.Inf && count > rule.Max) {
		return nil, false, r.restore(start)
	}

	return children, true, nil
}

// restore moves cursor back to pos. Failed rules restore their start positions themselves,
// so usually there is nothing to do; this also covers positions past end-of-input that cannot be sought.
func (r *reduction) restore(pos int) error {
	if r.buf.Key() == pos {
		return nil
	}
	return r.buf.Seek(pos)
}

// fail records a mismatched terminal. Only terminals failed at the farthest position are kept.
func (r *reduction) fail(index int) {
	pos := r.buf.Key()
	if pos < r.farthest {
		return
	}

	if pos > r.farthest {
		r.farthest = pos
		r.token = r.buf.Current()
		r.expected.Clear()
	}
	r.expected.Add(index)
}

// expectedTokens returns names of tokens expected at the farthest failure position in rule order.
func (r *reduction) expectedTokens() []string {
	var result []string
	seen := make(map[string]bool)
	for _, i := range r.expected.ToSlice() {
		name := r.grammar.Rules[i].Token
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}
