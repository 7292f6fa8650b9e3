// Package lexer defines multistate lexical analyzer.
package lexer

import (
	"log/slog"
	"time"

	"github.com/ava12/pprt"
	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/internal/ints"
	"github.com/ava12/pprt/source"
)

// Error codes used by lexer:
const (
	// UnrecognizedTokenError indicates a run of chars not matching any token pattern of current state.
	// Error message contains the whole run.
	UnrecognizedTokenError = pprt.LexicalErrors + iota

	// UnexpectedStateError indicates a transition into a state that is not defined.
	UnexpectedStateError

	// EndlessRecursionError indicates that lexer returned to the same state at the same offset
	// without consuming any input.
	EndlessRecursionError

	// MatchFailedError indicates that the pattern engine gave up on a match, e.g. after Options.MatchTimeout.
	MatchFailedError
)

// Options configure lexer, zero value is usable.
type Options struct {
	// InitialState is the name of the initial state, default is the first state.
	InitialState string

	// MatchTimeout limits a single pattern match, zero means no limit.
	MatchTimeout time.Duration

	// Logger receives state transitions at debug level, default discards everything.
	Logger *slog.Logger
}

// Lexer drives compiled states switching them with the transition table after each token.
// Lexer is immutable and may be used for any number of sources.
type Lexer struct {
	states      []*State
	index       map[string]int
	transitions []map[string]string
	initial     int
	logger      *slog.Logger
}

// New compiles all lexer states of the grammar.
func New(g *grammar.Grammar, opts *Options) (*Lexer, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(g.States) == 0 {
		return nil, pprt.FormatError(grammar.EmptyStatesError, "grammar defines no lexer states")
	}

	l := &Lexer{
		states:      make([]*State, len(g.States)),
		index:       make(map[string]int, len(g.States)),
		transitions: make([]map[string]string, len(g.States)),
		logger:      opts.Logger,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}

	for i, s := range g.States {
		if _, found := l.index[s.Name]; found {
			return nil, pprt.FormatError(grammar.DuplicateStateError, "duplicate lexer state %q", s.Name).WithSubject(s.Name)
		}

		state, e := NewState(s.Name, s.Tokens, g.IsSkipped, opts.MatchTimeout)
		if e != nil {
			return nil, e
		}

		l.states[i] = state
		l.index[s.Name] = i
		l.transitions[i] = g.Transitions[s.Name]
	}

	if opts.InitialState != "" {
		i, found := l.index[opts.InitialState]
		if !found {
			return nil, pprt.FormatError(grammar.UnknownStateError, "unknown initial state %q", opts.InitialState).WithSubject(opts.InitialState)
		}
		l.initial = i
	}

	return l, nil
}

// Lex creates token stream for the source.
func (l *Lexer) Lex(src *source.Source) *Stream {
	return &Stream{
		lexer:      l,
		in:         newInput(src),
		state:      l.initial,
		visited:    ints.NewSet(),
		visitedPos: -1,
	}
}

// Tokenize returns all significant tokens of the source including trailing EoI token.
func (l *Lexer) Tokenize(src *source.Source) ([]*Token, error) {
	var result []*Token
	s := l.Lex(src)
	for {
		t, e := s.Next()
		if e != nil {
			return result, e
		}
		if t == nil {
			return result, nil
		}

		result = append(result, t)
	}
}

// Stream is a pull iterator over tokens of a single source.
type Stream struct {
	lexer      *Lexer
	in         *input
	state      int
	pos        int
	visited    *ints.Set
	visitedPos int
	last       *Token
	done       bool
	err        error
}

// State returns the name of current lexer state.
func (s *Stream) State() string {
	return s.lexer.states[s.state].name
}

// Next returns next significant token. EoI token is returned exactly once after all other tokens,
// subsequent calls return nil, nil. After an error the same error is returned forever.
func (s *Stream) Next() (*Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, nil
	}

	t, e := s.next()
	if e != nil {
		s.err = e
		return nil, e
	}

	return t, nil
}

func (s *Stream) next() (*Token, error) {
	l := s.lexer
	for {
		if s.pos >= len(s.in.runes) {
			s.done = true
			return EoiToken(s.in.src, len(s.in.text)), nil
		}

		if s.pos != s.visitedPos {
			s.visited.Clear()
			s.visitedPos = s.pos
		} else if s.visited.Contains(s.state) {
			return nil, s.endlessRecursionError()
		}
		s.visited.Add(s.state)

		t, next, e := l.states[s.state].match(s.in, s.pos)
		if e != nil {
			return nil, e
		}

		s.pos = next
		s.last = t
		if t.kind == Unknown {
			return nil, pprt.FormatErrorPos(t, UnrecognizedTokenError, "unrecognized token %q", t.text).WithSubject(s.State())
		}

		if target, found := l.transitions[s.state][t.name]; found {
			i, defined := l.index[target]
			if !defined {
				return nil, pprt.FormatErrorPos(t, UnexpectedStateError, "unexpected lexer state %q after token %s", target, t.name).WithSubject(target)
			}

			l.logger.Debug("lexer state transition", "from", s.State(), "to", target, "token", t.name, "offset", t.offset)
			s.state = i
		}

		if t.kind != Skip {
			return t, nil
		}
	}
}

func (s *Stream) endlessRecursionError() *pprt.Error {
	if s.last != nil {
		return pprt.FormatErrorPos(s.last, EndlessRecursionError, "endless recursion in lexer state %q after token %s",
			s.State(), s.last.name).WithSubject(s.State())
	}

	return pprt.FormatError(EndlessRecursionError, "endless recursion in lexer state %q", s.State()).WithSubject(s.State())
}
