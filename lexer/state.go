package lexer

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/ava12/pprt"
	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/source"
)

const (
	markerPrefix  = "pprtm"
	unknownMarker = markerPrefix + "u"
	trialInput    = "trial input\n"
)

// State is a compiled lexer state: all token patterns joined into one anchored alternation.
// Each alternative is wrapped in a named group (marker) identifying the token,
// the last alternative matches any single char and produces unknown tokens.
// State is immutable and may be shared.
type State struct {
	name   string
	re     *regexp2.Regexp
	names  []string
	skip   []bool
	groups []int
}

func markerName(i int) string {
	return fmt.Sprintf("%s%d", markerPrefix, i)
}

func badPatternError(state string, t grammar.Token, e error) *pprt.Error {
	return pprt.FormatError(grammar.BadPatternError, "bad pattern /%s/ for token %q in state %q: %s",
		t.Re, t.Name, state, e).WithSubject(t.Name)
}

// NewState compiles lexer state. skip tells which tokens are insignificant, it may be nil.
// timeout limits time spent on a single match, zero means no limit.
func NewState(name string, tokens []grammar.Token, skip func(token string) bool, timeout time.Duration) (*State, error) {
	var sb strings.Builder
	sb.WriteString(`\G(?:`)
	offset := 0
	for i, t := range tokens {
		if t.Re == "" {
			return nil, pprt.FormatError(grammar.EmptyPatternError, "empty pattern for token %q in state %q", t.Name, name).WithSubject(t.Name)
		}
		single, e := regexp2.Compile(t.Re, regexp2.None)
		if e != nil {
			return nil, badPatternError(name, t, e)
		}
		groups := unnamedGroups(single)
		fmt.Fprintf(&sb, "(?<%s>%s)|", markerName(i), shiftGroupRefs(t.Re, groups, offset))
		offset += groups
	}
	fmt.Fprintf(&sb, "(?<%s>(?s:.+?)))", unknownMarker)

	re, e := regexp2.Compile(sb.String(), regexp2.None)
	if e != nil {
		return nil, findBadPattern(name, tokens, e)
	}

	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	if _, e = re.MatchString(trialInput); e != nil {
		return nil, findBadPattern(name, tokens, e)
	}

	s := &State{
		name:   name,
		re:     re,
		names:  make([]string, len(tokens)),
		skip:   make([]bool, len(tokens)),
		groups: make([]int, len(tokens)),
	}
	for i, t := range tokens {
		s.names[i] = t.Name
		s.skip[i] = (skip != nil && skip(t.Name))
		s.groups[i] = re.GroupNumberFromName(markerName(i))
	}
	return s, nil
}

// unnamedGroups returns the number of numbered capture groups of a pattern compiled alone.
func unnamedGroups(re *regexp2.Regexp) int {
	n := 0
	for _, name := range re.GetGroupNames() {
		if name != "0" && name[0] >= '0' && name[0] <= '9' {
			n++
		}
	}
	return n
}

// shiftGroupRefs rewrites numbered references to the first n groups of a pattern
// so that they still point to the same groups when offset groups precede the pattern.
// References are written as \k<N>, so a following digit cannot extend the number.
func shiftGroupRefs(pattern string, n, offset int) string {
	if n == 0 || offset == 0 {
		return pattern
	}

	var sb strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			if !inClass {
				if num, end, ok := backRef(pattern, i+1); ok && num <= n {
					fmt.Fprintf(&sb, `\k<%d>`, num+offset)
					i = end - 1
					continue
				}
			}
			sb.WriteString(pattern[i : i+2])
			i++
			continue

		case c == '[' && !inClass:
			inClass = true
			sb.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				i++
				sb.WriteByte('^')
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				i++
				sb.WriteByte(']')
			}
			continue

		case c == ']' && inClass:
			inClass = false

		case c == '(' && !inClass && strings.HasPrefix(pattern[i:], "(?("):
			if num, end := scanDigits(pattern, i+3); end > i+3 && end < len(pattern) && pattern[end] == ')' && num >= 1 && num <= n {
				fmt.Fprintf(&sb, "(?(%d)", num+offset)
				i = end
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// backRef parses a numbered back reference following a backslash at pos:
// \N, \k<N>, \k'N', \<N>, or \'N'. It returns the number and the position after the reference.
func backRef(pattern string, pos int) (num, end int, ok bool) {
	c := pattern[pos]
	if c >= '1' && c <= '9' {
		num, end = scanDigits(pattern, pos)
		return num, end, true
	}

	if c == 'k' {
		pos++
		if pos >= len(pattern) {
			return 0, 0, false
		}
		c = pattern[pos]
	}

	var closing byte
	switch c {
	case '<':
		closing = '>'
	case '\'':
		closing = '\''
	default:
		return 0, 0, false
	}

	num, end = scanDigits(pattern, pos+1)
	if end == pos+1 || end >= len(pattern) || pattern[end] != closing {
		return 0, 0, false
	}
	return num, end + 1, true
}

func scanDigits(s string, pos int) (num, end int) {
	end = pos
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		num = num*10 + int(s[end]-'0')
		end++
	}
	return num, end
}

// findBadPattern compiles and tries patterns one by one to name the one that broke the combined pattern.
func findBadPattern(state string, tokens []grammar.Token, combined error) *pprt.Error {
	for _, t := range tokens {
		re, e := regexp2.Compile(`\G(?:`+t.Re+`)`, regexp2.None)
		if e == nil {
			_, e = re.MatchString(trialInput)
		}
		if e != nil {
			return badPatternError(state, t, e)
		}
	}

	return pprt.FormatError(grammar.BadPatternError, "bad combined pattern for state %q: %s", state, combined).WithSubject(state)
}

func (s *State) Name() string {
	return s.name
}

// input holds source content decoded to runes, regexp2 works with rune offsets.
type input struct {
	src     *source.Source
	text    string
	runes   []rune
	offsets []int
}

func newInput(src *source.Source) *input {
	text := string(src.Content())
	in := &input{
		src:     src,
		text:    text,
		runes:   make([]rune, 0, len(text)),
		offsets: make([]int, 0, len(text)+1),
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		in.runes = append(in.runes, r)
		in.offsets = append(in.offsets, i)
		i += size
	}
	in.offsets = append(in.offsets, len(text))
	return in
}

// runePos converts byte offset to rune index, offsets inside a rune are rounded up.
func (in *input) runePos(offset int) int {
	return sort.SearchInts(in.offsets, offset)
}

func (in *input) token(name string, kind Kind, from, to int) *Token {
	ofs := in.offsets[from]
	return NewToken(name, in.text[ofs:in.offsets[to]], ofs, kind, in.src)
}

// matchOne returns the token name, kind, and the end rune index of the match at pos.
func (s *State) matchOne(in *input, pos int) (string, Kind, int, error) {
	m, e := s.re.FindRunesMatchStartingAt(in.runes, pos)
	if e != nil {
		return "", Unknown, pos, pprt.FormatError(MatchFailedError,
			"match failed in %s at offset %d in state %q: %s", in.src.Name(), in.offsets[pos], s.name, e).WithSubject(s.name)
	}
	if m == nil || m.Index != pos {
		return UnknownTokenName, Unknown, pos + 1, nil
	}

	end := m.Index + m.Length
	for i, g := range s.groups {
		if len(m.GroupByNumber(g).Captures) != 0 {
			kind := Regular
			if s.skip[i] {
				kind = Skip
			}
			return s.names[i], kind, end, nil
		}
	}

	return UnknownTokenName, Unknown, end, nil
}

// match returns single token starting at rune index pos and the rune index after it.
// Consecutive unknown chars are joined into one unknown token.
func (s *State) match(in *input, pos int) (*Token, int, error) {
	name, kind, end, e := s.matchOne(in, pos)
	if e != nil {
		return nil, pos, e
	}

	if kind == Unknown {
		for end < len(in.runes) {
			_, k, next, e := s.matchOne(in, end)
			if e != nil {
				return nil, pos, e
			}
			if k != Unknown {
				break
			}
			end = next
		}
	}

	return in.token(name, kind, pos, end), end, nil
}

// Scan yields tokens of this state starting at byte offset until the end of source.
// Skipped and unknown tokens are yielded too, their Kind tells them apart; no EoI token is yielded.
// Scanning stops after an error or a zero-length token.
func (s *State) Scan(src *source.Source, offset int) iter.Seq2[*Token, error] {
	return func(yield func(*Token, error) bool) {
		in := newInput(src)
		pos := in.runePos(offset)
		for pos < len(in.runes) {
			t, next, e := s.match(in, pos)
			if !yield(t, e) || e != nil || next == pos {
				return
			}
			pos = next
		}
	}
}
