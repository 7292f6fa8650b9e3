// Package grammar defines lexer states, state transitions, and the rule table used by parser.
package grammar

import (
	"strconv"

	"github.com/ava12/pprt"
)

// Reserved token names.
const (
	// EoiToken is the name of the end-of-input token. Terminals may refer to it without declaring it.
	EoiToken = "-end-of-input-"
	// UnknownToken is the name of tokens capturing unrecognized input.
	UnknownToken = "-unknown-"
)

// Error codes used by grammar validation and construction:
const (
	EmptyStatesError = pprt.ConfigErrors + iota
	EmptyRulesError
	DuplicateStateError
	DuplicateTokenError
	EmptyPatternError
	BadPatternError
	UnknownStateError
	UnknownTokenError
	BadRefError
	BadRangeError
	BadRuleError
	DuplicateRuleError
	UndefinedRuleError
	BadInitialError
	BadArtifactError
)

// Kind is the variant of a rule.
type Kind int

const (
	Terminal Kind = iota
	Concatenation
	Alternation
	Optional
	Repetition
)

var kindNames = []string{"terminal", "concatenation", "alternation", "optional", "repetition"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindNames[k]
}

// Inf is the upper bound of unlimited repetition.
const Inf = -1

// Rule is an element of the rule table.
// Refs contain indexes of other rules in the same table, so rules may refer to themselves.
type Rule struct {
	Kind Kind

	// Name is empty for anonymous rules produced by desugaring; only named rules are passed to builder.
	Name string `json:",omitempty"`

	// Token is the token name matched by Terminal.
	Token string `json:",omitempty"`

	// Keep tells whether Terminal adds the matched token to the result.
	Keep bool `json:",omitempty"`

	// Refs contain sub-rules: all items for Concatenation and Alternation, exactly one for Optional and Repetition.
	Refs []int `json:",omitempty"`

	// Min and Max bound the number of Repetition iterations, Max may be Inf.
	Min int `json:",omitempty"`
	Max int `json:",omitempty"`
}

// Token is a named token pattern.
type Token struct {
	Name, Re string
}

// State is a lexer state, tokens are tried in order of declaration.
type State struct {
	Name   string
	Tokens []Token
}

// Grammar is the compiled grammar. It must not be modified after parser has been created.
type Grammar struct {
	// Initial is the index of the rule that matches the whole input.
	Initial int

	// States contain lexer states, the first one is the default initial state.
	States []State

	// Skip contains names of tokens that are consumed but never passed to parser.
	Skip []string `json:",omitempty"`

	// Transitions map a state name and a token name to the next state name.
	Transitions map[string]map[string]string `json:",omitempty"`

	Rules []Rule
}

// RuleIndex returns the index of a named rule.
func (g *Grammar) RuleIndex(name string) (int, bool) {
	for i, r := range g.Rules {
		if r.Name == name && name != "" {
			return i, true
		}
	}

	return -1, false
}

// StateIndex returns the index of a lexer state.
func (g *Grammar) StateIndex(name string) (int, bool) {
	for i, s := range g.States {
		if s.Name == name {
			return i, true
		}
	}

	return -1, false
}

// IsSkipped tells whether tokens with given name are filtered out.
func (g *Grammar) IsSkipped(token string) bool {
	for _, s := range g.Skip {
		if s == token {
			return true
		}
	}

	return false
}

// RuleName returns rule name or its index for anonymous rules.
func (g *Grammar) RuleName(index int) string {
	if index >= 0 && index < len(g.Rules) && g.Rules[index].Name != "" {
		return g.Rules[index].Name
	}

	return "#" + strconv.Itoa(index)
}

func (g *Grammar) tokenNames() map[string]bool {
	result := map[string]bool{EoiToken: true}
	for _, s := range g.States {
		for _, t := range s.Tokens {
			result[t.Name] = true
		}
	}
	return result
}

func isNumeric(name string) bool {
	_, e := strconv.Atoi(name)
	return e == nil
}

// Validate checks grammar consistency. Transition targets are not checked:
// entering an undefined state is reported by lexer when it happens.
func (g *Grammar) Validate() error {
	if len(g.States) == 0 {
		return pprt.FormatError(EmptyStatesError, "grammar defines no lexer states")
	}

	stateNames := make(map[string]bool, len(g.States))
	for _, s := range g.States {
		if stateNames[s.Name] {
			return pprt.FormatError(DuplicateStateError, "duplicate lexer state %q", s.Name).WithSubject(s.Name)
		}

		stateNames[s.Name] = true
		tokenNames := make(map[string]bool, len(s.Tokens))
		for _, t := range s.Tokens {
			if t.Name == "" || t.Name == EoiToken || t.Name == UnknownToken {
				return pprt.FormatError(BadRuleError, "invalid token name %q in state %q", t.Name, s.Name).WithSubject(t.Name)
			}
			if tokenNames[t.Name] {
				return pprt.FormatError(DuplicateTokenError, "duplicate token %q in state %q", t.Name, s.Name).WithSubject(t.Name)
			}
			if t.Re == "" {
				return pprt.FormatError(EmptyPatternError, "empty pattern for token %q in state %q", t.Name, s.Name).WithSubject(t.Name)
			}

			tokenNames[t.Name] = true
		}
	}

	tokens := g.tokenNames()
	for _, name := range g.Skip {
		if !tokens[name] {
			return pprt.FormatError(UnknownTokenError, "unknown skipped token %q", name).WithSubject(name)
		}
	}

	for from, ts := range g.Transitions {
		if !stateNames[from] {
			return pprt.FormatError(UnknownStateError, "transition from unknown state %q", from).WithSubject(from)
		}
		for token := range ts {
			if !tokens[token] {
				return pprt.FormatError(UnknownTokenError, "transition from state %q on unknown token %q", from, token).WithSubject(token)
			}
		}
	}

	if len(g.Rules) == 0 {
		return pprt.FormatError(EmptyRulesError, "grammar defines no rules")
	}

	if g.Initial < 0 || g.Initial >= len(g.Rules) {
		return pprt.FormatError(BadInitialError, "initial rule index %d is out of range", g.Initial)
	}

	ruleNames := make(map[string]bool, len(g.Rules))
	for i, r := range g.Rules {
		if e := g.validateRule(i, r, tokens); e != nil {
			return e
		}

		if r.Name == "" {
			continue
		}
		if isNumeric(r.Name) {
			return pprt.FormatError(BadRuleError, "numeric rule name %q", r.Name).WithSubject(r.Name)
		}
		if ruleNames[r.Name] {
			return pprt.FormatError(DuplicateRuleError, "duplicate rule %q", r.Name).WithSubject(r.Name)
		}
		ruleNames[r.Name] = true
	}

	return nil
}

func (g *Grammar) validateRule(index int, r Rule, tokens map[string]bool) error {
	name := g.RuleName(index)
	refCount := -1
	switch r.Kind {
	case Terminal:
		if !tokens[r.Token] {
			return pprt.FormatError(UnknownTokenError, "rule %s refers to unknown token %q", name, r.Token).WithSubject(r.Token)
		}
		refCount = 0

	case Concatenation, Alternation:
		if len(r.Refs) == 0 {
			return pprt.FormatError(BadRuleError, "%s rule %s has no items", r.Kind, name).WithSubject(name)
		}

	case Optional:
		refCount = 1

	case Repetition:
		refCount = 1
		if r.Min < 0 || (r.Max != Inf && r.Max < r.Min) {
			return pprt.FormatError(BadRangeError, "rule %s has invalid repetition bounds [%d, %d]", name, r.Min, r.Max).WithSubject(name)
		}

	default:
		return pprt.FormatError(BadRuleError, "rule %s has unknown kind %d", name, int(r.Kind)).WithSubject(name)
	}

	if refCount >= 0 && len(r.Refs) != refCount {
		return pprt.FormatError(BadRuleError, "%s rule %s must have %d item(s), got %d", r.Kind, name, refCount, len(r.Refs)).WithSubject(name)
	}

	for _, ref := range r.Refs {
		if ref < 0 || ref >= len(g.Rules) {
			return pprt.FormatError(BadRefError, "rule %s refers to rule index %d that is out of range", name, ref).WithSubject(name)
		}
	}

	return nil
}
