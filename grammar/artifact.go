package grammar

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ava12/pprt"
)

// Artifact is the serializable form of Grammar produced by grammar compilers.
// Rule ids are either numeric (anonymous rules) or names (named rules), Refs contain rule ids.
type Artifact struct {
	Initial     string                       `json:"initial" yaml:"initial" toml:"initial"`
	States      []StateSpec                  `json:"states" yaml:"states" toml:"states"`
	Skip        []string                     `json:"skip,omitempty" yaml:"skip,omitempty" toml:"skip,omitempty"`
	Transitions map[string]map[string]string `json:"transitions,omitempty" yaml:"transitions,omitempty" toml:"transitions,omitempty"`
	Rules       map[string]RuleSpec          `json:"rules" yaml:"rules" toml:"rules"`
}

type StateSpec struct {
	Name   string    `json:"name" yaml:"name" toml:"name"`
	Tokens TokenList `json:"tokens" yaml:"tokens" toml:"tokens"`
}

type TokenSpec struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Re   string `json:"re" yaml:"re" toml:"re"`
}

// TokenList is a list of token patterns.
// JSON and YAML forms may also be an object mapping token names to patterns, key order is preserved.
type TokenList []TokenSpec

type RuleSpec struct {
	Kind  string   `json:"kind" yaml:"kind" toml:"kind"`
	Token string   `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Keep  *bool    `json:"keep,omitempty" yaml:"keep,omitempty" toml:"keep,omitempty"` // default is false for "lexeme", true otherwise
	Refs  []string `json:"refs,omitempty" yaml:"refs,omitempty" toml:"refs,omitempty"`
	Min   int      `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max   *int     `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

var kindAliases = map[string]Kind{
	"terminal":      Terminal,
	"term":          Terminal,
	"lexeme":        Terminal,
	"concatenation": Concatenation,
	"concat":        Concatenation,
	"alternation":   Alternation,
	"alt":           Alternation,
	"optional":      Optional,
	"opt":           Optional,
	"repetition":    Repetition,
	"repeat":        Repetition,
}

func (tl *TokenList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		var list []TokenSpec
		e := json.Unmarshal(data, &list)
		*tl = list
		return e
	}

	d := json.NewDecoder(bytes.NewReader(data))
	if _, e := d.Token(); e != nil {
		return e
	}

	var list []TokenSpec
	for d.More() {
		key, e := d.Token()
		if e != nil {
			return e
		}

		var re string
		if e = d.Decode(&re); e != nil {
			return e
		}

		list = append(list, TokenSpec{Name: key.(string), Re: re})
	}
	*tl = list
	return nil
}

func (tl *TokenList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		var list []TokenSpec
		e := value.Decode(&list)
		*tl = list
		return e
	}

	list := make([]TokenSpec, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var re string
		if e := value.Content[i+1].Decode(&re); e != nil {
			return e
		}

		list = append(list, TokenSpec{Name: value.Content[i].Value, Re: re})
	}
	*tl = list
	return nil
}

func artifactError(format string, params ...any) *pprt.Error {
	return pprt.FormatError(BadArtifactError, format, params...)
}

// ruleIds returns named ids in lexical order followed by numeric ids in numeric order.
func ruleIds(rules map[string]RuleSpec) []string {
	var names, numbers []string
	for id := range rules {
		if isNumeric(id) {
			numbers = append(numbers, id)
		} else {
			names = append(names, id)
		}
	}

	sort.Strings(names)
	sort.Slice(numbers, func(i, j int) bool {
		a, _ := strconv.Atoi(numbers[i])
		b, _ := strconv.Atoi(numbers[j])
		return a < b
	})
	return append(names, numbers...)
}

// Grammar converts and validates the artifact.
func (a *Artifact) Grammar() (*Grammar, error) {
	g := &Grammar{
		Skip:        a.Skip,
		Transitions: a.Transitions,
	}

	for _, s := range a.States {
		state := State{Name: s.Name, Tokens: make([]Token, len(s.Tokens))}
		for i, t := range s.Tokens {
			state.Tokens[i] = Token{t.Name, t.Re}
		}
		g.States = append(g.States, state)
	}

	ids := ruleIds(a.Rules)
	indexes := make(map[string]int, len(ids))
	for i, id := range ids {
		indexes[id] = i
	}

	g.Rules = make([]Rule, len(ids))
	for i, id := range ids {
		spec := a.Rules[id]
		kind, found := kindAliases[strings.ToLower(spec.Kind)]
		if !found {
			return nil, artifactError("rule %q has unknown kind %q", id, spec.Kind)
		}

		r := Rule{Kind: kind, Token: spec.Token, Min: spec.Min, Max: Inf}
		if !isNumeric(id) {
			r.Name = id
		}
		if kind == Terminal {
			r.Keep = !strings.EqualFold(spec.Kind, "lexeme")
			if spec.Keep != nil {
				r.Keep = *spec.Keep
			}
		}
		if spec.Max != nil {
			r.Max = *spec.Max
		}
		if kind != Repetition {
			r.Min, r.Max = 0, 0
		}

		for _, ref := range spec.Refs {
			index, found := indexes[ref]
			if !found {
				return nil, artifactError("rule %q refers to undefined rule %q", id, ref)
			}
			r.Refs = append(r.Refs, index)
		}
		g.Rules[i] = r
	}

	if a.Initial == "" {
		return nil, artifactError("initial rule is not set")
	}
	initial, found := indexes[a.Initial]
	if !found {
		return nil, artifactError("initial rule %q is not defined", a.Initial)
	}
	g.Initial = initial

	e := g.Validate()
	if e != nil {
		return nil, e
	}

	return g, nil
}

func ruleId(g *Grammar, index int) string {
	if name := g.Rules[index].Name; name != "" {
		return name
	}

	return strconv.Itoa(index)
}

// Artifact converts grammar to its serializable form, anonymous rules get their indexes as ids.
func (g *Grammar) Artifact() *Artifact {
	a := &Artifact{
		Initial:     ruleId(g, g.Initial),
		Skip:        g.Skip,
		Transitions: g.Transitions,
		Rules:       make(map[string]RuleSpec, len(g.Rules)),
	}

	for _, s := range g.States {
		spec := StateSpec{Name: s.Name, Tokens: make(TokenList, len(s.Tokens))}
		for i, t := range s.Tokens {
			spec.Tokens[i] = TokenSpec{t.Name, t.Re}
		}
		a.States = append(a.States, spec)
	}

	for i, r := range g.Rules {
		spec := RuleSpec{Kind: r.Kind.String(), Token: r.Token}
		switch r.Kind {
		case Terminal:
			keep := r.Keep
			spec.Keep = &keep
		case Repetition:
			spec.Min = r.Min
			if r.Max != Inf {
				max := r.Max
				spec.Max = &max
			}
		}

		for _, ref := range r.Refs {
			spec.Refs = append(spec.Refs, ruleId(g, ref))
		}
		a.Rules[ruleId(g, i)] = spec
	}

	return a
}

// LoadJSON reads JSON artifact.
func LoadJSON(r io.Reader) (*Grammar, error) {
	var a Artifact
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()
	if e := d.Decode(&a); e != nil {
		return nil, artifactError("cannot decode JSON grammar: %s", e)
	}

	return a.Grammar()
}

// LoadYAML reads YAML artifact.
func LoadYAML(r io.Reader) (*Grammar, error) {
	var a Artifact
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if e := d.Decode(&a); e != nil {
		return nil, artifactError("cannot decode YAML grammar: %s", e)
	}

	return a.Grammar()
}

// LoadTOML reads TOML artifact. Token lists must be arrays of tables since TOML tables are unordered.
func LoadTOML(r io.Reader) (*Grammar, error) {
	var a Artifact
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	if e := d.Decode(&a); e != nil {
		return nil, artifactError("cannot decode TOML grammar: %s", e)
	}

	return a.Grammar()
}

// LoadFile reads artifact choosing format by file extension: .json, .yaml, .yml, or .toml.
func LoadFile(name string) (*Grammar, error) {
	var load func(io.Reader) (*Grammar, error)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		load = LoadJSON
	case ".yaml", ".yml":
		load = LoadYAML
	case ".toml":
		load = LoadTOML
	default:
		return nil, artifactError("unknown grammar file format: %s", name)
	}

	f, e := os.Open(name)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	return load(f)
}

// WriteJSON writes indented JSON artifact.
func (g *Grammar) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.Artifact())
}
