package tree

import (
	"context"
	"fmt"

	"github.com/ava12/pprt/lexer"
	"github.com/ava12/pprt/parser"
	"github.com/ava12/pprt/source"
)

// Builder is parser.Builder creating a *RuleNode for every named rule.
// Kept tokens become *TokenNode children.
type Builder struct{}

func (Builder) Build(rule string, token *lexer.Token, children []any) (any, error) {
	n := NewRuleNode(rule, token)
	e := appendChildren(n, children)
	if e != nil {
		return nil, e
	}

	return n, nil
}

func appendChildren(n *RuleNode, children []any) error {
	for _, c := range children {
		var e error
		switch x := c.(type) {
		case *lexer.Token:
			e = n.AppendChild(NewTokenNode(x))
		case Node:
			e = n.AppendChild(x)
		default:
			e = fmt.Errorf("rule %s: child of type %T is not a tree.Node", n.name, c)
		}
		if e != nil {
			return e
		}
	}

	return nil
}

// Root converts parse result to a tree. Children of an anonymous initial rule are wrapped in a rule node with empty name.
func Root(result any) (*RuleNode, error) {
	switch x := result.(type) {
	case *RuleNode:
		return x, nil

	case []any:
		var tok *lexer.Token
		if len(x) > 0 {
			if t, ok := x[0].(*lexer.Token); ok {
				tok = t
			}
		}
		n := NewRuleNode("", tok)
		e := appendChildren(n, x)
		if e != nil {
			return nil, e
		}
		return n, nil
	}

	return nil, fmt.Errorf("parse result of type %T is not a tree", result)
}

// Parse parses the source with Builder and returns the root node.
func Parse(ctx context.Context, p *parser.Parser, src *source.Source) (*RuleNode, error) {
	result, e := p.Parse(ctx, src, Builder{})
	if e != nil {
		return nil, e
	}

	return Root(result)
}
