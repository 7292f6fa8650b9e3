// Package tree defines default syntax tree and the parser builder creating it.
package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ava12/pprt/lexer"
)

// Node is either *RuleNode or *TokenNode. Siblings are linked, so navigation needs no slices.
type Node interface {
	IsRule() bool

	// Name returns rule name for rule nodes and token name for token nodes.
	Name() string

	// Token returns the token of a token node or the representative token of a rule node (may be nil).
	Token() *lexer.Token

	Parent() *RuleNode
	Prev() Node
	Next() Node

	link(parent *RuleNode, prev Node)
	setNext(Node)
}

// AllLevels makes NumOfChildren count all descendants.
const AllLevels = -1

// Ancestor returns the parent for level 0, grandparent for level 1, and so on; nil if there is no such node.
func Ancestor(n Node, level int) Node {
	if n == nil {
		return nil
	}

	p := n.Parent()
	for p != nil && level > 0 {
		p = p.Parent()
		level--
	}
	if p == nil {
		return nil
	}

	return p
}

// NodeLevel returns the number of ancestors.
func NodeLevel(n Node) (l int) {
	if n == nil {
		return
	}

	for p := n.Parent(); p != nil; p = p.Parent() {
		l++
	}
	return
}

// SiblingIndex returns the number of preceding siblings.
func SiblingIndex(n Node) (i int) {
	if n == nil {
		return
	}

	for p := n.Prev(); p != nil; p = p.Prev() {
		i++
	}
	return
}

// NthChild returns i-th child of a rule node, negative i counts from the end (-1 is the last child).
func NthChild(n Node, i int) Node {
	rn, ok := n.(*RuleNode)
	if !ok || rn == nil {
		return nil
	}

	var c Node
	if i >= 0 {
		c = rn.first
		for c != nil && i > 0 {
			c = c.Next()
			i--
		}
	} else {
		i++
		c = rn.last
		for c != nil && i < 0 {
			c = c.Prev()
			i++
		}
	}

	return c
}

// NthSibling returns the node i positions after (before for negative i) the given one.
func NthSibling(n Node, i int) Node {
	for n != nil && i < 0 {
		n = n.Prev()
		i++
	}
	for n != nil && i > 0 {
		n = n.Next()
		i--
	}
	return n
}

// NumOfChildren counts children of a rule node and their descendants down to given depth,
// 0 means direct children only, AllLevels means no limit.
func NumOfChildren(parent Node, levels int) int {
	rn, ok := parent.(*RuleNode)
	if !ok || rn == nil {
		return 0
	}

	i := 0
	for c := rn.first; c != nil; c = c.Next() {
		i++
		if levels != 0 {
			i += NumOfChildren(c, levels-1)
		}
	}
	return i
}

// Children returns direct children of a rule node.
func Children(n Node) []Node {
	rn, ok := n.(*RuleNode)
	if !ok || rn == nil {
		return nil
	}

	res := make([]Node, 0)
	for c := rn.first; c != nil; c = c.Next() {
		res = append(res, c)
	}
	return res
}

// FirstTokenNode returns the first token node of a subtree or nil if there is none.
func FirstTokenNode(n Node) Node {
	rn, ok := n.(*RuleNode)
	if !ok {
		return n
	}
	if rn == nil {
		return nil
	}

	for c := rn.first; c != nil; c = c.Next() {
		if t := FirstTokenNode(c); t != nil {
			return t
		}
	}
	return nil
}

// LastTokenNode returns the last token node of a subtree or nil if there is none.
func LastTokenNode(n Node) Node {
	rn, ok := n.(*RuleNode)
	if !ok {
		return n
	}
	if rn == nil {
		return nil
	}

	for c := rn.last; c != nil; c = c.Prev() {
		if t := LastTokenNode(c); t != nil {
			return t
		}
	}
	return nil
}

// NextTokenNode returns the first token node following the subtree in document order.
func NextTokenNode(n Node) Node {
	for n != nil {
		for s := n.Next(); s != nil; s = s.Next() {
			if t := FirstTokenNode(s); t != nil {
				return t
			}
		}

		p := n.Parent()
		if p == nil {
			return nil
		}
		n = p
	}
	return nil
}

// PrevTokenNode returns the last token node preceding the subtree in document order.
func PrevTokenNode(n Node) Node {
	for n != nil {
		for s := n.Prev(); s != nil; s = s.Prev() {
			if t := LastTokenNode(s); t != nil {
				return t
			}
		}

		p := n.Parent()
		if p == nil {
			return nil
		}
		n = p
	}
	return nil
}

// Format renders a subtree as S-expression: rule nodes as (name children...), token nodes as token text.
// Text that is empty or contains spaces, parentheses, or quotes is quoted.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch x := n.(type) {
	case *TokenNode:
		sb.WriteString(tokenText(x.token.Text()))

	case *RuleNode:
		sb.WriteString("(" + x.name)
		for c := x.first; c != nil; c = c.Next() {
			sb.WriteByte(' ')
			format(sb, c)
		}
		sb.WriteByte(')')
	}
}

func tokenText(text string) string {
	if text == "" || strings.ContainsAny(text, " \t\r\n()\"") {
		return strconv.Quote(text)
	}
	return text
}

type TokenNode struct {
	parent     *RuleNode
	prev, next Node
	token      *lexer.Token
}

func NewTokenNode(t *lexer.Token) *TokenNode {
	return &TokenNode{token: t}
}

func (tn *TokenNode) IsRule() bool {
	return false
}

func (tn *TokenNode) Name() string {
	return tn.token.Name()
}

func (tn *TokenNode) Token() *lexer.Token {
	return tn.token
}

func (tn *TokenNode) Parent() *RuleNode {
	return tn.parent
}

func (tn *TokenNode) Prev() Node {
	return tn.prev
}

func (tn *TokenNode) Next() Node {
	return tn.next
}

func (tn *TokenNode) link(parent *RuleNode, prev Node) {
	tn.parent = parent
	tn.prev = prev
}

func (tn *TokenNode) setNext(n Node) {
	tn.next = n
}

type RuleNode struct {
	name        string
	token       *lexer.Token
	parent      *RuleNode
	prev, next  Node
	first, last Node
}

// NewRuleNode creates detached rule node, tok is the representative token and may be nil.
func NewRuleNode(name string, tok *lexer.Token) *RuleNode {
	return &RuleNode{name: name, token: tok}
}

func (rn *RuleNode) IsRule() bool {
	return true
}

func (rn *RuleNode) Name() string {
	return rn.name
}

func (rn *RuleNode) Token() *lexer.Token {
	return rn.token
}

func (rn *RuleNode) Parent() *RuleNode {
	return rn.parent
}

func (rn *RuleNode) Prev() Node {
	return rn.prev
}

func (rn *RuleNode) Next() Node {
	return rn.next
}

func (rn *RuleNode) FirstChild() Node {
	return rn.first
}

func (rn *RuleNode) LastChild() Node {
	return rn.last
}

func (rn *RuleNode) link(parent *RuleNode, prev Node) {
	rn.parent = parent
	rn.prev = prev
}

func (rn *RuleNode) setNext(n Node) {
	rn.next = n
}

// AppendChild attaches a detached node as the last child. Nodes that already have a parent are rejected.
func (rn *RuleNode) AppendChild(c Node) error {
	if c == nil {
		return nil
	}
	if c.Parent() != nil {
		return fmt.Errorf("cannot append %s node to %s: the node is already attached to %s", c.Name(), rn.name, c.Parent().name)
	}

	c.link(rn, rn.last)
	if rn.last == nil {
		rn.first = c
	} else {
		rn.last.setNext(c)
	}
	rn.last = c
	return nil
}
