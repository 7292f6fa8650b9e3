package tree_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/parser"
	"github.com/ava12/pprt/source"
	"github.com/ava12/pprt/tree"
)

func ExampleParse() {
	b := grammar.NewBuilder().
		Token("default", "name", `\w+`).
		Token("default", "op", `=`)
	b.Concat("g", b.Concat("var", b.Term("name")), b.Term("op"), b.Concat("value", b.Term("name")))
	g, e := b.Initial("g").Grammar()
	if e != nil {
		fmt.Println(e)
		return
	}

	p, _ := parser.New(g, nil)
	root, e := tree.Parse(context.Background(), p, source.FromString("input", "foo=bar"))
	if e != nil {
		fmt.Println(e)
		return
	}

	var visit func(n tree.Node)
	visit = func(n tree.Node) {
		indent := strings.Repeat("--", tree.NodeLevel(n))
		if n.IsRule() {
			fmt.Printf("%s%s:\n", indent, n.Name())
			for _, c := range tree.Children(n) {
				visit(c)
			}
		} else {
			fmt.Printf("%s%s %q\n", indent, n.Name(), n.Token().Text())
		}
	}
	visit(root)
	fmt.Println(tree.Format(root))
	// Output:
	// g:
	// --var:
	// ----name "foo"
	// --op "="
	// --value:
	// ----name "bar"
	// (g (var foo) = (value bar))
}
