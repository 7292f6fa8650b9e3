package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/ava12/pprt/lexer"
	"github.com/ava12/pprt/tree"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// printer writes command output, styling it when the color profile allows.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer, color string) (*printer, error) {
	var opts []termenv.OutputOption
	switch color {
	case "", colorAuto:
		// profile is detected from the terminal and environment
	case colorAlways:
		opts = append(opts, termenv.WithProfile(termenv.ANSI))
	case colorNever:
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	default:
		return nil, fmt.Errorf("invalid color mode %q, expecting %s, %s, or %s", color, colorAuto, colorAlways, colorNever)
	}

	return &printer{termenv.NewOutput(w, opts...)}, nil
}

func (p *printer) style(text, color string) string {
	return p.out.String(text).Foreground(p.out.Color(color)).String()
}

func (p *printer) ruleName(name string) string {
	return p.out.String(name).Foreground(p.out.Color("4")).Bold().String()
}

func (p *printer) tokenName(name string) string {
	return p.style(name, "6")
}

func (p *printer) text(text string) string {
	return p.style(fmt.Sprintf("%q", text), "2")
}

func (p *printer) printf(format string, params ...any) {
	fmt.Fprintf(p.out, format, params...)
}

func (p *printer) token(t *lexer.Token) {
	p.printf("%d:%d %s %s\n", t.Line(), t.Col(), p.tokenName(t.Name()), p.text(t.Text()))
}

// tree prints one node per line, children are indented by two spaces.
func (p *printer) tree(n tree.Node) {
	indent := strings.Repeat("  ", tree.NodeLevel(n))
	if n.IsRule() {
		name := n.Name()
		if name == "" {
			name = "_"
		}
		p.printf("%s%s\n", indent, p.ruleName(name))
		for _, c := range tree.Children(n) {
			p.tree(c)
		}
	} else {
		p.printf("%s%s %s\n", indent, p.tokenName(n.Name()), p.text(n.Token().Text()))
	}
}

func (p *printer) error(e error) {
	p.printf("%s %s\n", p.style("error:", "1"), e)
}
