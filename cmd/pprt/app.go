package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ava12/pprt/grammar"
	"github.com/ava12/pprt/parser"
	"github.com/ava12/pprt/source"
	"github.com/ava12/pprt/tree"
)

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	grammarFile string
	configFile  string
	colorMode   string
	trace       bool
	config      Config
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "pprt",
		Short:         "Run grammar artifacts over input files",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.grammarFile, "grammar", "g", "", "grammar artifact file (.json, .yaml, .yml, or .toml)")
	flags.StringVar(&a.configFile, "config", "", "TOML config file")
	flags.BoolVar(&a.trace, "trace", false, "log lexer transitions and rule reductions to stderr")
	flags.StringVar(&a.colorMode, "color", colorAuto, "output coloring: auto, always, or never")

	var dump bool
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(dump)
		},
	}
	check.Flags().BoolVar(&dump, "dump", false, "print normalized JSON artifact")

	lex := &cobra.Command{
		Use:   "lex [file]",
		Short: "Print significant tokens of the input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.lex(args)
		},
	}

	var sexpr bool
	parse := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the syntax tree of the input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.parse(cmd.Context(), args, sexpr)
		},
	}
	parse.Flags().BoolVar(&sexpr, "sexpr", false, "print the tree as a single S-expression")

	root.AddCommand(check, lex, parse)
	return root
}

// configure merges config file with flags, flags set explicitly win.
func (a *app) configure(cmd *cobra.Command) error {
	if a.configFile != "" {
		c, e := loadConfig(a.configFile)
		if e != nil {
			return e
		}
		a.config = c
	}

	flags := cmd.Flags()
	if flags.Changed("grammar") || a.config.Grammar == "" {
		a.config.Grammar = a.grammarFile
	}
	if flags.Changed("color") || a.config.Color == "" {
		a.config.Color = a.colorMode
	}

	_, e := newPrinter(a.stdout, a.config.Color)
	return e
}

func (a *app) color() string {
	if a.config.Color != "" {
		return a.config.Color
	}
	return a.colorMode
}

func (a *app) printer() *printer {
	p, e := newPrinter(a.stdout, a.color())
	if e != nil {
		p, _ = newPrinter(a.stdout, colorNever)
	}
	return p
}

func (a *app) logger() *slog.Logger {
	if !a.trace {
		return nil
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (a *app) newParser() (*parser.Parser, error) {
	if a.config.Grammar == "" {
		return nil, errors.New("grammar file is not set, use --grammar or grammar key in config")
	}

	g, e := grammar.LoadFile(a.config.Grammar)
	if e != nil {
		return nil, e
	}

	opts := a.config.parserOptions()
	opts.Logger = a.logger()
	return parser.New(g, opts)
}

func (a *app) input(args []string) (*source.Source, error) {
	if len(args) > 0 && args[0] != "-" {
		return source.Open(args[0])
	}

	content, e := io.ReadAll(a.stdin)
	if e != nil {
		return nil, e
	}
	return source.New("stdin", content), nil
}

func (a *app) check(dump bool) error {
	p, e := a.newParser()
	if e != nil {
		return e
	}

	g := p.Grammar()
	if dump {
		return g.WriteJSON(a.stdout)
	}

	tokens, named := 0, 0
	for _, s := range g.States {
		tokens += len(s.Tokens)
	}
	for _, r := range g.Rules {
		if r.Name != "" {
			named++
		}
	}

	out := a.printer()
	out.printf("%s: %d states, %d tokens, %d rules (%d named), initial rule %s\n",
		a.config.Grammar, len(g.States), tokens, len(g.Rules), named, out.ruleName(g.RuleName(g.Initial)))
	return nil
}

func (a *app) lex(args []string) error {
	p, e := a.newParser()
	if e != nil {
		return e
	}

	src, e := a.input(args)
	if e != nil {
		return e
	}

	out := a.printer()
	tokens, e := p.Lexer().Tokenize(src)
	for _, t := range tokens {
		out.token(t)
	}
	return e
}

func (a *app) parse(ctx context.Context, args []string, sexpr bool) error {
	p, e := a.newParser()
	if e != nil {
		return e
	}

	src, e := a.input(args)
	if e != nil {
		return e
	}

	root, e := tree.Parse(ctx, p, src)
	if e != nil {
		return e
	}

	out := a.printer()
	if sexpr {
		out.printf("%s\n", tree.Format(root))
	} else {
		out.tree(root)
	}
	return nil
}
