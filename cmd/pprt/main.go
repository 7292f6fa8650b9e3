/*
pprt is a console utility that loads a grammar artifact and runs its lexer or parser over input files.
Usage is

	pprt [-g <grammar>] [--config <file>] [--trace] [--color auto|always|never] <command> [<file>]

Commands are:

	check  validate the grammar, --dump prints the normalized JSON artifact;
	lex    print significant tokens of the input;
	parse  print the syntax tree of the input, --sexpr prints it on a single line.

Grammar artifact format is chosen by file extension: .json, .yaml, .yml, or .toml.
Missing input file name or "-" means standard input.
Config file is TOML with keys grammar, max_depth, horizon, match_timeout, initial_state, and color.
*/
package main

import (
	"context"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	e := cmd.ExecuteContext(context.Background())
	if e == nil {
		return 0
	}

	p, pe := newPrinter(stderr, a.color())
	if pe != nil {
		p, _ = newPrinter(stderr, colorNever)
	}
	p.error(e)
	return 1
}
