package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/pprt/grammar"
)

const listGrammar = `{
  "initial": "list",
  "states": [{"name": "default", "tokens": {"space": "\\s+", "num": "\\d+", "comma": ","}}],
  "skip": ["space"],
  "rules": {
    "list": {"kind": "concat", "refs": ["num", "1"]},
    "num": {"kind": "term", "token": "num"},
    "0": {"kind": "lexeme", "token": "comma"},
    "1": {"kind": "repeat", "refs": ["2"]},
    "2": {"kind": "concat", "refs": ["0", "num"]}
  }
}`

func writeFile(t *testing.T, name, content string) string {
	name = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func runCommand(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCheck(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	code, out, errOut := runCommand(t, "", "-g", g, "--color", "never", "check")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, g+": 1 states, 3 tokens, 5 rules (2 named), initial rule list\n", out)
}

func TestCheckDump(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	code, out, errOut := runCommand(t, "", "check", "--dump", "--grammar", g)
	require.Equal(t, 0, code, errOut)

	loaded, e := grammar.LoadJSON(strings.NewReader(out))
	require.NoError(t, e)
	original, e := grammar.LoadFile(g)
	require.NoError(t, e)
	assert.Equal(t, original.Initial, loaded.Initial)
	assert.Equal(t, original.States, loaded.States)
	assert.Equal(t, original.Rules, loaded.Rules)
}

func TestLex(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)
	in := writeFile(t, "input.txt", "1, 2")

	code, out, errOut := runCommand(t, "", "-g", g, "--color", "never", "lex", in)
	require.Equal(t, 0, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		`1:1 num "1"`,
		`1:2 comma ","`,
		`1:4 num "2"`,
		`1:5 ` + grammar.EoiToken + ` ""`,
	}, lines)
}

func TestParse(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)
	in := writeFile(t, "input.txt", "1, 2")

	code, out, errOut := runCommand(t, "", "-g", g, "--color", "never", "parse", "--sexpr", in)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "(list 1 2)\n", out)

	code, out, errOut = runCommand(t, "", "-g", g, "--color", "never", "parse", in)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "list\n  num \"1\"\n  num \"2\"\n", out)
}

func TestParseStdin(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	for _, args := range [][]string{{"parse", "--sexpr"}, {"parse", "--sexpr", "-"}} {
		code, out, errOut := runCommand(t, "3,4", append([]string{"-g", g}, args...)...)
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, "(list 3 4)\n", out)
	}
}

func TestParseError(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	code, out, errOut := runCommand(t, "1 2", "-g", g, "--color", "never", "parse")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "error: unexpected num token \"2\", expecting comma in stdin at line 1 col 3\n", errOut)
}

func TestColor(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	code, out, errOut := runCommand(t, "7", "-g", g, "--color", "always", "lex")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "num")

	code, _, errOut = runCommand(t, "7", "-g", g, "--color", "sometimes", "lex")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid color mode "sometimes"`)
}

func TestTrace(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)

	code, out, errOut := runCommand(t, "5", "-g", g, "--trace", "parse", "--sexpr")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "(list 5)\n", out)
	assert.Contains(t, errOut, "rule matched")
	assert.Contains(t, errOut, "rule=list")
}

func TestConfigFile(t *testing.T) {
	g := writeFile(t, "list.json", listGrammar)
	cfg := writeFile(t, "pprt.toml", "grammar = '"+g+"'\ncolor = 'never'\nmax_depth = 100\n")

	code, out, errOut := runCommand(t, "1,2", "--config", cfg, "parse", "--sexpr")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "(list 1 2)\n", out)

	shallow := writeFile(t, "shallow.toml", "grammar = '"+g+"'\nmax_depth = 1\n")
	code, _, errOut = runCommand(t, "1,2", "--config", shallow, "--color", "never", "parse")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nesting depth 1")
}

func TestMissingGrammar(t *testing.T) {
	code, _, errOut := runCommand(t, "", "--color", "never", "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "grammar file is not set")

	code, _, errOut = runCommand(t, "", "--color", "never", "-g", filepath.Join(t.TempDir(), "none.yaml"), "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "none.yaml")
}

func TestLoadConfig(t *testing.T) {
	name := writeFile(t, "pprt.toml", `
grammar = "calc.yaml"
max_depth = 500
horizon = 16
match_timeout = "250ms"
initial_state = "expr"
color = "always"
`)

	c, e := loadConfig(name)
	require.NoError(t, e)
	assert.Equal(t, Config{
		Grammar:      "calc.yaml",
		MaxDepth:     500,
		Horizon:      16,
		MatchTimeout: duration(250 * time.Millisecond),
		InitialState: "expr",
		Color:        "always",
	}, c)

	opts := c.parserOptions()
	assert.Equal(t, 500, opts.MaxDepth)
	assert.Equal(t, 16, opts.Horizon)
	assert.Equal(t, 250*time.Millisecond, opts.MatchTimeout)
	assert.Equal(t, "expr", opts.InitialState)
}

func TestLoadConfigErrors(t *testing.T) {
	samples := map[string]string{
		"unknown key":  "depth = 5\n",
		"bad duration": "match_timeout = \"soon\"\n",
		"negative":     "horizon = -1\n",
		"syntax":       "grammar = \n",
	}

	for name, content := range samples {
		_, e := loadConfig(writeFile(t, "pprt.toml", content))
		assert.Error(t, e, name)
	}

	_, e := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, e)
}
