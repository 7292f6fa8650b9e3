package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ava12/pprt/parser"
)

// Config is read from TOML file passed with --config. Command line flags take precedence.
type Config struct {
	Grammar      string   `toml:"grammar"`
	MaxDepth     int      `toml:"max_depth"`
	Horizon      int      `toml:"horizon"`
	MatchTimeout duration `toml:"match_timeout"`
	InitialState string   `toml:"initial_state"`
	Color        string   `toml:"color"`
}

// duration accepts time.ParseDuration strings like "250ms".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, e := time.ParseDuration(string(text))
	if e != nil {
		return e
	}

	*d = duration(v)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func loadConfig(name string) (Config, error) {
	var c Config
	f, e := os.Open(name)
	if e != nil {
		return c, e
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	d.DisallowUnknownFields()
	if e = d.Decode(&c); e != nil {
		return c, fmt.Errorf("cannot read config %s: %w", name, e)
	}

	if c.MaxDepth < 0 || c.Horizon < 0 {
		return c, fmt.Errorf("cannot read config %s: max_depth and horizon must not be negative", name)
	}
	return c, nil
}

func (c Config) parserOptions() *parser.Options {
	return &parser.Options{
		MaxDepth:     c.MaxDepth,
		Horizon:      c.Horizon,
		InitialState: c.InitialState,
		MatchTimeout: time.Duration(c.MatchTimeout),
	}
}
