// Package config handles tack.toml interpreter configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file the interpreter looks for.
const FileName = "tack.toml"

// Config represents a tack.toml configuration.
type Config struct {
	Debug  Debug  `toml:"debug"`
	Output Output `toml:"output"`
	Limits Limits `toml:"limits"`

	// Dir is the directory containing the tack.toml file (set at load time).
	Dir string `toml:"-"`
}

// Debug selects the diagnostic listings emitted during a run.
type Debug struct {
	DumpSource   bool `toml:"dump-source"`
	DumpTokens   bool `toml:"dump-tokens"`
	DumpAST      bool `toml:"dump-ast"`
	DumpBytecode bool `toml:"dump-bytecode"`
	TraceVM      bool `toml:"trace-vm"`
}

// Output configures diagnostic output.
type Output struct {
	Color bool `toml:"color"`
}

// Limits bounds the interpreter's resource use.
type Limits struct {
	MaxSourceBytes int `toml:"max-source-bytes"`
	MaxSteps       int `toml:"max-steps"`
}

// Default returns the configuration used when no tack.toml is present.
func Default() *Config {
	return &Config{
		Output: Output{Color: true},
		Limits: Limits{
			MaxSourceBytes: 200000,
			MaxSteps:       1 << 20,
		},
	}
}

// Load parses a tack.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if c.Limits.MaxSourceBytes <= 0 {
		c.Limits.MaxSourceBytes = Default().Limits.MaxSourceBytes
	}
	if c.Limits.MaxSteps <= 0 {
		c.Limits.MaxSteps = Default().Limits.MaxSteps
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a tack.toml file, then loads
// and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
