// Package config loads yotest.toml, the optional project file that tells the
// driver where the compiler lives and where the fixtures are.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project file searched for upward from the working directory.
const FileName = "yotest.toml"

// Defaults of the yot repository layout.
const (
	DefaultCompiler = "./zig-out/bin/yot"
	DefaultExt      = ".yt"
	DefaultTarget   = "./Example/"
)

// Config is the resolved driver configuration.
type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path     string
	Compiler CompilerConfig `toml:"compiler"`
	Fixtures FixturesConfig `toml:"fixtures"`
}

// CompilerConfig describes the compiler under test.
type CompilerConfig struct {
	Path  string   `toml:"path"`
	Build []string `toml:"build"` // command that rebuilds the compiler; empty disables it
}

// FixturesConfig describes where fixtures live and how they are checked.
type FixturesConfig struct {
	Ext         string   `toml:"ext"`
	Target      string   `toml:"target"`
	Subcommands []string `toml:"subcommands"`
}

// Default returns the configuration used when no yotest.toml exists.
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{
			Path:  DefaultCompiler,
			Build: []string{"zig", "build"},
		},
		Fixtures: FixturesConfig{
			Ext:         DefaultExt,
			Target:      DefaultTarget,
			Subcommands: []string{"lex", "parse", "check"},
		},
	}
}

// Find looks for yotest.toml in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads explicitPath when set, otherwise the nearest yotest.toml above
// startDir, and falls back to Default when there is none. Keys missing from
// the file keep their default values.
func Load(explicitPath, startDir string) (*Config, error) {
	path := explicitPath
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile decodes one configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that the driver cannot work without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Compiler.Path) == "" {
		return fmt.Errorf("[compiler].path must not be empty")
	}
	if !strings.HasPrefix(c.Fixtures.Ext, ".") || len(c.Fixtures.Ext) < 2 {
		return fmt.Errorf("[fixtures].ext must look like \".yt\", got %q", c.Fixtures.Ext)
	}
	if len(c.Fixtures.Subcommands) == 0 {
		return fmt.Errorf("[fixtures].subcommands must not be empty")
	}
	for _, sub := range c.Fixtures.Subcommands {
		if sub == "" || sub == "all" || strings.ContainsAny(sub, "/\\ ") {
			return fmt.Errorf("[fixtures].subcommands: invalid name %q", sub)
		}
	}
	return nil
}

// Root is the directory relative paths in the file refer to.
func (c *Config) Root() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}
