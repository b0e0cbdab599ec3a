// Package config reads plainclass.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "plainclass.toml"

// Output modes.
const (
	ModeWrite  = "write"
	ModeStdout = "stdout"
	ModeOutDir = "out-dir"
	ModeCheck  = "check"
	ModeDiff   = "diff"
)

type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
	// Root is the directory of Path; relative paths in the file resolve against it.
	Root string `toml:"-"`

	Transform Transform `toml:"transform"`
	Output    Output    `toml:"output"`
	Cache     Cache     `toml:"cache"`
	Log       Log       `toml:"log"`
}

type Transform struct {
	Jobs      int      `toml:"jobs"`
	Exclude   []string `toml:"exclude"`
	MatchArgs bool     `toml:"match_args"`
	MaxErrors uint     `toml:"max_errors"`
}

type Output struct {
	Mode   string `toml:"mode"`
	OutDir string `toml:"out_dir"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Default is the configuration used when no file is found.
func Default() Config {
	return Config{
		Transform: Transform{MatchArgs: true, MaxErrors: 16},
		Output:    Output{Mode: ModeWrite},
		Log:       Log{Level: "warn"},
	}
}

// Find walks up from startDir to the first directory holding FileName.
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

// Discover loads the nearest config above startDir, or the defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Output.OutDir != "" && !filepath.IsAbs(cfg.Output.OutDir) {
		cfg.Output.OutDir = filepath.Join(cfg.Root, cfg.Output.OutDir)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(cfg.Root, cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate checks the values that flags may also set.
func (c *Config) Validate() error {
	switch c.Output.Mode {
	case ModeWrite, ModeStdout, ModeCheck, ModeDiff:
	case ModeOutDir:
		if strings.TrimSpace(c.Output.OutDir) == "" {
			return errors.New("[output].mode = \"out-dir\" requires [output].out_dir")
		}
	default:
		return fmt.Errorf("unknown [output].mode %q", c.Output.Mode)
	}
	if c.Transform.Jobs < 0 {
		return fmt.Errorf("[transform].jobs must not be negative, got %d", c.Transform.Jobs)
	}
	for _, pattern := range c.Transform.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid [transform].exclude pattern %q", pattern)
		}
	}
	return nil
}
