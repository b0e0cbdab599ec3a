package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeConfig(t, root, `
[transform]
jobs = 2
exclude = ["**/generated/**"]
match_args = false

[output]
mode = "out-dir"
out_dir = "build"

[cache]
enabled = true
dir = ".cache"
`)

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Transform.Jobs)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Transform.Exclude)
	assert.False(t, cfg.Transform.MatchArgs)
	assert.Equal(t, uint(16), cfg.Transform.MaxErrors)
	assert.Equal(t, ModeOutDir, cfg.Output.Mode)
	assert.Equal(t, filepath.Join(cfg.Root, "build"), cfg.Output.OutDir)
	assert.Equal(t, filepath.Join(cfg.Root, ".cache"), cfg.Cache.Dir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"syntax", "[transform\n", "failed to parse TOML"},
		{"unknown key", "[transform]\nthreads = 3\n", "unknown keys: transform.threads"},
		{"mode", "[output]\nmode = \"inline\"\n", `unknown [output].mode "inline"`},
		{"out dir", "[output]\nmode = \"out-dir\"\n", "requires [output].out_dir"},
		{"jobs", "[transform]\njobs = -1\n", "must not be negative"},
		{"pattern", "[transform]\nexclude = [\"[\"]\n", "invalid [transform].exclude pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.text)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
