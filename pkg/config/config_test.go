package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 6, cfg.Duplicates.MinLines)
	assert.Equal(t, 100, cfg.Duplicates.MaxOccurrences)
	assert.Equal(t, 5, cfg.Duplicates.SampleLines)
	assert.Equal(t, 0, cfg.Duplicates.Workers)
	assert.False(t, cfg.Duplicates.Quiet)
	assert.True(t, cfg.Duplicates.SkipImports)
	assert.True(t, cfg.Duplicates.TreeSitter)

	assert.True(t, cfg.Exclude.Gitignore)
	assert.NotEmpty(t, cfg.Exclude.Dirs)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "lines", cfg.Output.Sort)

	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "clonescan.toml")
	content := `
[duplicates]
min_lines = 10
max_occurrences = 20
quiet = true

[exclude]
dirs = ["vendor", "custom_exclude"]
patterns = ["*_generated.go"]

[cache]
enabled = false

[output]
format = "json"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Duplicates.MinLines)
	assert.Equal(t, 20, cfg.Duplicates.MaxOccurrences)
	assert.True(t, cfg.Duplicates.Quiet)
	assert.Equal(t, 5, cfg.Duplicates.SampleLines, "unset keys keep defaults")
	assert.Contains(t, cfg.Exclude.Dirs, "custom_exclude")
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "clonescan.yaml")
	content := `
duplicates:
  min_lines: 8
  workers: 4
output:
  sort: occurrences
  limit: 10
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Duplicates.MinLines)
	assert.Equal(t, 4, cfg.Duplicates.Workers)
	assert.Equal(t, "occurrences", cfg.Output.Sort)
	assert.Equal(t, 10, cfg.Output.Limit)
}

func TestLoadJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "clonescan.json")
	content := `{"duplicates": {"max_occurrences": 50, "skip_imports": false}}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Duplicates.MaxOccurrences)
	assert.False(t, cfg.Duplicates.SkipImports)
	assert.Equal(t, 6, cfg.Duplicates.MinLines)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/clonescan.toml")
	assert.Error(t, err)

	configPath := filepath.Join(t.TempDir(), "clonescan.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[duplicates\ninvalid toml"), 0644))

	_, err = Load(configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"min lines one", func(c *Config) { c.Duplicates.MinLines = 1 }, false},
		{"min lines zero", func(c *Config) { c.Duplicates.MinLines = 0 }, true},
		{"max occurrences one", func(c *Config) { c.Duplicates.MaxOccurrences = 1 }, true},
		{"max occurrences two", func(c *Config) { c.Duplicates.MaxOccurrences = 2 }, false},
		{"negative workers", func(c *Config) { c.Duplicates.Workers = -1 }, true},
		{"negative sample", func(c *Config) { c.Duplicates.SampleLines = -1 }, true},
		{"negative file size", func(c *Config) { c.Duplicates.MaxFileSize = -1 }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -1 }, true},
		{"negative limit", func(c *Config) { c.Output.Limit = -1 }, true},
		{"unknown sort", func(c *Config) { c.Output.Sort = "size" }, true},
		{"severity sort", func(c *Config) { c.Output.Sort = "severity" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	nested := filepath.Join(dir, ".clonescan")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "clonescan.yaml"), []byte("{}"), 0644))
	assert.Equal(t, filepath.Join(nested, "clonescan.yaml"), Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".clonescan.toml"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(dir, ".clonescan.toml"), Find(dir), "top-level files win")
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := LoadOrDefault()
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clonescan.toml"), []byte("[duplicates]\nmin_lines = 999\n"), 0644))
	t.Chdir(dir)

	cfg := LoadOrDefault()
	assert.Equal(t, 999, cfg.Duplicates.MinLines)
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*_generated.go")

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/pkg/file.go", true},
		{"node_modules/pkg/file.js", true},
		{filepath.Join("src", "vendor", "pkg", "file.go"), true},
		{"app.min.js", true},
		{"model_generated.go", true},
		{"go.sum", true},
		{"main.go", false},
		{"pkg/util/helper.go", false},
		{filepath.Join("pkg", "vendor_utils.go"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ShouldExclude(tt.path))
		})
	}
}
