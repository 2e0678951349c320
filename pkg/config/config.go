package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for clonescan.
type Config struct {
	// Duplicate detection settings
	Duplicates DuplicateConfig `koanf:"duplicates" toml:"duplicates"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// DuplicateConfig controls the duplicate detection engine.
type DuplicateConfig struct {
	MinLines       int   `koanf:"min_lines" toml:"min_lines"`
	MaxOccurrences int   `koanf:"max_occurrences" toml:"max_occurrences"`
	Quiet          bool  `koanf:"quiet" toml:"quiet"`
	SampleLines    int   `koanf:"sample_lines" toml:"sample_lines"`
	Workers        int   `koanf:"workers" toml:"workers"` // 0 = one per CPU
	MaxFileSize    int64 `koanf:"max_file_size" toml:"max_file_size"`
	SkipImports    bool  `koanf:"skip_imports" toml:"skip_imports"`
	TreeSitter     bool  `koanf:"tree_sitter" toml:"tree_sitter"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching of normalized files.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
	Sort   string `koanf:"sort" toml:"sort"` // lines, occurrences, severity
	Limit  int    `koanf:"limit" toml:"limit"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Duplicates: DuplicateConfig{
			MinLines:       6,
			MaxOccurrences: 100,
			Quiet:          false,
			SampleLines:    5,
			Workers:        0,
			MaxFileSize:    0,
			SkipImports:    true,
			TreeSitter:     true,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".clonescan",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".clonescan/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
			Sort:   "lines",
			Limit:  0,
		},
	}
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	d := c.Duplicates
	if d.MinLines < 1 {
		return fmt.Errorf("duplicates.min_lines must be at least 1, got %d", d.MinLines)
	}
	if d.MaxOccurrences < 2 {
		return fmt.Errorf("duplicates.max_occurrences must be at least 2, got %d", d.MaxOccurrences)
	}
	if d.SampleLines < 0 {
		return fmt.Errorf("duplicates.sample_lines must not be negative, got %d", d.SampleLines)
	}
	if d.Workers < 0 {
		return fmt.Errorf("duplicates.workers must not be negative, got %d", d.Workers)
	}
	if d.MaxFileSize < 0 {
		return fmt.Errorf("duplicates.max_file_size must not be negative, got %d", d.MaxFileSize)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %d", c.Cache.TTL)
	}
	if c.Output.Limit < 0 {
		return fmt.Errorf("output.limit must not be negative, got %d", c.Output.Limit)
	}
	switch c.Output.Sort {
	case "", "lines", "occurrences", "severity":
	default:
		return fmt.Errorf("output.sort must be one of lines, occurrences, severity, got %q", c.Output.Sort)
	}
	return nil
}

// Load loads configuration from a file. Values missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are the file names LoadOrDefault searches for.
var configNames = []string{
	"clonescan.toml",
	"clonescan.yaml",
	"clonescan.yml",
	"clonescan.json",
	".clonescan.toml",
	".clonescan.yaml",
	".clonescan.yml",
	".clonescan.json",
}

// Find returns the first config file found under dir or dir/.clonescan, or
// an empty string.
func Find(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".clonescan")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find("."); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
