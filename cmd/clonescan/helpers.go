package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panbanda/clonescan/pkg/analyzer/duplicates"
	"github.com/panbanda/clonescan/pkg/config"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// loadConfig loads --config when given, else the first config file found in
// the working directory, else the defaults.
func loadConfig() (*config.Config, string, error) {
	path := cfgFile
	if path == "" {
		path = config.Find(".")
	}
	if path == "" {
		return config.DefaultConfig(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// applyDuplicateFlags overrides config values with flags the user set.
func applyDuplicateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-lines") {
		cfg.Duplicates.MinLines, _ = flags.GetInt("min-lines")
	}
	if flags.Changed("max-occurrences") {
		cfg.Duplicates.MaxOccurrences, _ = flags.GetInt("max-occurrences")
	}
	if flags.Changed("workers") {
		cfg.Duplicates.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("sample-lines") {
		cfg.Duplicates.SampleLines, _ = flags.GetInt("sample-lines")
	}
	if flags.Changed("max-file-size") {
		cfg.Duplicates.MaxFileSize, _ = flags.GetInt64("max-file-size")
	}
	if flags.Changed("keep-imports") {
		keep, _ := flags.GetBool("keep-imports")
		cfg.Duplicates.SkipImports = !keep
	}
	if flags.Changed("no-tree-sitter") {
		off, _ := flags.GetBool("no-tree-sitter")
		cfg.Duplicates.TreeSitter = !off
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("sort") {
		cfg.Output.Sort, _ = flags.GetString("sort")
	}
	if flags.Changed("limit") {
		cfg.Output.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("no-cache") {
		off, _ := flags.GetBool("no-cache")
		cfg.Cache.Enabled = cfg.Cache.Enabled && !off
	}
	if quiet {
		cfg.Duplicates.Quiet = true
	}
	if noColor {
		cfg.Output.Color = false
	}
}

// formatSpan renders a span as path:start-end.
func formatSpan(s duplicates.Span) string {
	return fmt.Sprintf("%s:%d-%d", s.Path, s.StartLine, s.EndLine)
}

// formatSpans renders every span of a group, one per line.
func formatSpans(spans []duplicates.Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = formatSpan(s)
	}
	return strings.Join(parts, "\n")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
