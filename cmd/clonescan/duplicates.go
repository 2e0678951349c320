package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/panbanda/clonescan/internal/cache"
	"github.com/panbanda/clonescan/internal/output"
	"github.com/panbanda/clonescan/internal/progress"
	"github.com/panbanda/clonescan/internal/scanner"
	"github.com/panbanda/clonescan/internal/vcs"
	"github.com/panbanda/clonescan/internal/watch"
	"github.com/panbanda/clonescan/pkg/analyzer/duplicates"
	"github.com/panbanda/clonescan/pkg/config"
	"github.com/panbanda/clonescan/pkg/parser"
	"github.com/panbanda/clonescan/pkg/source"
)

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates [path...]",
	Aliases: []string{"dup", "clones", "scan"},
	Short:   "Detect duplicated blocks of code",
	Long: `Detects maximal blocks of identical normalized lines repeated across the
given files and directories (default: the current directory).

Examples:
  clonescan duplicates                      # Scan the working copy
  clonescan duplicates --min-lines 10 src/  # Only report blocks of 10+ lines
  clonescan duplicates --ref v1.2.0         # Scan a git ref without checking it out
  clonescan duplicates -f json -o dups.json # Machine-readable report
  clonescan duplicates --watch              # Re-scan on every change`,
	RunE: runDuplicates,
}

func init() {
	def := config.DefaultConfig()
	duplicatesCmd.Flags().Int("min-lines", def.Duplicates.MinLines, "Minimum block size in normalized lines")
	duplicatesCmd.Flags().Int("max-occurrences", def.Duplicates.MaxOccurrences, "Skip blocks repeated more often than this as boilerplate")
	duplicatesCmd.Flags().Int("workers", def.Duplicates.Workers, "Candidate generation workers (0 = one per CPU)")
	duplicatesCmd.Flags().Int("sample-lines", def.Duplicates.SampleLines, "Lines of sample text kept per group")
	duplicatesCmd.Flags().Int64("max-file-size", def.Duplicates.MaxFileSize, "Skip files larger than this many bytes (0 = no limit)")
	duplicatesCmd.Flags().Bool("keep-imports", false, "Keep import and include lines when comparing")
	duplicatesCmd.Flags().Bool("no-tree-sitter", false, "Strip comments with line heuristics only")
	duplicatesCmd.Flags().StringP("format", "f", def.Output.Format, "Output format: text, json, markdown, toon")
	duplicatesCmd.Flags().StringP("output", "o", "", "Write output to file")
	duplicatesCmd.Flags().String("sort", def.Output.Sort, "Sort groups by: lines, occurrences, severity")
	duplicatesCmd.Flags().Int("limit", def.Output.Limit, "Show at most this many groups (0 = all)")
	duplicatesCmd.Flags().Bool("no-cache", false, "Disable the normalization cache")
	duplicatesCmd.Flags().String("ref", "", "Scan a git ref (branch, tag, SHA) instead of the working copy")
	duplicatesCmd.Flags().Bool("watch", false, "Re-run the scan whenever a source file changes")

	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	applyDuplicateFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	paths := getPaths(args)
	ref, _ := cmd.Flags().GetString("ref")
	watchMode, _ := cmd.Flags().GetBool("watch")
	if watchMode && ref != "" {
		return errors.New("--watch cannot be combined with --ref")
	}

	if err := detectDuplicates(cmd, cfg, paths, ref); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}
	return watchDuplicates(cmd, cfg, paths)
}

// watchDuplicates repeats the scan whenever a source file under the first
// path changes, until interrupted.
func watchDuplicates(cmd *cobra.Command, cfg *config.Config, paths []string) error {
	root := paths[0]
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}

	w, err := watch.New(root, cfg, watch.DefaultDebounce, slog.Default())
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	defer w.Close()

	color.Cyan("Watching for changes in %s (Ctrl+C to stop)", root)
	err = w.Run(cmd.Context(), func(changed []string) {
		slog.Info("files changed", "count", len(changed), "first", changed[0])
		if err := detectDuplicates(cmd, cfg, paths, ""); err != nil {
			color.Red("Error: %v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// detectDuplicates runs one scan and writes the report.
func detectDuplicates(cmd *cobra.Command, cfg *config.Config, paths []string, ref string) error {
	spinner := progress.NewSpinner("Scanning files...", quiet)
	files, src, err := collectFiles(cfg, paths, ref)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled && ref == "")
	if err != nil {
		slog.Warn("cache disabled", "error", err)
		c = nil
	}

	a := duplicates.New(
		duplicates.WithConfig(cfg.Duplicates),
		duplicates.WithCache(c),
		duplicates.WithLogger(slog.Default()),
	)

	tracker := progress.NewTracker("Detecting duplicates...", len(files), quiet)
	analysis, err := a.AnalyzeWithProgress(cmd.Context(), files, src, tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	duplicates.SortGroups(analysis.Groups, cfg.Output.Sort)
	analysis.Truncate(cfg.Output.Limit)

	outputFile, _ := cmd.Flags().GetString("output")
	format := output.ParseFormat(cfg.Output.Format)
	printer, err := output.NewPrinter(format, outputFile, cfg.Output.Color)
	if err != nil {
		return err
	}
	defer printer.Close()

	return printer.Print(buildReport(analysis, printer.Colored() && format == output.FormatText))
}

// collectFiles lists the files to analyze and the source to read them from.
// Without a ref this walks the working copy; with one it lists the files of
// that revision's tree.
func collectFiles(cfg *config.Config, paths []string, ref string) ([]string, source.ContentSource, error) {
	if ref != "" {
		return collectTreeFiles(cfg, paths, ref)
	}

	files, err := scanner.NewScanner(cfg).ScanPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	files, skipped := scanner.FilterBySize(files, cfg.Duplicates.MaxFileSize)
	if skipped > 0 {
		slog.Debug("skipped large files", "count", skipped, "max_file_size", cfg.Duplicates.MaxFileSize)
	}
	return files, source.NewFilesystem(), nil
}

func collectTreeFiles(cfg *config.Config, paths []string, ref string) ([]string, source.ContentSource, error) {
	start, err := filepath.Abs(paths[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid path %s: %w", paths[0], err)
	}
	if info, err := os.Stat(start); err == nil && !info.IsDir() {
		start = filepath.Dir(start)
	}

	repo, err := vcs.NewGitOpener().PlainOpenWithDetect(start)
	if err != nil {
		return nil, nil, err
	}
	tree, err := repo.TreeAt(ref)
	if err != nil {
		return nil, nil, err
	}
	entries, err := tree.Entries()
	if err != nil {
		return nil, nil, fmt.Errorf("listing %s: %w", ref, err)
	}

	root := repo.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	prefixes := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid path %s: %w", p, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, nil, fmt.Errorf("%s is outside repository %s: %w", p, root, err)
		}
		prefixes = append(prefixes, rel)
	}

	var files []string
	for _, e := range vcs.FilesUnder(entries, prefixes) {
		if parser.DetectLanguage(e.Path) == parser.LangUnknown || cfg.ShouldExclude(e.Path) {
			continue
		}
		if cfg.Duplicates.MaxFileSize > 0 && e.Size > cfg.Duplicates.MaxFileSize {
			continue
		}
		files = append(files, e.Path)
	}
	return files, source.NewTree(tree), nil
}
