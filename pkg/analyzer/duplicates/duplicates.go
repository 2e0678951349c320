// Package duplicates finds maximal blocks of identical source lines repeated
// across a set of files.
package duplicates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/panbanda/clonescan/internal/cache"
	"github.com/panbanda/clonescan/internal/fileproc"
	"github.com/panbanda/clonescan/pkg/config"
	"github.com/panbanda/clonescan/pkg/normalize"
	"github.com/panbanda/clonescan/pkg/source"
)

// ErrFileTooLarge is returned for files over the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// cacheVersion is bumped whenever normalization output changes shape.
const cacheVersion = "v2"

// Analyzer reads, normalizes and scans a project for duplicate blocks.
type Analyzer struct {
	config      Config
	maxFileSize int64
	readWorkers int
	normalizer  *normalize.Normalizer
	cache       *cache.Cache
	logger      *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinLines sets the minimum block size in normalized lines.
func WithMinLines(n int) Option {
	return func(a *Analyzer) {
		a.config.MinLines = n
	}
}

// WithMaxOccurrences sets the location count above which a block is treated
// as boilerplate and dropped.
func WithMaxOccurrences(n int) Option {
	return func(a *Analyzer) {
		a.config.MaxOccurrences = n
	}
}

// WithQuiet suppresses the boilerplate notice.
func WithQuiet(quiet bool) Option {
	return func(a *Analyzer) {
		a.config.Quiet = quiet
	}
}

// WithWorkers sets the number of candidate generation shards.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.config.Workers = n
	}
}

// WithSampleLines sets how many lines of each group are kept as a sample.
func WithSampleLines(n int) Option {
	return func(a *Analyzer) {
		a.config.SampleLines = n
	}
}

// WithConfig sets all duplicate configuration from a config struct.
func WithConfig(cfg config.DuplicateConfig) Option {
	return func(a *Analyzer) {
		a.config = Config{
			MinLines:       cfg.MinLines,
			MaxOccurrences: cfg.MaxOccurrences,
			SampleLines:    cfg.SampleLines,
			Workers:        cfg.Workers,
			Quiet:          cfg.Quiet,
		}
		a.maxFileSize = cfg.MaxFileSize
		a.normalizer = normalize.New(
			normalize.WithSkipImports(cfg.SkipImports),
			normalize.WithTreeSitter(cfg.TreeSitter),
		)
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(a *Analyzer) {
		a.normalizer = n
	}
}

// WithCache stores normalized files between runs.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithReadWorkers bounds the number of files read and normalized at once.
func WithReadWorkers(n int) Option {
	return func(a *Analyzer) {
		a.readWorkers = n
	}
}

// New creates a new duplicate analyzer with default config.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		config:     DefaultConfig(),
		normalizer: normalize.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.normalizer == nil {
		a.normalizer = normalize.New()
	}
	return a
}

// Config returns the analyzer's detection settings.
func (a *Analyzer) Config() Config {
	return a.config
}

// Analyze detects duplicates across files read from src.
func (a *Analyzer) Analyze(ctx context.Context, files []string, src source.ContentSource) (*Analysis, error) {
	return a.AnalyzeWithProgress(ctx, files, src, nil)
}

// AnalyzeWithProgress detects duplicates with optional progress callback.
// Files that cannot be read or exceed the size limit are logged and left
// out; the call only fails when no file could be read or ctx is done.
func (a *Analyzer) AnalyzeWithProgress(ctx context.Context, files []string, src source.ContentSource, onProgress fileproc.ProgressFunc) (*Analysis, error) {
	if src == nil {
		src = source.NewFilesystem()
	}

	normalized, errs := fileproc.ForEachFileN(ctx, files, a.readWorkers, func(path string) (NormalizedFile, error) {
		return a.normalizeFile(path, src)
	}, onProgress)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errs != nil {
		for _, e := range errs.Errors {
			if errors.Is(e.Err, ErrFileTooLarge) {
				a.logger.Debug("skipping large file", "path", e.Path)
				continue
			}
			a.logger.Warn("skipping unreadable file", "path", e.Path, "error", e.Err)
		}
		if len(normalized) == 0 {
			return nil, fmt.Errorf("no files could be analyzed: %w", errs)
		}
	}

	return a.AnalyzeNormalized(normalized), nil
}

// AnalyzeNormalized runs detection over files that are already normalized.
func (a *Analyzer) AnalyzeNormalized(files []NormalizedFile) *Analysis {
	d := NewDetector(a.config, a.logger)
	res := d.Detect(files)

	analysis := &Analysis{
		Groups:            res.Groups,
		Summary:           NewSummary(),
		TotalFilesScanned: len(files),
		MinLines:          d.Config().MinLines,
		MaxOccurrences:    d.Config().MaxOccurrences,
	}
	for _, g := range res.Groups {
		analysis.Summary.AddGroup(g)
	}
	analysis.Summary.BoilerplateSkipped = res.BoilerplateSkipped
	analysis.Summary.summarize(files, res.Groups)
	return analysis
}

func (a *Analyzer) normalizeFile(path string, src source.ContentSource) (NormalizedFile, error) {
	content, err := src.Read(path)
	if err != nil {
		return NormalizedFile{}, err
	}
	if a.maxFileSize > 0 && int64(len(content)) > a.maxFileSize {
		return NormalizedFile{}, ErrFileTooLarge
	}

	key := a.cacheKey(path)
	hash := ""
	if a.cache.Enabled() {
		hash = cache.HashBytes(content)
		var cached NormalizedFile
		if a.cache.Get(key, hash, &cached) {
			return cached, nil
		}
	}

	f := a.normalizer.Normalize(path, content)
	if a.cache.Enabled() {
		if err := a.cache.Set(key, hash, f); err != nil {
			a.logger.Debug("cache write failed", "path", path, "error", err)
		}
	}
	return f, nil
}

// cacheKey includes the normalizer settings so that toggling them never
// serves stale lines.
func (a *Analyzer) cacheKey(path string) string {
	return "normalize:" + cacheVersion + ":" +
		strconv.FormatBool(a.normalizer.SkipImports()) + ":" +
		strconv.FormatBool(a.normalizer.TreeSitter()) + ":" + path
}
