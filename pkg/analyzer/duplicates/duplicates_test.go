package duplicates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/panbanda/clonescan/internal/cache"
	"github.com/panbanda/clonescan/pkg/config"
	"github.com/panbanda/clonescan/pkg/normalize"
	"github.com/panbanda/clonescan/pkg/source"
)

const cloneA = `package a

func A(x int) int {
	y := x * 2
	z := y + 3
	w := z - 1
	v := w * w
	u := v + y
	return u
}
`

const cloneB = `package b

// B mirrors A.
func B(x int) int {
	y := x * 2
	z := y + 3
	// odd
	w := z - 1
	v := w * w
	u := v + y
	return u
}
`

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func TestNew(t *testing.T) {
	a := New()
	if a == nil {
		t.Fatal("New() returned nil")
	}
	if a.normalizer == nil {
		t.Error("analyzer.normalizer is nil")
	}
	if a.config.MinLines != 6 {
		t.Errorf("MinLines = %d, want 6", a.config.MinLines)
	}
	if a.logger == nil {
		t.Error("analyzer.logger is nil")
	}
}

func TestNewWithOptions(t *testing.T) {
	a := New(
		WithMinLines(8),
		WithMaxOccurrences(20),
		WithSampleLines(2),
		WithWorkers(3),
		WithQuiet(true),
		WithMaxFileSize(1024),
	)

	want := Config{MinLines: 8, MaxOccurrences: 20, SampleLines: 2, Workers: 3, Quiet: true}
	if a.config != want {
		t.Errorf("config = %+v, want %+v", a.config, want)
	}
	if a.maxFileSize != 1024 {
		t.Errorf("maxFileSize = %d, want 1024", a.maxFileSize)
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.DefaultConfig().Duplicates
	cfg.MinLines = 4
	cfg.SkipImports = false
	cfg.TreeSitter = false
	cfg.MaxFileSize = 99

	a := New(WithConfig(cfg))
	if a.config.MinLines != 4 {
		t.Errorf("MinLines = %d, want 4", a.config.MinLines)
	}
	if a.maxFileSize != 99 {
		t.Errorf("maxFileSize = %d, want 99", a.maxFileSize)
	}
	if a.normalizer.SkipImports() || a.normalizer.TreeSitter() {
		t.Error("normalizer options were not applied")
	}
}

func TestAnalyzeFindsClone(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA, "b.go": cloneB})

	a := New(WithLogger(discardLogger()))
	analysis, err := a.Analyze(context.Background(), paths, source.NewFilesystem())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if analysis.TotalFilesScanned != 2 {
		t.Errorf("TotalFilesScanned = %d, want 2", analysis.TotalFilesScanned)
	}
	if len(analysis.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(analysis.Groups))
	}

	g := analysis.Groups[0]
	if g.Lines != 7 {
		t.Errorf("Lines = %d, want 7", g.Lines)
	}
	if g.Severity != SeverityTolerable {
		t.Errorf("Severity = %s, want tolerable", g.Severity)
	}

	spans := map[string]Span{}
	for _, sp := range g.Spans {
		spans[filepath.Base(sp.Path)] = sp
	}
	if sp := spans["a.go"]; sp.StartLine != 4 || sp.EndLine != 10 {
		t.Errorf("a.go span = %d-%d, want 4-10", sp.StartLine, sp.EndLine)
	}
	if sp := spans["b.go"]; sp.StartLine != 5 || sp.EndLine != 12 {
		t.Errorf("b.go span = %d-%d, want 5-12", sp.StartLine, sp.EndLine)
	}
	if g.Sample[0] != "y := x * 2" {
		t.Errorf("Sample[0] = %q", g.Sample[0])
	}
}

func TestAnalyzeSummary(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA, "b.go": cloneB})

	analysis, err := New(WithLogger(discardLogger())).Analyze(context.Background(), paths, nil)
	if err != nil {
		t.Fatal(err)
	}

	s := analysis.Summary
	if s.TotalGroups != 1 || s.TolerableCount != 1 || s.CriticalCount != 0 {
		t.Errorf("counts = %d/%d/%d", s.TotalGroups, s.TolerableCount, s.CriticalCount)
	}
	if s.TotalLines != 22 {
		t.Errorf("TotalLines = %d, want 22", s.TotalLines)
	}
	if s.DuplicatedLines != 15 {
		t.Errorf("DuplicatedLines = %d, want 15", s.DuplicatedLines)
	}
	if want := 15.0 / 22.0; s.DuplicationRatio != want {
		t.Errorf("DuplicationRatio = %f, want %f", s.DuplicationRatio, want)
	}
	if s.MeanBlockLines != 7 || s.MaxBlockLines != 7 {
		t.Errorf("block stats = %f/%d", s.MeanBlockLines, s.MaxBlockLines)
	}
	if len(s.Hotspots) != 2 {
		t.Fatalf("got %d hotspots, want 2", len(s.Hotspots))
	}
	if filepath.Base(s.Hotspots[0].File) != "b.go" {
		t.Errorf("top hotspot = %s, want b.go", s.Hotspots[0].File)
	}
}

func TestAnalyzeNoClones(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.go": "package a\n\nfunc A() int { return 1 }\n",
		"b.go": "package b\n\nfunc B() int { return 2 }\n",
	})

	analysis, err := New(WithLogger(discardLogger())).Analyze(context.Background(), paths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(analysis.Groups))
	}
	if analysis.Summary.DuplicationRatio != 0 {
		t.Errorf("DuplicationRatio = %f, want 0", analysis.Summary.DuplicationRatio)
	}
}

func TestAnalyzeSkipsLargeFiles(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA, "b.go": cloneB})

	a := New(WithMaxFileSize(int64(len(cloneA))), WithLogger(discardLogger()))
	analysis, err := a.Analyze(context.Background(), paths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.TotalFilesScanned != 1 {
		t.Errorf("TotalFilesScanned = %d, want 1", analysis.TotalFilesScanned)
	}
	if len(analysis.Groups) != 0 {
		t.Errorf("got %d groups, want 0", len(analysis.Groups))
	}
}

func TestAnalyzeAllFilesFail(t *testing.T) {
	_, err := New(WithLogger(discardLogger())).Analyze(context.Background(), []string{"/nonexistent/a.go"}, nil)
	if err == nil {
		t.Fatal("expected error when no file can be read")
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithLogger(discardLogger())).Analyze(ctx, paths, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA, "b.go": cloneB})
	c, err := cache.New(t.TempDir(), 24, true)
	if err != nil {
		t.Fatal(err)
	}

	a := New(WithCache(c), WithLogger(discardLogger()))
	first, err := a.Analyze(context.Background(), paths, nil)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 2 {
		t.Errorf("cache entries = %d, want 2", stats.Entries)
	}

	second, err := a.Analyze(context.Background(), paths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Groups) != len(first.Groups) || second.Groups[0].ID != first.Groups[0].ID {
		t.Error("cached run produced different groups")
	}

	// A different normalizer must not reuse these entries.
	other := New(WithCache(c), WithNormalizer(normalize.New(normalize.WithSkipImports(false))))
	if other.cacheKey(paths[0]) == a.cacheKey(paths[0]) {
		t.Error("cache key ignores normalizer settings")
	}
}

func TestAnalyzeWithProgress(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.go": cloneA, "b.go": cloneB, "c.go": cloneA})
	var calls atomic.Int32
	tick := func() { calls.Add(1) }

	a := New(WithReadWorkers(1), WithLogger(discardLogger()))
	analysis, err := a.AnalyzeWithProgress(context.Background(), paths, nil, tick)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}
	if analysis.Summary.CriticalCount == 0 {
		t.Error("expected a critical group across three files")
	}
}

func TestTruncate(t *testing.T) {
	a := &Analysis{Groups: make([]Group, 5)}
	a.Truncate(0)
	if len(a.Groups) != 5 {
		t.Errorf("limit 0 kept %d groups", len(a.Groups))
	}
	a.Truncate(2)
	if len(a.Groups) != 2 {
		t.Errorf("limit 2 kept %d groups", len(a.Groups))
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityCritical.String() != "critical" || SeverityTolerable.String() != "tolerable" {
		t.Error("unexpected severity strings")
	}
	if severityFor(2) != SeverityTolerable || severityFor(3) != SeverityCritical {
		t.Error("rule of three not applied")
	}
}
