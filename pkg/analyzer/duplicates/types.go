package duplicates

import "github.com/panbanda/clonescan/pkg/normalize"

// Severity classifies a duplicate group by the Rule of Three.
type Severity string

const (
	SeverityTolerable Severity = "tolerable" // exactly two occurrences
	SeverityCritical  Severity = "critical"  // three or more occurrences
)

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// severityFor applies the Rule of Three to an occurrence count.
func severityFor(occurrences int) Severity {
	if occurrences >= 3 {
		return SeverityCritical
	}
	return SeverityTolerable
}

// NormalizedLine is a source line after comment and whitespace
// normalization, paired with its 1-based original line number.
type NormalizedLine = normalize.Line

// NormalizedFile is the ordered normalized content of one source file.
// Its index in the corpus slice is its file index for a detection run.
type NormalizedFile = normalize.File

// Location anchors a window: the zero-based file index and line offset of
// the window's first normalized line.
type Location struct {
	File   int
	Offset int
}

// less orders locations by (file, offset).
func (l Location) less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	return l.Offset < o.Offset
}

// Span is one occurrence of a duplicate block in original line numbers.
type Span struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Group is a maximal block of identical normalized lines found at two or
// more locations.
type Group struct {
	ID       uint64   `json:"id"`
	Spans    []Span   `json:"locations"`
	Lines    int      `json:"lines"`
	Sample   []string `json:"sample"`
	Severity Severity `json:"severity"`
}

// Occurrences returns the number of locations in the group.
func (g Group) Occurrences() int {
	return len(g.Spans)
}

// Result is the raw output of a detection pass over a normalized corpus.
type Result struct {
	Groups             []Group `json:"groups"`
	BoilerplateSkipped int     `json:"boilerplate_skipped"`
	CollisionsRejected int     `json:"collisions_rejected"`
}

// Analysis is the full duplicate detection result for a set of files.
type Analysis struct {
	Groups            []Group `json:"groups"`
	Summary           Summary `json:"summary"`
	TotalFilesScanned int     `json:"total_files_scanned"`
	MinLines          int     `json:"min_lines"`
	MaxOccurrences    int     `json:"max_occurrences"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalGroups        int            `json:"total_groups"`
	CriticalCount      int            `json:"critical_count"`
	TolerableCount     int            `json:"tolerable_count"`
	DuplicatedLines    int            `json:"duplicated_lines"`
	TotalLines         int            `json:"total_lines"`
	DuplicationRatio   float64        `json:"duplication_ratio"`
	MeanBlockLines     float64        `json:"mean_block_lines"`
	P90BlockLines      float64        `json:"p90_block_lines"`
	MaxBlockLines      int            `json:"max_block_lines"`
	BoilerplateSkipped int            `json:"boilerplate_skipped"`
	FileOccurrences    map[string]int `json:"file_occurrences"`
	Hotspots           []Hotspot      `json:"hotspots,omitempty"`
}

// Hotspot represents a file with high duplication.
type Hotspot struct {
	File            string  `json:"file"`
	DuplicateLines  int     `json:"duplicate_lines"`
	CloneGroupCount int     `json:"clone_group_count"`
	Severity        float64 `json:"severity"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		FileOccurrences: make(map[string]int),
	}
}

// AddGroup updates the summary with a new group.
func (s *Summary) AddGroup(g Group) {
	s.TotalGroups++
	switch g.Severity {
	case SeverityCritical:
		s.CriticalCount++
	default:
		s.TolerableCount++
	}
	if g.Lines > s.MaxBlockLines {
		s.MaxBlockLines = g.Lines
	}
	for _, span := range g.Spans {
		s.FileOccurrences[span.Path]++
	}
}

// Config holds duplicate detection configuration.
type Config struct {
	MinLines       int
	MaxOccurrences int
	SampleLines    int
	Workers        int
	Quiet          bool
}

// DefaultConfig returns the default detection settings.
func DefaultConfig() Config {
	return Config{
		MinLines:       6,
		MaxOccurrences: 100,
		SampleLines:    5,
		Workers:        0,
		Quiet:          false,
	}
}
