package duplicates

import (
	"cmp"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/clonescan/pkg/stats"
)

// maxHotspots caps the hotspot list in a summary.
const maxHotspots = 10

// summarize fills the coverage, size and hotspot figures that need the whole
// group list at once. Per-group counters come from AddGroup.
func (s *Summary) summarize(files []NormalizedFile, groups []Group) {
	for _, f := range files {
		s.TotalLines += f.TotalLines
	}

	// Spans of different groups overlap, so duplicated lines are counted as
	// the union of original line ranges per file.
	coverage := make(map[string]*roaring.Bitmap)
	groupCount := make(map[string]int)
	sizes := make([]float64, len(groups))
	for i, g := range groups {
		sizes[i] = float64(g.Lines)
		counted := make(map[string]bool, len(g.Spans))
		for _, sp := range g.Spans {
			bm, ok := coverage[sp.Path]
			if !ok {
				bm = roaring.New()
				coverage[sp.Path] = bm
			}
			bm.AddRange(uint64(sp.StartLine), uint64(sp.EndLine)+1)
			if !counted[sp.Path] {
				counted[sp.Path] = true
				groupCount[sp.Path]++
			}
		}
	}

	hotspots := make([]Hotspot, 0, len(coverage))
	for path, bm := range coverage {
		lines := int(bm.GetCardinality())
		s.DuplicatedLines += lines
		hotspots = append(hotspots, Hotspot{
			File:            path,
			DuplicateLines:  lines,
			CloneGroupCount: groupCount[path],
			Severity:        math.Log(float64(lines)+1) * math.Sqrt(float64(groupCount[path])),
		})
	}

	if s.TotalLines > 0 {
		s.DuplicationRatio = min(float64(s.DuplicatedLines)/float64(s.TotalLines), 1.0)
	}
	s.MeanBlockLines = stats.Mean(sizes)
	s.P90BlockLines = stats.Percentile(sizes, 90)

	slices.SortFunc(hotspots, func(a, b Hotspot) int {
		if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
			return c
		}
		return cmp.Compare(a.File, b.File)
	})
	if len(hotspots) > maxHotspots {
		hotspots = hotspots[:maxHotspots]
	}
	s.Hotspots = hotspots
}
