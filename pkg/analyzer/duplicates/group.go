package duplicates

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// buildGroup maps an extended block back to original line numbers and
// classifies it.
func (d *Detector) buildGroup(files []NormalizedFile, start []Location, size int) Group {
	spans := make([]Span, len(start))
	for i, loc := range start {
		lines := files[loc.File].Lines
		// Normalization drops lines, so the end offset is clamped to the
		// file's normalized length rather than derived from raw line numbers.
		end := loc.Offset + size
		if end > len(lines) {
			end = len(lines)
		}
		spans[i] = Span{
			Path:      files[loc.File].Path,
			StartLine: lines[loc.Offset].OrigLine,
			EndLine:   lines[end-1].OrigLine,
		}
	}

	first := files[start[0].File].Lines[start[0].Offset:]
	sampleLen := min(d.config.SampleLines, size, len(first))
	sample := make([]string, sampleLen)
	for i := range sample {
		sample[i] = first[i].Text
	}

	return Group{
		ID:       groupID(spans),
		Spans:    spans,
		Lines:    size,
		Sample:   sample,
		Severity: severityFor(len(spans)),
	}
}

// groupID derives a stable identifier from a group's spans.
func groupID(spans []Span) uint64 {
	h := xxhash.New()
	for _, s := range spans {
		_, _ = h.WriteString(s.Path)
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(strconv.Itoa(s.StartLine))
		_, _ = h.WriteString("-")
		_, _ = h.WriteString(strconv.Itoa(s.EndLine))
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}
