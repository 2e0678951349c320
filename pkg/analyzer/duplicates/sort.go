package duplicates

import (
	"cmp"
	"slices"
)

// Sort keys accepted by SortGroups.
const (
	SortByLines       = "lines"
	SortByOccurrences = "occurrences"
	SortBySeverity    = "severity"
)

// SortGroups orders groups in place, largest first by key. Ties fall back to
// the first location's path and start line so output is stable. An empty or
// unknown key sorts by lines.
func SortGroups(groups []Group, key string) {
	primary := func(a, b Group) int {
		return cmp.Compare(b.Lines, a.Lines)
	}
	switch key {
	case SortByOccurrences:
		primary = func(a, b Group) int {
			if c := cmp.Compare(b.Occurrences(), a.Occurrences()); c != 0 {
				return c
			}
			return cmp.Compare(b.Lines, a.Lines)
		}
	case SortBySeverity:
		primary = func(a, b Group) int {
			if c := cmp.Compare(severityRank(b.Severity), severityRank(a.Severity)); c != 0 {
				return c
			}
			return cmp.Compare(b.Lines*b.Occurrences(), a.Lines*a.Occurrences())
		}
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return compareFirstSpan(a, b)
	})
}

func severityRank(s Severity) int {
	if s == SeverityCritical {
		return 1
	}
	return 0
}

func compareFirstSpan(a, b Group) int {
	if len(a.Spans) == 0 || len(b.Spans) == 0 {
		return cmp.Compare(len(b.Spans), len(a.Spans))
	}
	if c := cmp.Compare(a.Spans[0].Path, b.Spans[0].Path); c != 0 {
		return c
	}
	return cmp.Compare(a.Spans[0].StartLine, b.Spans[0].StartLine)
}

// Truncate keeps at most limit groups. A limit <= 0 keeps everything.
func (a *Analysis) Truncate(limit int) {
	if limit > 0 && len(a.Groups) > limit {
		a.Groups = a.Groups[:limit]
	}
}
