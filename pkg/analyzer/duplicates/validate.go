package duplicates

import (
	"slices"
)

// validBucket is a bucket that survived validation: a window fingerprint
// and the sorted, deduplicated locations whose windows are truly identical.
type validBucket struct {
	window uint64
	setFP  uint64
	set    []Location
}

// validation is the output of validate.
type validation struct {
	// lookup maps a location-set fingerprint to its window fingerprint.
	lookup             map[uint64]uint64
	accepted           []validBucket
	boilerplateSkipped int
	collisions         int
}

// validate filters candidate buckets down to true duplicates. Singletons and
// buckets above MaxOccurrences are dropped, and every remaining bucket is
// re-verified by text so that a fingerprint collision never becomes a group.
func (d *Detector) validate(files []NormalizedFile, cands buckets) validation {
	v := validation{
		lookup: make(map[uint64]uint64, len(cands)),
	}

	for fp, locs := range cands {
		set := slices.Clone(locs)
		slices.SortFunc(set, compareLocations)
		set = slices.Compact(set)

		if len(set) < 2 {
			continue
		}
		if len(set) > d.config.MaxOccurrences {
			v.boilerplateSkipped++
			continue
		}
		if !windowsEqual(files, set, d.config.MinLines) {
			v.collisions++
			continue
		}

		setFP := d.setHash(set)
		v.lookup[setFP] = fp
		v.accepted = append(v.accepted, validBucket{window: fp, setFP: setFP, set: set})
	}

	slices.SortFunc(v.accepted, func(a, b validBucket) int {
		return compareLocationSets(a.set, b.set)
	})

	if v.boilerplateSkipped > 0 && !d.config.Quiet {
		d.logger.Info("skipped over-common duplicate patterns as boilerplate",
			"patterns", v.boilerplateSkipped,
			"max_occurrences", d.config.MaxOccurrences)
	}
	if v.collisions > 0 {
		d.logger.Debug("rejected fingerprint collisions", "buckets", v.collisions)
	}

	return v
}

// windowsEqual reports whether the n-line window at every location matches
// the window at the first location, line by line.
func windowsEqual(files []NormalizedFile, set []Location, n int) bool {
	first := files[set[0].File].Lines[set[0].Offset : set[0].Offset+n]
	for _, loc := range set[1:] {
		other := files[loc.File].Lines[loc.Offset : loc.Offset+n]
		for i := range first {
			if first[i].Text != other[i].Text {
				return false
			}
		}
	}
	return true
}

func compareLocations(a, b Location) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	default:
		return 0
	}
}

// compareLocationSets orders location lists element by element, shorter
// lists first when one is a prefix of the other.
func compareLocationSets(a, b []Location) int {
	return slices.CompareFunc(a, b, compareLocations)
}
