package duplicates

// consumedSet records location-set fingerprints already absorbed into a
// reported block. It is owned by a single detection run.
type consumedSet map[uint64]struct{}

func (c consumedSet) mark(fp uint64) {
	c[fp] = struct{}{}
}

func (c consumedSet) has(fp uint64) bool {
	_, ok := c[fp]
	return ok
}

// extendBackward shifts every location down one line at a time while the
// shifted set is still a validated bucket. It returns the new start
// locations and the number of successful steps.
func (d *Detector) extendBackward(lookup map[uint64]uint64, consumed consumedSet, start []Location) ([]Location, int) {
	cur := start
	steps := 0
	for {
		shifted := make([]Location, len(cur))
		for i, loc := range cur {
			if loc.Offset == 0 {
				return cur, steps
			}
			shifted[i] = Location{File: loc.File, Offset: loc.Offset - 1}
		}
		fp := d.setHash(shifted)
		if _, ok := lookup[fp]; !ok {
			return cur, steps
		}
		consumed.mark(fp)
		cur = shifted
		steps++
	}
}

// extendForward shifts every location up one line at a time while the
// shifted set is still a validated bucket. The block start is unchanged, so
// only the step count is returned.
func (d *Detector) extendForward(files []NormalizedFile, lookup map[uint64]uint64, consumed consumedSet, start []Location) int {
	n := d.config.MinLines
	shifted := make([]Location, len(start))
	for steps := 1; ; steps++ {
		for i, loc := range start {
			// A window past the end of a file was never generated.
			if loc.Offset+steps+n > len(files[loc.File].Lines) {
				return steps - 1
			}
			shifted[i] = Location{File: loc.File, Offset: loc.Offset + steps}
		}
		fp := d.setHash(shifted)
		if _, ok := lookup[fp]; !ok {
			return steps - 1
		}
		consumed.mark(fp)
	}
}

// verifiedLength re-checks an extended block by text. It returns the
// shortest line-by-line matching prefix between the first location and every
// other location, never less than 1.
func verifiedLength(files []NormalizedFile, start []Location, size int) int {
	verified := size
	first := files[start[0].File].Lines
	for _, loc := range start[1:] {
		other := files[loc.File].Lines
		n := 0
		for n < size {
			a, b := start[0].Offset+n, loc.Offset+n
			if a >= len(first) || b >= len(other) || first[a].Text != other[b].Text {
				break
			}
			n++
		}
		if n < verified {
			verified = n
		}
	}
	if verified < 1 {
		verified = 1
	}
	return verified
}
