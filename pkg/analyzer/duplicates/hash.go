package duplicates

const (
	fnvOffsetBasis = 0xcbf29ce484222325
	fnvPrime       = 0x00000100000001B3

	// lineSeparator is folded after every line so that "ab"+"cd" and
	// "a"+"bcd" never fingerprint the same.
	lineSeparator = 0xFF
)

// WindowFingerprint computes the FNV-1a hash of a window of normalized lines.
// It is a filter, not a proof of equality.
func WindowFingerprint(lines []NormalizedLine) uint64 {
	h := uint64(fnvOffsetBasis)
	for _, line := range lines {
		for i := 0; i < len(line.Text); i++ {
			h ^= uint64(line.Text[i])
			h *= fnvPrime
		}
		h ^= lineSeparator
		h *= fnvPrime
	}
	return h
}

// LocationSetFingerprint hashes a location list in order, folding each file
// index and then its offset. Used only as an associative key.
// Uses FNV-1a style combining without allocations.
func LocationSetFingerprint(locs []Location) uint64 {
	h := uint64(fnvOffsetBasis)
	for _, loc := range locs {
		h ^= uint64(loc.File)
		h *= fnvPrime
		h ^= uint64(loc.Offset)
		h *= fnvPrime
	}
	return h
}
