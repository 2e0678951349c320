package duplicates

import (
	"github.com/sourcegraph/conc/pool"
)

// buckets maps a window fingerprint to every location whose window hashes to it.
type buckets map[uint64][]Location

// generateCandidates slides a minLines window over every file and buckets
// each window's location by fingerprint. Files shorter than minLines
// contribute no windows. Within a bucket, locations follow corpus order and
// then ascending offset, whether or not generation was sharded.
func (d *Detector) generateCandidates(files []NormalizedFile) buckets {
	shards := shardFiles(len(files), d.config.Workers)
	if len(shards) <= 1 {
		out := make(buckets)
		for i := range files {
			d.addWindows(out, files, i)
		}
		return out
	}

	// Shard by contiguous file ranges so that concatenating the partial
	// buckets in shard order reproduces the sequential generation order.
	partial := make([]buckets, len(shards))
	p := pool.New().WithMaxGoroutines(len(shards))
	for i, shard := range shards {
		p.Go(func() {
			local := make(buckets)
			for f := shard.start; f < shard.end; f++ {
				d.addWindows(local, files, f)
			}
			partial[i] = local
		})
	}
	p.Wait()

	out := partial[0]
	for _, m := range partial[1:] {
		for fp, locs := range m {
			out[fp] = append(out[fp], locs...)
		}
	}
	return out
}

// addWindows appends every window of files[idx] to out.
func (d *Detector) addWindows(out buckets, files []NormalizedFile, idx int) {
	lines := files[idx].Lines
	n := d.config.MinLines
	if len(lines) < n {
		return
	}
	for offset := 0; offset+n <= len(lines); offset++ {
		fp := d.windowHash(lines[offset : offset+n])
		out[fp] = append(out[fp], Location{File: idx, Offset: offset})
	}
}

type fileRange struct {
	start, end int
}

// shardFiles splits n files into at most workers contiguous ranges.
func shardFiles(n, workers int) []fileRange {
	if n == 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		return []fileRange{{0, n}}
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers
	shards := make([]fileRange, 0, workers)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		shards = append(shards, fileRange{start, end})
	}
	return shards
}
