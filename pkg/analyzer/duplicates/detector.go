package duplicates

import (
	"log/slog"
	"runtime"
)

// Detector finds maximal blocks of identical normalized lines across a
// corpus. Every fingerprint decision it makes is confirmed by comparing text
// before it is trusted.
//
// A Detector holds no state between runs; Detect may be called repeatedly.
type Detector struct {
	config Config
	logger *slog.Logger

	windowHash func([]NormalizedLine) uint64
	setHash    func([]Location) uint64
}

// NewDetector creates a detector. Zero or invalid settings fall back to
// DefaultConfig values; Workers <= 0 means one worker per CPU.
func NewDetector(cfg Config, logger *slog.Logger) *Detector {
	def := DefaultConfig()
	if cfg.MinLines <= 0 {
		cfg.MinLines = def.MinLines
	}
	if cfg.MaxOccurrences < 2 {
		cfg.MaxOccurrences = def.MaxOccurrences
	}
	if cfg.SampleLines <= 0 {
		cfg.SampleLines = def.SampleLines
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		config:     cfg,
		logger:     logger,
		windowHash: WindowFingerprint,
		setHash:    LocationSetFingerprint,
	}
}

// Config returns the effective detection settings.
func (d *Detector) Config() Config {
	return d.config
}

// Detect runs candidate generation, validation, extension and grouping over
// files. File indices are positions in files. The returned groups are in
// validation order; callers own any further sorting.
func (d *Detector) Detect(files []NormalizedFile) *Result {
	result := &Result{Groups: make([]Group, 0)}
	if len(files) == 0 {
		return result
	}

	cands := d.generateCandidates(files)
	v := d.validate(files, cands)
	result.BoilerplateSkipped = v.boilerplateSkipped
	result.CollisionsRejected = v.collisions

	consumed := make(consumedSet, len(v.accepted))
	for _, b := range v.accepted {
		if consumed.has(b.setFP) {
			continue
		}
		consumed.mark(b.setFP)

		start, back := d.extendBackward(v.lookup, consumed, b.set)
		fwd := d.extendForward(files, v.lookup, consumed, b.set)
		size := d.config.MinLines + back + fwd

		if verified := verifiedLength(files, start, size); verified < size {
			d.logger.Debug("shrank extended block after text verification",
				"path", files[start[0].File].Path, "extended", size, "verified", verified)
			size = verified
		}

		result.Groups = append(result.Groups, d.buildGroup(files, start, size))
	}

	d.logger.Debug("duplicate detection finished",
		"files", len(files),
		"buckets", len(cands),
		"validated", len(v.accepted),
		"groups", len(result.Groups))

	return result
}
