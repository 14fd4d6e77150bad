// hash_tracker.go - the per-run HashTracker: final + aggregate fingerprint
// bookkeeping and its stable log line, per spec.md §4.2.
package main

import "fmt"

// HashMode selects what a renderer hashes each frame.
type HashMode int

const (
	HashModeNone HashMode = iota
	HashModeState
	HashModePixel
	HashModeBoth
)

// ParseHashMode maps a hash-mode name (none, state, pixel, both) to a
// HashMode. An unrecognized value logs a warning and falls back to
// HashModeState, per spec.md §4.2's error policy. The CLI does not call it;
// BuildConfig derives the HashMode from the hash flags itself.
func ParseHashMode(s string, logWarn func(string)) HashMode {
	switch s {
	case "none":
		return HashModeNone
	case "state":
		return HashModeState
	case "pixel":
		return HashModePixel
	case "both":
		return HashModeBoth
	default:
		if logWarn != nil {
			logWarn(fmt.Sprintf("unknown hash mode %q, falling back to state", s))
		}
		return HashModeState
	}
}

// ReportMode selects which of final/aggregate is emitted at shutdown.
type ReportMode int

const (
	ReportFinal ReportMode = iota
	ReportAggregate
	ReportBoth
)

// HashTracker accumulates a run's final and aggregate fingerprints. Key
// names differ per renderer (bo_hash, framebuffer_hash, hash) to preserve
// log-format parity with the original per-renderer hash definitions
// (spec.md §9 Open Questions).
type HashTracker struct {
	Enabled         bool
	Key             string
	ReportFinalFlag bool
	ReportAggFlag   bool

	final     uint64
	aggregate uint64
	hasFinal  bool
}

// NewHashTracker constructs a tracker for the given key and report mode.
func NewHashTracker(key string, mode ReportMode, enabled bool) *HashTracker {
	return &HashTracker{
		Enabled:         enabled,
		Key:             key,
		ReportFinalFlag: mode == ReportFinal || mode == ReportBoth,
		ReportAggFlag:   mode == ReportAggregate || mode == ReportBoth,
		aggregate:       fnv1a64OffsetBasis,
	}
}

// Record folds one frame's hash into the tracker. Must be called at most
// once per committed frame: retries (swapchain recreation, fence timeouts)
// must not call Record twice for the same frame, or the aggregate hash
// desynchronizes from other backends (spec.md §5).
func (h *HashTracker) Record(frameHash uint64) {
	if !h.Enabled {
		return
	}
	h.final = frameHash
	h.hasFinal = true
	h.aggregate = fnv1aExtend(h.aggregate, frameHash)
}

// Final returns the last recorded per-frame hash and whether any frame was
// ever recorded.
func (h *HashTracker) Final() (uint64, bool) {
	return h.final, h.hasFinal
}

// Aggregate returns the running aggregate hash.
func (h *HashTracker) Aggregate() uint64 {
	return h.aggregate
}

// ReportLine renders the body of the shutdown hash line:
// "<key>_final=0x<16hex> <key>_aggregate=0x<16hex>", omitting whichever
// half is not enabled for reporting; the Logger adds the
// "[<backend>][info]" prefix. Returns "" if hashing was never enabled.
func (h *HashTracker) ReportLine() string {
	if !h.Enabled {
		return ""
	}
	s := ""
	if h.ReportFinalFlag {
		s += fmt.Sprintf("%s_final=0x%016x ", h.Key, h.final)
	}
	if h.ReportAggFlag {
		s += fmt.Sprintf("%s_aggregate=0x%016x ", h.Key, h.aggregate)
	}
	if len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s
}
