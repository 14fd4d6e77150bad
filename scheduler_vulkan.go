// scheduler_vulkan.go - the multi-GPU opportunistic scheduler's pure
// decision logic: EWMA bookkeeping and owner selection under a per-frame
// time budget, per spec.md §4.3. Kept free of any Vulkan calls so it is
// unit-testable without a device; renderer_vulkan.go drives it against real
// goki/vulkan handles.
package main

const (
	// MaxSchedulerGPUs bounds the device-group size the scheduler tracks.
	MaxSchedulerGPUs = 8

	// FrameBudgetNanos is the approximately-60Hz per-frame budget.
	FrameBudgetNanos int64 = 16_666_666
	// SchedulerSafetyNanos is subtracted from the budget before a
	// secondary GPU is trusted with work, to absorb submission jitter.
	SchedulerSafetyNanos int64 = 2_000_000

	// initialEMAMillis seeds every GPU's per-work-unit EWMA before any
	// timestamp feedback has arrived.
	initialEMAMillis = 0.2
	// emaDecay is the weight given to history vs the newest sample.
	emaDecay = 0.9
)

// GPUScheduler tracks per-GPU EWMA cost and per-frame counters for up to
// MaxSchedulerGPUs devices in a Vulkan device group.
type GPUScheduler struct {
	GPUCount int
	EMAMillisPerUnit [MaxSchedulerGPUs]float64

	// per-frame counters, reset at the start of each frame
	WorkUnits     [MaxSchedulerGPUs]int
	OwnerUsed     [MaxSchedulerGPUs]bool
	OwnerFinished [MaxSchedulerGPUs]bool
}

// NewGPUScheduler seeds every tracked GPU's EMA at initialEMAMillis, per
// spec.md §3.
func NewGPUScheduler(gpuCount int) *GPUScheduler {
	if gpuCount > MaxSchedulerGPUs {
		gpuCount = MaxSchedulerGPUs
	}
	if gpuCount < 1 {
		gpuCount = 1
	}
	s := &GPUScheduler{GPUCount: gpuCount}
	for i := 0; i < gpuCount; i++ {
		s.EMAMillisPerUnit[i] = initialEMAMillis
	}
	return s
}

// BeginFrame clears the per-frame counters ahead of a new frame's draw
// requests.
func (s *GPUScheduler) BeginFrame() {
	for i := 0; i < s.GPUCount; i++ {
		s.WorkUnits[i] = 0
		s.OwnerUsed[i] = false
		s.OwnerFinished[i] = false
	}
}

// SelectOwner implements the owner-selection algorithm from spec.md §4.3
// exactly: candidateOwner is the round-robin or pattern-supplied
// suggestion, workUnits is the size of the pending draw, nowNanos and
// frameStartNanos are CLOCK_MONOTONIC-equivalent timestamps.
func (s *GPUScheduler) SelectOwner(candidateOwner, workUnits int, nowNanos, frameStartNanos int64) int {
	owner := candidateOwner
	if owner < 0 || owner >= s.GPUCount {
		owner = 0
	}
	if owner == 0 || s.GPUCount <= 1 {
		return 0
	}
	if ema0 := s.EMAMillisPerUnit[0]; ema0 > 0 && s.EMAMillisPerUnit[owner]/ema0 > 1.5 {
		return 0
	}
	if workUnits < 1 {
		workUnits = 1
	}
	predictedNanos := int64(s.EMAMillisPerUnit[owner] * 1e6 * float64(workUnits))
	if nowNanos+predictedNanos > frameStartNanos+FrameBudgetNanos-SchedulerSafetyNanos {
		return 0
	}
	return owner
}

// RecordDispatch tallies a completed owner-assignment decision against the
// per-frame work-unit counters; call once per draw after SelectOwner.
func (s *GPUScheduler) RecordDispatch(owner, workUnits int) {
	if owner < 0 || owner >= s.GPUCount {
		return
	}
	s.WorkUnits[owner] += workUnits
	s.OwnerUsed[owner] = true
}

// UpdateEMATimestamps applies the timestamp-based EWMA update for owner g
// given the elapsed device time in milliseconds for its share of the frame.
// Called once per owner that did work this frame, right after the frame's
// own fence has signaled and its timestamps were read back; there is no
// one-frame-delayed readback.
func (s *GPUScheduler) UpdateEMATimestamps(g int, elapsedMillis float64) {
	if g < 0 || g >= s.GPUCount || s.WorkUnits[g] == 0 {
		return
	}
	perUnit := elapsedMillis / float64(s.WorkUnits[g])
	s.EMAMillisPerUnit[g] = emaDecay*s.EMAMillisPerUnit[g] + (1-emaDecay)*perUnit
}

// UpdateEMAWallClockFallback implements the fallback EWMA update used when
// timestampValidBits == 0 for the device group: each owner that did work
// this frame is charged the whole wall-clock frame time divided by its own
// work-unit count.
func (s *GPUScheduler) UpdateEMAWallClockFallback(frameMillis float64) {
	for g := 0; g < s.GPUCount; g++ {
		if s.WorkUnits[g] == 0 {
			continue
		}
		perUnit := frameMillis / float64(s.WorkUnits[g])
		s.EMAMillisPerUnit[g] = emaDecay*s.EMAMillisPerUnit[g] + (1-emaDecay)*perUnit
	}
}
