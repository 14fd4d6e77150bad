package main

import "testing"

func TestSelectOwnerNeverExceedsGPUCount(t *testing.T) {
	s := NewGPUScheduler(4)
	for candidate := -1; candidate <= 10; candidate++ {
		owner := s.SelectOwner(candidate, 1, 0, 0)
		if owner < 0 || owner >= s.GPUCount {
			t.Fatalf("candidate %d: owner %d out of [0,%d)", candidate, owner, s.GPUCount)
		}
	}
}

func TestSelectOwnerSingleGPUAlwaysZero(t *testing.T) {
	s := NewGPUScheduler(1)
	for candidate := 0; candidate <= 3; candidate++ {
		if owner := s.SelectOwner(candidate, 1, 0, 0); owner != 0 {
			t.Fatalf("single-GPU scheduler returned nonzero owner %d", owner)
		}
	}
}

func TestSelectOwnerWithinBudgetKeepsSecondaryGPU(t *testing.T) {
	s := NewGPUScheduler(2)
	// ema[0] == ema[1] == 0.2ms/unit; 1 work unit predicts 0.2ms, well
	// within budget at frame start.
	owner := s.SelectOwner(1, 1, 0, 0)
	if owner != 1 {
		t.Fatalf("expected owner 1 to be kept, got %d", owner)
	}
}

func TestSelectOwnerDemotesWhenSecondaryTooSlow(t *testing.T) {
	s := NewGPUScheduler(2)
	s.EMAMillisPerUnit[1] = s.EMAMillisPerUnit[0] * 1.6
	if owner := s.SelectOwner(1, 1, 0, 0); owner != 0 {
		t.Fatalf("expected demotion to owner 0, got %d", owner)
	}
}

func TestSelectOwnerDemotesWhenOverBudget(t *testing.T) {
	s := NewGPUScheduler(2)
	s.EMAMillisPerUnit[1] = 0.25 // 0.25ms/unit, ratio 1.25 to GPU 0
	// A huge work-unit count should blow the budget even though the ratio
	// to GPU 0 is not yet >1.5.
	owner := s.SelectOwner(1, 1000000, 0, 0)
	if owner != 0 {
		t.Fatalf("expected demotion when predicted completion exceeds budget, got %d", owner)
	}
}

func TestSelectOwnerDecisionRespectsInvariant(t *testing.T) {
	s := NewGPUScheduler(3)
	s.EMAMillisPerUnit[2] = 0.05
	frameStart := int64(1000)
	now := int64(1000)
	owner := s.SelectOwner(2, 4, now, frameStart)
	if owner == 2 {
		ema0 := s.EMAMillisPerUnit[0]
		emaG := s.EMAMillisPerUnit[owner]
		if ema0 > 0 && emaG/ema0 > 1.5 {
			t.Fatalf("selected owner violates the ema ratio invariant")
		}
		predicted := int64(emaG * 1e6 * 4)
		if now+predicted > frameStart+FrameBudgetNanos-SchedulerSafetyNanos {
			t.Fatalf("selected owner violates the budget invariant")
		}
	}
}

func TestEMATimestampUpdateConverges(t *testing.T) {
	s := NewGPUScheduler(2)
	s.BeginFrame()
	s.RecordDispatch(1, 10)
	// Observed 5ms for 10 units -> 0.5ms/unit, above the seeded 0.2.
	prev := s.EMAMillisPerUnit[1]
	s.UpdateEMATimestamps(1, 5.0)
	if s.EMAMillisPerUnit[1] <= initialEMAMillis {
		t.Fatalf("EMA should rise toward the new observation, got %v", s.EMAMillisPerUnit[1])
	}
	want := emaDecay*prev + (1-emaDecay)*0.5
	if s.EMAMillisPerUnit[1] != want {
		t.Fatalf("EMA = %v, want %v", s.EMAMillisPerUnit[1], want)
	}
}

func TestEMAWallClockFallbackOnlyUpdatesOwnersWithWork(t *testing.T) {
	s := NewGPUScheduler(3)
	s.BeginFrame()
	s.RecordDispatch(0, 5)
	before2 := s.EMAMillisPerUnit[2]
	s.UpdateEMAWallClockFallback(10.0)
	if s.EMAMillisPerUnit[2] != before2 {
		t.Fatalf("GPU 2 did no work this frame, its EMA must not change")
	}
	if s.EMAMillisPerUnit[0] == initialEMAMillis {
		t.Fatalf("GPU 0 did work this frame, its EMA should have updated")
	}
}
