// pattern_engine.go - PlanNext: the single dispatch point the benchmark
// driver loop calls once per frame. Total, deterministic, reentrant,
// allocation-light, depends on no global state (spec.md §4.1 Contract).
package main

import "time"

// PatternSeed derives the u32 seed for RectSnake's RNG mixer from the
// --random-seed option, or from monotonic time if unset.
func PatternSeed(optSeed uint32, haveOptSeed bool) uint32 {
	return patternSeedFromOption(optSeed, haveOptSeed, time.Now().UnixNano())
}

// PlanNext produces the damage plan for the next frame of `kind` given the
// elapsed time `t` (seconds, used only by Bands), the current seed, and the
// current runtime state. It returns the plan plus the state to carry into
// the following call. Calling PlanNext twice with identical inputs yields
// identical outputs: no randomness beyond what `seed` deterministically
// drives.
func PlanNext(kind PatternKind, t float64, seed uint32, state RuntimeState) (DamagePlan, RuntimeState) {
	switch kind {
	case PatternBands:
		return planBands(t, state)
	case PatternSnakeGrid:
		return planSnakeGrid(seed, state)
	case PatternGradientSweep:
		return planGradientSweep(state)
	case PatternGradientFill:
		return planGradientFill(state)
	case PatternRectSnake:
		return planRectSnake(seed, state)
	default:
		// Unreachable for any PatternKind produced by ParsePatternKind;
		// an unknown kind yields an empty plan (nothing is drawn) and the
		// state unchanged.
		return DamagePlan{}, state
	}
}

// RequestResetPending marks the runtime state so the next RectSnake frame
// performs a full clear before resuming (spec.md §4.3). No renderer in this
// repository calls it; only the tests do.
func RequestResetPending(state RuntimeState) RuntimeState {
	state.ResetPending = true
	return state
}
