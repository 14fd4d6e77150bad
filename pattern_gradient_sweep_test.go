package main

import "testing"

func TestGradientSweepReturnsToInitialStateAfterFullCycle(t *testing.T) {
	state := RuntimeState{GradientHeadRow: 0, GradientDirectionDown: true}
	initial := state
	steps := 2 * (GridRows - 1)
	for i := 0; i < steps; i++ {
		_, next := planGradientSweep(state)
		state = next
	}
	if state != initial {
		t.Fatalf("after %d steps state = %+v, want initial %+v", steps, state, initial)
	}
}

func TestGradientSweepHeadStaysInBounds(t *testing.T) {
	state := RuntimeState{GradientDirectionDown: true}
	for i := 0; i < 5*GridRows; i++ {
		_, next := planGradientSweep(state)
		if int(next.GradientHeadRow) < 0 || int(next.GradientHeadRow) >= GridRows {
			t.Fatalf("head out of bounds: %d", next.GradientHeadRow)
		}
		state = next
	}
}

func TestGradientFillWrapsAndIncrementsCycle(t *testing.T) {
	state := RuntimeState{GradientHeadRow: uint32(GridRows - 1)}
	plan, next := planGradientFill(state)
	if !plan.FullClear {
		t.Fatalf("expected full clear on wrap")
	}
	if next.GradientHeadRow != 0 {
		t.Fatalf("head should wrap to 0, got %d", next.GradientHeadRow)
	}
	if next.GradientCycle != state.GradientCycle+1 {
		t.Fatalf("cycle should increment on wrap")
	}
}
