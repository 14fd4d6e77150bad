package main

import "testing"

func TestRectSnakeNeverExtendsBeyondGrid(t *testing.T) {
	for idx := uint32(0); idx < 50; idx++ {
		rect := deriveRect(0xDEADBEEF, idx)
		if rect.X < 0 || rect.Y < 0 || rect.X+rect.Width > GridCols || rect.Y+rect.Height > GridRows {
			t.Fatalf("rect %d out of grid bounds: %+v", idx, rect)
		}
		if rect.Width <= 0 || rect.Height <= 0 {
			t.Fatalf("rect %d has non-positive dimension: %+v", idx, rect)
		}
	}
}

func TestRectSnakeIndexStrictlyIncreasesBetweenCompletions(t *testing.T) {
	state := RuntimeState{}
	lastIndex := state.RectIndex
	completions := 0
	for step := 0; step < 5000 && completions < 5; step++ {
		_, next := planRectSnake(0xDEADBEEF, state)
		if next.RectIndex != lastIndex {
			if next.RectIndex <= lastIndex {
				t.Fatalf("rect index did not strictly increase: %d -> %d", lastIndex, next.RectIndex)
			}
			lastIndex = next.RectIndex
			completions++
		}
		state = next
	}
	if completions == 0 {
		t.Fatalf("expected at least one rectangle completion in 5000 steps")
	}
}

func TestRectSnakeResetPendingForcesFullClear(t *testing.T) {
	state := RequestResetPending(RuntimeState{RectCursor: 42})
	plan, next := planRectSnake(1, state)
	if !plan.FullClear {
		t.Fatalf("expected full clear when reset_pending set")
	}
	if next.ResetPending {
		t.Fatalf("reset_pending should clear after being honored")
	}
	if next.RectCursor != 0 {
		t.Fatalf("cursor should reset to 0 alongside reset_pending")
	}
}
