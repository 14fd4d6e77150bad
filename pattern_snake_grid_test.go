package main

import "testing"

func TestSnakeGridPhaseSumsToGridSize(t *testing.T) {
	state := RuntimeState{}
	total := WorkUnitCount(PatternSnakeGrid)
	sum := 0
	steps := 0
	for {
		plan, next := planSnakeGrid(1, state)
		sum += len(plan.Tiles)
		steps++
		state = next
		if plan.PhaseCompleted {
			break
		}
		if steps > total {
			t.Fatalf("phase did not complete within %d steps", total)
		}
	}
	if sum != total {
		t.Fatalf("sum of batch sizes = %d, want %d", sum, total)
	}
	wantSteps := (total + SnakePhaseWindowTiles - 1) / SnakePhaseWindowTiles
	if steps != wantSteps {
		t.Fatalf("phase took %d steps, want %d", steps, wantSteps)
	}
	if !state.ClearingPhase {
		t.Fatalf("clearing phase should have toggled to true")
	}
	if state.SnakeCursor != 0 {
		t.Fatalf("cursor should reset to 0 after phase completion, got %d", state.SnakeCursor)
	}
}

func TestSnakeGridPlanNextIsPure(t *testing.T) {
	state := RuntimeState{SnakeCursor: 100, ClearingPhase: true}
	p1, n1 := planSnakeGrid(7, state)
	p2, n2 := planSnakeGrid(7, state)
	if n1 != n2 {
		t.Fatalf("next state differs across identical calls: %+v vs %+v", n1, n2)
	}
	if len(p1.Tiles) != len(p2.Tiles) {
		t.Fatalf("tile batch length differs across identical calls")
	}
	for i := range p1.Tiles {
		if p1.Tiles[i] != p2.Tiles[i] {
			t.Fatalf("tile %d differs: %+v vs %+v", i, p1.Tiles[i], p2.Tiles[i])
		}
	}
}
