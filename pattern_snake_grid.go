// pattern_snake_grid.go - the SnakeGrid pattern: a boustrophedon fill/clear
// sweep across the whole grid advancing at most SnakePhaseWindowTiles tiles
// per step, with a fading comet trail within each batch.
package main

// planSnakeGrid advances the snake-grid cursor by up to SnakePhaseWindowTiles
// tiles and produces the corresponding damage plan.
func planSnakeGrid(seed uint32, state RuntimeState) (DamagePlan, RuntimeState) {
	_ = seed // SnakeGrid's geometry is not seed-dependent; seed kept for a
	// uniform PlanNext signature across patterns.

	total := uint32(WorkUnitCount(PatternSnakeGrid))
	cursor := state.SnakeCursor
	remaining := total - cursor
	batch := uint32(SnakePhaseWindowTiles)
	if remaining < batch {
		batch = remaining
	}

	prevColor := Phase1RGB
	targetColor := Phase0RGB
	if !state.ClearingPhase {
		prevColor = Phase0RGB
		targetColor = Phase1RGB
	}

	tiles := make([]TileColor, 0, batch)
	for i := uint32(0); i < batch; i++ {
		step := int(cursor + i)
		tile := tileIndexFromStep(step)
		blend := windowBlend(int(i), int(batch))
		color := LerpRGB(prevColor, targetColor, blend)
		tiles = append(tiles, TileColor{Tile: tile, Color: color})
	}

	next := state
	next.SnakePrevStart = cursor
	next.SnakePrevCount = batch
	next.SnakeCursor = cursor + batch

	phaseCompleted := next.SnakeCursor >= total
	plan := DamagePlan{Tiles: tiles}
	if phaseCompleted {
		plan.PhaseCompleted = true
		plan.FullClear = true
		plan.ClearColor = targetColor
		next.SnakeCursor = 0
		next.ClearingPhase = !state.ClearingPhase
	}
	return plan, next
}
