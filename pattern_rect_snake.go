// pattern_rect_snake.go - the RectSnake pattern: an infinite sequence of
// pseudo-random rectangles, each painted serpentine-within-the-rectangle
// one sliding window at a time.
package main

// rectGeometry is the pure-function rectangle derivation from (seed,
// rectIndex) specified in spec.md §4.1.
type rectGeometry struct {
	X, Y, Width, Height int
	Color               RGB
}

func deriveRect(seed, rectIndex uint32) rectGeometry {
	base := mix32(seed + rectIndex*0x85EBCA77 + 1)

	minW, maxW := 1, GridCols/3
	if GridCols >= 16 {
		minW = 8
	}
	if maxW < minW {
		maxW = minW
	}
	minH, maxH := 1, GridRows/3
	if GridRows >= 16 {
		minH = 8
	}
	if maxH < minH {
		maxH = minH
	}

	width := rangeU32(mix32(base^0xA511E9B3), minW, min(maxW, GridCols)+1)
	height := rangeU32(mix32(base^0x63D83595), minH, min(maxH, GridRows)+1)
	x := rangeU32(mix32(base^0x9E3779B9), 0, GridCols-width+1)
	y := rangeU32(mix32(base^0xC2B2AE35), 0, GridRows-height+1)

	channel := func(salt uint32) float64 {
		v := byte0(mix32(base ^ salt))
		return 0.20 + (float64(v)/255)*0.75
	}
	color := RGB{
		R: channel(0x27D4EB2F),
		G: channel(0x165667B1),
		B: channel(0x85EBCA77),
	}

	return rectGeometry{X: x, Y: y, Width: width, Height: height, Color: color}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rectTileIndexFromStep returns the tile within rect `rect` visited at
// boustrophedon step `step`, local to the rectangle's own coordinate frame.
func rectTileIndexFromStep(rect rectGeometry, step int) Tile {
	row := step / rect.Width
	col := step % rect.Width
	if row%2 != 0 {
		col = rect.Width - 1 - col
	}
	return Tile{Row: rect.Y + row, Col: rect.X + col}
}

// planRectSnake advances the rect-snake cursor within the current rectangle
// (deriving the next rectangle on completion) and produces the damage plan.
func planRectSnake(seed uint32, state RuntimeState) (DamagePlan, RuntimeState) {
	rect := deriveRect(seed, state.RectIndex)
	total := uint32(rect.Width * rect.Height)

	plan := DamagePlan{}
	next := state

	if state.ResetPending {
		plan.FullClear = true
		plan.ClearColor = Phase0RGB
		next.ResetPending = false
		next.RectCursor = 0
		return plan, next
	}

	cursor := state.RectCursor
	remaining := total - cursor
	batch := uint32(SnakePhaseWindowTiles)
	if remaining < batch {
		batch = remaining
	}
	if batch == 0 {
		batch = total
		cursor = 0
	}

	tiles := make([]TileColor, 0, batch)
	for i := uint32(0); i < batch; i++ {
		step := int(cursor + i)
		tile := rectTileIndexFromStep(rect, step)
		blend := windowBlend(int(i), int(batch))
		color := LerpRGB(Phase0RGB, rect.Color, blend)
		tiles = append(tiles, TileColor{Tile: tile, Color: color})
	}
	plan.Tiles = tiles

	next.RectPrevStart = cursor
	next.RectPrevCount = batch
	next.RectCursor = cursor + batch

	if next.RectCursor >= total {
		next.RectIndex = state.RectIndex + 1
		next.RectCursor = 0
	}

	return plan, next
}
