// pattern_gradient_sweep.go - the GradientSweep pattern: a 32-row band
// ping-ponging vertically, triangular-blended around its center.
package main

// gradientSweepRowColor computes the color for row r given the current
// head h, per spec.md §4.1: delta = (r + ROWS - h) mod ROWS; outside the
// window it's PHASE1; inside, a symmetric triangular blend peaking at
// PHASE0 in the center of the window.
func gradientSweepRowColor(r int, h uint32) RGB {
	const w = GradientWindowRows
	delta := (r + GridRows - int(h)) % GridRows
	if delta >= w {
		return Phase1RGB
	}
	center := float64(w-1) / 2
	blend := absF(float64(delta)-center) / center
	return LerpRGB(Phase0RGB, Phase1RGB, blend)
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// planGradientSweep advances the sweep head by one row, reflecting at the
// top/bottom edges, and produces the damage plan for the rows that changed.
func planGradientSweep(state RuntimeState) (DamagePlan, RuntimeState) {
	const w = GradientWindowRows
	h := state.GradientHeadRow
	dir := state.GradientDirectionDown
	// A head sitting on an edge while facing outward (e.g. the zero-value
	// state: row 0, moving up) turns around before it moves.
	if !dir && h == 0 {
		dir = true
	} else if dir && int(h) == GridRows-1 {
		dir = false
	}

	rows := make([]RowColor, 0, w+1)
	// The row that leaves the window on this step is dirtied along with the
	// full new window: the old head row when moving down, the old trailing
	// row (delta == w-1 before the advance) when moving up.
	leavingRow := int(h)
	if dir {
		h = h + 1
	} else {
		leavingRow = (int(h) + w - 1) % GridRows
		h = h - 1
	}
	if int(h) == 0 || int(h) == GridRows-1 {
		dir = !dir
	}
	rows = append(rows, RowColor{Row: leavingRow, Color: gradientSweepRowColor(leavingRow, h)})

	next := state
	next.GradientHeadRow = h
	next.GradientDirectionDown = dir

	for i := 0; i < w; i++ {
		r := (int(h) + i) % GridRows
		rows = append(rows, RowColor{Row: r, Color: gradientSweepRowColor(r, h)})
	}

	return DamagePlan{Rows: rows}, next
}
