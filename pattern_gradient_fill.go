// pattern_gradient_fill.go - the GradientFill pattern: a one-directional
// top-down fill with a 32-row linear transition tail, wrapping to the top
// on completion and incrementing a palette cycle counter.
package main

// gradientFillRowColor computes the color for row r given head h, per
// spec.md §4.1: the fill moves top-down, so rows at or below the head are
// not yet reached (PHASE0), rows GradientWindowRows or more above the head
// are filled (PHASE1), and the transition band between linearly blends.
func gradientFillRowColor(r int, h uint32) RGB {
	if r >= int(h) {
		return Phase0RGB
	}
	delta := int(h) - r
	if delta >= GradientWindowRows {
		return Phase1RGB
	}
	blend := float64(delta) / float64(GradientWindowRows)
	return LerpRGB(Phase0RGB, Phase1RGB, blend)
}

// planGradientFill advances the fill head by one row, wrapping to 0 and
// bumping GradientCycle when it reaches GridRows.
func planGradientFill(state RuntimeState) (DamagePlan, RuntimeState) {
	h := state.GradientHeadRow + 1

	next := state
	plan := DamagePlan{}

	if int(h) >= GridRows {
		next.GradientHeadRow = 0
		next.GradientCycle = state.GradientCycle + 1
		plan.FullClear = true
		plan.ClearColor = Phase0RGB
		plan.PaletteCycle = next.GradientCycle
		return plan, next
	}

	next.GradientHeadRow = h
	plan.PaletteCycle = state.GradientCycle

	rows := make([]RowColor, 0, GradientWindowRows+1)
	top := int(h) - GradientWindowRows
	for r := top; r <= int(h); r++ {
		if r < 0 || r >= GridRows {
			continue
		}
		rows = append(rows, RowColor{Row: r, Color: gradientFillRowColor(r, h)})
	}
	plan.Rows = rows
	return plan, next
}
