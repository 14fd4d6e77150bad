// pattern_bands.go - the Bands pattern: 16 vertical bands, full height,
// dirtied every frame. Cheapest pattern; no persistent RuntimeState fields
// are used.
package main

import "math"

// planBands produces the damage plan for the Bands pattern at time t
// (seconds since the benchmark started). Bands has no incremental state:
// every band is repainted every frame, so RuntimeState passes through
// unchanged.
func planBands(t float64, state RuntimeState) (DamagePlan, RuntimeState) {
	bands := make([]BandColor, BandCount)
	for b := 0; b < BandCount; b++ {
		pulse := 0.5 + 0.5*math.Sin(2*t+0.3*float64(b))
		r := pulse * (0.2 + 0.8*float64(b)/float64(BandCount))
		g := pulse * 0.6
		blue := 1 - r
		bands[b] = BandColor{Band: b, Color: RGB{R: r, G: g, B: blue}}
	}
	return DamagePlan{Bands: bands}, state
}

// bandNDCBounds returns the NDC rectangle for vertical band b of BandCount
// bands spanning the full height.
func bandNDCBounds(b int) NDCRect {
	minX := 2*float64(b)/float64(BandCount) - 1
	maxX := 2*float64(b+1)/float64(BandCount) - 1
	return NDCRect{MinX: minX, MinY: -1, MaxX: maxX, MaxY: 1}
}
