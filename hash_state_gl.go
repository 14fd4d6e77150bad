// hash_state_gl.go - the GL-family state-hash contribution: vertex count,
// draw-call count, and damage-plan entry count folded into one FNV-1a64
// value, per SPEC_FULL.md §4 (GL hash common helpers).
package main

// glStateHashPrefix produces an FNV-1a64 value over the frame's vertex
// count, draw-call count and damage-plan entry count (tiles + rows +
// bands). The OpenGL renderer folds it into its readback pixel hash; the
// Vulkan renderer records it alone as its per-frame hash.
func glStateHashPrefix(vertexCount, drawCallCount int, plan DamagePlan) uint64 {
	tileCount := len(plan.Tiles) + len(plan.Rows) + len(plan.Bands)
	h := fnv1a64OffsetBasis
	h = fnv1aExtend(h, uint64(vertexCount))
	h = fnv1aExtend(h, uint64(drawCallCount))
	h = fnv1aExtend(h, uint64(tileCount))
	return h
}
