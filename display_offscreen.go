// display_offscreen.go - the offscreen display: no window system, no KMS,
// just a renderer writing into a buffer for a fixed frame count, per
// spec.md §4.1. Grounded on the teacher's headless audio backend, which
// takes the same "no output device, still drive the full pipeline" shape.
package main

// OffscreenDisplay drives renderer for a fixed number of frames with no
// presentation step of its own; the renderer already targets an in-memory
// buffer (CPURenderer) or an FBO (OpenGLRenderer)/offscreen image
// (VulkanRenderer).
type OffscreenDisplay struct {
	renderer Renderer
}

func NewOffscreenDisplay(renderer Renderer) *OffscreenDisplay {
	return &OffscreenDisplay{renderer: renderer}
}

func (d *OffscreenDisplay) PresentFrame(t float64, plan DamagePlan) error {
	return d.renderer.RenderFrame(t, plan)
}

func (d *OffscreenDisplay) Tracker() *HashTracker { return d.renderer.Tracker() }

func (d *OffscreenDisplay) CapabilityTag() string { return d.renderer.CapabilityTag() }

func (d *OffscreenDisplay) WorkUnitCount() int { return d.renderer.WorkUnitCount() }

func (d *OffscreenDisplay) Shutdown() { d.renderer.Shutdown() }
