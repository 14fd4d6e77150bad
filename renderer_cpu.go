// renderer_cpu.go - the CPU software renderer: applies damage plans to an
// RGBA8 buffer with unsafe.Pointer uint32 writes, grounded on video_ted.go's
// pixel-buffer idiom in the teacher. Preserves the previous frame's image
// across calls, satisfying the history-texture contract (spec.md §4.3) for
// incremental patterns without any GPU involvement.
package main

import "unsafe"

// CPURenderer is the offscreen software rasterizer used for determinism
// testing and as the `cpu` API backend.
type CPURenderer struct {
	width, height int
	buf           []byte // RGBA8, row-major, stride = width*4
	tag           string
	tracker       *HashTracker
}

// NewCPURenderer allocates a w x h RGBA8 framebuffer.
func NewCPURenderer(w, h int, tag string) *CPURenderer {
	return &CPURenderer{
		width:  w,
		height: h,
		buf:    make([]byte, w*h*4),
		tag:    tag,
	}
}

func (r *CPURenderer) Init(cfg *Config) error {
	r.tracker = NewHashTracker(hashKeyForCapability("cpu"), pickReportMode(cfg.HashMode), cfg.HashMode != HashModeNone)
	return nil
}

func (r *CPURenderer) CapabilityTag() string { return r.tag }
func (r *CPURenderer) WorkUnitCount() int    { return GridRows * GridCols }
func (r *CPURenderer) Shutdown()             {}

// pickReportMode reports both final and aggregate hashes whenever hashing
// is enabled (spec.md leaves the default report mode as an implementation
// choice); with hashing off it returns ReportFinal.
func pickReportMode(mode HashMode) ReportMode {
	if mode == HashModeNone {
		return ReportFinal
	}
	return ReportBoth
}

func rgbToBytes(c RGB) (r, g, b, a byte) {
	clamp := func(v float64) byte {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return byte(v * 255)
	}
	return clamp(c.R), clamp(c.G), clamp(c.B), 255
}

func colorU32(c RGB) uint32 {
	r, g, b, a := rgbToBytes(c)
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

func (r *CPURenderer) stride() int { return r.width * 4 }

func (r *CPURenderer) fillAll(c RGB) {
	u := colorU32(c)
	n := len(r.buf) / 4
	dst := unsafe.Pointer(&r.buf[0])
	for i := 0; i < n; i++ {
		*(*uint32)(unsafe.Pointer(uintptr(dst) + uintptr(i*4))) = u
	}
}

func (r *CPURenderer) putTile(t Tile, c RGB) {
	bounds := tileNDCBounds(t)
	_ = bounds // geometry not needed for direct pixel addressing on CPU
	tileW := r.width / GridCols
	tileH := r.height / GridRows
	if tileW < 1 {
		tileW = 1
	}
	if tileH < 1 {
		tileH = 1
	}
	u := colorU32(c)
	x0 := t.Col * tileW
	y0 := t.Row * tileH
	for y := y0; y < y0+tileH && y < r.height; y++ {
		rowOff := y * r.stride()
		for x := x0; x < x0+tileW && x < r.width; x++ {
			off := rowOff + x*4
			*(*uint32)(unsafe.Pointer(&r.buf[off])) = u
		}
	}
}

func (r *CPURenderer) putRow(row int, c RGB) {
	if row < 0 || row >= r.height {
		// Pattern rows are expressed in GridRows space; scale to pixel
		// rows when the offscreen buffer height differs from GridRows.
	}
	tileH := r.height / GridRows
	if tileH < 1 {
		tileH = 1
	}
	u := colorU32(c)
	y0 := row * tileH
	for y := y0; y < y0+tileH && y < r.height; y++ {
		rowOff := y * r.stride()
		for x := 0; x < r.width; x++ {
			off := rowOff + x*4
			*(*uint32)(unsafe.Pointer(&r.buf[off])) = u
		}
	}
}

func (r *CPURenderer) putBand(b int, c RGB) {
	tileW := r.width / BandCount
	if tileW < 1 {
		tileW = 1
	}
	u := colorU32(c)
	x0 := b * tileW
	for y := 0; y < r.height; y++ {
		rowOff := y * r.stride()
		for x := x0; x < x0+tileW && x < r.width; x++ {
			off := rowOff + x*4
			*(*uint32)(unsafe.Pointer(&r.buf[off])) = u
		}
	}
}

// RenderFrame applies plan to the persistent framebuffer and, if pixel
// hashing is enabled, records the canonical row hash for this frame.
func (r *CPURenderer) RenderFrame(t float64, plan DamagePlan) error {
	if plan.FullClear {
		r.fillAll(plan.ClearColor)
	}
	for _, bc := range plan.Bands {
		r.putBand(bc.Band, bc.Color)
	}
	for _, tc := range plan.Tiles {
		r.putTile(tc.Tile, tc.Color)
	}
	for _, rc := range plan.Rows {
		r.putRow(rc.Row, rc.Color)
	}
	if r.tracker != nil && r.tracker.Enabled {
		h := hashPixelRows(r.buf, r.width, r.height, r.stride(), false)
		r.tracker.Record(h)
	}
	return nil
}

// Tracker exposes the hash tracker so the driver loop can emit the
// shutdown hash line.
func (r *CPURenderer) Tracker() *HashTracker { return r.tracker }
