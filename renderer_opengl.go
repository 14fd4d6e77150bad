// renderer_opengl.go - the OpenGL renderer used for both the GL3.3 and the
// GL1.5/GLES1.1 renderer selections. GL context
// creation itself (EGL/GLX/WGL/the GLFW window) is out of the specified
// core per spec.md §1 ("specified only by the capability interface the
// core expects"); this file assumes a context is already current when
// Init is called; display_glfw_window.go and the KMS path are responsible
// for making one current before calling in.
//
// Grounded on the rest-of-pack's go-gl usage (Gekko3D-gekko,
// Lubas1337-gengine, dantero-ps-mini-mc-go all drive github.com/go-gl/gl
// directly against a GLFW-created context).
package main

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.3-core/gl"
)

// OpenGLRenderer drives both the GL3.3 and the GL1.5/GLES1.1 renderer
// selections through the same GL3.3 core-profile damage-plan-to-vertex-
// buffer pipeline; no fixed-function path is implemented.
type OpenGLRenderer struct {
	rendererName string
	display      string
	width, height int
	tag          string

	program uint32
	vao, vbo uint32
	tracker  *HashTracker

	vertexCount   int
	drawCallCount int
	lastReadbackErr error
}

func NewOpenGLRenderer(rendererName, display string, w, h int, tag string) *OpenGLRenderer {
	return &OpenGLRenderer{rendererName: rendererName, display: display, width: w, height: h, tag: tag}
}

func (r *OpenGLRenderer) Init(cfg *Config) error {
	if err := gl.Init(); err != nil {
		return NewBenchError(KindGpuInit, "gl.Init failed", err)
	}

	vertSrc, err := ReadShaderSource("shaders/driverbench.vert")
	if err != nil {
		return NewBenchError(KindAssetIO, "reading vertex shader", err)
	}
	fragSrc, err := ReadShaderSource("shaders/driverbench.frag")
	if err != nil {
		return NewBenchError(KindAssetIO, "reading fragment shader", err)
	}

	prog, err := compileProgram(vertSrc, fragSrc)
	if err != nil {
		return NewBenchError(KindGpuInit, "compiling GL program", err)
	}
	r.program = prog

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)

	r.tracker = NewHashTracker(hashKeyForCapability("opengl"), pickReportMode(cfg.HashMode), cfg.HashMode != HashModeNone)
	return nil
}

func (r *OpenGLRenderer) CapabilityTag() string  { return r.tag }
func (r *OpenGLRenderer) WorkUnitCount() int     { return GridRows * GridCols }
func (r *OpenGLRenderer) Tracker() *HashTracker  { return r.tracker }

func (r *OpenGLRenderer) Shutdown() {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// planToVertices rasterizes a DamagePlan into a flat stream of
// (x, y, r, g, b, a) triangle-list vertices in NDC space, two triangles per
// dirtied tile/row/band.
func planToVertices(plan DamagePlan) []float32 {
	var verts []float32
	appendRect := func(rect NDCRect, c RGB) {
		r, g, b := float32(c.R), float32(c.G), float32(c.B)
		x0, y0, x1, y1 := float32(rect.MinX), float32(rect.MinY), float32(rect.MaxX), float32(rect.MaxY)
		quad := []float32{
			x0, y0, r, g, b, 1,
			x1, y0, r, g, b, 1,
			x1, y1, r, g, b, 1,
			x0, y0, r, g, b, 1,
			x1, y1, r, g, b, 1,
			x0, y1, r, g, b, 1,
		}
		verts = append(verts, quad...)
	}
	if plan.FullClear {
		appendRect(NDCRect{-1, -1, 1, 1}, plan.ClearColor)
	}
	for _, bc := range plan.Bands {
		appendRect(bandNDCBounds(bc.Band), bc.Color)
	}
	for _, tc := range plan.Tiles {
		appendRect(tileNDCBounds(tc.Tile), tc.Color)
	}
	for _, rc := range plan.Rows {
		row := Tile{Row: rc.Row, Col: 0}
		bounds := tileNDCBounds(row)
		bounds.MinX, bounds.MaxX = -1, 1
		appendRect(bounds, rc.Color)
	}
	return verts
}

func (r *OpenGLRenderer) RenderFrame(t float64, plan DamagePlan) error {
	verts := planToVertices(plan)
	vertexCount := len(verts) / 6
	r.vertexCount = vertexCount
	r.drawCallCount++

	gl.UseProgram(r.program)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if len(verts) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
	}
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, 6*4, 2*4)
	gl.EnableVertexAttribArray(1)
	if vertexCount > 0 {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount))
	}

	if r.tracker != nil && r.tracker.Enabled {
		var h uint64
		switch {
		case r.tracker.ReportFinalFlag || r.tracker.ReportAggFlag:
			h = r.readbackHash(plan)
		}
		if r.lastReadbackErr != nil {
			return r.lastReadbackErr
		}
		r.tracker.Record(h)
	}
	return nil
}

// readbackHash reads the framebuffer back and computes the canonical pixel
// hash, bottom-to-top since GL readbacks are bottom-left origin (spec.md
// §4.2), folded with the GL state-hash prefix (SPEC_FULL.md §4).
func (r *OpenGLRenderer) readbackHash(plan DamagePlan) uint64 {
	stride := r.width * 4
	buf := make([]byte, stride*r.height)
	gl.ReadPixels(0, 0, int32(r.width), int32(r.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
	if len(buf) == 0 {
		// spec.md §4.2: a zero-size readback is a fatal HashReadback.
		// RenderFrame returns it to its caller; LastReadbackError also
		// reports it.
		r.lastReadbackErr = NewBenchError(KindHashReadback, "zero-size framebuffer readback", nil)
		return 0
	}
	pixelHash := hashPixelRows(buf, r.width, r.height, stride, true)
	statePrefix := glStateHashPrefix(r.vertexCount, r.drawCallCount, plan)
	return fnv1aExtend(pixelHash, statePrefix)
}

// LastReadbackError surfaces a fatal HashReadback error from the most
// recent RenderFrame call, if any.
func (r *OpenGLRenderer) LastReadbackError() error { return r.lastReadbackErr }

func compileProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		logBuf := make([]byte, logLen+1)
		gl.GetProgramInfoLog(prog, logLen, nil, &logBuf[0])
		return 0, fmt.Errorf("link program: %s", string(logBuf))
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return prog, nil
}

func compileShader(src string, kind uint32) (uint32, error) {
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		logBuf := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &logBuf[0])
		return 0, fmt.Errorf("compile shader: %s", string(logBuf))
	}
	return shader, nil
}
