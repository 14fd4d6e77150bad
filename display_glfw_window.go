// display_glfw_window.go - the glfw_window display: a real GLFW-owned
// window and GL context driving the OpenGLRenderer, grounded on the rest
// of the pack's go-gl/glfw usage (dantero-ps-mini-mc-go, Gekko3D-gekko,
// Lubas1337-gengine all create their window this way before touching GL).
package main

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type GLFWWindowDisplay struct {
	window   *glfw.Window
	renderer *OpenGLRenderer
}

func NewGLFWWindowDisplay(rendererName string, width, height int) (*GLFWWindowDisplay, error) {
	if err := glfw.Init(); err != nil {
		return nil, NewBenchError(KindGpuInit, "glfw.Init failed", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(width, height, "driverbench", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, NewBenchError(KindGpuInit, "glfw.CreateWindow failed", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	tag := capabilityTag("glfw_window", "opengl", rendererName)
	return &GLFWWindowDisplay{
		window:   win,
		renderer: NewOpenGLRenderer(rendererName, "glfw_window", width, height, tag),
	}, nil
}

func (d *GLFWWindowDisplay) Init(cfg *Config) error {
	return d.renderer.Init(cfg)
}

// PresentFrame polls window events (so the OS doesn't consider the process
// hung), renders plan, and swaps. Returns a non-fatal KindInterrupted error
// if the user closed the window, matching spec.md §7's retry/recoverable
// policy for user-initiated shutdown.
func (d *GLFWWindowDisplay) PresentFrame(t float64, plan DamagePlan) error {
	glfw.PollEvents()
	if d.window.ShouldClose() {
		return NewBenchError(KindInterrupted, "window close requested", nil)
	}
	if err := d.renderer.RenderFrame(t, plan); err != nil {
		return err
	}
	d.window.SwapBuffers()
	return nil
}

func (d *GLFWWindowDisplay) Tracker() *HashTracker { return d.renderer.Tracker() }

func (d *GLFWWindowDisplay) CapabilityTag() string { return d.renderer.CapabilityTag() }

func (d *GLFWWindowDisplay) WorkUnitCount() int { return d.renderer.WorkUnitCount() }

func (d *GLFWWindowDisplay) Shutdown() {
	d.renderer.Shutdown()
	gl.Finish()
	d.window.Destroy()
	glfw.Terminate()
}
