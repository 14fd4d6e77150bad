// display_dispatch.go - the (display, api, renderer) capability dispatch
// and the renderer "vtable" interface, grounded on the teacher's
// audio_backend_{alsa,oto,headless}.go capability-dispatch idiom (spec.md
// §9 "dynamic dispatch": a plain struct of function pointers, no
// inheritance).
package main

import "fmt"

// Renderer is the "vtable" every backend implements: init,
// render one frame given a damage plan, report its work-unit count and
// capability tag, and shut down. Kept as an interface (Go's idiom for this
// shape) rather than a struct of func fields, since every concrete backend
// here is a single type — spec.md §9 only requires "no inheritance", which
// an interface satisfies.
type Renderer interface {
	Init(cfg *Config) error
	RenderFrame(t float64, plan DamagePlan) error
	CapabilityTag() string
	WorkUnitCount() int
	Tracker() *HashTracker
	Shutdown()
}

// GPUProbeResult is what a real backend probe would report before
// --api/--renderer auto resolution runs.
type GPUProbeResult struct {
	DeviceGroupSize int  // Vulkan physical device count available
	GLES1Only       bool // EGL could only negotiate GLES1.1, not desktop GL
}

// resolveAuto implements the `auto` resolution rules supplemented from
// original_source/src/displays/display_dispatch.c (SPEC_FULL.md §4): a pure
// function of the configured values and a probe result, so it is testable
// without a real GPU.
func resolveAuto(api, renderer string, probe GPUProbeResult) (resolvedAPI, resolvedRenderer string) {
	resolvedAPI = api
	if api == "auto" {
		switch {
		case probe.DeviceGroupSize > 1:
			resolvedAPI = "vulkan"
		case probe.DeviceGroupSize == 1:
			resolvedAPI = "opengl"
		default:
			resolvedAPI = "cpu"
		}
	}
	resolvedRenderer = renderer
	if renderer == "auto" {
		if probe.GLES1Only {
			resolvedRenderer = "gl1_5_gles1_1"
		} else {
			resolvedRenderer = "gl3_3"
		}
	}
	return resolvedAPI, resolvedRenderer
}

// capabilityTag derives the short tag each log line and hash tracker key
// selection hangs off, per SPEC_FULL.md §4's supplemented capability
// derivation.
func capabilityTag(display, api, renderer string) string {
	switch {
	case api == "cpu" && display == "offscreen":
		return "cpu_offscreen_bo"
	case api == "cpu":
		return "cpu_" + display
	case api == "opengl" && display == "offscreen":
		return fmt.Sprintf("opengl_%s_offscreen_fbo", renderer)
	case api == "opengl" && display == "glfw_window":
		return fmt.Sprintf("opengl_%s_window", renderer)
	case api == "opengl" && display == "linux_kms_atomic":
		return fmt.Sprintf("opengl_%s_kms_atomic", renderer)
	case api == "vulkan" && display == "linux_kms_atomic":
		return "vulkan_device_group_kms_atomic"
	case api == "vulkan":
		return "vulkan_device_group_multi_gpu"
	default:
		return fmt.Sprintf("%s_%s_%s", api, renderer, display)
	}
}

// hashKeyForCapability preserves the per-renderer hash key names from
// spec.md §9's Open Questions: bo_hash for CPU/software-adjacent
// renderers, framebuffer_hash for GL's readback path, hash for Vulkan's
// state-hash-only path.
func hashKeyForCapability(api string) string {
	switch api {
	case "cpu":
		return "bo_hash"
	case "opengl":
		return "framebuffer_hash"
	default:
		return "hash"
	}
}

// NewRenderer constructs the concrete Renderer for a resolved (api,
// renderer, display) triple. offscreenWidth/Height size CPU/GL offscreen
// buffers; they are ignored by the KMS path, which sizes itself from the
// negotiated display mode.
func NewRenderer(api, rendererName, display string, offscreenWidth, offscreenHeight int) (Renderer, error) {
	switch api {
	case "cpu":
		return NewCPURenderer(offscreenWidth, offscreenHeight, capabilityTag(display, api, rendererName)), nil
	case "opengl":
		return NewOpenGLRenderer(rendererName, display, offscreenWidth, offscreenHeight, capabilityTag(display, api, rendererName)), nil
	case "vulkan":
		return NewVulkanRenderer(display, capabilityTag(display, api, rendererName))
	default:
		return nil, NewBenchError(KindConfig, "unknown api: "+api, nil)
	}
}
