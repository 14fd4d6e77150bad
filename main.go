// main.go - entry point: parse flags and env, build and validate Config,
// enforce the remote-display guard, construct the requested display, and
// run the driver loop. Grounded on the teacher's flat package main, single
// cmd-less binary layout (no cmd/ subdirectory once assembler/ie32to64 were
// dropped, per DESIGN.md).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		if be, ok := AsBenchError(err); ok {
			fmt.Fprintf(os.Stderr, "[driverbench][error] %s\n", be.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "[driverbench][error] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	raw, err := ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}
	env := ReadEnvFlags()
	cfg, err := BuildConfig(raw, env)
	if err != nil {
		return err
	}

	display, sshPresent := remoteDisplayEnv()
	if err := CheckRemoteDisplayGuard(cfg, display, sshPresent); err != nil {
		return err
	}

	logger := NewLogger(cfg.Display)

	d, err := buildDisplay(cfg)
	if err != nil {
		return err
	}
	defer d.Shutdown()

	loop := NewDriverLoop(d, cfg, logger)
	return loop.Run()
}

const (
	defaultOffscreenWidth  = 1280
	defaultOffscreenHeight = 720
)

// buildDisplay wires cfg.Display/API/Renderer into a concrete Display,
// resolving `auto` values against a GPU probe. Real probing (Vulkan device
// group enumeration, EGL capability negotiation) happens inside the chosen
// renderer's Init; the pre-dispatch probe here only decides which renderer
// to construct, matching spec.md §4's "auto resolution" description.
func buildDisplay(cfg *Config) (Display, error) {
	if cfg.Sanitizer {
		tag := capabilityTag("offscreen", "cpu", cfg.Renderer)
		sd := NewSanitizerDisplay(defaultOffscreenWidth, defaultOffscreenHeight, tag)
		if err := sd.Init(cfg); err != nil {
			return nil, err
		}
		return sd, nil
	}

	switch cfg.Display {
	case "offscreen":
		probe := probeGPU()
		api, renderer := resolveAuto(cfg.API, cfg.Renderer, probe)
		r, err := NewRenderer(api, renderer, cfg.Display, defaultOffscreenWidth, defaultOffscreenHeight)
		if err != nil {
			return nil, err
		}
		if err := r.Init(cfg); err != nil {
			return nil, err
		}
		cfg.API, cfg.Renderer = api, renderer
		return NewOffscreenDisplay(r), nil

	case "glfw_window":
		api, renderer := resolveAuto("opengl", cfg.Renderer, probeGPU())
		gd, err := NewGLFWWindowDisplay(renderer, defaultOffscreenWidth, defaultOffscreenHeight)
		if err != nil {
			return nil, err
		}
		if err := gd.Init(cfg); err != nil {
			return nil, err
		}
		cfg.API, cfg.Renderer = api, renderer
		return gd, nil

	case "linux_kms_atomic":
		api, renderer := resolveAuto("opengl", cfg.Renderer, probeGPU())
		p, err := OpenKMSAtomicPresenter(cfg.KMSCard, renderer)
		if err != nil {
			return nil, err
		}
		cfg.API, cfg.Renderer = api, renderer
		return p, nil

	default:
		return nil, NewBenchError(KindConfig, "unsupported display: "+cfg.Display, nil)
	}
}

// probeGPU is a placeholder probe returning the conservative single-GPU,
// desktop-GL-capable result; a full implementation would perform a cheap
// Vulkan instance/device enumeration before the real renderer is
// constructed. Recorded as an Open Question resolution in DESIGN.md.
func probeGPU() GPUProbeResult {
	return GPUProbeResult{DeviceGroupSize: 1, GLES1Only: false}
}
