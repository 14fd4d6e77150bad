// cli_flags.go - dispatch and runtime CLI flags from spec.md §6. Stdlib
// `flag` package with a custom Usage, matching cmd/ie32to64/main.go's idiom
// in the teacher. CLI parsing is outside the specified core (spec.md §1) but
// must exist for a runnable binary.
package main

import (
	"flag"
	"fmt"
	"os"
)

// RawFlags holds the parsed CLI flag values before merging with
// environment-variable defaults in cli_config.go.
type RawFlags struct {
	Display             string
	API                 string
	Renderer             string
	KMSCard              string
	AllowRemoteDisplay   string
	BenchmarkMode        string
	FPSCap               string
	FramebufferHash      string
	HashEveryFrame       string
	FrameLimit           string
	Offscreen            string
	OffscreenFrames      string
	RandomSeed           string
	Vsync                string

	set map[string]bool
}

// Set reports whether a flag was explicitly passed on the command line
// (as opposed to carrying its zero-value default), so cli_config.go knows
// when to prefer the environment variable instead.
func (r *RawFlags) Set(name string) bool {
	return r.set[name]
}

// ParseFlags parses args (excluding the program name) into RawFlags.
func ParseFlags(args []string) (*RawFlags, error) {
	fs := flag.NewFlagSet("driverbench", flag.ContinueOnError)
	r := &RawFlags{set: map[string]bool{}}

	fs.StringVar(&r.Display, "display", "", "offscreen | glfw_window | linux_kms_atomic")
	fs.StringVar(&r.API, "api", "auto", "auto | cpu | opengl | vulkan")
	fs.StringVar(&r.Renderer, "renderer", "auto", "auto | gl1_5_gles1_1 | gl3_3")
	fs.StringVar(&r.KMSCard, "kms-card", "/dev/dri/card0", "DRM card node path")
	fs.StringVar(&r.AllowRemoteDisplay, "allow-remote-display", "", "0|1")
	fs.StringVar(&r.BenchmarkMode, "benchmark-mode", "", "gradient_sweep|bands|snake_grid|gradient_fill|rect_snake")
	fs.StringVar(&r.FPSCap, "fps-cap", "", "target FPS; <=0 disables capping")
	fs.StringVar(&r.FramebufferHash, "framebuffer-hash", "", "0|1")
	fs.StringVar(&r.HashEveryFrame, "hash-every-frame", "", "0|1")
	fs.StringVar(&r.FrameLimit, "frame-limit", "", "frame count; 0 = unlimited")
	fs.StringVar(&r.Offscreen, "offscreen", "", "0|1")
	fs.StringVar(&r.OffscreenFrames, "offscreen-frames", "", "default frame count for offscreen runs")
	fs.StringVar(&r.RandomSeed, "random-seed", "", "decimal or 0x-prefixed u32")
	fs.StringVar(&r.Vsync, "vsync", "", "0|1|on|off|true|false")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: driverbench --display <offscreen|glfw_window|linux_kms_atomic> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		r.set[f.Name] = true
	})

	return r, nil
}
