// cli_config.go - merges RawFlags and EnvFlags into a validated Config,
// enforces the remote-display guard, and applies the --offscreen-frames
// default behavior supplemented from original_source/ (SPEC_FULL.md §4).
package main

import (
	"strconv"
	"strings"
)

// Config is the fully resolved, validated runtime configuration for one
// benchmark run.
type Config struct {
	Display  string
	API      string
	Renderer string
	KMSCard  string

	AllowRemoteDisplay bool
	BenchmarkMode      PatternKind
	FPSCap             float64
	HashMode           HashMode
	FrameLimit         uint32
	Offscreen          bool
	OffscreenFrames    uint32
	RandomSeed         uint32
	HaveRandomSeed     bool
	Vsync              bool
	Sanitizer          bool
}

func pick(cliVal string, cliSet bool, envVal string) string {
	if cliSet && cliVal != "" {
		return cliVal
	}
	if envVal != "" {
		return envVal
	}
	return cliVal
}

func parseBoolFlag(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	default:
		return def
	}
}

func parseU32(s string, def uint32) uint32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return def
	}
	return uint32(v)
}

// BuildConfig merges raw and env flags into a validated Config, or returns
// a KindConfig *BenchError describing the first invalid value found.
func BuildConfig(raw *RawFlags, env EnvFlags) (*Config, error) {
	cfg := &Config{}

	cfg.Display = pick(raw.Display, raw.Set("display"), env.Display)
	if cfg.Display == "" {
		return nil, NewBenchError(KindConfig, "--display is required", nil)
	}
	switch cfg.Display {
	case "offscreen", "glfw_window", "linux_kms_atomic":
	default:
		return nil, NewBenchError(KindConfig, "unsupported --display value: "+cfg.Display, nil)
	}

	cfg.API = pick(raw.API, raw.Set("api"), env.API)
	if cfg.API == "" {
		cfg.API = "auto"
	}
	switch cfg.API {
	case "auto", "cpu", "opengl", "vulkan":
	default:
		return nil, NewBenchError(KindConfig, "unsupported --api value: "+cfg.API, nil)
	}

	cfg.Renderer = pick(raw.Renderer, raw.Set("renderer"), env.Renderer)
	if cfg.Renderer == "" {
		cfg.Renderer = "auto"
	}
	switch cfg.Renderer {
	case "auto", "gl1_5_gles1_1", "gl3_3":
	default:
		return nil, NewBenchError(KindConfig, "unsupported --renderer value: "+cfg.Renderer, nil)
	}

	cfg.KMSCard = pick(raw.KMSCard, raw.Set("kms-card"), env.KMSCard)
	if cfg.KMSCard == "" {
		cfg.KMSCard = "/dev/dri/card0"
	}

	cfg.AllowRemoteDisplay = parseBoolFlag(pick(raw.AllowRemoteDisplay, raw.Set("allow-remote-display"), env.AllowRemoteDisplay), false)

	modeStr := pick(raw.BenchmarkMode, raw.Set("benchmark-mode"), env.BenchmarkMode)
	if modeStr == "" {
		modeStr = "bands"
	}
	kind, ok := ParsePatternKind(modeStr)
	if !ok {
		return nil, NewBenchError(KindConfig, "unsupported --benchmark-mode value: "+modeStr, nil)
	}
	cfg.BenchmarkMode = kind

	fpsStr := pick(raw.FPSCap, raw.Set("fps-cap"), env.FPSCap)
	if fpsStr == "" {
		cfg.FPSCap = 0
	} else if v, err := strconv.ParseFloat(fpsStr, 64); err == nil {
		cfg.FPSCap = v
	} else {
		return nil, NewBenchError(KindConfig, "invalid --fps-cap value: "+fpsStr, err)
	}

	fbHash := parseBoolFlag(pick(raw.FramebufferHash, raw.Set("framebuffer-hash"), env.FramebufferHash), false)
	everyFrame := parseBoolFlag(pick(raw.HashEveryFrame, raw.Set("hash-every-frame"), env.HashEveryFrame), true)
	switch {
	case !everyFrame:
		cfg.HashMode = HashModeNone
	case fbHash:
		cfg.HashMode = HashModeBoth
	default:
		cfg.HashMode = HashModeState
	}

	cfg.FrameLimit = parseU32(pick(raw.FrameLimit, raw.Set("frame-limit"), env.FrameLimit), 0)

	cfg.Offscreen = parseBoolFlag(pick(raw.Offscreen, raw.Set("offscreen"), env.Offscreen), cfg.Display == "offscreen")
	cfg.OffscreenFrames = parseU32(pick(raw.OffscreenFrames, raw.Set("offscreen-frames"), env.OffscreenFrames), 600)

	// Supplemented from original_source/: --offscreen-frames only matters
	// (as a default frame limit) for offscreen runs with no explicit
	// --frame-limit, so that `--display offscreen` terminates even under
	// the default --frame-limit=0.
	if cfg.Display == "offscreen" && cfg.FrameLimit == 0 {
		cfg.FrameLimit = cfg.OffscreenFrames
	}

	seedStr := pick(raw.RandomSeed, raw.Set("random-seed"), env.RandomSeed)
	if seedStr != "" {
		cfg.RandomSeed = parseU32(seedStr, 0)
		cfg.HaveRandomSeed = true
	}

	cfg.Vsync = parseBoolFlag(pick(raw.Vsync, raw.Set("vsync"), env.Vsync), true)
	cfg.Sanitizer = parseBoolFlag(env.Sanitizer, false)

	return cfg, nil
}

// CheckRemoteDisplayGuard implements spec.md §6's remote-display guard: a
// forwarded X11 session (DISPLAY=localhost:.../127.0.0.1:... under SSH) is
// refused unless --allow-remote-display=1.
func CheckRemoteDisplayGuard(cfg *Config, display string, sshPresent bool) error {
	if cfg.AllowRemoteDisplay {
		return nil
	}
	if !sshPresent {
		return nil
	}
	if strings.HasPrefix(display, "localhost:") || strings.HasPrefix(display, "127.0.0.1:") {
		return NewBenchError(KindConfig, "Refusing forwarded X11 session", nil)
	}
	return nil
}
