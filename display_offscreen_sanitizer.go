// display_offscreen_sanitizer.go - the sanitizer display: renders every
// frame through two independent CPU renderer instances and asserts their
// pixel hashes match before advancing, per SPEC_FULL.md §4's supplemented
// regression guard. Gated behind DRIVERBENCH_SANITIZER=1, env-only.
package main

import "fmt"

// SanitizerDisplay wraps two identically constructed CPURenderer instances
// and feeds both the same damage plan each frame; any divergence between
// their pixel hashes means CPU rendering is not deterministic, which is a
// fatal condition this display exists to catch early. Both renderers share
// one PlanNext result, so pattern-engine purity is not checked here.
type SanitizerDisplay struct {
	primary, shadow *CPURenderer
}

func NewSanitizerDisplay(width, height int, tag string) *SanitizerDisplay {
	return &SanitizerDisplay{
		primary: NewCPURenderer(width, height, tag),
		shadow:  NewCPURenderer(width, height, tag+"_shadow"),
	}
}

func (d *SanitizerDisplay) Init(cfg *Config) error {
	if err := d.primary.Init(cfg); err != nil {
		return err
	}
	return d.shadow.Init(cfg)
}

// PresentFrame renders plan through both renderers and fails fatally if
// their pixel hashes diverge.
func (d *SanitizerDisplay) PresentFrame(t float64, plan DamagePlan) error {
	if err := d.primary.RenderFrame(t, plan); err != nil {
		return err
	}
	if err := d.shadow.RenderFrame(t, plan); err != nil {
		return err
	}
	primaryHash := hashPixelRows(d.primary.buf, d.primary.width, d.primary.height, d.primary.stride(), false)
	shadowHash := hashPixelRows(d.shadow.buf, d.shadow.width, d.shadow.height, d.shadow.stride(), false)
	if primaryHash != shadowHash {
		return NewBenchError(KindHashReadback, fmt.Sprintf("sanitizer divergence: primary=0x%016x shadow=0x%016x", primaryHash, shadowHash), nil)
	}
	return nil
}

func (d *SanitizerDisplay) Tracker() *HashTracker { return d.primary.Tracker() }

func (d *SanitizerDisplay) CapabilityTag() string { return d.primary.CapabilityTag() }

func (d *SanitizerDisplay) WorkUnitCount() int { return d.primary.WorkUnitCount() }

func (d *SanitizerDisplay) Shutdown() {
	d.primary.Shutdown()
	d.shadow.Shutdown()
}
