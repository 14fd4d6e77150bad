// driver_loop.go - the benchmark driver: frame cadence, FPS cap, signal-
// driven shutdown, and periodic/final hash-line logging, per spec.md §6's
// threading model ("one render thread ... should_stop flag ... polled at
// every loop iteration"). Grounded on the teacher's atomic.Bool shutdown
// flag idiom (runtime_ipc.go) generalized from IPC-triggered stop to
// signal-triggered stop.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

// statsLogInterval is the spec.md §4.5 periodic-log cadence: the FPS/
// work-unit stats line is re-emitted every 5000ms of wall-clock elapsed
// since the previous emission.
const statsLogInterval = 5000 * time.Millisecond

// Display is the presentation-layer contract every display variant
// (offscreen, sanitizer, glfw_window, linux_kms_atomic) satisfies; it
// subsumes a Renderer plus whatever window/KMS bookkeeping that display
// needs around it.
type Display interface {
	PresentFrame(t float64, plan DamagePlan) error
	Tracker() *HashTracker
	CapabilityTag() string
	WorkUnitCount() int
	Shutdown()
}

// DriverLoop owns the pattern state machine and steps display once per
// frame until frameLimit is hit, should_stop is set, or display reports a
// fatal error.
type DriverLoop struct {
	display    Display
	cfg        *Config
	logger     *Logger
	shouldStop atomic.Bool
}

func NewDriverLoop(display Display, cfg *Config, logger *Logger) *DriverLoop {
	return &DriverLoop{display: display, cfg: cfg, logger: logger}
}

// installSignalHandler arms SIGINT/SIGTERM to flip should_stop, matching
// spec.md §6's "signal-driven should_stop flag; handler does nothing else".
func (d *DriverLoop) installSignalHandler() chan<- struct{} {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			d.shouldStop.Store(true)
		case <-done:
		}
	}()
	return done
}

// Run drives frames until frameLimit (0 means unbounded) or should_stop.
// FPS cap, when set, paces frames with a chunked sleep so a signal or close
// request is still observed promptly rather than in one long sleep.
func (d *DriverLoop) Run() error {
	done := d.installSignalHandler()
	defer close(done)

	seed := PatternSeed(d.cfg.RandomSeed, d.cfg.HaveRandomSeed)
	state := RuntimeState{}
	var frameIndex uint32
	var workUnits uint64
	start := time.Now()
	lastStatsLog := start

	var frameInterval time.Duration
	if d.cfg.FPSCap > 0 {
		frameInterval = time.Duration(float64(time.Second) / d.cfg.FPSCap)
	}

	for {
		if d.shouldStop.Load() {
			break
		}
		if d.cfg.FrameLimit > 0 && frameIndex >= d.cfg.FrameLimit {
			break
		}

		frameStart := time.Now()
		t := frameStart.Sub(start).Seconds()
		plan, next := PlanNext(d.cfg.BenchmarkMode, t, seed, state)
		state = next

		if err := d.display.PresentFrame(t, plan); err != nil {
			if be, ok := AsBenchError(err); ok {
				if be.Kind == KindInterrupted {
					break
				}
				if be.Kind == KindSwapStale || be.Kind == KindTimeout {
					d.logger.Warn(be.Error())
					continue
				}
			}
			return err
		}

		frameIndex++
		workUnits += uint64(d.display.WorkUnitCount())

		if now := time.Now(); now.Sub(lastStatsLog) >= statsLogInterval {
			d.logger.Info(d.statsLine(frameIndex, workUnits, now.Sub(start)))
			lastStatsLog = now
		}

		if frameInterval > 0 {
			d.sleepUntilNextFrame(frameStart, frameInterval)
		}
	}

	d.logger.Info(d.statsLine(frameIndex, workUnits, time.Since(start)))
	if tr := d.display.Tracker(); tr != nil {
		if line := tr.ReportLine(); line != "" {
			d.logger.Info(line)
		}
	}
	return nil
}

// statsLine formats the stable frames/work_units/elapsed_ms/fps/ms_per_frame
// wire line required by spec.md §4.5 and §6, shared by the periodic
// (every statsLogInterval) and final emission.
func (d *DriverLoop) statsLine(frames uint32, workUnits uint64, elapsed time.Duration) string {
	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	var fps, msPerFrame float64
	if elapsedMs > 0 {
		fps = float64(frames) / (elapsedMs / 1000)
	}
	if frames > 0 {
		msPerFrame = elapsedMs / float64(frames)
	}
	return fmt.Sprintf(
		"api=%s renderer=%s backend=%s capability=%s frames=%d work_units=%d elapsed_ms=%.0f fps=%.3f ms_per_frame=%.3f",
		d.cfg.API, d.cfg.Renderer, d.cfg.Display, d.display.CapabilityTag(),
		frames, workUnits, elapsedMs, fps, msPerFrame,
	)
}

// sleepUntilNextFrame sleeps in small chunks so should_stop is re-checked
// during a long cap-induced wait instead of only between frames.
func (d *DriverLoop) sleepUntilNextFrame(frameStart time.Time, interval time.Duration) {
	const chunk = 5 * time.Millisecond
	deadline := frameStart.Add(interval)
	for {
		if d.shouldStop.Load() {
			return
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if remaining < chunk {
			time.Sleep(remaining)
			return
		}
		time.Sleep(chunk)
	}
}
