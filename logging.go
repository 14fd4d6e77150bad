// logging.go - the stable, parseable [backend][info]/[backend][error] log
// lines from spec.md §6. No logging library: the teacher writes plain
// fmt.Fprintf(os.Stderr, ...) lines (see main.go's boilerPlate and
// voodoo_vulkan.go's error returns), so this does the same. term.IsTerminal
// gates ANSI coloring the way a CLI tool built from this pack would.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Logger emits the benchmark's stable log-line format to stdout (info) and
// stderr (error), one line per call.
type Logger struct {
	backend string
	color   bool
}

// NewLogger builds a Logger tagged with the active backend (display)
// name. Coloring is enabled only when stdout is an interactive terminal.
func NewLogger(backend string) *Logger {
	return &Logger{
		backend: backend,
		color:   term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Info prints "[<backend>][info] <msg>" to stdout.
func (l *Logger) Info(msg string) {
	if l.color {
		fmt.Printf("\033[38;2;100;200;255m[%s][info]\033[0m %s\n", l.backend, msg)
		return
	}
	fmt.Printf("[%s][info] %s\n", l.backend, msg)
}

// Infof formats and prints an info line.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Error prints "[<backend>][error] <msg>" to stderr.
func (l *Logger) Error(msg string) {
	if l.color {
		fmt.Fprintf(os.Stderr, "\033[38;2;255;80;80m[%s][error]\033[0m %s\n", l.backend, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s][error] %s\n", l.backend, msg)
}

// Errorf formats and prints an error line.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Warn prints a warning-level info line — still [info] per spec.md §4.2's
// unknown-mode policy ("logs a warning and falls back to the default"),
// which does not define a separate [warn] tag.
func (l *Logger) Warn(msg string) {
	l.Info("warning: " + msg)
}
