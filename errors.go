// errors.go - the fatal/recoverable/retry error taxonomy from spec.md §7.
// Plain stdlib errors + fmt.Errorf("...: %w", err), matching voodoo_vulkan.go.
package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a BenchError per spec.md §7's table.
type ErrorKind int

const (
	KindConfig ErrorKind = iota
	KindAssetIO
	KindGpuInit
	KindGpuLoss
	KindSwapStale
	KindTimeout
	KindInterrupted
	KindHashReadback
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "Config"
	case KindAssetIO:
		return "AssetIO"
	case KindGpuInit:
		return "GpuInit"
	case KindGpuLoss:
		return "GpuLoss"
	case KindSwapStale:
		return "SwapStale"
	case KindTimeout:
		return "Timeout"
	case KindInterrupted:
		return "Interrupted"
	case KindHashReadback:
		return "HashReadback"
	default:
		return "Unknown"
	}
}

// Fatal reports whether this kind of error must terminate the process
// immediately, per the policy column of spec.md §7's table.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindSwapStale, KindTimeout, KindInterrupted:
		return false
	default:
		return true
	}
}

// BenchError wraps an underlying cause with the ErrorKind the driver loop
// needs to decide fatal/recoverable/retry handling.
type BenchError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *BenchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *BenchError) Unwrap() error {
	return e.Err
}

// NewBenchError constructs a BenchError, wrapping cause (which may be nil).
func NewBenchError(kind ErrorKind, msg string, cause error) *BenchError {
	return &BenchError{Kind: kind, Msg: msg, Err: cause}
}

// AsBenchError extracts a *BenchError from err if present anywhere in its
// chain.
func AsBenchError(err error) (*BenchError, bool) {
	var be *BenchError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
