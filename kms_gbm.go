// kms_gbm.go - cgo-free bindings to libgbm via github.com/ebitengine/purego,
// the same dlopen/dlsym posture ebiten itself uses for its GL backend
// (SPEC_FULL.md §2). No Go package in the example corpus wraps GBM, so the
// function pointers are registered by hand against the real C ABI.
package main

import (
	"fmt"

	"github.com/ebitengine/purego"
)

const (
	gbmBOUseScanout   = 1 << 0
	gbmBOUseRendering = 1 << 2
	gbmFormatXRGB8888 = drmFormatXRGB8888
)

type gbmLib struct {
	handle uintptr

	createDevice        func(fd int32) uintptr
	deviceDestroy       func(dev uintptr)
	surfaceCreate       func(dev uintptr, width, height, format uint32, flags uint32) uintptr
	surfaceDestroy      func(surface uintptr)
	surfaceLockFront    func(surface uintptr) uintptr
	surfaceRelease      func(surface uintptr, bo uintptr)
	surfaceHasFree      func(surface uintptr) int32
	boGetWidth          func(bo uintptr) uint32
	boGetHeight         func(bo uintptr) uint32
	boGetStride         func(bo uintptr) uint32
	boGetHandle         func(bo uintptr) uint64
}

func loadGBM() (*gbmLib, error) {
	handle, err := purego.Dlopen("libgbm.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen libgbm.so.1: %w", err)
	}
	lib := &gbmLib{handle: handle}
	purego.RegisterLibFunc(&lib.createDevice, handle, "gbm_create_device")
	purego.RegisterLibFunc(&lib.deviceDestroy, handle, "gbm_device_destroy")
	purego.RegisterLibFunc(&lib.surfaceCreate, handle, "gbm_surface_create")
	purego.RegisterLibFunc(&lib.surfaceDestroy, handle, "gbm_surface_destroy")
	purego.RegisterLibFunc(&lib.surfaceLockFront, handle, "gbm_surface_lock_front_buffer")
	purego.RegisterLibFunc(&lib.surfaceRelease, handle, "gbm_surface_release_buffer")
	purego.RegisterLibFunc(&lib.surfaceHasFree, handle, "gbm_surface_has_free_buffers")
	purego.RegisterLibFunc(&lib.boGetWidth, handle, "gbm_bo_get_width")
	purego.RegisterLibFunc(&lib.boGetHeight, handle, "gbm_bo_get_height")
	purego.RegisterLibFunc(&lib.boGetStride, handle, "gbm_bo_get_stride")
	purego.RegisterLibFunc(&lib.boGetHandle, handle, "gbm_bo_get_handle")
	return lib, nil
}

// gbmSurface wraps a GBM device + surface pair, owned for the run per
// spec.md §4.4's KMS-objects list.
type gbmSurface struct {
	lib     *gbmLib
	device  uintptr
	surface uintptr
	width   uint32
	height  uint32
}

func newGBMSurface(drmFD int, width, height uint32) (*gbmSurface, error) {
	lib, err := loadGBM()
	if err != nil {
		return nil, err
	}
	dev := lib.createDevice(int32(drmFD))
	if dev == 0 {
		return nil, fmt.Errorf("gbm_create_device failed")
	}
	surface := lib.surfaceCreate(dev, width, height, gbmFormatXRGB8888, gbmBOUseScanout|gbmBOUseRendering)
	if surface == 0 {
		lib.deviceDestroy(dev)
		return nil, fmt.Errorf("gbm_surface_create failed")
	}
	return &gbmSurface{lib: lib, device: dev, surface: surface, width: width, height: height}, nil
}

// lockFrontBuffer must be called after eglSwapBuffers, per spec.md §4.4's
// "render the first frame ... then gbm_surface_lock_front_buffer".
func (g *gbmSurface) lockFrontBuffer() (bo uintptr, handle uint64, stride uint32) {
	bo = g.lib.surfaceLockFront(g.surface)
	handle = g.lib.boGetHandle(bo)
	stride = g.lib.boGetStride(bo)
	return bo, handle, stride
}

func (g *gbmSurface) releaseBuffer(bo uintptr) {
	g.lib.surfaceRelease(g.surface, bo)
}

func (g *gbmSurface) destroy() {
	g.lib.surfaceDestroy(g.surface)
	g.lib.deviceDestroy(g.device)
}
