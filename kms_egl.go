// kms_egl.go - cgo-free bindings to libEGL via purego, completing the
// "no cgo" FFI posture from kms_gbm.go. Implements spec.md §4.4's EGL
// negotiation: desktop GL first, GLES1.1 fallback if the requested renderer
// permits.
package main

import "github.com/ebitengine/purego"

const (
	eglOpenGLAPI   = 0x30A2
	eglOpenGLESAPI = 0x30A0

	eglSurfaceType  = 0x3033
	eglWindowBit    = 0x0004
	eglRenderableTy = 0x3040
	eglOpenGLBit    = 0x0008
	eglOpenGLESBit  = 0x0001
	eglRedSize      = 0x3024
	eglGreenSize    = 0x3023
	eglBlueSize     = 0x3022
	eglNone         = 0x3038

	eglContextClientVersion = 0x3098
	eglNoContext            = 0
	eglNoSurface            = 0
	eglNoDisplay            = 0
	eglDefaultDisplay       = 0
)

type eglLib struct {
	getDisplay     func(nativeDisplay uintptr) uintptr
	initialize     func(display uintptr, major, minor *int32) int32
	bindAPI        func(api uint32) int32
	chooseConfig   func(display uintptr, attribs *int32, configs *uintptr, configSize int32, numConfig *int32) int32
	createContext  func(display uintptr, config uintptr, shareContext uintptr, attribs *int32) uintptr
	createWindowSurface func(display uintptr, config uintptr, nativeWindow uintptr, attribs *int32) uintptr
	makeCurrent    func(display uintptr, draw, read, context uintptr) int32
	swapBuffers    func(display uintptr, surface uintptr) int32
	destroySurface func(display uintptr, surface uintptr) int32
	destroyContext func(display uintptr, context uintptr) int32
	terminate      func(display uintptr) int32
}

func loadEGL() (*eglLib, error) {
	handle, err := purego.Dlopen("libEGL.so.1", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}
	lib := &eglLib{}
	purego.RegisterLibFunc(&lib.getDisplay, handle, "eglGetDisplay")
	purego.RegisterLibFunc(&lib.initialize, handle, "eglInitialize")
	purego.RegisterLibFunc(&lib.bindAPI, handle, "eglBindAPI")
	purego.RegisterLibFunc(&lib.chooseConfig, handle, "eglChooseConfig")
	purego.RegisterLibFunc(&lib.createContext, handle, "eglCreateContext")
	purego.RegisterLibFunc(&lib.createWindowSurface, handle, "eglCreateWindowSurface")
	purego.RegisterLibFunc(&lib.makeCurrent, handle, "eglMakeCurrent")
	purego.RegisterLibFunc(&lib.swapBuffers, handle, "eglSwapBuffers")
	purego.RegisterLibFunc(&lib.destroySurface, handle, "eglDestroySurface")
	purego.RegisterLibFunc(&lib.destroyContext, handle, "eglDestroyContext")
	purego.RegisterLibFunc(&lib.terminate, handle, "eglTerminate")
	return lib, nil
}

// eglContext owns one EGL display/context/surface triple for the run.
type eglContext struct {
	lib     *eglLib
	display uintptr
	context uintptr
	surface uintptr
	gles1   bool
}

// newEGLContext negotiates desktop GL first, falling back to GLES1.1 only
// when allowGLES1Fallback is set, matching spec.md §4.4's renderer-gated
// fallback rule.
func newEGLContext(gbmDevice uintptr, gbmSurface uintptr, allowGLES1Fallback bool) (*eglContext, error) {
	lib, err := loadEGL()
	if err != nil {
		return nil, err
	}
	display := lib.getDisplay(gbmDevice)
	var major, minor int32
	if lib.initialize(display, &major, &minor) == 0 {
		return nil, errEGL("eglInitialize")
	}

	attempt := func(renderableBit int32, api uint32, ctxAttribs []int32) (*eglContext, error) {
		if lib.bindAPI(api) == 0 {
			return nil, errEGL("eglBindAPI")
		}
		configAttribs := []int32{
			eglSurfaceType, eglWindowBit,
			eglRenderableTy, renderableBit,
			eglRedSize, 8, eglGreenSize, 8, eglBlueSize, 8,
			eglNone,
		}
		var config uintptr
		var numConfigs int32
		if lib.chooseConfig(display, &configAttribs[0], &config, 1, &numConfigs) == 0 || numConfigs == 0 {
			return nil, errEGL("eglChooseConfig")
		}
		ctx := lib.createContext(display, config, eglNoContext, &ctxAttribs[0])
		if ctx == eglNoContext {
			return nil, errEGL("eglCreateContext")
		}
		surf := lib.createWindowSurface(display, config, gbmSurface, nil)
		if surf == eglNoSurface {
			lib.destroyContext(display, ctx)
			return nil, errEGL("eglCreateWindowSurface")
		}
		if lib.makeCurrent(display, surf, surf, ctx) == 0 {
			lib.destroySurface(display, surf)
			lib.destroyContext(display, ctx)
			return nil, errEGL("eglMakeCurrent")
		}
		return &eglContext{lib: lib, display: display, context: ctx, surface: surf}, nil
	}

	desktop, err := attempt(eglOpenGLBit, eglOpenGLAPI, []int32{eglNone})
	if err == nil {
		return desktop, nil
	}
	if !allowGLES1Fallback {
		return nil, err
	}
	gles, err2 := attempt(eglOpenGLESBit, eglOpenGLESAPI, []int32{eglContextClientVersion, 1, eglNone})
	if err2 != nil {
		return nil, err2
	}
	gles.gles1 = true
	return gles, nil
}

func (e *eglContext) swapBuffers() bool {
	return e.lib.swapBuffers(e.display, e.surface) != 0
}

func (e *eglContext) destroy() {
	e.lib.destroySurface(e.display, e.surface)
	e.lib.destroyContext(e.display, e.context)
	e.lib.terminate(e.display)
}

func errEGL(call string) error {
	return NewBenchError(KindGpuInit, "EGL call failed: "+call, nil)
}
