// kms_types.go - raw DRM atomic-modesetting ioctl numbers and wire structs,
// derived from linux/drm.h and linux/drm_mode.h. Grounded on the pack's
// reach for golang.org/x/sys/unix wherever a raw syscall is needed rather
// than a cgo binding (SPEC_FULL.md §2); no Go package in the example corpus
// wraps DRM, so this is built directly against the kernel UAPI.
package main

import "unsafe"

const drmIoctlBase = 0x64 // 'd'

func iocSize(size uintptr) uintptr { return (size & 0x1fff) << 16 }

// iowr mirrors the kernel's _IOWR(type, nr, size) macro for DRM's
// read/write ioctls (every DRM_IOCTL_MODE_* command used here is IOWR).
func iowr(nr uintptr, size uintptr) uintptr {
	const dirReadWrite = 3 << 30
	return dirReadWrite | (drmIoctlBase << 8) | nr | iocSize(size)
}

func iow(nr uintptr, size uintptr) uintptr {
	const dirWrite = 1 << 30
	return dirWrite | (drmIoctlBase << 8) | nr | iocSize(size)
}

var (
	drmIoctlSetClientCap        = iow(0x0d, unsafe.Sizeof(drmSetClientCap{}))
	drmIoctlModeGetResources    = iowr(0xA0, unsafe.Sizeof(drmModeCardRes{}))
	drmIoctlModeGetCrtc         = iowr(0xA1, unsafe.Sizeof(drmModeCrtc{}))
	drmIoctlModeSetCrtc         = iowr(0xA2, unsafe.Sizeof(drmModeCrtc{}))
	drmIoctlModeGetEncoder      = iowr(0xA6, unsafe.Sizeof(drmModeGetEncoder{}))
	drmIoctlModeGetConnector    = iowr(0xA7, unsafe.Sizeof(drmModeGetConnector{}))
	drmIoctlModeGetPlaneRes     = iowr(0xB5, unsafe.Sizeof(drmModeGetPlaneRes{}))
	drmIoctlModeGetPlane        = iowr(0xB6, unsafe.Sizeof(drmModeGetPlane{}))
	drmIoctlModeAddFB2          = iowr(0xB8, unsafe.Sizeof(drmModeFBCmd2{}))
	drmIoctlModeObjGetProps     = iowr(0xB9, unsafe.Sizeof(drmModeObjGetProperties{}))
	drmIoctlModeCreatePropBlob  = iowr(0xBD, unsafe.Sizeof(drmModeCreateBlob{}))
	drmIoctlModeDestroyPropBlob = iowr(0xBE, unsafe.Sizeof(drmModeDestroyBlob{}))
	drmIoctlModeAtomic          = iowr(0xBC, unsafe.Sizeof(drmModeAtomic{}))
)

const (
	drmClientCapUniversalPlanes = 2
	drmClientCapAtomic          = 3

	drmModeObjectConnector = 0xc0c0c0c0
	drmModeObjectCrtc      = 0xcccccccc
	drmModeObjectPlane     = 0xeeeeeeee

	drmModeAtomicAllowModeset = 0x0400
	drmModeAtomicNonblock     = 0x0200
	drmModePageFlipEvent      = 0x01

	drmModeConnected = 1

	drmFormatXRGB8888 = 0x34325258 // fourcc('X','R','2','4')
)

type drmSetClientCap struct {
	Capability uint64
	Value      uint64
}

type drmModeCardRes struct {
	FbIDPtr, CrtcIDPtr, ConnectorIDPtr, EncoderIDPtr uint64
	CountFbs, CountCrtcs, CountConnectors, CountEncoders uint32
	MinWidth, MaxWidth, MinHeight, MaxHeight uint32
}

type drmModeGetEncoder struct {
	EncoderID   uint32
	EncoderType uint32
	CrtcID      uint32
	PossibleCrtcs, PossibleClones uint32
}

type drmModeGetConnector struct {
	EncodersPtr, ModesPtr, PropsPtr, PropValuesPtr uint64
	CountModes, CountProps, CountEncoders           uint32
	EncoderID, ConnectorID, ConnectorTypeID          uint32
	ConnectorTypeIDFlag                              uint32
	Connection                                       uint32
	MmWidth, MmHeight                                uint32
	Subpixel                                          uint32
	Pad uint32
}

type drmModeModeInfo struct {
	Clock                                 uint32
	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16
	Vrefresh uint32
	Flags, Type uint32
	Name [32]byte
}

type drmModeCrtc struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CrtcID           uint32
	FbID             uint32
	X, Y             uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             drmModeModeInfo
}

type drmModeGetPlaneRes struct {
	PlaneIDPtr uint64
	CountPlanes uint32
}

type drmModeGetPlane struct {
	PlaneID          uint32
	CrtcID           uint32
	FbID             uint32
	PossibleCrtcs    uint32
	GammaSize        uint32
	CountFormatTypes uint32
	FormatTypePtr    uint64
}

type drmModeFBCmd2 struct {
	FbID          uint32
	Width, Height uint32
	PixelFormat   uint32
	Flags         uint32
	Handles       [4]uint32
	Pitches       [4]uint32
	Offsets       [4]uint32
	Modifier      [4]uint64
}

type drmModeObjGetProperties struct {
	PropsPtr, PropValuesPtr uint64
	CountProps              uint32
	ObjID                   uint32
	ObjType                 uint32
}

type drmModeCreateBlob struct {
	DataPtr uint64
	Length  uint32
	BlobID  uint32
}

type drmModeDestroyBlob struct {
	BlobID uint32
}

type drmModeAtomic struct {
	Flags        uint32
	CountObjs    uint32
	ObjsPtr      uint64
	CountPropsPtr uint64
	PropsPtr     uint64
	PropValuesPtr uint64
	Reserved     uint64
	UserData     uint64
}

// drmEvent and drmEventVblank mirror the kernel's page-flip event framing
// read back from the DRM fd in the presenter's page-flip wait.
type drmEvent struct {
	Type   uint32
	Length uint32
}

type drmEventVblank struct {
	Base          drmEvent
	UserData      uint64
	TvSec, TvUsec uint32
	Sequence      uint32
	CrtcID        uint32
}

const drmEventFlipComplete = 0x02
