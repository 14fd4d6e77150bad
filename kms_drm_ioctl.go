// kms_drm_ioctl.go - thin wrappers issuing the DRM_IOCTL_MODE_* calls
// defined in kms_types.go via raw unix.Syscall, plus the poll(2)-based
// page-flip wait from spec.md §4.4's frame loop.
package main

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

func drmIoctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func drmOpenCard(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	return fd, nil
}

func drmSetClientCapability(fd int, cap uint64, value uint64) error {
	req := drmSetClientCap{Capability: cap, Value: value}
	return drmIoctl(fd, drmIoctlSetClientCap, unsafe.Pointer(&req))
}

// drmGetResources returns the connector, encoder, and crtc id lists for the
// node at fd. Two-pass: the first ioctl fills in counts, the second fills
// the buffers the counts sized.
func drmGetResources(fd int) (connectorIDs, encoderIDs, crtcIDs []uint32, err error) {
	var res drmModeCardRes
	if err = drmIoctl(fd, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, nil, err
	}
	connectorIDs = make([]uint32, res.CountConnectors)
	encoderIDs = make([]uint32, res.CountEncoders)
	crtcIDs = make([]uint32, res.CountCrtcs)
	res.ConnectorIDPtr = ptrToU64(connectorIDs)
	res.EncoderIDPtr = ptrToU64(encoderIDs)
	res.CrtcIDPtr = ptrToU64(crtcIDs)
	if err = drmIoctl(fd, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, nil, nil, err
	}
	return connectorIDs, encoderIDs, crtcIDs, nil
}

func ptrToU64[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

// drmGetConnector fetches a connector's state, mode list, and encoder id.
// Returns connected=false if the connector has nothing plugged in.
func drmGetConnector(fd int, connectorID uint32) (connected bool, encoderID uint32, modes []drmModeModeInfo, err error) {
	var conn drmModeGetConnector
	conn.ConnectorID = connectorID
	if err = drmIoctl(fd, drmIoctlModeGetConnector, unsafe.Pointer(&conn)); err != nil {
		return false, 0, nil, err
	}
	if conn.Connection != drmModeConnected || conn.CountModes == 0 {
		return false, 0, nil, nil
	}
	modes = make([]drmModeModeInfo, conn.CountModes)
	conn.ModesPtr = ptrToU64(modes)
	if err = drmIoctl(fd, drmIoctlModeGetConnector, unsafe.Pointer(&conn)); err != nil {
		return false, 0, nil, err
	}
	return true, conn.EncoderID, modes, nil
}

func drmGetEncoderCrtc(fd int, encoderID uint32) (crtcID uint32, err error) {
	var enc drmModeGetEncoder
	enc.EncoderID = encoderID
	if err = drmIoctl(fd, drmIoctlModeGetEncoder, unsafe.Pointer(&enc)); err != nil {
		return 0, err
	}
	return enc.CrtcID, nil
}

// drmGetPlaneForCrtc returns the first plane whose PossibleCrtcs mask
// includes crtcIndex. Each plane's "type" and IN_FORMATS properties are not
// read, so the returned plane is not checked to be a primary plane.
func drmGetPlaneForCrtc(fd int, crtcIndex uint32) (planeID uint32, err error) {
	var res drmModeGetPlaneRes
	if err = drmIoctl(fd, drmIoctlModeGetPlaneRes, unsafe.Pointer(&res)); err != nil {
		return 0, err
	}
	planeIDs := make([]uint32, res.CountPlanes)
	res.PlaneIDPtr = ptrToU64(planeIDs)
	if err = drmIoctl(fd, drmIoctlModeGetPlaneRes, unsafe.Pointer(&res)); err != nil {
		return 0, err
	}
	for _, id := range planeIDs {
		var p drmModeGetPlane
		p.PlaneID = id
		if err = drmIoctl(fd, drmIoctlModeGetPlane, unsafe.Pointer(&p)); err != nil {
			continue
		}
		if p.PossibleCrtcs&(1<<crtcIndex) != 0 {
			return id, nil
		}
	}
	return 0, fmt.Errorf("no plane usable with crtc index %d", crtcIndex)
}

func drmCreatePropertyBlob(fd int, data []byte) (blobID uint32, err error) {
	req := drmModeCreateBlob{DataPtr: ptrToU64(data), Length: uint32(len(data))}
	if err = drmIoctl(fd, drmIoctlModeCreatePropBlob, unsafe.Pointer(&req)); err != nil {
		return 0, err
	}
	return req.BlobID, nil
}

func drmDestroyPropertyBlob(fd int, blobID uint32) error {
	req := drmModeDestroyBlob{BlobID: blobID}
	return drmIoctl(fd, drmIoctlModeDestroyPropBlob, unsafe.Pointer(&req))
}

func drmAddFB2(fd int, width, height, handle, stride uint32) (fbID uint32, err error) {
	req := drmModeFBCmd2{
		Width: width, Height: height, PixelFormat: drmFormatXRGB8888,
		Handles: [4]uint32{handle}, Pitches: [4]uint32{stride},
	}
	if err = drmIoctl(fd, drmIoctlModeAddFB2, unsafe.Pointer(&req)); err != nil {
		return 0, err
	}
	return req.FbID, nil
}

// atomicProperty is one (object, property, value) triple for a single
// atomic commit, per spec.md §4.4's "atomic commit flags ... with all
// properties" description.
type atomicProperty struct {
	ObjID, PropID uint32
	Value         uint64
}

func drmAtomicCommit(fd int, props []atomicProperty, flags uint32, userData uint64) error {
	objIDs := make([]uint32, 0, len(props))
	counts := make([]uint32, 0)
	propIDs := make([]uint32, 0, len(props))
	values := make([]uint64, 0, len(props))

	seen := map[uint32]int{}
	for _, p := range props {
		if idx, ok := seen[p.ObjID]; ok {
			counts[idx]++
		} else {
			seen[p.ObjID] = len(objIDs)
			objIDs = append(objIDs, p.ObjID)
			counts = append(counts, 1)
		}
		propIDs = append(propIDs, p.PropID)
		values = append(values, p.Value)
	}

	req := drmModeAtomic{
		Flags:         flags,
		CountObjs:     uint32(len(objIDs)),
		ObjsPtr:       ptrToU64(objIDs),
		CountPropsPtr: ptrToU64(counts),
		PropsPtr:      ptrToU64(propIDs),
		PropValuesPtr: ptrToU64(values),
		UserData:      userData,
	}
	return drmIoctl(fd, drmIoctlModeAtomic, unsafe.Pointer(&req))
}

// drmObjProperties returns the property ID list for a KMS object, in kernel
// enumeration order.
func drmObjProperties(fd int, objID, objType uint32) ([]uint32, error) {
	req := drmModeObjGetProperties{ObjID: objID, ObjType: objType}
	if err := drmIoctl(fd, drmIoctlModeObjGetProps, unsafe.Pointer(&req)); err != nil {
		return nil, err
	}
	propIDs := make([]uint32, req.CountProps)
	values := make([]uint64, req.CountProps)
	req.PropsPtr = ptrToU64(propIDs)
	req.PropValuesPtr = ptrToU64(values)
	if err := drmIoctl(fd, drmIoctlModeObjGetProps, unsafe.Pointer(&req)); err != nil {
		return nil, err
	}
	return propIDs, nil
}

// drmWaitPageFlip blocks on fd, with no timeout, until a page-flip
// completion event arrives, retrying on EINTR as spec.md §4.4 requires.
func drmWaitPageFlip(fd int) error {
	for {
		var fds [1]unix.PollFd
		fds[0].Fd = int32(fd)
		fds[0].Events = unix.POLLIN
		_, err := unix.Poll(fds[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		buf := make([]byte, 1024)
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n >= int(unsafe.Sizeof(drmEventVblank{})) {
			return nil
		}
	}
}
