//go:build freenect

package freenect

/*
#include <libfreenect/libfreenect.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// The exported trampolines below run on the event pump goroutine, called
// synchronously by libfreenect whenever a frame completes. They recover
// the owning device through the cgo.Handle stored as native user data and
// hand the driver-owned buffer to the registered callback. The buffer is
// valid only until the trampoline returns.

//export goKinectDepthCB
func goKinectDepthCB(dev *C.freenect_device, depth unsafe.Pointer, timestamp C.uint32_t) {
	h := cgo.Handle(C.freenect_get_user(dev))
	d := h.Value().(*libDevice)
	data := unsafe.Slice((*uint16)(depth), DepthFrameSamples)
	d.dispatchDepth(data, uint32(timestamp))
}

//export goKinectVideoCB
func goKinectVideoCB(dev *C.freenect_device, video unsafe.Pointer, timestamp C.uint32_t) {
	h := cgo.Handle(C.freenect_get_user(dev))
	d := h.Value().(*libDevice)
	data := unsafe.Slice((*byte)(video), VideoFrameBytes)
	d.dispatchVideo(data, uint32(timestamp))
}
