//go:build freenect

package freenect

/*
#cgo pkg-config: libfreenect
#include <stdlib.h>
#include <libfreenect/libfreenect.h>

void goKinectDepthCB(freenect_device *dev, void *depth, uint32_t timestamp);
void goKinectVideoCB(freenect_device *dev, void *video, uint32_t timestamp);

static void go_kinect_install_depth_cb(freenect_device *dev) {
	freenect_set_depth_callback(dev, goKinectDepthCB);
}

static void go_kinect_install_video_cb(freenect_device *dev) {
	freenect_set_video_callback(dev, goKinectVideoCB);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"sync"
	"unsafe"
)

// libusbErrInterrupted is LIBUSB_ERROR_INTERRUPTED: a signal interrupted a
// system call inside the driver. The pump should simply retry.
const libusbErrInterrupted = -10

// LibfreenectDriver binds to the real libfreenect library. Build with
// -tags freenect and libfreenect development headers installed.
type LibfreenectDriver struct{}

// DefaultDriver returns the libfreenect-backed driver.
func DefaultDriver() (Driver, error) {
	return LibfreenectDriver{}, nil
}

// Init implements Driver.
func (LibfreenectDriver) Init(caps Capabilities) (DriverContext, error) {
	var ctx *C.freenect_context
	if C.freenect_init(&ctx, nil) < 0 {
		return nil, fmt.Errorf("freenect_init failed")
	}
	C.freenect_select_subdevices(ctx, C.freenect_device_flags(caps))
	return &libContext{ctx: ctx}, nil
}

type libContext struct {
	ctx *C.freenect_context
}

func (c *libContext) NumDevices() (int, error) {
	n := C.freenect_num_devices(c.ctx)
	if n < 0 {
		return 0, fmt.Errorf("freenect_num_devices returned %d", int(n))
	}
	return int(n), nil
}

func (c *libContext) OpenDevice(index int) (DriverDevice, error) {
	var dev *C.freenect_device
	if C.freenect_open_device(c.ctx, &dev, C.int(index)) < 0 {
		return nil, fmt.Errorf("freenect_open_device(%d) failed", index)
	}
	d := &libDevice{dev: dev}
	// The cgo.Handle is the typed registry behind the native user-data
	// pointer: callbacks resolve it back to the owning *libDevice without
	// pointer arithmetic.
	d.handle = cgo.NewHandle(d)
	C.freenect_set_user(dev, unsafe.Pointer(d.handle))
	return d, nil
}

func (c *libContext) ProcessEvents() error {
	res := C.freenect_process_events(c.ctx)
	switch {
	case res == libusbErrInterrupted:
		return ErrPumpInterrupted
	case res < 0:
		return fmt.Errorf("freenect_process_events returned %d", int(res))
	}
	return nil
}

func (c *libContext) Shutdown() error {
	if C.freenect_shutdown(c.ctx) < 0 {
		return fmt.Errorf("freenect_shutdown failed")
	}
	return nil
}

type libDevice struct {
	dev    *C.freenect_device
	handle cgo.Handle

	mu      sync.Mutex
	depthCB DepthCallback
	videoCB VideoCallback
}

func (d *libDevice) SetDepthMode(res Resolution, format DepthFormat) error {
	mode := C.freenect_find_depth_mode(
		C.freenect_resolution(res), C.freenect_depth_format(format))
	if C.freenect_set_depth_mode(d.dev, mode) < 0 {
		return fmt.Errorf("freenect_set_depth_mode(%s, %s) failed", res, format)
	}
	return nil
}

func (d *libDevice) SetVideoMode(res Resolution, format VideoFormat) error {
	mode := C.freenect_find_video_mode(
		C.freenect_resolution(res), C.freenect_video_format(format))
	if C.freenect_set_video_mode(d.dev, mode) < 0 {
		return fmt.Errorf("freenect_set_video_mode(%s, %s) failed", res, format)
	}
	return nil
}

func (d *libDevice) SetDepthCallback(cb DepthCallback) {
	d.mu.Lock()
	d.depthCB = cb
	d.mu.Unlock()
	C.go_kinect_install_depth_cb(d.dev)
}

func (d *libDevice) SetVideoCallback(cb VideoCallback) {
	d.mu.Lock()
	d.videoCB = cb
	d.mu.Unlock()
	C.go_kinect_install_video_cb(d.dev)
}

func (d *libDevice) StartDepth() error {
	if C.freenect_start_depth(d.dev) < 0 {
		return fmt.Errorf("freenect_start_depth failed")
	}
	return nil
}

func (d *libDevice) StopDepth() error {
	if C.freenect_stop_depth(d.dev) < 0 {
		return fmt.Errorf("freenect_stop_depth failed")
	}
	return nil
}

func (d *libDevice) StartVideo() error {
	if C.freenect_start_video(d.dev) < 0 {
		return fmt.Errorf("freenect_start_video failed")
	}
	return nil
}

func (d *libDevice) StopVideo() error {
	if C.freenect_stop_video(d.dev) < 0 {
		return fmt.Errorf("freenect_stop_video failed")
	}
	return nil
}

func (d *libDevice) UpdateTiltState() error {
	if C.freenect_update_tilt_state(d.dev) < 0 {
		return fmt.Errorf("freenect_update_tilt_state failed")
	}
	return nil
}

func (d *libDevice) TiltDegrees() float64 {
	state := C.freenect_get_tilt_state(d.dev)
	return float64(C.freenect_get_tilt_degs(state))
}

func (d *libDevice) SetTiltDegrees(degrees float64) error {
	if C.freenect_set_tilt_degs(d.dev, C.double(degrees)) < 0 {
		return fmt.Errorf("freenect_set_tilt_degs(%.1f) failed", degrees)
	}
	return nil
}

func (d *libDevice) Close() error {
	res := C.freenect_close_device(d.dev)
	d.handle.Delete()
	if res < 0 {
		return fmt.Errorf("freenect_close_device failed")
	}
	return nil
}

func (d *libDevice) dispatchDepth(data []uint16, timestamp uint32) {
	d.mu.Lock()
	cb := d.depthCB
	d.mu.Unlock()
	if cb != nil {
		cb(data, timestamp)
	}
}

func (d *libDevice) dispatchVideo(data []byte, timestamp uint32) {
	d.mu.Lock()
	cb := d.videoCB
	d.mu.Unlock()
	if cb != nil {
		cb(data, timestamp)
	}
}
