package freenect

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/teslashibe/go-kinect/internal/log"
)

// Device is one opened sensor unit. It tracks at most one live depth
// stream and one live video stream; the per-kind sender slots are guarded
// by mu, which is held only for the check-and-set (never across a
// blocking operation).
type Device struct {
	ctx   *Context
	drv   DriverDevice
	index int
	id    string // correlates log lines across goroutines

	mu      sync.Mutex
	depthCh chan DepthFrame // nil unless a depth stream is live
	videoCh chan VideoFrame // nil unless a video stream is live

	depthDelivered atomic.Uint64
	depthDropped   atomic.Uint64
	videoDelivered atomic.Uint64
	videoDropped   atomic.Uint64
}

// Stats is a snapshot of per-device frame delivery counters.
type Stats struct {
	DepthDelivered uint64 `json:"depth_delivered"`
	DepthDropped   uint64 `json:"depth_dropped"`
	VideoDelivered uint64 `json:"video_delivered"`
	VideoDropped   uint64 `json:"video_dropped"`
}

func newDevice(ctx *Context, drv DriverDevice, index int) *Device {
	d := &Device{
		ctx:   ctx,
		drv:   drv,
		index: index,
		id:    uuid.NewString(),
	}
	// The bridge closures run on the event pump goroutine.
	drv.SetDepthCallback(d.onDepthFrame)
	if ctx.caps.HasCamera() {
		drv.SetVideoCallback(d.onVideoFrame)
	}
	return d
}

// Index returns the enumeration index this device was opened with.
func (d *Device) Index() int { return d.index }

// ID returns an opaque identifier used to correlate log lines.
func (d *Device) ID() string { return d.id }

// Stats returns a snapshot of the frame delivery counters.
func (d *Device) Stats() Stats {
	return Stats{
		DepthDelivered: d.depthDelivered.Load(),
		DepthDropped:   d.depthDropped.Load(),
		VideoDelivered: d.videoDelivered.Load(),
		VideoDropped:   d.videoDropped.Load(),
	}
}

// SetDepthMode applies a resolution/format pair to the depth camera.
func (d *Device) SetDepthMode(res Resolution, format DepthFormat) error {
	if err := d.drv.SetDepthMode(res, format); err != nil {
		return fmt.Errorf("%w: depth %s/%s: %v", ErrUnsupportedMode, res, format, err)
	}
	return nil
}

// SetVideoMode applies a resolution/format pair to the video camera.
func (d *Device) SetVideoMode(res Resolution, format VideoFormat) error {
	if err := d.drv.SetVideoMode(res, format); err != nil {
		return fmt.Errorf("%w: video %s/%s: %v", ErrUnsupportedMode, res, format, err)
	}
	return nil
}

// DepthStream starts depth streaming and returns the consumer handle.
// Only one depth stream may be live per device.
func (d *Device) DepthStream() (*DepthStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.depthCh != nil {
		return nil, fmt.Errorf("%w: depth", ErrStreamAlreadyOpen)
	}
	if err := d.drv.StartDepth(); err != nil {
		return nil, fmt.Errorf("%w: depth: %v", ErrStreamStart, err)
	}
	ch := make(chan DepthFrame, streamBuffer)
	d.depthCh = ch
	log.Debug("freenect: depth stream opened", "device", d.id)
	return newStream(ch, d.closeDepthStream), nil
}

// VideoStream starts video streaming and returns the consumer handle.
// Requires a context initialized with the camera capability; only one
// video stream may be live per device.
func (d *Device) VideoStream() (*VideoStream, error) {
	if !d.ctx.caps.HasCamera() {
		return nil, ErrVideoUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.videoCh != nil {
		return nil, fmt.Errorf("%w: video", ErrStreamAlreadyOpen)
	}
	if err := d.drv.StartVideo(); err != nil {
		return nil, fmt.Errorf("%w: video: %v", ErrStreamStart, err)
	}
	ch := make(chan VideoFrame, streamBuffer)
	d.videoCh = ch
	log.Debug("freenect: video stream opened", "device", d.id)
	return newStream(ch, d.closeVideoStream), nil
}

// closeDepthStream clears the sender slot and stops native streaming.
// Idempotent: only the call that clears the slot issues the native stop.
func (d *Device) closeDepthStream() error {
	d.mu.Lock()
	ch := d.depthCh
	d.depthCh = nil
	if ch != nil {
		close(ch)
	}
	d.mu.Unlock()
	if ch == nil {
		return nil
	}
	log.Debug("freenect: depth stream closed", "device", d.id)
	return d.drv.StopDepth()
}

func (d *Device) closeVideoStream() error {
	d.mu.Lock()
	ch := d.videoCh
	d.videoCh = nil
	if ch != nil {
		close(ch)
	}
	d.mu.Unlock()
	if ch == nil {
		return nil
	}
	log.Debug("freenect: video stream closed", "device", d.id)
	return d.drv.StopVideo()
}

// TiltDegrees refreshes the motor state and returns the tilt angle.
func (d *Device) TiltDegrees() (float64, error) {
	if err := d.drv.UpdateTiltState(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTiltQuery, err)
	}
	return d.drv.TiltDegrees(), nil
}

// SetTiltDegrees requests a new tilt angle. Out-of-range values are passed
// through; the motor firmware applies its own limits.
func (d *Device) SetTiltDegrees(degrees float64) error {
	if err := d.drv.SetTiltDegrees(degrees); err != nil {
		return fmt.Errorf("%w: %.1f deg: %v", ErrTiltSet, degrees, err)
	}
	return nil
}

// Close tears down any live streams and releases the native device
// handle. Streams created from this device are unusable afterwards.
func (d *Device) Close() error {
	// Streams must stop before the handle is released.
	if err := d.closeDepthStream(); err != nil {
		log.Warn("freenect: stopping depth stream on close", "device", d.id, "error", err)
	}
	if err := d.closeVideoStream(); err != nil {
		log.Warn("freenect: stopping video stream on close", "device", d.id, "error", err)
	}
	return d.drv.Close()
}

// onDepthFrame is the callback bridge for depth frames. It runs on the
// event pump goroutine every time the driver completes a depth frame.
//
// The driver-owned buffer is copied before it crosses the channel: the
// driver starts overwriting it as soon as the next frame begins.
// A full channel drops the frame: a live sensor feed is worth more
// fresh than complete, and the pump must never wait on a slow consumer.
func (d *Device) onDepthFrame(data []uint16, timestamp uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.depthCh == nil {
		// Stream torn down; nothing to deliver.
		return
	}
	frame := DepthFrame{
		Data:      append([]uint16(nil), data...),
		Timestamp: timestamp,
	}
	select {
	case d.depthCh <- frame:
		d.depthDelivered.Add(1)
	default:
		d.depthDropped.Add(1)
		log.Debug("freenect: depth frame dropped", "device", d.id, "timestamp", timestamp)
	}
}

// onVideoFrame is the callback bridge for video frames. Same contract as
// onDepthFrame.
func (d *Device) onVideoFrame(data []byte, timestamp uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.videoCh == nil {
		return
	}
	frame := VideoFrame{
		Data:      append([]byte(nil), data...),
		Timestamp: timestamp,
	}
	select {
	case d.videoCh <- frame:
		d.videoDelivered.Add(1)
	default:
		d.videoDropped.Add(1)
		log.Debug("freenect: video frame dropped", "device", d.id, "timestamp", timestamp)
	}
}
