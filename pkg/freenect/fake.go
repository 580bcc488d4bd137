package freenect

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// FakeDriver is an in-memory Driver for tests and for running the
// commands without hardware. Each ProcessEvents call emits one synthetic
// frame per started stream, with strictly increasing timestamps.
//
// Error-injection fields must be set before the corresponding call is
// made; they are not safe to mutate while the event pump is running.
type FakeDriver struct {
	// DeviceCount is the number of devices the context reports.
	DeviceCount int

	// InitErr, when set, makes Init fail.
	InitErr error

	mu       sync.Mutex
	contexts []*FakeContext
}

// NewFakeDriver returns a fake driver reporting n connected devices.
func NewFakeDriver(n int) *FakeDriver {
	return &FakeDriver{DeviceCount: n}
}

// Init implements Driver.
func (f *FakeDriver) Init(caps Capabilities) (DriverContext, error) {
	if f.InitErr != nil {
		return nil, f.InitErr
	}
	ctx := &FakeContext{caps: caps}
	for i := 0; i < f.DeviceCount; i++ {
		ctx.devices = append(ctx.devices, &FakeDevice{index: i})
	}
	f.mu.Lock()
	f.contexts = append(f.contexts, ctx)
	f.mu.Unlock()
	return ctx, nil
}

// Context returns the i-th context created by Init.
func (f *FakeDriver) Context(i int) *FakeContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contexts[i]
}

// FakeContext is the driver-context half of FakeDriver.
type FakeContext struct {
	// QueryErr makes NumDevices fail.
	QueryErr error
	// OpenErr makes OpenDevice fail.
	OpenErr error

	caps    Capabilities
	devices []*FakeDevice

	mu       sync.Mutex
	pumpErrs []error
	pumps    int
	shutdown bool
	// pumpedAfterShutdown records the lifecycle violation of the event
	// pump touching a released handle.
	pumpedAfterShutdown bool
}

// Capabilities returns the subsystems selected at Init time.
func (c *FakeContext) Capabilities() Capabilities { return c.caps }

// Device returns the fake device at index without opening it.
func (c *FakeContext) Device(i int) *FakeDevice { return c.devices[i] }

// QueuePumpResult arranges for a future ProcessEvents call to return err
// instead of emitting frames. Results are consumed in FIFO order.
func (c *FakeContext) QueuePumpResult(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pumpErrs = append(c.pumpErrs, err)
}

// PumpCalls returns how many times ProcessEvents has run.
func (c *FakeContext) PumpCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pumps
}

// Shutdown implements DriverContext.
func (c *FakeContext) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
	return nil
}

// ShutdownCalled reports whether Shutdown ran.
func (c *FakeContext) ShutdownCalled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdown
}

// PumpedAfterShutdown reports whether ProcessEvents ran after Shutdown.
func (c *FakeContext) PumpedAfterShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pumpedAfterShutdown
}

// NumDevices implements DriverContext.
func (c *FakeContext) NumDevices() (int, error) {
	if c.QueryErr != nil {
		return 0, c.QueryErr
	}
	return len(c.devices), nil
}

// OpenDevice implements DriverContext.
func (c *FakeContext) OpenDevice(index int) (DriverDevice, error) {
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	if index < 0 || index >= len(c.devices) {
		return nil, fmt.Errorf("fake: no device %d", index)
	}
	return c.devices[index], nil
}

// ProcessEvents implements DriverContext. One call emits one frame per
// started stream on every device, mimicking the synchronous callback
// dispatch of the real pump. The real call blocks on USB traffic, so the
// fake sleeps briefly to keep pump loops from spinning.
func (c *FakeContext) ProcessEvents() error {
	c.mu.Lock()
	c.pumps++
	if c.shutdown {
		c.pumpedAfterShutdown = true
	}
	var err error
	if len(c.pumpErrs) > 0 {
		err = c.pumpErrs[0]
		c.pumpErrs = c.pumpErrs[1:]
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	for _, d := range c.devices {
		d.emit()
	}
	time.Sleep(time.Millisecond)
	return nil
}

// FakeDevice is the driver-device half of FakeDriver. It records mode and
// tilt calls for assertions and can emit synthetic frames on demand.
type FakeDevice struct {
	index int

	// Error injection, set before the corresponding call.
	DepthModeErr  error
	VideoModeErr  error
	StartDepthErr error
	StartVideoErr error
	TiltUpdateErr error
	TiltSetErr    error

	mu sync.Mutex

	depthCB DepthCallback
	videoCB VideoCallback

	depthOn, videoOn bool
	closed           bool

	depthModes []DepthModeCall
	videoModes []VideoModeCall

	tilt      float64
	tiltSets  []float64
	nextStamp uint32

	// Scratch buffers reused across emits, like the real driver reuses
	// its DMA buffers.
	depthBuf []uint16
	videoBuf []byte
}

// DepthModeCall records one SetDepthMode invocation.
type DepthModeCall struct {
	Res    Resolution
	Format DepthFormat
}

// VideoModeCall records one SetVideoMode invocation.
type VideoModeCall struct {
	Res    Resolution
	Format VideoFormat
}

// ErrFakeClosed is returned by fake operations after Close.
var ErrFakeClosed = errors.New("fake: device closed")

// SetDepthMode implements DriverDevice.
func (d *FakeDevice) SetDepthMode(res Resolution, format DepthFormat) error {
	if d.DepthModeErr != nil {
		return d.DepthModeErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthModes = append(d.depthModes, DepthModeCall{Res: res, Format: format})
	return nil
}

// SetVideoMode implements DriverDevice.
func (d *FakeDevice) SetVideoMode(res Resolution, format VideoFormat) error {
	if d.VideoModeErr != nil {
		return d.VideoModeErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.videoModes = append(d.videoModes, VideoModeCall{Res: res, Format: format})
	return nil
}

// DepthModeCalls returns the recorded SetDepthMode arguments.
func (d *FakeDevice) DepthModeCalls() []DepthModeCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DepthModeCall(nil), d.depthModes...)
}

// VideoModeCalls returns the recorded SetVideoMode arguments.
func (d *FakeDevice) VideoModeCalls() []VideoModeCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]VideoModeCall(nil), d.videoModes...)
}

// SetDepthCallback implements DriverDevice.
func (d *FakeDevice) SetDepthCallback(cb DepthCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthCB = cb
}

// SetVideoCallback implements DriverDevice.
func (d *FakeDevice) SetVideoCallback(cb VideoCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.videoCB = cb
}

// HasVideoCallback reports whether a video callback was registered.
func (d *FakeDevice) HasVideoCallback() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.videoCB != nil
}

// StartDepth implements DriverDevice.
func (d *FakeDevice) StartDepth() error {
	if d.StartDepthErr != nil {
		return d.StartDepthErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthOn = true
	return nil
}

// StopDepth implements DriverDevice.
func (d *FakeDevice) StopDepth() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depthOn = false
	return nil
}

// StartVideo implements DriverDevice.
func (d *FakeDevice) StartVideo() error {
	if d.StartVideoErr != nil {
		return d.StartVideoErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.videoOn = true
	return nil
}

// StopVideo implements DriverDevice.
func (d *FakeDevice) StopVideo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.videoOn = false
	return nil
}

// DepthStreaming reports whether depth streaming is started.
func (d *FakeDevice) DepthStreaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.depthOn
}

// VideoStreaming reports whether video streaming is started.
func (d *FakeDevice) VideoStreaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.videoOn
}

// UpdateTiltState implements DriverDevice.
func (d *FakeDevice) UpdateTiltState() error {
	return d.TiltUpdateErr
}

// TiltDegrees implements DriverDevice. The fake echoes the last set value.
func (d *FakeDevice) TiltDegrees() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tilt
}

// SetTiltDegrees implements DriverDevice.
func (d *FakeDevice) SetTiltDegrees(degrees float64) error {
	if d.TiltSetErr != nil {
		return d.TiltSetErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tilt = degrees
	d.tiltSets = append(d.tiltSets, degrees)
	return nil
}

// TiltSetCalls returns the recorded SetTiltDegrees arguments.
func (d *FakeDevice) TiltSetCalls() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]float64(nil), d.tiltSets...)
}

// Close implements DriverDevice.
func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrFakeClosed
	}
	d.closed = true
	return nil
}

// Closed reports whether Close ran.
func (d *FakeDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// EmitDepth synchronously invokes the depth callback with a synthetic
// frame carrying the given timestamp. The backing buffer is reused across
// emits, matching the real driver's buffer contract.
func (d *FakeDevice) EmitDepth(timestamp uint32) {
	d.mu.Lock()
	if d.depthBuf == nil {
		d.depthBuf = make([]uint16, DepthFrameSamples)
	}
	for i := range d.depthBuf {
		d.depthBuf[i] = uint16(timestamp) + uint16(i%2048)
	}
	cb := d.depthCB
	buf := d.depthBuf
	d.mu.Unlock()
	if cb != nil {
		cb(buf, timestamp)
	}
}

// EmitVideo synchronously invokes the video callback with a synthetic
// frame carrying the given timestamp.
func (d *FakeDevice) EmitVideo(timestamp uint32) {
	d.mu.Lock()
	if d.videoBuf == nil {
		d.videoBuf = make([]byte, VideoFrameBytes)
	}
	for i := range d.videoBuf {
		d.videoBuf[i] = byte(timestamp) + byte(i%3)
	}
	cb := d.videoCB
	buf := d.videoBuf
	d.mu.Unlock()
	if cb != nil {
		cb(buf, timestamp)
	}
}

// emit produces one frame per started stream with the next timestamp.
func (d *FakeDevice) emit() {
	d.mu.Lock()
	d.nextStamp++
	ts := d.nextStamp
	depthOn, videoOn := d.depthOn, d.videoOn
	d.mu.Unlock()
	if depthOn {
		d.EmitDepth(ts)
	}
	if videoOn {
		d.EmitVideo(ts)
	}
}
