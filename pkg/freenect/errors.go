package freenect

import "errors"

// Sentinel errors for every fallible operation. Native failures are
// converted at the boundary into one of these and wrapped with a
// human-readable reason; classify with errors.Is.
var (
	// ErrDriverInit is returned when the native driver context cannot be allocated.
	ErrDriverInit = errors.New("freenect: unable to initialize driver context")

	// ErrDriverQuery is returned when device enumeration fails.
	ErrDriverQuery = errors.New("freenect: unable to query devices")

	// ErrDeviceNotFound is returned when the device index is out of range.
	ErrDeviceNotFound = errors.New("freenect: device not found")

	// ErrDriverOpen is returned when the native device open call fails.
	ErrDriverOpen = errors.New("freenect: unable to open device")

	// ErrUnsupportedMode is returned when the native mode lookup or apply fails.
	ErrUnsupportedMode = errors.New("freenect: unsupported mode")

	// ErrStreamAlreadyOpen is returned when a stream of the same kind is live.
	ErrStreamAlreadyOpen = errors.New("freenect: stream already open")

	// ErrStreamStart is returned when the native start-streaming call fails.
	ErrStreamStart = errors.New("freenect: unable to start stream")

	// ErrVideoUnsupported is returned by VideoStream when the context was
	// initialized without the camera capability.
	ErrVideoUnsupported = errors.New("freenect: context initialized without camera support")

	// ErrTiltQuery is returned when refreshing or reading the tilt state fails.
	ErrTiltQuery = errors.New("freenect: unable to read tilt state")

	// ErrTiltSet is returned when the native tilt-set call fails.
	ErrTiltSet = errors.New("freenect: unable to set tilt angle")

	// ErrAlreadyRunning is returned by StartProcessing while the event pump
	// is live.
	ErrAlreadyRunning = errors.New("freenect: event pump already running")

	// ErrStreamClosed is returned by Recv after the stream is torn down.
	ErrStreamClosed = errors.New("freenect: stream closed")

	// ErrPumpInterrupted is the benign "interrupted system call" result a
	// DriverContext may return from ProcessEvents. The event pump swallows
	// it and keeps going; any other error stops the pump.
	ErrPumpInterrupted = errors.New("freenect: event pump interrupted")
)
