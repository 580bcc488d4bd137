package freenect

// Driver abstracts the native library entry point so the binding can run
// against the real libfreenect (build tag "freenect") or the in-memory
// FakeDriver.
type Driver interface {
	// Init allocates a native driver context with the given subsystems
	// selected.
	Init(caps Capabilities) (DriverContext, error)
}

// DriverContext is one native driver session.
type DriverContext interface {
	// NumDevices returns the number of connected sensor units.
	NumDevices() (int, error)

	// OpenDevice opens the device at index. The index has already been
	// bounds-checked by the caller.
	OpenDevice(index int) (DriverDevice, error)

	// ProcessEvents pumps one batch of driver events. It blocks until the
	// batch completes and may synchronously invoke zero or more frame
	// callbacks before returning. A return of ErrPumpInterrupted is benign
	// and the caller should pump again; any other error is fatal to the
	// pump.
	ProcessEvents() error

	// Shutdown releases the native context. The event pump must have
	// stopped before this is called.
	Shutdown() error
}

// DepthCallback receives one completed depth frame. The slice aliases a
// driver-owned buffer and is valid only for the duration of the call; the
// driver will overwrite it with the next frame.
type DepthCallback func(data []uint16, timestamp uint32)

// VideoCallback receives one completed video frame under the same buffer
// contract as DepthCallback.
type VideoCallback func(data []byte, timestamp uint32)

// DriverDevice is one opened sensor unit. Callback registration must
// happen before the corresponding start call.
type DriverDevice interface {
	SetDepthMode(res Resolution, format DepthFormat) error
	SetVideoMode(res Resolution, format VideoFormat) error

	SetDepthCallback(cb DepthCallback)
	SetVideoCallback(cb VideoCallback)

	StartDepth() error
	StopDepth() error
	StartVideo() error
	StopVideo() error

	// UpdateTiltState refreshes the cached motor state from the hardware.
	UpdateTiltState() error
	// TiltDegrees reads the cached tilt angle.
	TiltDegrees() float64
	// SetTiltDegrees requests a new tilt angle. No clamping happens at
	// this layer; the motor firmware applies its own limits.
	SetTiltDegrees(degrees float64) error

	// Close releases the native device handle.
	Close() error
}
