package freenect

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teslashibe/go-kinect/internal/log"
)

// Context is the top-level handle to a native driver session. It owns the
// event pump goroutine; all frame callbacks run on that goroutine.
//
// At most one pump runs per Context at any time.
type Context struct {
	drv  DriverContext
	caps Capabilities

	// mu serializes StartProcessing/StopProcessing so they cannot race.
	mu   sync.Mutex
	stop chan struct{} // non-nil while a pump has been started
	done chan struct{} // closed when the pump goroutine exits
}

// Init allocates a driver context with the given subsystems selected.
func Init(d Driver, caps Capabilities) (*Context, error) {
	drv, err := d.Init(caps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDriverInit, err)
	}
	return &Context{drv: drv, caps: caps}, nil
}

// InitWithCamera initializes a context for fetching depth and video data.
func InitWithCamera(d Driver) (*Context, error) {
	return Init(d, CapsCamera)
}

// InitWithCameraMotor initializes a context for fetching depth and video
// data and controlling the tilt motor.
func InitWithCameraMotor(d Driver) (*Context, error) {
	return Init(d, CapsCameraMotor)
}

// Capabilities returns the subsystems this context was initialized with.
func (c *Context) Capabilities() Capabilities { return c.caps }

// NumDevices returns the number of connected sensor units.
func (c *Context) NumDevices() (int, error) {
	n, err := c.drv.NumDevices()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDriverQuery, err)
	}
	return n, nil
}

// OpenDevice opens the sensor unit at index. The returned Device must be
// closed before the Context is.
func (c *Context) OpenDevice(index int) (*Device, error) {
	n, err := c.NumDevices()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("%w: index %d, %d connected", ErrDeviceNotFound, index, n)
	}
	drv, err := c.drv.OpenDevice(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", ErrDriverOpen, index, err)
	}
	return newDevice(c, drv, index), nil
}

// StartProcessing starts the event pump goroutine. It fails with
// ErrAlreadyRunning while a pump is live; a pump that exited on its own
// after a fatal driver error may be restarted.
func (c *Context) StartProcessing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		select {
		case <-c.done:
			// Previous pump exited on its own; allow a restart.
		default:
			return ErrAlreadyRunning
		}
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.processLoop(c.stop, c.done)
	return nil
}

// processLoop pumps driver events until stopped or a fatal error occurs.
func (c *Context) processLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	log.Debug("freenect: event pump started")
	for {
		select {
		case <-stop:
			log.Debug("freenect: event pump stopped")
			return
		default:
		}
		if err := c.drv.ProcessEvents(); err != nil {
			if errors.Is(err, ErrPumpInterrupted) {
				// Interrupted system call inside the driver; pump again.
				continue
			}
			log.Error("freenect: event pump failed", "error", err)
			return
		}
	}
}

// StopProcessing signals the event pump to exit and waits for it. It is a
// no-op when no pump is running. Shutdown latency is bounded by the
// duration of one ProcessEvents call.
func (c *Context) StopProcessing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}
	select {
	case <-c.stop:
		// Already signalled by an earlier stop.
	default:
		close(c.stop)
	}
	<-c.done
	c.stop, c.done = nil, nil
	return nil
}

// Close stops the event pump and releases the native context, in that
// order: the pump must stop touching the handle before it is released.
// Devices opened from this context must already be closed.
func (c *Context) Close() error {
	if err := c.StopProcessing(); err != nil {
		return err
	}
	return c.drv.Shutdown()
}
