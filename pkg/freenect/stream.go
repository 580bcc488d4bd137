package freenect

import "sync"

// streamBuffer bounds each stream's channel. Two frames of slack absorbs
// consumer jitter; anything older is dropped in favor of fresher data.
const streamBuffer = 2

// DepthFrame is one completed depth frame. Data holds 640x480 16-bit
// samples whose unit depends on the configured DepthFormat (millimeters
// for DepthMM). Timestamp is a driver tick: monotonically increasing per
// stream, not wall-clock-calibrated.
type DepthFrame struct {
	Data      []uint16
	Timestamp uint32
}

// VideoFrame is one completed video frame. Data holds 640x480 pixels at
// 3 bytes each in the configured VideoFormat (RGB by default).
type VideoFrame struct {
	Data      []byte
	Timestamp uint32
}

// Stream is the consumer-facing handle for one kind of frame. Frames
// arrive in driver production order. Closing the stream stops native
// streaming and frees the device's slot so a new stream of the same kind
// can be opened.
type Stream[F any] struct {
	frames <-chan F
	stop   func() error

	once sync.Once
	err  error
}

// DepthStream delivers timestamped depth frames.
type DepthStream = Stream[DepthFrame]

// VideoStream delivers timestamped video frames.
type VideoStream = Stream[VideoFrame]

func newStream[F any](frames <-chan F, stop func() error) *Stream[F] {
	return &Stream[F]{frames: frames, stop: stop}
}

// Frames exposes the receive channel for use in select loops. The channel
// is closed when the stream is torn down.
func (s *Stream[F]) Frames() <-chan F { return s.frames }

// Recv blocks until the next frame arrives. It returns ErrStreamClosed
// once the stream has been torn down and the buffer drained.
func (s *Stream[F]) Recv() (F, error) {
	f, ok := <-s.frames
	if !ok {
		var zero F
		return zero, ErrStreamClosed
	}
	return f, nil
}

// TryRecv returns the oldest buffered frame without blocking. The second
// result is false when no frame is available or the stream is closed.
func (s *Stream[F]) TryRecv() (F, bool) {
	select {
	case f, ok := <-s.frames:
		if !ok {
			var zero F
			return zero, false
		}
		return f, true
	default:
		var zero F
		return zero, false
	}
}

// Close stops native streaming for this kind and clears the device's
// sender slot. Safe to call more than once; later calls return the first
// outcome.
func (s *Stream[F]) Close() error {
	s.once.Do(func() { s.err = s.stop() })
	return s.err
}
