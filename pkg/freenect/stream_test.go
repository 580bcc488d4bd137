package freenect

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDepthStream_OnlyOneLive(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	first, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	if !fdev.DepthStreaming() {
		t.Error("native depth streaming not started")
	}

	if _, err := dev.DepthStream(); !errors.Is(err, ErrStreamAlreadyOpen) {
		t.Errorf("second DepthStream = %v, want ErrStreamAlreadyOpen", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fdev.DepthStreaming() {
		t.Error("native depth streaming still on after close")
	}

	// The slot is free again.
	second, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream after close = %v, want nil", err)
	}
	second.Close()
}

func TestVideoStream_OnlyOneLive(t *testing.T) {
	dev, _ := newTestDevice(t, CapsCamera)

	first, err := dev.VideoStream()
	if err != nil {
		t.Fatalf("VideoStream: %v", err)
	}
	if _, err := dev.VideoStream(); !errors.Is(err, ErrStreamAlreadyOpen) {
		t.Errorf("second VideoStream = %v, want ErrStreamAlreadyOpen", err)
	}
	first.Close()

	second, err := dev.VideoStream()
	if err != nil {
		t.Fatalf("VideoStream after close = %v, want nil", err)
	}
	second.Close()
}

func TestStream_StartFailureLeavesSlotEmpty(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	fdev.StartDepthErr = errors.New("iso stream refused")
	if _, err := dev.DepthStream(); !errors.Is(err, ErrStreamStart) {
		t.Fatalf("DepthStream = %v, want ErrStreamStart", err)
	}

	// The failed open must not occupy the slot.
	fdev.StartDepthErr = nil
	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream after failure = %v, want nil", err)
	}
	stream.Close()
}

func TestRecv_DeliversInProductionOrder(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	defer stream.Close()

	// Interleave emits and receives so the consumer never falls behind.
	var got []uint32
	for ts := uint32(1); ts <= 10; ts += 2 {
		fdev.EmitDepth(ts)
		fdev.EmitDepth(ts + 1)
		for i := 0; i < 2; i++ {
			frame, err := stream.Recv()
			if err != nil {
				t.Fatalf("Recv: %v", err)
			}
			got = append(got, frame.Timestamp)
		}
	}

	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("timestamps out of order or duplicated: %v", got)
		}
	}
	if len(got) != 10 {
		t.Errorf("received %d frames, want 10", len(got))
	}
}

func TestBackpressure_DropsInsteadOfBlocking(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	defer stream.Close()

	// Nothing drains the stream: the producer must stay non-blocking and
	// never buffer more than the channel capacity.
	for ts := uint32(1); ts <= 50; ts++ {
		fdev.EmitDepth(ts)
	}

	var buffered int
	for {
		if _, ok := stream.TryRecv(); !ok {
			break
		}
		buffered++
	}
	if buffered != streamBuffer {
		t.Errorf("buffered %d frames, want %d", buffered, streamBuffer)
	}

	stats := dev.Stats()
	if stats.DepthDelivered != uint64(streamBuffer) {
		t.Errorf("delivered = %d, want %d", stats.DepthDelivered, streamBuffer)
	}
	if stats.DepthDropped != uint64(50-streamBuffer) {
		t.Errorf("dropped = %d, want %d", stats.DepthDropped, 50-streamBuffer)
	}
}

func TestRecv_BlocksUntilFrameArrives(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	defer stream.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	var frame DepthFrame
	var recvErr error
	go func() {
		defer wg.Done()
		frame, recvErr = stream.Recv()
	}()

	time.Sleep(10 * time.Millisecond)
	fdev.EmitDepth(42)
	wg.Wait()

	if recvErr != nil {
		t.Fatalf("Recv: %v", recvErr)
	}
	if frame.Timestamp != 42 {
		t.Errorf("timestamp = %d, want 42", frame.Timestamp)
	}
	if len(frame.Data) != DepthFrameSamples {
		t.Errorf("frame has %d samples, want %d", len(frame.Data), DepthFrameSamples)
	}
}

func TestClose_UnblocksRecv(t *testing.T) {
	dev, _ := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var recvErr error
	go func() {
		defer wg.Done()
		_, recvErr = stream.Recv()
	}()

	time.Sleep(10 * time.Millisecond)
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	if !errors.Is(recvErr, ErrStreamClosed) {
		t.Errorf("Recv after close = %v, want ErrStreamClosed", recvErr)
	}

	// Closing again is safe and returns the first outcome.
	if err := stream.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestCallbackAfterClose_IsNoOp(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A callback racing the teardown finds an empty slot and must neither
	// panic nor count the frame.
	fdev.EmitDepth(99)

	stats := dev.Stats()
	if stats.DepthDelivered != 0 || stats.DepthDropped != 0 {
		t.Errorf("stats after post-close callback = %+v, want zeros", stats)
	}
}

func TestFrameData_IsCopiedOutOfDriverBuffer(t *testing.T) {
	dev, fdev := newTestDevice(t, CapsCamera)

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	defer stream.Close()

	// The fake reuses its backing buffer across emits, like the real
	// driver. The first frame must survive the second emit intact.
	fdev.EmitDepth(100)
	fdev.EmitDepth(200)

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}

	if first.Data[0] != 100 {
		t.Errorf("first frame sample = %d, want 100 (overwritten by driver buffer reuse?)", first.Data[0])
	}
	if second.Data[0] != 200 {
		t.Errorf("second frame sample = %d, want 200", second.Data[0])
	}
}

func TestPump_DeliversFramesEndToEnd(t *testing.T) {
	driver := NewFakeDriver(1)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Close()

	dev, err := ctx.OpenDevice(0)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	stream, err := dev.DepthStream()
	if err != nil {
		t.Fatalf("DepthStream: %v", err)
	}
	defer stream.Close()

	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	defer ctx.StopProcessing()

	frame, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if len(frame.Data) != DepthFrameSamples {
		t.Errorf("frame has %d samples, want %d", len(frame.Data), DepthFrameSamples)
	}
	if frame.Timestamp == 0 {
		t.Error("timestamp not set")
	}
}
