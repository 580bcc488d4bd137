package freenect

import (
	"errors"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestInit_DriverFailure(t *testing.T) {
	driver := NewFakeDriver(1)
	driver.InitErr = errors.New("usb enumeration failed")

	_, err := Init(driver, CapsCamera)
	if !errors.Is(err, ErrDriverInit) {
		t.Fatalf("Init error = %v, want ErrDriverInit", err)
	}
}

func TestInit_SelectsCapabilities(t *testing.T) {
	driver := NewFakeDriver(1)

	ctx, err := InitWithCameraMotor(driver)
	if err != nil {
		t.Fatalf("InitWithCameraMotor: %v", err)
	}
	defer ctx.Close()

	if got := driver.Context(0).Capabilities(); got != CapsCameraMotor {
		t.Errorf("driver capabilities = %v, want %v", got, CapsCameraMotor)
	}
	if got := ctx.Capabilities(); got != CapsCameraMotor {
		t.Errorf("context capabilities = %v, want %v", got, CapsCameraMotor)
	}
}

func TestStartProcessing_SecondCallFails(t *testing.T) {
	driver := NewFakeDriver(0)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Close()

	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	if err := ctx.StartProcessing(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second StartProcessing = %v, want ErrAlreadyRunning", err)
	}
	if err := ctx.StopProcessing(); err != nil {
		t.Fatalf("StopProcessing: %v", err)
	}
}

func TestStopProcessing_Idempotent(t *testing.T) {
	driver := NewFakeDriver(0)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Close()

	// No pump started: immediate no-op.
	if err := ctx.StopProcessing(); err != nil {
		t.Errorf("StopProcessing without pump = %v, want nil", err)
	}

	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	if err := ctx.StopProcessing(); err != nil {
		t.Errorf("first StopProcessing = %v, want nil", err)
	}
	if err := ctx.StopProcessing(); err != nil {
		t.Errorf("second StopProcessing = %v, want nil", err)
	}

	// The pump can be started again after a clean stop.
	if err := ctx.StartProcessing(); err != nil {
		t.Errorf("restart after stop = %v, want nil", err)
	}
	ctx.StopProcessing()
}

func TestProcessLoop_ContinuesOnInterrupt(t *testing.T) {
	driver := NewFakeDriver(0)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Close()

	fctx := driver.Context(0)
	fctx.QueuePumpResult(ErrPumpInterrupted)
	fctx.QueuePumpResult(ErrPumpInterrupted)

	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	// If interrupts stopped the pump, the call count would freeze at 2.
	waitFor(t, time.Second, func() bool { return fctx.PumpCalls() >= 5 },
		"pump to survive interrupted batches")
	if err := ctx.StopProcessing(); err != nil {
		t.Fatalf("StopProcessing: %v", err)
	}
}

func TestProcessLoop_StopsOnFatalError(t *testing.T) {
	driver := NewFakeDriver(0)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer ctx.Close()

	fctx := driver.Context(0)
	fctx.QueuePumpResult(errors.New("usb gone"))

	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	// After a fatal pump error the loop exits on its own and the context
	// accepts a fresh start.
	waitFor(t, time.Second, func() bool { return ctx.StartProcessing() == nil },
		"pump to exit after fatal error")
	calls := fctx.PumpCalls()
	if calls < 1 {
		t.Errorf("pump ran %d times, want at least 1", calls)
	}
	ctx.StopProcessing()
}

func TestClose_StopsPumpBeforeShutdown(t *testing.T) {
	driver := NewFakeDriver(0)
	ctx, err := InitWithCamera(driver)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := ctx.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}

	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fctx := driver.Context(0)
	if !fctx.ShutdownCalled() {
		t.Error("Close did not shut down the driver context")
	}
	// Give a lingering pump a chance to show itself.
	time.Sleep(20 * time.Millisecond)
	if fctx.PumpedAfterShutdown() {
		t.Error("event pump touched the context after shutdown")
	}
}
