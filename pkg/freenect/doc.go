// Package freenect provides a safe, concurrent interface to a Kinect-style
// depth+color camera with a motorized tilt, on top of a callback-driven
// native driver.
//
// The native driver delivers frames via synchronous callbacks on its own
// processing goroutine (the event pump). This package bridges those
// callbacks into bounded channels so application goroutines can poll or
// block for frames without ever stalling the pump.
//
// Usage follows the Context, Device, Stream hierarchy:
//
//	ctx, err := freenect.InitWithCameraMotor(driver)
//	dev, err := ctx.OpenDevice(0)
//	dev.SetDepthMode(freenect.ResolutionMedium, freenect.DepthMM)
//	stream, err := dev.DepthStream()
//	ctx.StartProcessing()
//	frame, err := stream.Recv()
//
// Tear down in the reverse order: close streams, then the device, then
// the context.
package freenect
