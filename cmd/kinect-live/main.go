// Live depth + RGB viewer with keyboard tilt control.
//
// Keys: w tilt up, s tilt down, r reset tilt, q or ESC quit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/teslashibe/go-kinect/internal/log"
	"github.com/teslashibe/go-kinect/pkg/freenect"
	"github.com/teslashibe/go-kinect/pkg/view"
)

func main() {
	device := flag.Int("device", 0, "device index to open")
	fake := flag.Bool("fake", false, "run against the fake driver (no hardware)")
	fakeDevices := flag.Int("fake-devices", 1, "device count reported by the fake driver")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	tiltStep := flag.Float64("tilt-step", 10.0, "tilt adjustment per key press, degrees")
	flag.Parse()

	log.Init(*logLevel)

	if err := run(*device, *fake, *fakeDevices, *tiltStep); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(device int, fake bool, fakeDevices int, tiltStep float64) error {
	var (
		driver freenect.Driver
		err    error
	)
	if fake {
		driver = freenect.NewFakeDriver(fakeDevices)
	} else {
		driver, err = freenect.DefaultDriver()
		if err != nil {
			return err
		}
	}

	ctx, err := freenect.InitWithCameraMotor(driver)
	if err != nil {
		return err
	}
	defer ctx.Close()

	n, err := ctx.NumDevices()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("no device connected")
	}
	log.Info("devices found", "count", n, "using", device)

	dev, err := ctx.OpenDevice(device)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.SetDepthMode(freenect.ResolutionMedium, freenect.DepthMM); err != nil {
		return err
	}
	if err := dev.SetVideoMode(freenect.ResolutionMedium, freenect.VideoRGB); err != nil {
		return err
	}

	depth, err := dev.DepthStream()
	if err != nil {
		return err
	}
	defer depth.Close()

	video, err := dev.VideoStream()
	if err != nil {
		return err
	}
	defer video.Close()

	if err := ctx.StartProcessing(); err != nil {
		return err
	}
	defer ctx.StopProcessing()

	viewer := view.NewViewer()
	defer viewer.Close()

	for {
		if frame, ok := depth.TryRecv(); ok {
			if err := viewer.ShowDepth(frame); err != nil {
				log.Warn("depth render failed", "error", err)
			}
		}
		if frame, ok := video.TryRecv(); ok {
			if err := viewer.ShowVideo(frame); err != nil {
				log.Warn("video render failed", "error", err)
			}
		}

		// ~25 fps refresh; WaitKey also pumps window events.
		key := viewer.WaitKey(40)
		switch key {
		case view.KeyQuit, view.KeyEscape:
			return nil
		case view.KeyTiltUp:
			adjustTilt(dev, tiltStep)
		case view.KeyTiltDown:
			adjustTilt(dev, -tiltStep)
		case view.KeyTiltReset:
			if err := dev.SetTiltDegrees(0); err != nil {
				log.Warn("tilt reset failed", "error", err)
			}
		}
		if viewer.Closed() {
			return nil
		}
	}
}

func adjustTilt(dev *freenect.Device, delta float64) {
	current, err := dev.TiltDegrees()
	if err != nil {
		log.Warn("tilt query failed", "error", err)
		return
	}
	if err := dev.SetTiltDegrees(current + delta); err != nil {
		log.Warn("tilt set failed", "error", err)
	}
}
