package view

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

// Key codes returned by Viewer.WaitKey that the live viewer reacts to.
const (
	KeyQuit      = 'q'
	KeyTiltUp    = 'w'
	KeyTiltDown  = 's'
	KeyTiltReset = 'r'
	KeyEscape    = 27
)

// Viewer shows live depth and video frames in two desktop windows.
// Not safe for concurrent use; drive it from a single goroutine.
type Viewer struct {
	depthWin *gocv.Window
	videoWin *gocv.Window
}

// NewViewer opens the display windows.
func NewViewer() *Viewer {
	return &Viewer{
		depthWin: gocv.NewWindow("Live Depth"),
		videoWin: gocv.NewWindow("Live RGB"),
	}
}

// ShowDepth renders a depth frame into the depth window.
func (v *Viewer) ShowDepth(f freenect.DepthFrame) error {
	gray := DepthToGray(f.Data)
	mat, err := gocv.NewMatFromBytes(
		freenect.FrameHeight, freenect.FrameWidth, gocv.MatTypeCV8UC1, gray)
	if err != nil {
		return fmt.Errorf("view: depth mat: %w", err)
	}
	defer mat.Close()
	v.depthWin.IMShow(mat)
	return nil
}

// ShowVideo renders an RGB video frame into the video window.
func (v *Viewer) ShowVideo(f freenect.VideoFrame) error {
	mat, err := gocv.NewMatFromBytes(
		freenect.FrameHeight, freenect.FrameWidth, gocv.MatTypeCV8UC3, f.Data)
	if err != nil {
		return fmt.Errorf("view: video mat: %w", err)
	}
	defer mat.Close()
	// The sensor delivers RGB; OpenCV windows expect BGR.
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
	v.videoWin.IMShow(bgr)
	return nil
}

// WaitKey pumps window events for up to delayMS milliseconds and returns
// the pressed key code, or -1 if none.
func (v *Viewer) WaitKey(delayMS int) int {
	return v.depthWin.WaitKey(delayMS)
}

// Closed reports whether either window has been closed by the user.
func (v *Viewer) Closed() bool {
	return !v.depthWin.IsOpen() || !v.videoWin.IsOpen()
}

// Close releases both windows.
func (v *Viewer) Close() error {
	if err := v.depthWin.Close(); err != nil {
		return err
	}
	return v.videoWin.Close()
}
