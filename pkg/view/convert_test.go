package view

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

func TestDepthToGray_Mapping(t *testing.T) {
	cases := []struct {
		mm   uint16
		want byte
	}{
		{0, 0},       // below sensor minimum
		{600, 0},     // exactly at the floor
		{602, 1},     // first visible step
		{800, 100},   // (800-600)/2
		{1110, 255},  // saturates at the ceiling
		{5000, 255},  // far values clamp
		{65535, 255}, // max sample clamps
	}
	for _, tc := range cases {
		got := DepthToGray([]uint16{tc.mm})
		if got[0] != tc.want {
			t.Errorf("DepthToGray(%d) = %d, want %d", tc.mm, got[0], tc.want)
		}
	}
}

func TestDepthImage_SizeCheck(t *testing.T) {
	_, err := DepthImage(freenect.DepthFrame{Data: make([]uint16, 10)})
	if err == nil {
		t.Error("DepthImage accepted a short frame")
	}

	data := make([]uint16, freenect.DepthFrameSamples)
	data[0] = 800 // maps to gray 100
	img, err := DepthImage(freenect.DepthFrame{Data: data})
	if err != nil {
		t.Fatalf("DepthImage: %v", err)
	}
	if img.Bounds().Dx() != freenect.FrameWidth || img.Bounds().Dy() != freenect.FrameHeight {
		t.Errorf("image bounds = %v, want %dx%d", img.Bounds(), freenect.FrameWidth, freenect.FrameHeight)
	}
	if img.Pix[0] != 100 {
		t.Errorf("pixel 0 = %d, want 100", img.Pix[0])
	}
}

func TestVideoImage_PixelLayout(t *testing.T) {
	data := make([]byte, freenect.VideoFrameBytes)
	data[0], data[1], data[2] = 10, 20, 30 // first pixel RGB

	img, err := VideoImage(freenect.VideoFrame{Data: data})
	if err != nil {
		t.Fatalf("VideoImage: %v", err)
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("pixel (0,0) = (%d,%d,%d,%d), want (10,20,30,255)", r>>8, g>>8, b>>8, a>>8)
	}

	if _, err := VideoImage(freenect.VideoFrame{Data: []byte{1, 2, 3}}); err == nil {
		t.Error("VideoImage accepted a short frame")
	}
}

func TestEncodeJPEG_RoundTrip(t *testing.T) {
	data := make([]uint16, freenect.DepthFrameSamples)
	img, err := DepthImage(freenect.DepthFrame{Data: data})
	if err != nil {
		t.Fatalf("DepthImage: %v", err)
	}

	buf, err := EncodeJPEG(img, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != freenect.FrameWidth || decoded.Bounds().Dy() != freenect.FrameHeight {
		t.Errorf("decoded bounds = %v, want %dx%d", decoded.Bounds(), freenect.FrameWidth, freenect.FrameHeight)
	}
}
