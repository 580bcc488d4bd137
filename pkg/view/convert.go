// Package view converts raw sensor frames into displayable images.
// It owns all format conversion for the viewers and the frame server;
// the freenect core only ever hands out raw buffers.
package view

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

// DepthToGray maps millimeter depth samples to 8-bit gray. Values below
// 600mm (closer than the sensor can resolve) go black; the useful range
// is compressed by half and clamped.
func DepthToGray(data []uint16) []byte {
	out := make([]byte, len(data))
	for i, v := range data {
		if v > 600 {
			v -= 600
		} else {
			v = 0
		}
		v /= 2
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// DepthImage renders a depth frame as a grayscale image.
func DepthImage(f freenect.DepthFrame) (*image.Gray, error) {
	if len(f.Data) != freenect.DepthFrameSamples {
		return nil, fmt.Errorf("view: depth frame has %d samples, want %d",
			len(f.Data), freenect.DepthFrameSamples)
	}
	img := image.NewGray(image.Rect(0, 0, freenect.FrameWidth, freenect.FrameHeight))
	copy(img.Pix, DepthToGray(f.Data))
	return img, nil
}

// VideoImage renders an RGB video frame as an image. Only VideoRGB frames
// convert meaningfully; other formats need their own decoders.
func VideoImage(f freenect.VideoFrame) (*image.RGBA, error) {
	if len(f.Data) != freenect.VideoFrameBytes {
		return nil, fmt.Errorf("view: video frame has %d bytes, want %d",
			len(f.Data), freenect.VideoFrameBytes)
	}
	img := image.NewRGBA(image.Rect(0, 0, freenect.FrameWidth, freenect.FrameHeight))
	for i := 0; i < freenect.FrameWidth*freenect.FrameHeight; i++ {
		img.Pix[i*4+0] = f.Data[i*3+0]
		img.Pix[i*4+1] = f.Data[i*3+1]
		img.Pix[i*4+2] = f.Data[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img, nil
}

// EncodeJPEG compresses an image for transport over the websocket feeds.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("view: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
