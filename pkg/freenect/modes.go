package freenect

import "fmt"

// Frame geometry shared by all supported modes.
const (
	FrameWidth  = 640
	FrameHeight = 480

	// DepthFrameSamples is the number of 16-bit samples in a depth frame.
	DepthFrameSamples = FrameWidth * FrameHeight

	// VideoFrameBytes is the byte length of a 3-byte-per-pixel video frame.
	VideoFrameBytes = FrameWidth * FrameHeight * 3
)

// Capabilities selects which hardware subsystems the driver activates.
// Values are a bit set matching the native subdevice flags.
type Capabilities uint32

const (
	CapMotor  Capabilities = 1 << 0
	CapCamera Capabilities = 1 << 1
	CapAudio  Capabilities = 1 << 2
)

// Common capability selections.
const (
	CapsCamera      = CapCamera
	CapsCameraMotor = CapCamera | CapMotor
)

// HasCamera reports whether the camera subsystem is selected. Video
// streaming requires it.
func (c Capabilities) HasCamera() bool { return c&CapCamera != 0 }

// Resolution enumerates the frame resolutions the driver understands.
// Values match the native enumeration.
type Resolution int

const (
	ResolutionLow Resolution = iota
	ResolutionMedium
	ResolutionHigh
)

func (r Resolution) String() string {
	switch r {
	case ResolutionLow:
		return "low"
	case ResolutionMedium:
		return "medium"
	case ResolutionHigh:
		return "high"
	}
	return fmt.Sprintf("resolution(%d)", int(r))
}

// ParseResolution converts a config/CLI string into a Resolution.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "low":
		return ResolutionLow, nil
	case "medium":
		return ResolutionMedium, nil
	case "high":
		return ResolutionHigh, nil
	}
	return 0, fmt.Errorf("unknown resolution %q", s)
}

// DepthFormat enumerates the sample encodings of a depth frame.
// Values match the native enumeration.
type DepthFormat int

const (
	Depth11Bit DepthFormat = iota
	Depth10Bit
	Depth11BitPacked
	Depth10BitPacked
	DepthRegistered
	DepthMM
)

func (f DepthFormat) String() string {
	switch f {
	case Depth11Bit:
		return "11bit"
	case Depth10Bit:
		return "10bit"
	case Depth11BitPacked:
		return "11bit-packed"
	case Depth10BitPacked:
		return "10bit-packed"
	case DepthRegistered:
		return "registered"
	case DepthMM:
		return "mm"
	}
	return fmt.Sprintf("depthformat(%d)", int(f))
}

// ParseDepthFormat converts a config/CLI string into a DepthFormat.
func ParseDepthFormat(s string) (DepthFormat, error) {
	switch s {
	case "11bit":
		return Depth11Bit, nil
	case "10bit":
		return Depth10Bit, nil
	case "11bit-packed":
		return Depth11BitPacked, nil
	case "10bit-packed":
		return Depth10BitPacked, nil
	case "registered":
		return DepthRegistered, nil
	case "mm":
		return DepthMM, nil
	}
	return 0, fmt.Errorf("unknown depth format %q", s)
}

// VideoFormat enumerates the pixel encodings of a video frame.
// Values match the native enumeration.
type VideoFormat int

const (
	VideoRGB VideoFormat = iota
	VideoBayer
	VideoIR8Bit
	VideoIR10Bit
	VideoIR10BitPacked
	VideoYUVRGB
	VideoYUVRaw
)

func (f VideoFormat) String() string {
	switch f {
	case VideoRGB:
		return "rgb"
	case VideoBayer:
		return "bayer"
	case VideoIR8Bit:
		return "ir8"
	case VideoIR10Bit:
		return "ir10"
	case VideoIR10BitPacked:
		return "ir10-packed"
	case VideoYUVRGB:
		return "yuv-rgb"
	case VideoYUVRaw:
		return "yuv-raw"
	}
	return fmt.Sprintf("videoformat(%d)", int(f))
}

// ParseVideoFormat converts a config/CLI string into a VideoFormat.
func ParseVideoFormat(s string) (VideoFormat, error) {
	switch s {
	case "rgb":
		return VideoRGB, nil
	case "bayer":
		return VideoBayer, nil
	case "ir8":
		return VideoIR8Bit, nil
	case "ir10":
		return VideoIR10Bit, nil
	case "ir10-packed":
		return VideoIR10BitPacked, nil
	case "yuv-rgb":
		return VideoYUVRGB, nil
	case "yuv-raw":
		return VideoYUVRaw, nil
	}
	return 0, fmt.Errorf("unknown video format %q", s)
}
