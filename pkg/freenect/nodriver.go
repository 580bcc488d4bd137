//go:build !freenect

package freenect

import "errors"

// DefaultDriver returns the libfreenect-backed driver when built with
// -tags freenect. Without the tag there is no hardware driver; use
// NewFakeDriver for simulation.
func DefaultDriver() (Driver, error) {
	return nil, errors.New("freenect: built without libfreenect support (rebuild with -tags freenect)")
}
