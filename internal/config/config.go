// Package config provides configuration for go-kinect commands.
//
// Settings come from an optional YAML file, overridden by environment
// variables (KINECT_DEVICE, KINECT_HTTP_ADDR, KINECT_LOG_LEVEL,
// KINECT_FAKE).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

// Config holds the settings shared by the go-kinect commands.
type Config struct {
	// Device is the enumeration index of the sensor to open.
	Device int `yaml:"device"`

	// Fake runs against the in-memory fake driver instead of hardware.
	Fake bool `yaml:"fake"`
	// FakeDevices is how many devices the fake driver reports.
	FakeDevices int `yaml:"fake_devices"`

	LogLevel string `yaml:"log_level"`

	// HTTPAddr is the listen address of the frame server.
	HTTPAddr string `yaml:"http_addr"`

	DepthResolution string `yaml:"depth_resolution"`
	DepthFormat     string `yaml:"depth_format"`
	VideoResolution string `yaml:"video_resolution"`
	VideoFormat     string `yaml:"video_format"`

	// JPEGQuality for frames published over the websocket feeds (1-100).
	JPEGQuality int `yaml:"jpeg_quality"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Device:          0,
		FakeDevices:     1,
		LogLevel:        "info",
		HTTPAddr:        ":8090",
		DepthResolution: "medium",
		DepthFormat:     "mm",
		VideoResolution: "medium",
		VideoFormat:     "rgb",
		JPEGQuality:     80,
	}
}

// Load reads the YAML file at path (missing file falls back to defaults)
// and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KINECT_DEVICE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Device = n
		}
	}
	if v := os.Getenv("KINECT_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("KINECT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KINECT_FAKE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Fake = b
		}
	}
}

func (c *Config) validate() error {
	if c.Device < 0 {
		return fmt.Errorf("config: device index %d is negative", c.Device)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality %d out of range 1-100", c.JPEGQuality)
	}
	if _, _, err := c.DepthMode(); err != nil {
		return err
	}
	if _, _, err := c.VideoMode(); err != nil {
		return err
	}
	return nil
}

// DepthMode parses the configured depth resolution/format pair.
func (c Config) DepthMode() (freenect.Resolution, freenect.DepthFormat, error) {
	res, err := freenect.ParseResolution(c.DepthResolution)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	format, err := freenect.ParseDepthFormat(c.DepthFormat)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	return res, format, nil
}

// VideoMode parses the configured video resolution/format pair.
func (c Config) VideoMode() (freenect.Resolution, freenect.VideoFormat, error) {
	res, err := freenect.ParseResolution(c.VideoResolution)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	format, err := freenect.ParseVideoFormat(c.VideoFormat)
	if err != nil {
		return 0, 0, fmt.Errorf("config: %w", err)
	}
	return res, format, nil
}

// Driver builds the driver selected by the configuration.
func (c Config) Driver() (freenect.Driver, error) {
	if c.Fake {
		return freenect.NewFakeDriver(c.FakeDevices), nil
	}
	return freenect.DefaultDriver()
}
