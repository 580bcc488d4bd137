package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinect.yaml")
	yaml := "device: 1\nhttp_addr: \":9000\"\ndepth_format: registered\njpeg_quality: 50\nlog_level: info\nfake_devices: 1\ndepth_resolution: medium\nvideo_resolution: medium\nvideo_format: rgb\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KINECT_DEVICE", "2")
	t.Setenv("KINECT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device != 2 {
		t.Errorf("Device = %d, want env override 2", cfg.Device)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q, want :9000", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}

	res, format, err := cfg.DepthMode()
	if err != nil {
		t.Fatalf("DepthMode: %v", err)
	}
	if res != freenect.ResolutionMedium || format != freenect.DepthRegistered {
		t.Errorf("depth mode = (%s, %s), want (medium, registered)", res, format)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinect.yaml")
	if err := os.WriteFile(path, []byte("depth_format: sepia\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an unknown depth format")
	}

	if err := os.WriteFile(path, []byte("jpeg_quality: 400\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an out-of-range jpeg quality")
	}
}

func TestDriver_FakeSelection(t *testing.T) {
	cfg := Default()
	cfg.Fake = true
	cfg.FakeDevices = 3

	driver, err := cfg.Driver()
	if err != nil {
		t.Fatalf("Driver: %v", err)
	}
	fake, ok := driver.(*freenect.FakeDriver)
	if !ok {
		t.Fatalf("driver type = %T, want *freenect.FakeDriver", driver)
	}
	if fake.DeviceCount != 3 {
		t.Errorf("fake device count = %d, want 3", fake.DeviceCount)
	}
}
