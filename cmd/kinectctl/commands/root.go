// Package commands implements the kinectctl subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kinect/internal/config"
	"github.com/teslashibe/go-kinect/internal/log"
	"github.com/teslashibe/go-kinect/pkg/freenect"
)

var (
	cfgPath string
	fake    bool
	device  int

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kinectctl",
	Short: "Control and stream a Kinect-style depth camera",
	Long: `kinectctl - control and stream a Kinect-style depth+color camera.

The sensor is driven through libfreenect (build with -tags freenect);
--fake substitutes an in-memory driver for development without hardware.

Examples:
  # List connected devices
  kinectctl devices

  # Point the camera 15 degrees up
  kinectctl tilt set 15

  # Publish depth and video feeds on :8090
  kinectctl serve --addr :8090`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if cmd.Flags().Changed("fake") {
			cfg.Fake = fake
		}
		if cmd.Flags().Changed("device") {
			cfg.Device = device
		}
		log.Init(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "kinect.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&fake, "fake", false, "use the fake driver (no hardware)")
	rootCmd.PersistentFlags().IntVar(&device, "device", 0, "device index to open")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newTiltCmd())
	rootCmd.AddCommand(newServeCmd())
}

// openContext initializes a driver context with the given capabilities.
func openContext(caps freenect.Capabilities) (*freenect.Context, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}
	return freenect.Init(driver, caps)
}
