package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

func newTiltCmd() *cobra.Command {
	tiltCmd := &cobra.Command{
		Use:   "tilt",
		Short: "Query or set the motorized tilt angle",
	}
	tiltCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current tilt angle in degrees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(dev *freenect.Device) error {
				degrees, err := dev.TiltDegrees()
				if err != nil {
					return err
				}
				fmt.Printf("%.1f\n", degrees)
				return nil
			})
		},
	})
	tiltCmd.AddCommand(&cobra.Command{
		Use:   "set <degrees>",
		Short: "Move the tilt motor to the given angle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			degrees, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid angle %q: %w", args[0], err)
			}
			return withDevice(func(dev *freenect.Device) error {
				return dev.SetTiltDegrees(degrees)
			})
		},
	})
	return tiltCmd
}

// withDevice opens the configured device with motor support, runs fn, and
// tears everything down.
func withDevice(fn func(*freenect.Device) error) error {
	ctx, err := openContext(freenect.CapsCameraMotor)
	if err != nil {
		return err
	}
	defer ctx.Close()

	dev, err := ctx.OpenDevice(cfg.Device)
	if err != nil {
		return err
	}
	defer dev.Close()

	return fn(dev)
}
