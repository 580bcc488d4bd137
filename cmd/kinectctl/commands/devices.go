package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kinect/pkg/freenect"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected sensor devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openContext(freenect.CapsCamera)
			if err != nil {
				return err
			}
			defer ctx.Close()

			n, err := ctx.NumDevices()
			if err != nil {
				return err
			}
			fmt.Printf("%d device(s) connected\n", n)
			for i := 0; i < n; i++ {
				fmt.Printf("  [%d] depth+color camera, 640x480\n", i)
			}
			return nil
		},
	}
}
