package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kinect/internal/log"
	"github.com/teslashibe/go-kinect/pkg/freenect"
	"github.com/teslashibe/go-kinect/pkg/web"
)

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish depth and video feeds over HTTP/websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServe()
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return serveCmd
}

func runServe() error {
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

	depthRes, depthFormat, err := cfg.DepthMode()
	if err != nil {
		return err
	}
	if err := dev.SetDepthMode(depthRes, depthFormat); err != nil {
		return err
	}
	videoRes, videoFormat, err := cfg.VideoMode()
	if err != nil {
		return err
	}
	if err := dev.SetVideoMode(videoRes, videoFormat); err != nil {
		return err
	}

	depth, err := dev.DepthStream()
	if err != nil {
		return err
	}
	defer depth.Close()

	video, err := dev.VideoStream()
	if err != nil {
		return err
	}
	defer video.Close()

	if err := ctx.StartProcessing(); err != nil {
		return err
	}
	defer ctx.StopProcessing()

	server := web.NewServer(cfg.HTTPAddr, ctx, dev, cfg.JPEGQuality)
	go server.PublishDepth(depth)
	go server.PublishVideo(video)

	// Shut the server down on SIGINT/SIGTERM so the deferred stream and
	// device teardown runs.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutting down", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	return server.Listen()
}
