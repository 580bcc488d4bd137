// Remote frame viewer: connects to a kinectctl serve instance and
// displays one of its websocket JPEG feeds.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-kinect/internal/log"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws/depth", "websocket feed to view")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log.Init(*logLevel)

	if err := run(*url); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer conn.Close()
	log.Info("connected", "url", url)

	window := gocv.NewWindow("go-kinect remote view")
	defer window.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed closed: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		mat, err := gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			log.Warn("bad frame", "error", err)
			continue
		}
		if mat.Empty() {
			mat.Close()
			continue
		}
		window.IMShow(mat)
		mat.Close()

		if key := window.WaitKey(1); key == 'q' || key == 27 {
			return nil
		}
		if !window.IsOpen() {
			return nil
		}
	}
}
