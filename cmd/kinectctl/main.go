// Package main is the entry point for the kinectctl CLI.
//
// Usage:
//
//	kinectctl [flags] <command> [args]
//
// Commands:
//
//	devices  - List connected sensor devices
//	tilt     - Query or set the motorized tilt angle
//	serve    - Publish frames over HTTP/websocket
package main

import (
	"fmt"
	"os"

	"github.com/teslashibe/go-kinect/cmd/kinectctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
