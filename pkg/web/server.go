// Package web serves live sensor frames and tilt control over HTTP.
//
// Depth and video frames arrive as JPEG binary messages on /ws/depth and
// /ws/video; /api/status and /api/tilt expose device state to the viewer
// UI. All image conversion happens here, not in the freenect core.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-kinect/internal/log"
	"github.com/teslashibe/go-kinect/pkg/freenect"
	"github.com/teslashibe/go-kinect/pkg/hub"
	"github.com/teslashibe/go-kinect/pkg/view"
)

// Server publishes one device's streams to websocket viewers.
type Server struct {
	app  *fiber.App
	addr string

	ctx *freenect.Context
	dev *freenect.Device

	depthHub *hub.Hub
	videoHub *hub.Hub

	jpegQuality int
	started     time.Time
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	Devices      int            `json:"devices"`
	DeviceIndex  int            `json:"device_index"`
	TiltDegrees  float64        `json:"tilt_degrees"`
	Streams      freenect.Stats `json:"streams"`
	DepthViewers int            `json:"depth_viewers"`
	VideoViewers int            `json:"video_viewers"`
	UptimeSec    int64          `json:"uptime_sec"`
}

// tiltRequest is the /api/tilt request body.
type tiltRequest struct {
	Degrees float64 `json:"degrees"`
}

// NewServer wires the routes for the given context and device.
func NewServer(addr string, ctx *freenect.Context, dev *freenect.Device, jpegQuality int) *Server {
	s := &Server{
		addr:        addr,
		ctx:         ctx,
		dev:         dev,
		depthHub:    hub.New("depth"),
		videoHub:    hub.New("video"),
		jpegQuality: jpegQuality,
		started:     time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-kinect frame server",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/tilt", s.handleGetTilt)
	api.Post("/tilt", s.handleSetTilt)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/depth", websocket.New(s.handleDepthWS))
	app.Get("/ws/video", websocket.New(s.handleVideoWS))

	s.app = app
	return s
}

// PublishDepth converts depth frames to JPEG and broadcasts them until
// the stream closes. Run it in its own goroutine.
func (s *Server) PublishDepth(stream *freenect.DepthStream) {
	for frame := range stream.Frames() {
		img, err := view.DepthImage(frame)
		if err != nil {
			log.Warn("web: bad depth frame", "error", err)
			continue
		}
		buf, err := view.EncodeJPEG(img, s.jpegQuality)
		if err != nil {
			log.Warn("web: depth jpeg encode", "error", err)
			continue
		}
		s.depthHub.Broadcast(hub.NewBinaryMessage(buf))
	}
}

// PublishVideo converts video frames to JPEG and broadcasts them until
// the stream closes. Run it in its own goroutine.
func (s *Server) PublishVideo(stream *freenect.VideoStream) {
	for frame := range stream.Frames() {
		img, err := view.VideoImage(frame)
		if err != nil {
			log.Warn("web: bad video frame", "error", err)
			continue
		}
		buf, err := view.EncodeJPEG(img, s.jpegQuality)
		if err != nil {
			log.Warn("web: video jpeg encode", "error", err)
			continue
		}
		s.videoHub.Broadcast(hub.NewBinaryMessage(buf))
	}
}

// Listen starts the hubs and blocks serving HTTP.
func (s *Server) Listen() error {
	go s.depthHub.Run()
	go s.videoHub.Run()
	log.Info("web: listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	n, err := s.ctx.NumDevices()
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	tilt, err := s.dev.TiltDegrees()
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(statusResponse{
		Devices:      n,
		DeviceIndex:  s.dev.Index(),
		TiltDegrees:  tilt,
		Streams:      s.dev.Stats(),
		DepthViewers: s.depthHub.ClientCount(),
		VideoViewers: s.videoHub.ClientCount(),
		UptimeSec:    int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleGetTilt(c *fiber.Ctx) error {
	tilt, err := s.dev.TiltDegrees()
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"degrees": tilt})
}

func (s *Server) handleSetTilt(c *fiber.Ctx) error {
	var req tiltRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected {\"degrees\": <number>}")
	}
	// No clamping here: the motor firmware applies its own limits.
	if err := s.dev.SetTiltDegrees(req.Degrees); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"degrees": req.Degrees})
}

func (s *Server) handleDepthWS(conn *websocket.Conn) {
	hub.NewClient(s.depthHub, conn).Run()
}

func (s *Server) handleVideoWS(conn *websocket.Conn) {
	hub.NewClient(s.videoHub, conn).Run()
}
