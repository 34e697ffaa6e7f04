// Package web serves the read-only beacon dashboard: the latest status
// snapshot over HTTP plus live status, log and camera websocket streams.
// Nothing here can drive the motor.
package web

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-beacon/internal/log"
	"github.com/teslashibe/go-beacon/pkg/hub"
	"github.com/teslashibe/go-beacon/pkg/protocol"
)

// MaxLogs is how many log lines /api/logs keeps.
const MaxLogs = 500

// Server is the dashboard server
type Server struct {
	app  *fiber.App
	addr string

	status    protocol.StatusData
	detection *protocol.DetectionData
	stateMu   sync.RWMutex

	logs   []protocol.Message
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates a dashboard listening on addr (":8282", "127.0.0.1:9000").
func NewServer(addr string) *Server {
	s := &Server{
		addr:      addr,
		logs:      make([]protocol.Message, 0, MaxLogs),
		statusHub: hub.NewRetaining("status"),
		logHub:    hub.New("logs"),
		cameraHub: hub.NewRetaining("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "beacon dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New(cors.Config{AllowMethods: "GET,HEAD,OPTIONS"}))

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/detection", s.handleDetection)
	api.Get("/logs", s.handleGetLogs)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.serveHub(s.statusHub)))
	app.Get("/ws/logs", websocket.New(s.serveHub(s.logHub)))
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))

	s.app = app
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start runs the hubs and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	fmt.Printf("🌐 Dashboard: http://%s\n", displayAddr(s.addr))

	go s.statusHub.Run(ctx)
	go s.logHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.Warn("dashboard shutdown", "error", err)
		}
	}()

	if err := s.app.Listen(s.addr); err != nil {
		return fmt.Errorf("web: listen %s: %w", s.addr, err)
	}
	return nil
}

// UpdateStatus stores the snapshot and pushes it to status subscribers.
func (s *Server) UpdateStatus(status protocol.StatusData) {
	s.stateMu.Lock()
	s.status = status
	s.stateMu.Unlock()

	s.publish(s.statusHub, func() (*protocol.Message, error) {
		return protocol.NewStatusMessage(status)
	})
}

// UpdateDetection stores the last frame summary and pushes it on the
// status stream.
func (s *Server) UpdateDetection(d protocol.DetectionData) {
	s.stateMu.Lock()
	s.detection = &d
	s.stateMu.Unlock()

	s.publish(s.statusHub, func() (*protocol.Message, error) {
		return protocol.NewMessage(protocol.TypeDetection, d)
	})
}

// AddLog appends an operator-facing line and pushes it to log subscribers.
func (s *Server) AddLog(level, message string) {
	msg, err := protocol.NewLogMessage(level, message)
	if err != nil {
		log.Warn("dashboard log encode", "error", err)
		return
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, *msg)
	if len(s.logs) > MaxLogs {
		s.logs = s.logs[len(s.logs)-MaxLogs:]
	}
	s.logsMu.Unlock()

	s.publish(s.logHub, func() (*protocol.Message, error) { return msg, nil })
}

// SendCameraFrame pushes an annotated JPEG to camera subscribers.
func (s *Server) SendCameraFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// Subscribers returns the connected client count across all streams.
func (s *Server) Subscribers() int {
	return s.statusHub.ClientCount() + s.logHub.ClientCount() + s.cameraHub.ClientCount()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) publish(h *hub.Hub, build func() (*protocol.Message, error)) {
	msg, err := build()
	if err == nil {
		var data []byte
		if data, err = msg.Bytes(); err == nil {
			h.Broadcast(hub.NewJSONMessage(data))
			return
		}
	}
	log.Warn("dashboard publish", "error", err)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
