package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-beacon/pkg/hub"
	"github.com/teslashibe/go-beacon/pkg/protocol"
)

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name": "beacon",
		"endpoints": []string{
			"GET /api/status",
			"GET /api/detection",
			"GET /api/logs?limit=N",
			"WS /ws/status",
			"WS /ws/logs",
			"WS /ws/camera",
		},
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	status := s.status
	s.stateMu.RUnlock()
	return c.JSON(status)
}

func (s *Server) handleDetection(c *fiber.Ctx) error {
	s.stateMu.RLock()
	d := s.detection
	s.stateMu.RUnlock()
	if d == nil {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.JSON(d)
}

func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", MaxLogs)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be >= 0")
	}

	s.logsMu.RLock()
	start := 0
	if len(s.logs) > limit {
		start = len(s.logs) - limit
	}
	out := make([]protocol.Message, len(s.logs)-start)
	copy(out, s.logs[start:])
	s.logsMu.RUnlock()

	return c.JSON(out)
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.Serve(h, c)
	}
}
