package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-gaze/pkg/hub"
)

// handleStatus returns the current session status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()
	status.Events = s.published.Load()

	return c.JSON(fiber.Map{
		"status":  status,
		"clients": s.events.ClientCount(),
	})
}

// handleScreen returns the surface the dashboard draws on
func (s *Server) handleScreen(c *fiber.Ctx) error {
	return c.JSON(s.cfg.Screen)
}

// handleEvents returns recent events, oldest first
func (s *Server) handleEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", recentEvents)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be positive",
		})
	}

	s.recentMu.RLock()
	defer s.recentMu.RUnlock()

	events := s.recent
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return c.JSON(events)
}

// handleEventsWS streams events and status updates to a dashboard
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	if client == nil {
		return
	}
	client.Run()
}
