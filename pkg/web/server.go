// Package web serves the live gaze dashboard: a canvas marker fed by
// websocket events, plus a small JSON API.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/hub"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// recentEvents is how many events /api/events keeps
const recentEvents = 200

// Config holds dashboard configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string `yaml:"port" json:"port"`

	// StaticDir holds the dashboard page.
	StaticDir string `yaml:"static_dir" json:"static_dir"`

	// Screen is the surface events are drawn on.
	Screen gaze.Screen `yaml:"screen" json:"screen"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:      "8080",
		StaticDir: "./web",
		Screen:    gaze.Screen{Width: 1920, Height: 1080},
	}
}

// Server is the web dashboard server
type Server struct {
	cfg    Config
	logger *slog.Logger
	app    *fiber.App

	// Hub for websocket broadcast
	events *hub.Hub

	status   protocol.StatusData
	statusMu sync.RWMutex

	// Ring of recent events
	recent   []protocol.EventData
	recentMu sync.RWMutex

	published atomic.Int64
}

// NewServer creates a new web dashboard server
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		events: hub.New("events",
			hub.WithLogger(logger),
			hub.WithReplay(protocol.TypeStatus),
		),
		status: protocol.StatusData{State: gaze.StateIdle.String()},
		recent: make([]protocol.EventData, 0, recentEvents),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/screen", s.handleScreen)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start serves on the configured port until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("gaze dashboard listening", "url", fmt.Sprintf("http://localhost:%s", s.cfg.Port))
	return s.serve(ctx, func() error {
		return s.app.Listen(":" + s.cfg.Port)
	})
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.serve(ctx, func() error {
		return s.app.Listener(ln)
	})
}

func (s *Server) serve(ctx context.Context, listen func() error) error {
	go s.events.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("dashboard shutdown failed", "error", err)
		}
	}()
	return listen()
}

// UpdateStatus updates the session status and broadcasts it to clients
func (s *Server) UpdateStatus(update func(*protocol.StatusData)) {
	s.statusMu.Lock()
	update(&s.status)
	s.status.Events = s.published.Load()
	status := s.status
	s.statusMu.Unlock()

	msg, err := protocol.NewStatusMessage(status)
	if err != nil {
		s.logger.Error("failed to encode status", "error", err)
		return
	}
	if err := s.events.BroadcastMessage(msg); err != nil {
		s.logger.Error("failed to broadcast status", "error", err)
	}
}

// Publish records a gaze event and broadcasts it to clients.
func (s *Server) Publish(sessionID string, ev gaze.Event) {
	data := protocol.EventData{
		SessionID: sessionID,
		Event:     string(ev.Type),
		X:         ev.Point.X,
		Y:         ev.Point.Y,
	}
	if ev.Pixel != nil {
		px, py := ev.Pixel.X, ev.Pixel.Y
		data.PixelX, data.PixelY = &px, &py
	}

	s.recentMu.Lock()
	if len(s.recent) == recentEvents {
		copy(s.recent, s.recent[1:])
		s.recent = s.recent[:recentEvents-1]
	}
	s.recent = append(s.recent, data)
	s.recentMu.Unlock()
	s.published.Add(1)

	msg, err := protocol.NewEventMessage(data)
	if err != nil {
		s.logger.Error("failed to encode event", "error", err)
		return
	}
	if err := s.events.BroadcastMessage(msg); err != nil {
		s.logger.Error("failed to broadcast event", "error", err)
	}
}

// Hub returns the event hub for external use
func (s *Server) Hub() *hub.Hub {
	return s.events
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
