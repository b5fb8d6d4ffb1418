// Package simulator serves synthetic gaze samples over WebSocket, standing
// in for a tracker bridge during development.
package simulator

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-gaze/pkg/device"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// Config holds simulator configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string `yaml:"port" json:"port"`

	// SampleRate is the number of samples generated per second.
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// BatchSize is the number of samples per websocket message.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Hold is how long each synthetic fixation lasts.
	Hold time.Duration `yaml:"hold" json:"hold"`

	// PingInterval is how often clients are pinged. Zero disables pings.
	PingInterval time.Duration `yaml:"ping_interval" json:"ping_interval"`

	// Model is reported in the hello message.
	Model string `yaml:"model" json:"model"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:         "7450",
		SampleRate:   60,
		BatchSize:    2,
		Hold:         800 * time.Millisecond,
		PingInterval: 5 * time.Second,
		Model:        "go-gaze simulator",
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Hold <= 0 {
		return fmt.Errorf("hold must be positive, got %v", c.Hold)
	}
	return nil
}

// Stats contains simulator statistics.
type Stats struct {
	Clients     int   `json:"clients"`
	Connections int64 `json:"connections"`
	SamplesSent int64 `json:"samples_sent"`
}

// Server streams synthetic samples to every connected client.
type Server struct {
	cfg    Config
	logger *slog.Logger
	app    *fiber.App

	mu      sync.RWMutex
	clients map[string]time.Time

	connections atomic.Int64
	samplesSent atomic.Int64
}

// New creates a simulator server.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]time.Time),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Simulator",
		DisableStartupMessage: true,
	})

	app.Get("/api/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.Stats())
	})

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/samples", websocket.New(s.handleSamples))

	s.app = app
	return s, nil
}

// Start listens on the configured port. It blocks until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("gaze simulator listening", "port", s.cfg.Port, "sample_rate", s.cfg.SampleRate)
	return s.app.Listen(":" + s.cfg.Port)
}

// Serve serves on an existing listener. It blocks until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Stats returns simulator statistics.
func (s *Server) Stats() Stats {
	s.mu.RLock()
	clients := len(s.clients)
	s.mu.RUnlock()

	return Stats{
		Clients:     clients,
		Connections: s.connections.Load(),
		SamplesSent: s.samplesSent.Load(),
	}
}

func (s *Server) handleSamples(c *websocket.Conn) {
	id := uuid.NewString()

	s.mu.Lock()
	s.clients[id] = time.Now()
	s.mu.Unlock()
	s.connections.Add(1)
	s.logger.Info("simulator client connected", "client_id", id)

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		s.logger.Info("simulator client disconnected", "client_id", id)
	}()

	hello, err := protocol.NewHelloMessage(id, s.cfg.Model, s.cfg.SampleRate)
	if err != nil || s.send(c, hello) != nil {
		return
	}

	// Read pump: detects disconnection, consumes pongs
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := time.Second / time.Duration(s.cfg.SampleRate)
	synth := device.NewSynth(interval, device.WithHold(s.cfg.Hold))

	sampleTicker := time.NewTicker(interval * time.Duration(s.cfg.BatchSize))
	defer sampleTicker.Stop()

	var pingC <-chan time.Time
	if s.cfg.PingInterval > 0 {
		pingTicker := time.NewTicker(s.cfg.PingInterval)
		defer pingTicker.Stop()
		pingC = pingTicker.C
	}

	for {
		select {
		case <-closed:
			return

		case <-sampleTicker.C:
			batch := make([]protocol.SampleData, s.cfg.BatchSize)
			for i := range batch {
				sample := synth.Next()
				batch[i] = protocol.SampleData{
					X:     sample.X,
					Y:     sample.Y,
					Valid: sample.Valid,
					TS:    sample.Timestamp.UnixMicro(),
				}
			}
			msg, err := protocol.NewSamplesMessage(batch)
			if err != nil || s.send(c, msg) != nil {
				return
			}
			s.samplesSent.Add(int64(len(batch)))

		case <-pingC:
			msg, err := protocol.NewPingMessage(id)
			if err != nil || s.send(c, msg) != nil {
				return
			}
		}
	}
}

func (s *Server) send(c *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("simulator write failed", "error", err)
		return err
	}
	return nil
}
