// Package device connects the gaze engine to eye trackers.
//
// This package supports multiple backends:
//   - WebSocket - samples streamed by a tracker bridge or the simulator
//   - Mock - synthetic gaze for demos and scripted batches for tests
//
// Every backend queues samples internally and hands them to the subscriber
// only from ProcessCallbacks, so delivery happens on the engine's goroutine.
package device

import (
	"fmt"
	"time"
)

// Backend represents the device backend type.
type Backend string

const (
	// BackendAuto selects websocket when endpoints are configured, mock otherwise.
	BackendAuto Backend = "auto"
	// BackendWebSocket reads samples from a websocket endpoint.
	BackendWebSocket Backend = "websocket"
	// BackendMock generates synthetic samples.
	BackendMock Backend = "mock"
)

// Config holds device configuration.
type Config struct {
	// Backend specifies which device backend to use.
	// Default: "auto"
	Backend Backend `yaml:"backend" json:"backend"`

	// Endpoints are candidate tracker URLs, tried in order. The first one
	// that accepts a connection is used.
	// Examples: "ws://localhost:7450/ws/samples"
	Endpoints []string `yaml:"endpoints" json:"endpoints"`

	// DialTimeout bounds each connection attempt.
	// Default: 2s
	DialTimeout time.Duration `yaml:"dial_timeout" json:"dial_timeout"`

	// QueueSize is the number of samples buffered between reads.
	// Samples arriving on a full queue are dropped.
	// Default: 256
	QueueSize int `yaml:"queue_size" json:"queue_size"`

	// SampleRate is the synthetic sample rate of the mock backend in Hz.
	// Default: 60
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendAuto,
		DialTimeout: 2 * time.Second,
		QueueSize:   256,
		SampleRate:  60,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendMock:
	case BackendWebSocket:
		if len(c.Endpoints) == 0 {
			return fmt.Errorf("websocket backend requires at least one endpoint")
		}
	default:
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive, got %v", c.DialTimeout)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	return nil
}

// SampleInterval returns the time between synthetic samples.
func (c *Config) SampleInterval() time.Duration {
	return time.Second / time.Duration(c.SampleRate)
}
