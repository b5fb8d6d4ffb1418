package simulator

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-gaze/pkg/device"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startSimulator serves a simulator on a random local port.
func startSimulator(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()

	s, err := New(cfg, testLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go s.Serve(ln)
	t.Cleanup(func() { s.Shutdown() })

	return s, "ws://" + ln.Addr().String() + "/ws/samples"
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, true},
		{"zero hold", func(c *Config) { c.Hold = 0 }, true},
		{"no pings", func(c *Config) { c.PingInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, err := New(DefaultConfig(), testLogger())
	require.NoError(t, err)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSimulatorFeedsWebSocketSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 200
	cfg.PingInterval = 20 * time.Millisecond
	sim, url := startSimulator(t, cfg)

	devCfg := device.DefaultConfig()
	devCfg.Backend = device.BackendWebSocket
	devCfg.Endpoints = []string{url}

	var sess *device.WebSocketSession
	require.Eventually(t, func() bool {
		var err error
		sess, err = device.DialWebSocket(context.Background(), devCfg, testLogger())
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer sess.Close()

	count := 0
	require.NoError(t, sess.Subscribe(func(device.Sample) { count++ }))

	deadline := time.Now().Add(2 * time.Second)
	for count < 20 && time.Now().Before(deadline) {
		sess.WaitForCallbacks(50 * time.Millisecond)
		require.NoError(t, sess.ProcessCallbacks())
	}

	assert.GreaterOrEqual(t, count, 20)
	require.NotNil(t, sess.Hello())
	assert.Equal(t, 200, sess.Hello().SampleRate)
	assert.Equal(t, 1, sim.Stats().Clients)
	assert.Positive(t, sim.Stats().SamplesSent)
}

func TestSimulatorDrivesEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 250
	cfg.Hold = 40 * time.Millisecond
	_, url := startSimulator(t, cfg)

	devCfg := device.DefaultConfig()
	devCfg.Endpoints = []string{url}

	e := gaze.New(device.NewOpener(devCfg, testLogger()),
		gaze.WithGuard(gaze.NewGuard()),
		gaze.WithLogger(testLogger()),
		gaze.WithWaitTimeout(20*time.Millisecond),
	)

	var gazeEvents, stillEvents, exits int
	run := func() (gaze.Report, error) {
		return e.UseGaze(context.Background(), gaze.Config{
			WaitForCallbacks: true,
			MaxStill:         gaze.Milliseconds(20),
			Screen:           &gaze.Screen{Width: 1920, Height: 1080},
			Callbacks: gaze.Callbacks{
				OnGaze: func(gaze.Point) bool {
					gazeEvents++
					return false
				},
				OnStill: func(gaze.Point) bool {
					stillEvents++
					return stillEvents == 3
				},
				OnExit: func(gaze.Point) bool {
					exits++
					return false
				},
			},
		})
	}

	var report gaze.Report
	require.Eventually(t, func() bool {
		var err error
		report, err = run()
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, gaze.StopAborted, report.Reason)
	assert.Positive(t, gazeEvents)
	assert.Equal(t, 3, stillEvents)
	assert.Equal(t, 1, exits)
	assert.Equal(t, gaze.StateIdle, e.State())
}
