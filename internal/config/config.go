// Package config loads go-gaze configuration from a YAML file, .env files
// and GAZE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/device"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/simulator"
	"github.com/teslashibe/go-gaze/pkg/web"
)

// Environment variables read by Load.
const (
	EnvBackend         = "GAZE_BACKEND"
	EnvEndpoints       = "GAZE_ENDPOINTS" // comma separated
	EnvScreenWidth     = "GAZE_SCREEN_WIDTH"
	EnvScreenHeight    = "GAZE_SCREEN_HEIGHT"
	EnvMaxStillMs      = "GAZE_MAX_STILL_MS"
	EnvWait            = "GAZE_WAIT"
	EnvLogLevel        = "GAZE_LOG_LEVEL"
	EnvLogFile         = "GAZE_LOG_FILE"
	EnvDashboardPort   = "GAZE_DASHBOARD_PORT"
	EnvSimulatorPort   = "GAZE_SIM_PORT"
	EnvSimulatorRateHz = "GAZE_SIM_RATE"
)

// Session configures the gaze sessions started by the commands.
type Session struct {
	// Wait blocks on the device between iterations instead of polling.
	Wait bool `yaml:"wait" json:"wait"`

	// MaxStill is the dwell threshold; zero or negative disables still
	// detection.
	MaxStill time.Duration `yaml:"max_still" json:"max_still"`

	// UseScreen compares points in Screen pixels instead of raw tolerance.
	UseScreen bool `yaml:"use_screen" json:"use_screen"`

	// Screen is the surface points are quantized to.
	Screen gaze.Screen `yaml:"screen" json:"screen"`
}

// GazeConfig builds the engine configuration for callbacks.
func (s Session) GazeConfig(callbacks gaze.Callbacks) gaze.Config {
	cfg := gaze.Config{
		Callbacks:        callbacks,
		WaitForCallbacks: s.Wait,
		MaxStill:         s.MaxStill,
	}
	if s.UseScreen {
		screen := s.Screen
		cfg.Screen = &screen
	}
	return cfg
}

// Config is the full go-gaze configuration.
type Config struct {
	Device    device.Config    `yaml:"device" json:"device"`
	Session   Session          `yaml:"session" json:"session"`
	Dashboard web.Config       `yaml:"dashboard" json:"dashboard"`
	Simulator simulator.Config `yaml:"simulator" json:"simulator"`
	Log       log.Options      `yaml:"log" json:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Device: device.DefaultConfig(),
		Session: Session{
			Wait:     true,
			MaxStill: 500 * time.Millisecond,
			Screen:   gaze.Screen{Width: 1920, Height: 1080},
		},
		Dashboard: web.DefaultConfig(),
		Simulator: simulator.DefaultConfig(),
		Log:       log.Options{Level: "info"},
	}
}

// LoadEnv loads .env files into the environment. Missing files are
// skipped; variables already set are never overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds a Config from the defaults, the YAML file at path (if not
// empty) and the environment. Callers apply their own overrides and then
// call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Device.Backend = device.Backend(v)
	}
	if v := os.Getenv(EnvEndpoints); v != "" {
		c.Device.Endpoints = List(v)
	}

	var errs []error
	intVar := func(key string, dst *int) {
		if v, ok, err := Int(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	intVar(EnvScreenWidth, &c.Session.Screen.Width)
	intVar(EnvScreenHeight, &c.Session.Screen.Height)
	intVar(EnvSimulatorRateHz, &c.Simulator.SampleRate)

	if ms, ok, err := Float(EnvMaxStillMs); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Session.MaxStill = gaze.Milliseconds(ms)
	}
	if wait, ok, err := Bool(EnvWait); err != nil {
		errs = append(errs, err)
	} else if ok {
		c.Session.Wait = wait
	}

	c.Log.Level = String(EnvLogLevel, c.Log.Level)
	c.Log.File = String(EnvLogFile, c.Log.File)
	c.Dashboard.Port = String(EnvDashboardPort, c.Dashboard.Port)
	c.Simulator.Port = String(EnvSimulatorPort, c.Simulator.Port)

	return errors.Join(errs...)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Device.Validate(); err != nil {
		return fmt.Errorf("device: %w", err)
	}
	if err := c.Session.Screen.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("simulator: %w", err)
	}
	if c.Dashboard.Port == "" {
		return fmt.Errorf("dashboard: port is required")
	}
	return nil
}

// String returns the value of key, or def if it is unset.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the integer value of key. ok is false if key is unset.
func Int(key string) (v int, ok bool, err error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// Float returns the floating point value of key. ok is false if key is unset.
func Float(key string) (v float64, ok bool, err error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// Bool returns the boolean value of key. ok is false if key is unset.
func Bool(key string) (v bool, ok bool, err error) {
	s := os.Getenv(key)
	if s == "" {
		return false, false, nil
	}
	v, err = strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

// List splits a comma-separated value, dropping empty items.
func List(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
