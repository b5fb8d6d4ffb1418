// Command gaze turns eye-tracker samples into gaze events.
//
//	gaze print       print gaze points to stdout
//	gaze dashboard   stream gaze events to the web dashboard
//	gaze sim         serve synthetic samples over websocket
//	gaze status      query a running dashboard and simulator
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/device"
)

var (
	configPath   string
	logLevel     string
	backend      string
	endpoints    []string
	debugEnabled bool
	debugSamples bool

	// cfg is loaded before any subcommand runs
	cfg config.Config
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "gaze",
		Short:             "Gaze event engine for eye trackers",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		PersistentPostRun: func(*cobra.Command, []string) {
			log.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&backend, "backend", "", fmt.Sprintf("device backend: %v", device.AvailableBackends()))
	flags.StringSliceVar(&endpoints, "endpoint", nil, "tracker websocket URL, repeatable; the first reachable one is used")
	flags.BoolVar(&debugEnabled, "debug", false, "enable verbose debug output")
	flags.BoolVar(&debugSamples, "debug-samples", false, "print every raw gaze sample")

	rootCmd.AddCommand(newPrintCmd(), newDashboardCmd(), newSimCmd(), newStatusCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("backend") {
		loaded.Device.Backend = device.Backend(backend)
	}
	if flags.Changed("endpoint") {
		loaded.Device.Endpoints = endpoints
	}
	if debugEnabled {
		loaded.Log.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	debug.Enabled = debugEnabled
	debug.Samples = debugSamples

	log.Init(loaded.Log)
	debug.Log("🔧 config: %+v\n", loaded)

	cfg = loaded
	return nil
}
