package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/protocol"
	"github.com/teslashibe/go-gaze/pkg/web"
)

func newDashboardCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Track gaze and draw it on the web dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Dashboard.Port = port
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runDashboard(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "dashboard HTTP port")
	return cmd
}

func runDashboard(ctx context.Context) error {
	logger := log.L()

	webCfg := cfg.Dashboard
	webCfg.Screen = cfg.Session.Screen
	server := web.NewServer(webCfg, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	fmt.Printf("🌐 Dashboard: http://localhost:%s\n", webCfg.Port)

	tracker := newTrackerOpener(cfg.Device, logger)
	engine := gaze.New(tracker, gaze.WithLogger(logger))

	var sessionID string
	sink := func(ev gaze.Event) {
		if id := engine.SessionID(); id != sessionID {
			sessionID = id
			server.UpdateStatus(func(st *protocol.StatusData) {
				st.State = gaze.StateRunning.String()
				st.SessionID = id
			})
			if desc := tracker.describe(); desc != "" {
				fmt.Printf("🎯 Tracker: %s\n", desc)
			}
		}
		server.Publish(sessionID, ev)
	}
	stop := func() bool { return ctx.Err() != nil }

	screen := cfg.Session.Screen
	callbacks := gaze.EventCallbacks(sink, &screen, stop)

	server.UpdateStatus(func(st *protocol.StatusData) {
		st.State = gaze.StateInitializing.String()
		st.Backend = string(cfg.Device.Backend)
	})

	report, err := engine.UseGaze(ctx, cfg.Session.GazeConfig(callbacks))

	server.UpdateStatus(func(st *protocol.StatusData) {
		st.State = gaze.StateIdle.String()
	})

	if err != nil {
		return fmt.Errorf("❌ gaze session failed: %w", err)
	}
	if report.Err != nil {
		fmt.Printf("⚠️  device failure: %v\n", report.Err)
	}
	fmt.Printf("✅ session %s: %d gaze, %d still\n", report.SessionID, report.Gaze, report.Still)

	// a device failure ends the session; keep serving until interrupted
	if ctx.Err() == nil {
		fmt.Println("🛑 Session ended, press Ctrl+C to stop the dashboard")
		<-ctx.Done()
	}

	if err := <-serverErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}
