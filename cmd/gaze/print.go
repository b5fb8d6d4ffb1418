package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

func newPrintCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print gaze points until enough have been seen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runPrint(ctx, count)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "stop after this many gaze points")
	return cmd
}

func runPrint(ctx context.Context, count int) error {
	logger := log.L()
	tracker := newTrackerOpener(cfg.Device, logger)
	engine := gaze.New(tracker, gaze.WithLogger(logger))

	gcfg := cfg.Session.GazeConfig(gaze.Callbacks{})
	seen := 0
	stopped := func() bool { return ctx.Err() != nil }

	callbacks := gaze.Callbacks{
		OnGaze: func(p gaze.Point) bool {
			seen++
			if gcfg.Screen != nil {
				px := p.ToScreen(*gcfg.Screen)
				fmt.Printf("%.5f %.5f (%d, %d)\n", p.X, p.Y, px.X, px.Y)
			} else {
				fmt.Printf("%.5f %.5f\n", p.X, p.Y)
			}
			return seen >= count || stopped()
		},
		OnError: func(gaze.Point) bool {
			return stopped()
		},
		OnStill: func(p gaze.Point) bool {
			fmt.Printf("👁️  still at %s\n", p)
			return stopped()
		},
		OnExit: func(p gaze.Point) bool {
			fmt.Printf("👋 last point %s\n", p)
			return false
		},
	}

	gcfg.Callbacks = callbacks
	report, err := engine.UseGaze(ctx, gcfg)
	if err != nil {
		return fmt.Errorf("❌ gaze session failed: %w", err)
	}
	if report.Err != nil {
		fmt.Printf("⚠️  device failure: %v\n", report.Err)
	}
	if desc := tracker.describe(); desc != "" {
		fmt.Printf("🎯 Tracker: %s\n", desc)
	}

	fmt.Printf("✅ %d gaze, %d still, %d idle in %d iterations (%s)\n",
		report.Gaze, report.Still, report.Errors, report.Iterations, report.Duration.Round(time.Millisecond))
	return nil
}
