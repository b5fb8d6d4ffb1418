package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/simulator"
)

func newSimCmd() *cobra.Command {
	var (
		port string
		rate int
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Serve synthetic gaze samples over websocket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			simCfg := cfg.Simulator
			if cmd.Flags().Changed("port") {
				simCfg.Port = port
			}
			if cmd.Flags().Changed("rate") {
				simCfg.SampleRate = rate
			}

			server, err := simulator.New(simCfg, log.L())
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			fmt.Printf("🎯 Simulator: ws://localhost:%s/ws/samples (%d Hz)\n", simCfg.Port, simCfg.SampleRate)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			fmt.Println("🛑 Shutting down simulator...")
			if err := server.Shutdown(); err != nil {
				return err
			}
			fmt.Printf("📊 %+v\n", server.Stats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port")
	cmd.Flags().IntVar(&rate, "rate", 0, "samples per second")
	return cmd
}
