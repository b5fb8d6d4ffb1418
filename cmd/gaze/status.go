package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-gaze/internal/httpc"
)

func newStatusCmd() *cobra.Command {
	var (
		dashboardURL string
		simURL       string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running dashboard and simulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dashboardURL == "" {
				dashboardURL = "http://localhost:" + cfg.Dashboard.Port
			}
			if simURL == "" {
				simURL = "http://localhost:" + cfg.Simulator.Port
			}
			return runStatus(cmd.Context(), dashboardURL, simURL)
		},
	}

	cmd.Flags().StringVar(&dashboardURL, "dashboard", "", "dashboard base URL")
	cmd.Flags().StringVar(&simURL, "sim", "", "simulator base URL")
	return cmd
}

func runStatus(ctx context.Context, dashboardURL, simURL string) error {
	client := httpc.NewClient(0)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	reachable := 0
	for _, target := range []struct{ name, url string }{
		{"dashboard", dashboardURL + "/api/status"},
		{"simulator", simURL + "/api/stats"},
	} {
		var body map[string]interface{}
		if err := httpc.GetJSON(ctx, client, target.url, &body); err != nil {
			fmt.Printf("⚠️  %s: %v\n", target.name, err)
			continue
		}
		reachable++
		fmt.Printf("✅ %s\n", target.name)
		enc.Encode(body)
	}

	if reachable == 0 {
		return fmt.Errorf("nothing reachable")
	}
	return nil
}
