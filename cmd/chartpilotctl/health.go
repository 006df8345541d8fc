package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarsy-labs/chartpilot/pkg/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.HealthResponse
		if err := doJSON("GET", "/health", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("status: %s\ntimestamp: %s\n", resp.Status, resp.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}
