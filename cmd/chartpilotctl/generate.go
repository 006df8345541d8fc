package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarsy-labs/chartpilot/pkg/api"
)

var (
	generateContainerID int
	generateWait        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Submit a chart-generation prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.GenerateChartRequest{Prompt: args[0]}
		if cmd.Flags().Changed("container-id") {
			req.ContainerID = &generateContainerID
		}

		var resp api.GenerateChartResponse
		if err := doJSON("POST", "/generate-chart", req, &resp); err != nil {
			return err
		}
		fmt.Printf("job_id: %s\nstatus: %s\n", resp.JobID, resp.Status)

		if !generateWait {
			return nil
		}
		return pollUntilTerminal(resp.JobID)
	},
}

// pollUntilTerminal polls /job-status until the job reaches a terminal
// status, printing progress as it advances.
func pollUntilTerminal(jobID string) error {
	for {
		var status api.JobStatusResponse
		if err := doJSON("GET", "/job-status/"+jobID, nil, &status); err != nil {
			return err
		}

		fmt.Printf("\r%-12s progress=%d%%", status.Status, status.Progress)

		switch status.Status {
		case "completed":
			fmt.Printf("\ncomponent: %s (%s)\n", status.ComponentName, status.ChartType)
			return nil
		case "failed", "cancelled":
			fmt.Printf("\nerror: %s\n", status.ErrorMessage)
			return nil
		}

		time.Sleep(time.Second)
	}
}

func init() {
	generateCmd.Flags().IntVar(&generateContainerID, "container-id", 0, "optional session/container id to scope the prompt")
	generateCmd.Flags().BoolVar(&generateWait, "wait", false, "poll job status until it reaches a terminal state")
}
