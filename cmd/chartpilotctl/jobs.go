package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tarsy-labs/chartpilot/pkg/api"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, inspect, cancel, or delete chart-generation jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.JobsListResponse
		if err := doJSON("GET", "/jobs", nil, &resp); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "JOB_ID\tSTATUS\tPROGRESS\tPROMPT\tSUBMITTED_AT")
		for _, j := range resp.Jobs {
			fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\n",
				j.JobID, j.Status, j.Progress, j.PromptPreview,
				j.SubmittedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return w.Flush()
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job_id>",
	Short: "Show a job's full status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.JobStatusResponse
		if err := doJSON("GET", "/job-status/"+args[0], nil, &resp); err != nil {
			return err
		}
		fmt.Printf("job_id:     %s\n", resp.JobID)
		fmt.Printf("status:     %s\n", resp.Status)
		fmt.Printf("progress:   %d%%\n", resp.Progress)
		if resp.ComponentName != "" {
			fmt.Printf("component:  %s\n", resp.ComponentName)
			fmt.Printf("chart_type: %s\n", resp.ChartType)
		}
		if resp.ErrorMessage != "" {
			fmt.Printf("error:      %s\n", resp.ErrorMessage)
			for _, s := range resp.Suggestions {
				fmt.Printf("suggestion: %s\n", s)
			}
		}
		return nil
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job_id>",
	Short: "Request cooperative cancellation of a running job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.DeleteJobResponse
		if err := doJSON("POST", "/jobs/"+args[0]+"/cancel", nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job_id>",
	Short: "Delete a terminal job from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.DeleteJobResponse
		if err := doJSON("DELETE", "/jobs/"+args[0], nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsStatusCmd, jobsCancelCmd, jobsDeleteCmd)
}
