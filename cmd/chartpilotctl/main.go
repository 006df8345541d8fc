// chartpilotctl is a thin HTTP client over chartpilot's API surface: submit
// and inspect chart-generation jobs, check database introspection status,
// and probe server health, all from the command line.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// apiAddr is the base URL of the chartpilot server, set by the persistent
// --addr flag.
var apiAddr string

var httpClient = &http.Client{Timeout: 30 * time.Second}

var rootCmd = &cobra.Command{
	Use:   "chartpilotctl",
	Short: "Command-line client for the chartpilot chart-generation API",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", defaultAddr(), "chartpilot server address")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(databaseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultAddr() string {
	if addr := os.Getenv("CHARTPILOT_ADDR"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}
