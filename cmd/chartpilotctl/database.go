package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tarsy-labs/chartpilot/pkg/api"
)

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Inspect the ingested analytics database",
}

var databaseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every ingested table and its column/row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.DatabaseStatusResponse
		if err := doJSON("GET", "/database-status", nil, &resp); err != nil {
			return err
		}

		fmt.Printf("database: %s\ntables: %d\n\n", resp.DatabasePath, resp.TotalTables)

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tFILE\tROWS\tCOLUMNS\tLOADED_AT")
		for _, t := range resp.Tables {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				t.TableName, t.FileName, t.RowCount, t.ColumnCount,
				t.LoadedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return w.Flush()
	},
}

func init() {
	databaseCmd.AddCommand(databaseStatusCmd)
}
