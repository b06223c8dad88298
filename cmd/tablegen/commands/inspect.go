package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ExclusiveDisjunction/sse-back/internal/routing"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <table-file>",
	Short: "Print the shape of a route table file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := routing.ReadTableFile(args[0])
		if err != nil {
			return err
		}

		cols := table.Columns()
		unassigned := 0
		for col := 0; col < cols.Len(); col++ {
			if _, ok := cols.NodeAt(col); !ok {
				unassigned++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rows:       %d\n", table.Rows())
		fmt.Fprintf(out, "columns:    %d (%d unassigned)\n", cols.Len(), unassigned)
		fmt.Fprintf(out, "routes:     %d\n", table.Populated())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
