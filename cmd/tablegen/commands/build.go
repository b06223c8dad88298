package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ExclusiveDisjunction/sse-back/internal/routing"
	"github.com/ExclusiveDisjunction/sse-back/internal/service"
)

var (
	buildOut        string
	buildAllColumns bool
	buildWorkers    int
	buildTimeout    time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute every shortest route and write the table",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "routes.msgpack", "output table file")
	buildCmd.Flags().BoolVar(&buildAllColumns, "all-columns", false, "add a column for every node, not only destinations")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", runtime.NumCPU(), "parallel single-source searches")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 10*time.Minute, "give up after this long")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), buildTimeout)
	defer cancel()

	source, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer source.Close(context.Background())

	ds, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load campus map: %w", err)
	}
	g, err := routing.Build(ds.NodeMap(), ds.Edges)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	started := time.Now()
	columns := service.TableColumns(ds.Nodes, buildAllColumns)
	table, err := routing.BuildTable(ctx, g, g.NodeIDs(), columns, buildWorkers)
	if err != nil {
		return err
	}
	if err := table.WriteFile(buildOut); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d rows, %d columns, %d routes in %s\n",
		buildOut, table.Rows(), table.Columns().Len(), table.Populated(), time.Since(started).Round(time.Millisecond))
	return nil
}
