package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ExclusiveDisjunction/sse-back/internal/config"
	"github.com/ExclusiveDisjunction/sse-back/internal/repository"
)

var datasetPath string

var rootCmd = &cobra.Command{
	Use:   "tablegen",
	Short: "Build and inspect precomputed route tables",
	Long: `tablegen - offline route table tooling for the routing backend.

The campus map is read from the store configured through the usual
environment (STORE_DRIVER, GRAPH_URI, SQLITE_PATH, DATASET_PATH), or from a
JSON dataset passed with --dataset.

Files ending in .msgpack or .mpk are written in MessagePack; anything else is
written as a JSON array of rows.

Examples:
  tablegen build --dataset data/campus.json --out data/routes.msgpack
  tablegen inspect data/routes.msgpack`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "read the campus map from this JSON dataset instead of the configured store")
}

func openSource(ctx context.Context) (repository.Source, error) {
	if datasetPath != "" {
		return repository.NewFile(datasetPath), nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return repository.Open(ctx, cfg)
}
