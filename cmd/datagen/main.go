package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ExclusiveDisjunction/sse-back/internal/config"
	"github.com/ExclusiveDisjunction/sse-back/internal/domain"
	"github.com/ExclusiveDisjunction/sse-back/internal/generator"
	"github.com/ExclusiveDisjunction/sse-back/internal/repository"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		columns        = flag.Int("columns", cfg.GridColumns, "walkway grid columns")
		rows           = flag.Int("rows", cfg.GridRows, "walkway grid rows")
		spacing        = flag.Float64("spacing", cfg.Spacing, "distance between neighbouring grid points")
		jitter         = flag.Float64("jitter", cfg.Jitter, "maximum random displacement of a grid point")
		destinations   = flag.Int("destinations", cfg.Destinations, "number of named destinations")
		groups         = flag.String("groups", strings.Join(cfg.Groups, ","), "comma separated destination groups")
		diagonalChance = flag.Float64("diagonal-chance", cfg.DiagonalChance, "probability of a diagonal walkway per grid cell")
		dropChance     = flag.Float64("drop-chance", cfg.DropEdgeChance, "probability of omitting a grid walkway")
		tagChance      = flag.Float64("tag-chance", cfg.TagChance, "probability of tagging a destination")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output         = flag.String("out", "data/campus.json", "path of the JSON dataset to write")
		writeStdout    = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
		toStore        = flag.Bool("store", false, "replace the contents of the configured store (STORE_DRIVER) with the dataset")
	)
	flag.Parse()

	genCfg := generator.Config{
		GridColumns:    *columns,
		GridRows:       *rows,
		Spacing:        *spacing,
		Jitter:         *jitter,
		Destinations:   *destinations,
		Groups:         splitGroups(*groups),
		DiagonalChance: clampProbability(*diagonalChance),
		DropEdgeChance: clampProbability(*dropChance),
		TagChance:      clampProbability(*tagChance),
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *toStore {
		if err := saveToStore(ctx, dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed store: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "Seeded store with %d nodes and %d edges\n", len(dataset.Nodes), len(dataset.Edges))
		return
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d nodes and %d edges into %s\n", len(dataset.Nodes), len(dataset.Edges), *output)
}

func saveToStore(ctx context.Context, dataset domain.Dataset) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	return store.Save(ctx, dataset)
}

func splitGroups(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if g := strings.TrimSpace(part); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
